package catalog

import (
	"errors"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/AntonStoeckl/library-lending-engine/core"
	"github.com/AntonStoeckl/library-lending-engine/index"
)

// Catalog holds the book records and their indices.
type Catalog struct {
	mu       sync.RWMutex
	byISBN   *index.Tree[core.ISBNString, *Entry]
	byTitle  *index.Multi[string, core.ISBNString]
	byAuthor *index.Multi[string, core.ISBNString]

	now      func() time.Time
	onCommit func()
}

// Option defines a functional option for configuring a Catalog.
type Option func(*Catalog)

// WithClock sets the clock used for the publication year bound.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		c.now = now
	}
}

// WithCommitHook sets a function that runs after every successful mutation, while the
// mutated record is still locked. Later mutations of the same record wait for it to return.
func WithCommitHook(hook func()) Option {
	return func(c *Catalog) {
		c.onCommit = hook
	}
}

// New creates an empty Catalog.
func New(options ...Option) *Catalog {
	c := &Catalog{
		byISBN:   index.New[core.ISBNString, *Entry](),
		byTitle:  index.NewMulti[string, core.ISBNString](),
		byAuthor: index.NewMulti[string, core.ISBNString](),
		now:      time.Now,
	}

	for _, option := range options {
		option(c)
	}

	return c
}

// AddBook validates nb and links a new record into all three indices.
func (c *Catalog) AddBook(nb core.NewBook) (core.Book, error) {
	nb = nb.Normalized()
	if err := nb.Validate(c.now()); err != nil {
		return core.Book{}, err
	}

	entry := newEntry(nb)

	// Locked before it becomes reachable, so the commit hook runs ahead of any mutation of the new book.
	entry.Lock()
	defer entry.Unlock()

	if err := c.link(entry); err != nil {
		return core.Book{}, err
	}

	c.committed()

	return entry.SnapshotLocked(), nil
}

func (c *Catalog) link(entry *Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.byISBN.Insert(entry.isbn, entry); err != nil {
		if errors.Is(err, index.ErrDuplicateKey) {
			return core.NewError(core.ErrDuplicateIsbn, "isbn %s already exists", entry.isbn)
		}

		return err
	}

	_ = c.byTitle.Add(foldKey(entry.title), entry.isbn)
	_ = c.byAuthor.Add(foldKey(entry.author), entry.isbn)

	return nil
}

// AddCopies increases total and available copies of an existing book by n.
func (c *Catalog) AddCopies(isbn core.ISBNString, n int) (core.Book, error) {
	if n < 1 {
		return core.Book{}, core.NewError(core.ErrInvalidCopies, "number of copies to add must be at least 1, got %d", n)
	}

	entry, err := c.LookupForMutation(isbn)
	if err != nil {
		return core.Book{}, err
	}

	entry.Lock()
	defer entry.Unlock()

	if entry.removed {
		return core.Book{}, bookNotFound(isbn)
	}

	entry.totalCopies += n
	entry.availableCopies += n
	c.committed()

	return entry.SnapshotLocked(), nil
}

// RemoveBook unlinks a book from all three indices. Books with copies on loan stay.
func (c *Catalog) RemoveBook(isbn core.ISBNString) (core.Book, error) {
	entry, err := c.LookupForMutation(isbn)
	if err != nil {
		return core.Book{}, err
	}

	entry.Lock()
	defer entry.Unlock()

	if entry.removed {
		return core.Book{}, bookNotFound(isbn)
	}

	if entry.availableCopies != entry.totalCopies {
		return core.Book{}, core.NewError(
			core.ErrBookOnLoan,
			"book %s has %d copies on loan",
			isbn,
			entry.totalCopies-entry.availableCopies,
		)
	}

	c.mu.Lock()
	_ = c.byISBN.Remove(entry.isbn)
	_ = c.byTitle.Remove(foldKey(entry.title), entry.isbn)
	_ = c.byAuthor.Remove(foldKey(entry.author), entry.isbn)
	c.mu.Unlock()

	entry.removed = true
	c.committed()

	return entry.SnapshotLocked(), nil
}

// LoanDates returns when each current loan started, keyed by isbn, then user id.
func (c *Catalog) LoanDates() core.LoanDates {
	dates := make(core.LoanDates)
	for _, entry := range c.Entries() {
		entry.RLock()
		if !entry.removed && entry.borrowers.Len() > 0 {
			dates[entry.isbn] = entry.LoanDatesLocked()
		}
		entry.RUnlock()
	}

	return dates
}

// LookupForMutation returns the live entry of isbn. The caller locks it and must
// check Removed before touching it.
func (c *Catalog) LookupForMutation(isbn core.ISBNString) (*Entry, error) {
	c.mu.RLock()
	entry, found := c.byISBN.Find(strings.TrimSpace(isbn))
	c.mu.RUnlock()

	if !found {
		return nil, bookNotFound(isbn)
	}

	return entry, nil
}

// FindByISBN returns a snapshot of the book.
func (c *Catalog) FindByISBN(isbn core.ISBNString) (core.Book, error) {
	entry, err := c.LookupForMutation(isbn)
	if err != nil {
		return core.Book{}, err
	}

	book, ok := entry.Snapshot()
	if !ok {
		return core.Book{}, bookNotFound(isbn)
	}

	return book, nil
}

// FindByTitle returns the books whose title starts with prefix, case-insensitive,
// ordered by title then isbn.
func (c *Catalog) FindByTitle(prefix string) []core.Book {
	c.mu.RLock()
	entries := c.collect(index.MultiPrefix(c.byTitle, foldKey(prefix)))
	c.mu.RUnlock()

	return snapshots(entries)
}

// FindByAuthor returns the books whose author starts with prefix, case-insensitive,
// ordered by author then isbn.
func (c *Catalog) FindByAuthor(prefix string) []core.Book {
	c.mu.RLock()
	entries := c.collect(index.MultiPrefix(c.byAuthor, foldKey(prefix)))
	c.mu.RUnlock()

	return snapshots(entries)
}

// Search returns the books whose isbn, title or author contains query, case-insensitive,
// ordered by isbn. An empty query matches every book.
func (c *Catalog) Search(query string) []core.Book {
	needle := foldKey(query)

	c.mu.RLock()
	entries := make([]*Entry, 0)
	for _, entry := range c.byISBN.All() {
		if entry.matches(needle) {
			entries = append(entries, entry)
		}
	}
	c.mu.RUnlock()

	return snapshots(entries)
}

// Entries returns the live entries ordered by isbn.
func (c *Catalog) Entries() []*Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]*Entry, 0, c.byISBN.Len())
	for _, entry := range c.byISBN.All() {
		entries = append(entries, entry)
	}

	return entries
}

// Books returns snapshots of all books ordered by isbn.
func (c *Catalog) Books() []core.Book {
	return snapshots(c.Entries())
}

// Len returns the number of books.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.byISBN.Len()
}

// collect resolves primary keys to entries. Requires c.mu.
func (c *Catalog) collect(keys iter.Seq2[string, core.ISBNString]) []*Entry {
	entries := make([]*Entry, 0)
	for _, isbn := range keys {
		if entry, found := c.byISBN.Find(isbn); found {
			entries = append(entries, entry)
		}
	}

	return entries
}

func (c *Catalog) committed() {
	if c.onCommit != nil {
		c.onCommit()
	}
}

func (e *Entry) matches(needle string) bool {
	return strings.Contains(foldKey(e.isbn), needle) ||
		strings.Contains(foldKey(e.title), needle) ||
		strings.Contains(foldKey(e.author), needle)
}

func snapshots(entries []*Entry) []core.Book {
	books := make([]core.Book, 0, len(entries))
	for _, entry := range entries {
		if book, ok := entry.Snapshot(); ok {
			books = append(books, book)
		}
	}

	return books
}

func foldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bookNotFound(isbn core.ISBNString) error {
	return core.NewError(core.ErrBookNotFound, "book %s not found", isbn)
}
