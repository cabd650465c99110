package lending

import (
	"sync"
	"time"

	"github.com/AntonStoeckl/library-lending-engine/catalog"
	"github.com/AntonStoeckl/library-lending-engine/core"
	"github.com/AntonStoeckl/library-lending-engine/registry"
	"github.com/AntonStoeckl/library-lending-engine/reporting"
)

// Receipt carries the state of both records right after a successful transaction.
// OccurredAt is taken while both records are locked, so receipts of transactions on the
// same book or user are ordered like the transactions themselves.
type Receipt struct {
	Book       core.Book
	User       core.User
	OccurredAt time.Time
}

// Engine runs lending transactions against one Catalog and one Registry.
type Engine struct {
	gate     sync.RWMutex
	catalog  *catalog.Catalog
	registry *registry.Registry
	now      func() time.Time
	onCommit func()
}

// Option defines a functional option for configuring an Engine.
type Option func(*Engine)

// WithClock sets the clock for receipts and loan dates.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithCommitHook sets a function that runs after every successful transaction while the
// book and the user are still locked.
func WithCommitHook(hook func()) Option {
	return func(e *Engine) {
		e.onCommit = hook
	}
}

// NewEngine creates an Engine. Catalog and Registry must not be shared with another Engine.
func NewEngine(books *catalog.Catalog, users *registry.Registry, options ...Option) *Engine {
	e := &Engine{
		catalog:  books,
		registry: users,
		now:      time.Now,
	}

	for _, option := range options {
		option(e)
	}

	return e
}

// Catalog returns the book side of the engine.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Registry returns the user side of the engine.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Borrow lends one copy of isbn to userID.
func (e *Engine) Borrow(userID core.UserIDString, isbn core.ISBNString) (Receipt, error) {
	e.gate.RLock()
	defer e.gate.RUnlock()

	book, user, err := e.lookup(userID, isbn)
	if err != nil {
		return Receipt{}, err
	}

	book.Lock()
	defer book.Unlock()

	user.Lock()
	defer user.Unlock()

	if err = decideBorrow(viewOfBook(book, user.UserID()), viewOfUser(user, book.ISBN())); err != nil {
		return Receipt{}, err
	}

	occurredAt := core.ToOccurredAt(e.now())
	book.LendTo(user.UserID(), occurredAt)
	user.RecordBorrow(book.ISBN())
	e.committed()

	return Receipt{Book: book.SnapshotLocked(), User: user.SnapshotLocked(), OccurredAt: occurredAt}, nil
}

// Return ends the loan of isbn held by userID.
func (e *Engine) Return(userID core.UserIDString, isbn core.ISBNString) (Receipt, error) {
	e.gate.RLock()
	defer e.gate.RUnlock()

	book, user, err := e.lookup(userID, isbn)
	if err != nil {
		return Receipt{}, err
	}

	book.Lock()
	defer book.Unlock()

	user.Lock()
	defer user.Unlock()

	if err = decideReturn(viewOfBook(book, user.UserID()), viewOfUser(user, book.ISBN())); err != nil {
		return Receipt{}, err
	}

	occurredAt := core.ToOccurredAt(e.now())
	book.TakeBackFrom(user.UserID())
	user.RecordReturn(book.ISBN())
	e.committed()

	return Receipt{Book: book.SnapshotLocked(), User: user.SnapshotLocked(), OccurredAt: occurredAt}, nil
}

// Snapshot returns all books and users as of one instant between transactions.
func (e *Engine) Snapshot() (books []core.Book, users []core.User) {
	e.gate.Lock()
	defer e.gate.Unlock()

	return e.catalog.Books(), e.registry.Users()
}

// Loans returns every active loan as of one instant between transactions,
// ordered by user id, then isbn.
func (e *Engine) Loans() []core.Loan {
	e.gate.Lock()
	defer e.gate.Unlock()

	return reporting.ActiveLoans(e.catalog.Books(), e.registry.Users(), e.catalog.LoanDates())
}

func (e *Engine) committed() {
	if e.onCommit != nil {
		e.onCommit()
	}
}

func (e *Engine) lookup(userID core.UserIDString, isbn core.ISBNString) (*catalog.Entry, *registry.Entry, error) {
	book, err := e.catalog.LookupForMutation(isbn)
	if err != nil {
		return nil, nil, err
	}

	user, err := e.registry.LookupForMutation(userID)
	if err != nil {
		return nil, nil, err
	}

	return book, user, nil
}

// viewOfBook requires the book lock.
func viewOfBook(book *catalog.Entry, userID core.UserIDString) bookView {
	return bookView{
		isbn:        book.ISBN(),
		exists:      !book.Removed(),
		available:   book.AvailableCopies(),
		hasBorrower: book.HasBorrower(userID),
	}
}

// viewOfUser requires the user lock.
func viewOfUser(user *registry.Entry, isbn core.ISBNString) userView {
	return userView{
		userID:        user.UserID(),
		exists:        !user.Removed(),
		borrowedCount: user.BorrowedCount(),
		canBorrowMore: user.CanBorrowMore(),
		hasBorrowed:   user.HasBorrowed(isbn),
	}
}
