package catalog

import (
	"sync"
	"time"

	"github.com/AntonStoeckl/library-lending-engine/core"
	"github.com/AntonStoeckl/library-lending-engine/index"
)

// Entry is the live record of one book.
//
// isbn, title, author and year are immutable and may be read without holding the lock.
// All other fields require the lock: RLock for reads, Lock for writes.
type Entry struct {
	mu sync.RWMutex

	isbn   core.ISBNString
	title  string
	author string
	year   int

	totalCopies     int
	availableCopies int
	timesBorrowed   int
	borrowers       *index.Tree[core.UserIDString, time.Time]
	popularity      float64
	removed         bool
}

func newEntry(nb core.NewBook) *Entry {
	return &Entry{
		isbn:            nb.ISBN,
		title:           nb.Title,
		author:          nb.Author,
		year:            nb.Year,
		totalCopies:     nb.Copies,
		availableCopies: nb.Copies,
		borrowers:       index.New[core.UserIDString, time.Time](),
	}
}

// Lock takes exclusive access to the record.
func (e *Entry) Lock() { e.mu.Lock() }

// Unlock releases exclusive access.
func (e *Entry) Unlock() { e.mu.Unlock() }

// RLock takes shared access to the record.
func (e *Entry) RLock() { e.mu.RLock() }

// RUnlock releases shared access.
func (e *Entry) RUnlock() { e.mu.RUnlock() }

// ISBN returns the primary key.
func (e *Entry) ISBN() core.ISBNString { return e.isbn }

// Title returns the title.
func (e *Entry) Title() string { return e.title }

// Removed reports whether the book left the catalog after the entry was looked up. Requires the lock.
func (e *Entry) Removed() bool { return e.removed }

// AvailableCopies requires the lock.
func (e *Entry) AvailableCopies() int { return e.availableCopies }

// HasBorrower requires the lock.
func (e *Entry) HasBorrower(userID core.UserIDString) bool {
	return e.borrowers.Contains(userID)
}

// LendTo records a loan to userID that started at lentAt. Requires the exclusive lock; the
// caller has verified that a copy is available and that userID does not hold one yet.
func (e *Entry) LendTo(userID core.UserIDString, lentAt time.Time) {
	_ = e.borrowers.Insert(userID, lentAt)
	e.availableCopies--
	e.timesBorrowed++
	e.popularity = core.PopularityScore(e.timesBorrowed)
}

// TakeBackFrom ends the loan of userID. Requires the exclusive lock; the caller has
// verified that userID holds a copy. Scores are left untouched.
func (e *Entry) TakeBackFrom(userID core.UserIDString) {
	_ = e.borrowers.Remove(userID)
	e.availableCopies++
}

// LoanDatesLocked returns when each current loan of the book started. Requires the lock.
func (e *Entry) LoanDatesLocked() map[core.UserIDString]time.Time {
	dates := make(map[core.UserIDString]time.Time, e.borrowers.Len())
	for userID, lentAt := range e.borrowers.All() {
		dates[userID] = lentAt
	}

	return dates
}

// SnapshotLocked copies the record. Requires the lock (shared or exclusive).
func (e *Entry) SnapshotLocked() core.Book {
	return core.Book{
		ISBN:             e.isbn,
		Title:            e.title,
		Author:           e.author,
		Year:             e.year,
		TotalCopies:      e.totalCopies,
		AvailableCopies:  e.availableCopies,
		TimesBorrowed:    e.timesBorrowed,
		CurrentBorrowers: e.borrowers.Keys(),
		PopularityScore:  e.popularity,
	}
}

// Snapshot copies the record under a shared lock. ok is false if the book was removed.
func (e *Entry) Snapshot() (book core.Book, ok bool) {
	e.RLock()
	defer e.RUnlock()

	if e.removed {
		return core.Book{}, false
	}

	return e.SnapshotLocked(), true
}
