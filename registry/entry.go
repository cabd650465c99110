package registry

import (
	"sync"

	"github.com/AntonStoeckl/library-lending-engine/core"
	"github.com/AntonStoeckl/library-lending-engine/index"
)

// Entry is the live record of one user.
//
// userID, name and email are immutable; every other field requires the lock.
type Entry struct {
	mu sync.RWMutex

	userID   core.UserIDString
	name     string
	email    string
	maxLoans int

	borrowed        *index.Tree[core.ISBNString, struct{}]
	lifetimeBorrows int
	activity        float64
	removed         bool
}

func newEntry(nu core.NewUser, maxLoans int) *Entry {
	return &Entry{
		userID:   nu.UserID,
		name:     nu.Name,
		email:    nu.Email,
		maxLoans: maxLoans,
		borrowed: index.New[core.ISBNString, struct{}](),
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

// UserID returns the primary key.
func (e *Entry) UserID() core.UserIDString { return e.userID }

// Name returns the display name.
func (e *Entry) Name() string { return e.name }

// Removed reports whether the user left the registry after the entry was looked up.
func (e *Entry) Removed() bool { return e.removed }

// BorrowedCount requires the lock.
func (e *Entry) BorrowedCount() int { return e.borrowed.Len() }

// CanBorrowMore requires the lock.
func (e *Entry) CanBorrowMore() bool { return e.borrowed.Len() < e.maxLoans }

// HasBorrowed requires the lock.
func (e *Entry) HasBorrowed(isbn core.ISBNString) bool {
	return e.borrowed.Contains(isbn)
}

// BorrowedBooks returns the borrowed isbns in ascending order. Requires the lock.
func (e *Entry) BorrowedBooks() []core.ISBNString {
	return e.borrowed.Keys()
}

// RecordBorrow adds isbn to the borrowed set and refreshes the activity score.
// Requires the exclusive lock; the caller has checked the loan limit and that isbn is not held.
func (e *Entry) RecordBorrow(isbn core.ISBNString) {
	_ = e.borrowed.Insert(isbn, struct{}{})
	e.lifetimeBorrows++
	e.activity = core.ActivityScore(e.lifetimeBorrows)
}

// RecordReturn removes isbn from the borrowed set. Requires the exclusive lock.
func (e *Entry) RecordReturn(isbn core.ISBNString) {
	_ = e.borrowed.Remove(isbn)
}

// SnapshotLocked copies the record. Requires the lock.
func (e *Entry) SnapshotLocked() core.User {
	return core.User{
		UserID:        e.userID,
		Name:          e.name,
		Email:         e.email,
		BorrowedBooks: e.borrowed.Keys(),
		BorrowedCount: e.borrowed.Len(),
		ActivityScore: e.activity,
		CanBorrowMore: e.CanBorrowMore(),
	}
}

// Snapshot copies the record under a shared lock. ok is false if the user was removed.
func (e *Entry) Snapshot() (user core.User, ok bool) {
	e.RLock()
	defer e.RUnlock()

	if e.removed {
		return core.User{}, false
	}

	return e.SnapshotLocked(), true
}
