package library

import (
	"github.com/AntonStoeckl/library-lending-engine/core"
	"github.com/AntonStoeckl/library-lending-engine/reporting"
)

// Stats returns the aggregate statistics of one consistent snapshot.
func (l *Library) Stats() core.Stats {
	return reporting.ComputeStats(l.engine.Snapshot())
}

// TopBooks returns the n most popular books.
func (l *Library) TopBooks(n int) []core.Book {
	books, _ := l.engine.Snapshot()
	return reporting.TopBooks(books, n)
}

// TopUsers returns the n most active users.
func (l *Library) TopUsers(n int) []core.User {
	_, users := l.engine.Snapshot()
	return reporting.TopUsers(users, n)
}

// MostBorrowedBooks returns the n books borrowed most often.
func (l *Library) MostBorrowedBooks(n int) []core.Book {
	books, _ := l.engine.Snapshot()
	return reporting.MostBorrowed(books, n)
}
