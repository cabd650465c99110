// Package reporting derives rankings and aggregate statistics from consistent snapshots.
// All functions are pure; callers obtain the snapshots from the lending engine.
package reporting

import (
	"cmp"
	"slices"

	"github.com/AntonStoeckl/library-lending-engine/core"
)

// TopBooks returns the n books with the highest popularity score, ties by isbn ascending.
func TopBooks(books []core.Book, n int) []core.Book {
	return topN(books, n, func(a, b core.Book) int {
		return cmp.Or(cmp.Compare(b.PopularityScore, a.PopularityScore), cmp.Compare(a.ISBN, b.ISBN))
	})
}

// MostBorrowed returns the n books borrowed most often, ties by isbn ascending.
func MostBorrowed(books []core.Book, n int) []core.Book {
	return topN(books, n, func(a, b core.Book) int {
		return cmp.Or(cmp.Compare(b.TimesBorrowed, a.TimesBorrowed), cmp.Compare(a.ISBN, b.ISBN))
	})
}

// TopUsers returns the n users with the highest activity score, ties by user id ascending.
func TopUsers(users []core.User, n int) []core.User {
	return topN(users, n, func(a, b core.User) int {
		return cmp.Or(cmp.Compare(b.ActivityScore, a.ActivityScore), cmp.Compare(a.UserID, b.UserID))
	})
}

// ComputeStats aggregates a snapshot. The utilization rate is the share of copies on loan
// in percent at two-decimal precision, 0 for a library without copies.
func ComputeStats(books []core.Book, users []core.User) core.Stats {
	stats := core.Stats{
		TotalBooks: len(books),
		TotalUsers: len(users),
	}

	for _, book := range books {
		stats.TotalCopies += book.TotalCopies
		stats.AvailableCopies += book.AvailableCopies
	}

	stats.BorrowedCopies = stats.TotalCopies - stats.AvailableCopies

	for _, user := range users {
		if user.BorrowedCount > 0 {
			stats.ActiveUsers++
		}
	}

	if stats.TotalCopies > 0 {
		stats.UtilizationRate = core.Round2(float64(stats.BorrowedCopies) / float64(stats.TotalCopies) * 100)
	}

	return stats
}

// ActiveLoans lists every borrowed (user, book) pair ordered by user id, then isbn.
// Loans missing from dates get a zero LoanDate.
func ActiveLoans(books []core.Book, users []core.User, dates core.LoanDates) []core.Loan {
	titles := make(map[core.ISBNString]string, len(books))
	for _, book := range books {
		titles[book.ISBN] = book.Title
	}

	loans := make([]core.Loan, 0)
	for _, user := range users {
		for _, isbn := range user.BorrowedBooks {
			loans = append(loans, core.Loan{
				UserID:    user.UserID,
				UserName:  user.Name,
				ISBN:      isbn,
				BookTitle: titles[isbn],
				LoanDate:  dates[isbn][user.UserID],
			})
		}
	}

	return loans
}

func topN[T any](items []T, n int, compare func(a, b T) int) []T {
	if n <= 0 {
		return []T{}
	}

	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, compare)

	return sorted[:min(n, len(sorted))]
}
