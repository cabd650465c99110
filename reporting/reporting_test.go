package reporting_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-lending-engine/core"
	"github.com/AntonStoeckl/library-lending-engine/reporting"
)

func Test_ComputeStats_SingleTwoCopyBookFullyLent(t *testing.T) {
	// arrange
	books := []core.Book{
		{ISBN: "978-1", TotalCopies: 2, AvailableCopies: 0, TimesBorrowed: 2, CurrentBorrowers: []string{"u1", "u2"}},
	}
	users := []core.User{
		{UserID: "u1", BorrowedBooks: []string{"978-1"}, BorrowedCount: 1},
		{UserID: "u2", BorrowedBooks: []string{"978-1"}, BorrowedCount: 1},
		{UserID: "u3", BorrowedBooks: []string{}},
	}

	// act
	stats := reporting.ComputeStats(books, users)

	// assert
	assert.Equal(t, core.Stats{
		TotalBooks:      1,
		TotalCopies:     2,
		AvailableCopies: 0,
		BorrowedCopies:  2,
		TotalUsers:      3,
		ActiveUsers:     2,
		UtilizationRate: 100.0,
	}, stats)
}

func Test_ComputeStats_EmptyLibrary(t *testing.T) {
	// act
	stats := reporting.ComputeStats(nil, nil)

	// assert
	assert.Equal(t, core.Stats{}, stats)
}

func Test_ComputeStats_RoundsUtilization(t *testing.T) {
	// arrange
	books := []core.Book{{ISBN: "A", TotalCopies: 3, AvailableCopies: 2}}

	// act
	stats := reporting.ComputeStats(books, nil)

	// assert
	assert.Equal(t, 33.33, stats.UtilizationRate)
}

func Test_TopBooks_OrdersByPopularityThenISBN(t *testing.T) {
	// arrange
	books := []core.Book{
		{ISBN: "C", PopularityScore: 9.52},
		{ISBN: "B", PopularityScore: 18.13},
		{ISBN: "A", PopularityScore: 9.52},
		{ISBN: "D", PopularityScore: 0},
	}

	// act
	top := reporting.TopBooks(books, 3)

	// assert
	assert.Equal(t, []string{"B", "A", "C"}, []string{top[0].ISBN, top[1].ISBN, top[2].ISBN})
	assert.Equal(t, "C", books[0].ISBN, "input must stay untouched")
	assert.Len(t, reporting.TopBooks(books, 10), 4)
	assert.Empty(t, reporting.TopBooks(books, 0))
}

func Test_MostBorrowed(t *testing.T) {
	// arrange
	books := []core.Book{
		{ISBN: "A", TimesBorrowed: 1},
		{ISBN: "B", TimesBorrowed: 7},
		{ISBN: "C", TimesBorrowed: 7},
	}

	// act
	top := reporting.MostBorrowed(books, 2)

	// assert
	assert.Equal(t, "B", top[0].ISBN)
	assert.Equal(t, "C", top[1].ISBN)
}

func Test_TopUsers_OrdersByActivityThenID(t *testing.T) {
	// arrange
	users := []core.User{
		{UserID: "u3", ActivityScore: 18.13},
		{UserID: "u1", ActivityScore: 18.13},
		{UserID: "u2", ActivityScore: 63.21},
	}

	// act
	top := reporting.TopUsers(users, 2)

	// assert
	assert.Equal(t, "u2", top[0].UserID)
	assert.Equal(t, "u1", top[1].UserID)
}

func Test_ActiveLoans(t *testing.T) {
	// arrange
	books := []core.Book{{ISBN: "B1", Title: "Dune"}, {ISBN: "B2", Title: "Emma"}}
	users := []core.User{
		{UserID: "u1", Name: "Ana", BorrowedBooks: []string{"B1", "B2"}},
		{UserID: "u2", Name: "Carlos", BorrowedBooks: []string{}},
	}

	lentAt := time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC)
	dates := core.LoanDates{"B1": {"u1": lentAt}}

	// act
	loans := reporting.ActiveLoans(books, users, dates)

	// assert
	assert.Equal(t, []core.Loan{
		{UserID: "u1", UserName: "Ana", ISBN: "B1", BookTitle: "Dune", LoanDate: lentAt},
		{UserID: "u1", UserName: "Ana", ISBN: "B2", BookTitle: "Emma"},
	}, loans)
}
