package lending_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-lending-engine/core"
	"github.com/AntonStoeckl/library-lending-engine/lending"
)

func Test_CheckInvariants_DetectsViolations(t *testing.T) {
	consistentBook := core.Book{
		ISBN: "B1", TotalCopies: 2, AvailableCopies: 1, TimesBorrowed: 1,
		CurrentBorrowers: []string{"u1"}, PopularityScore: core.PopularityScore(1),
	}
	consistentUser := core.User{
		UserID: "u1", BorrowedBooks: []string{"B1"}, BorrowedCount: 1,
		ActivityScore: core.ActivityScore(1), CanBorrowMore: true,
	}

	testCases := []struct {
		name   string
		mutate func(book *core.Book, user *core.User)
		valid  bool
	}{
		{name: "consistent", mutate: func(*core.Book, *core.User) {}, valid: true},
		{name: "available above total", mutate: func(b *core.Book, _ *core.User) { b.AvailableCopies = 3 }},
		{name: "borrower count mismatch", mutate: func(b *core.Book, _ *core.User) { b.AvailableCopies = 2 }},
		{name: "stale popularity", mutate: func(b *core.Book, _ *core.User) { b.PopularityScore = 0 }},
		{name: "user misses the loan", mutate: func(_ *core.Book, u *core.User) {
			u.BorrowedBooks = []string{}
			u.BorrowedCount = 0
		}},
		{name: "wrong can borrow more", mutate: func(_ *core.Book, u *core.User) { u.CanBorrowMore = false }},
		{name: "book misses the borrower", mutate: func(b *core.Book, _ *core.User) {
			b.CurrentBorrowers = []string{"u2"}
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			book, user := consistentBook, consistentUser
			book.CurrentBorrowers = append([]string(nil), consistentBook.CurrentBorrowers...)
			user.BorrowedBooks = append([]string(nil), consistentUser.BorrowedBooks...)
			tc.mutate(&book, &user)

			// act
			err := lending.CheckInvariants([]core.Book{book}, []core.User{user}, core.DefaultMaxLoansPerUser)

			// assert
			if tc.valid {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, lending.ErrInvariantViolated)
		})
	}
}
