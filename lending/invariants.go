package lending

import (
	"errors"
	"fmt"
	"slices"

	"github.com/AntonStoeckl/library-lending-engine/core"
)

// ErrInvariantViolated is joined with every violation CheckInvariants finds.
var ErrInvariantViolated = errors.New("invariant violated")

// CheckInvariants verifies the record and cross-record invariants on a consistent snapshot.
// It returns nil or ErrInvariantViolated joined with one error per violation.
func CheckInvariants(books []core.Book, users []core.User, maxLoansPerUser int) error {
	var violations []error

	violate := func(format string, args ...any) {
		violations = append(violations, fmt.Errorf(format, args...))
	}

	usersByID := make(map[core.UserIDString]core.User, len(users))
	for _, user := range users {
		usersByID[user.UserID] = user
	}

	booksByISBN := make(map[core.ISBNString]core.Book, len(books))
	for _, book := range books {
		booksByISBN[book.ISBN] = book
	}

	for _, book := range books {
		if book.TotalCopies < 1 {
			violate("book %s: total copies %d < 1", book.ISBN, book.TotalCopies)
		}

		if book.AvailableCopies < 0 || book.AvailableCopies > book.TotalCopies {
			violate("book %s: available copies %d outside [0, %d]", book.ISBN, book.AvailableCopies, book.TotalCopies)
		}

		if len(book.CurrentBorrowers) != book.BorrowedCopies() {
			violate("book %s: %d borrowers but %d copies on loan", book.ISBN, len(book.CurrentBorrowers), book.BorrowedCopies())
		}

		if book.TimesBorrowed < len(book.CurrentBorrowers) {
			violate("book %s: times borrowed %d < current borrowers %d", book.ISBN, book.TimesBorrowed, len(book.CurrentBorrowers))
		}

		if book.PopularityScore != core.PopularityScore(book.TimesBorrowed) {
			violate("book %s: popularity %.2f does not match times borrowed %d", book.ISBN, book.PopularityScore, book.TimesBorrowed)
		}

		for _, userID := range book.CurrentBorrowers {
			user, found := usersByID[userID]
			if !found || !slices.Contains(user.BorrowedBooks, book.ISBN) {
				violate("book %s: borrower %s does not hold it", book.ISBN, userID)
			}
		}
	}

	for _, user := range users {
		if user.BorrowedCount != len(user.BorrowedBooks) {
			violate("user %s: borrowed count %d != %d borrowed books", user.UserID, user.BorrowedCount, len(user.BorrowedBooks))
		}

		if user.BorrowedCount > maxLoansPerUser {
			violate("user %s: %d loans exceed the limit of %d", user.UserID, user.BorrowedCount, maxLoansPerUser)
		}

		if user.CanBorrowMore != (user.BorrowedCount < maxLoansPerUser) {
			violate("user %s: can borrow more is %t with %d loans", user.UserID, user.CanBorrowMore, user.BorrowedCount)
		}

		if user.ActivityScore < 0 || user.ActivityScore > 100 {
			violate("user %s: activity score %.2f outside [0, 100]", user.UserID, user.ActivityScore)
		}

		for _, isbn := range user.BorrowedBooks {
			book, found := booksByISBN[isbn]
			if !found || !book.IsBorrowedBy(user.UserID) {
				violate("user %s: book %s does not list the user as borrower", user.UserID, isbn)
			}
		}
	}

	if len(violations) == 0 {
		return nil
	}

	return errors.Join(append([]error{ErrInvariantViolated}, violations...)...)
}
