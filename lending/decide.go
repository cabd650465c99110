package lending

import (
	"github.com/AntonStoeckl/library-lending-engine/core"
)

// bookView is the read-only part of a book record a decision needs.
type bookView struct {
	isbn        core.ISBNString
	exists      bool
	available   int
	hasBorrower bool
}

// userView is the read-only part of a user record a decision needs.
type userView struct {
	userID        core.UserIDString
	exists        bool
	borrowedCount int
	canBorrowMore bool
	hasBorrowed   bool
}

// decideBorrow checks the borrow preconditions in their fixed order. The first failing one wins.
func decideBorrow(book bookView, user userView) error {
	switch {
	case !book.exists:
		return core.NewError(core.ErrBookNotFound, "book %s not found", book.isbn)
	case !user.exists:
		return core.NewError(core.ErrUserNotFound, "user %s not found", user.userID)
	case book.available == 0:
		return core.NewError(core.ErrNoCopiesAvailable, "no copies of book %s available", book.isbn)
	case !user.canBorrowMore:
		return core.NewError(core.ErrLoanLimitReached, "user %s already has %d books on loan", user.userID, user.borrowedCount)
	case book.hasBorrower || user.hasBorrowed:
		return core.NewError(core.ErrAlreadyBorrowed, "user %s already borrowed book %s", user.userID, book.isbn)
	}

	return nil
}

// decideReturn checks the return preconditions in their fixed order.
func decideReturn(book bookView, user userView) error {
	switch {
	case !book.exists:
		return core.NewError(core.ErrBookNotFound, "book %s not found", book.isbn)
	case !user.exists:
		return core.NewError(core.ErrUserNotFound, "user %s not found", user.userID)
	case !book.hasBorrower || !user.hasBorrowed:
		return core.NewError(core.ErrNotBorrowed, "user %s has not borrowed book %s", user.userID, book.isbn)
	}

	return nil
}
