package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/AntonStoeckl/library-lending-engine/core"
	"github.com/AntonStoeckl/library-lending-engine/lending"
)

// Borrow lends one copy of isbn to userID.
func (l *Library) Borrow(ctx context.Context, userID core.UserIDString, isbn core.ISBNString) error {
	o, ctx := l.observe(ctx, OperationBorrow, map[string]string{logAttrUserID: userID, logAttrISBN: isbn})

	receipt, err := l.engine.Borrow(userID, isbn)
	if err != nil {
		return o.finish(err)
	}

	l.publish(ctx, o, core.BuildBookCopyLentToUser(receipt.Book, receipt.User, receipt.OccurredAt),
		ActionBorrow, fmt.Sprintf("Loan: %s -> %s", receipt.Book.Title, receipt.User.Name))

	return o.finish(nil)
}

// Return ends the loan of isbn held by userID.
func (l *Library) Return(ctx context.Context, userID core.UserIDString, isbn core.ISBNString) error {
	o, ctx := l.observe(ctx, OperationReturn, map[string]string{logAttrUserID: userID, logAttrISBN: isbn})

	receipt, err := l.engine.Return(userID, isbn)
	if err != nil {
		return o.finish(err)
	}

	l.publish(ctx, o, core.BuildBookCopyReturnedByUser(receipt.Book, receipt.User, receipt.OccurredAt),
		ActionReturn, fmt.Sprintf("Return: %s <- %s", receipt.Book.Title, receipt.User.Name))

	return o.finish(nil)
}

// UserBorrowedBooks returns the books userID currently holds, ordered by isbn.
func (l *Library) UserBorrowedBooks(userID core.UserIDString) ([]core.Book, error) {
	userID = strings.TrimSpace(userID)
	books, users := l.engine.Snapshot()

	var user core.User
	found := false

	for _, candidate := range users {
		if candidate.UserID == userID {
			user, found = candidate, true
			break
		}
	}

	if !found {
		return nil, core.NewError(core.ErrUserNotFound, "user %s not found", userID)
	}

	borrowed := make([]core.Book, 0, len(user.BorrowedBooks))
	for _, book := range books {
		if book.IsBorrowedBy(userID) {
			borrowed = append(borrowed, book)
		}
	}

	return borrowed, nil
}

// ActiveLoans lists every loan with its start, ordered by user id, then isbn.
func (l *Library) ActiveLoans() []core.Loan {
	return l.engine.Loans()
}

// CheckInvariants verifies all record and cross-record invariants on a consistent snapshot.
func (l *Library) CheckInvariants() error {
	books, users := l.engine.Snapshot()
	return lending.CheckInvariants(books, users, l.registry.MaxLoansPerUser())
}
