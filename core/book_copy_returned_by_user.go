package core

import (
	"time"
)

// BookCopyReturnedByUserEventType is the event type identifier.
const BookCopyReturnedByUserEventType = "BookCopyReturnedByUser"

// BookCopyReturnedByUser represents when a user brings a borrowed copy back.
type BookCopyReturnedByUser struct {
	EventType       EventTypeString
	ISBN            ISBNString
	Title           string
	UserID          UserIDString
	UserName        string
	AvailableCopies int
	OccurredAt      OccurredAt
}

// BuildBookCopyReturnedByUser creates a new BookCopyReturnedByUser event from the post-transaction snapshots.
func BuildBookCopyReturnedByUser(book Book, user User, occurredAt time.Time) BookCopyReturnedByUser {
	return BookCopyReturnedByUser{
		EventType:       BookCopyReturnedByUserEventType,
		ISBN:            book.ISBN,
		Title:           book.Title,
		UserID:          user.UserID,
		UserName:        user.Name,
		AvailableCopies: book.AvailableCopies,
		OccurredAt:      ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e BookCopyReturnedByUser) IsEventType() string {
	return BookCopyReturnedByUserEventType
}

// HasOccurredAt returns when this event occurred.
func (e BookCopyReturnedByUser) HasOccurredAt() time.Time {
	return e.OccurredAt
}
