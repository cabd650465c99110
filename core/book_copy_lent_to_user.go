package core

import (
	"time"
)

// BookCopyLentToUserEventType is the event type identifier.
const BookCopyLentToUserEventType = "BookCopyLentToUser"

// BookCopyLentToUser represents when a copy of a book is lent to a user.
type BookCopyLentToUser struct {
	EventType       EventTypeString
	ISBN            ISBNString
	Title           string
	UserID          UserIDString
	UserName        string
	AvailableCopies int
	OccurredAt      OccurredAt
}

// BuildBookCopyLentToUser creates a new BookCopyLentToUser event from the post-transaction snapshots.
func BuildBookCopyLentToUser(book Book, user User, occurredAt time.Time) BookCopyLentToUser {
	return BookCopyLentToUser{
		EventType:       BookCopyLentToUserEventType,
		ISBN:            book.ISBN,
		Title:           book.Title,
		UserID:          user.UserID,
		UserName:        user.Name,
		AvailableCopies: book.AvailableCopies,
		OccurredAt:      ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e BookCopyLentToUser) IsEventType() string {
	return BookCopyLentToUserEventType
}

// HasOccurredAt returns when this event occurred.
func (e BookCopyLentToUser) HasOccurredAt() time.Time {
	return e.OccurredAt
}
