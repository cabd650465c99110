package core

import (
	"time"
)

// BookCopiesAddedEventType is the event type identifier.
const BookCopiesAddedEventType = "BookCopiesAdded"

// BookCopiesAdded represents an inventory increase of an existing title.
type BookCopiesAdded struct {
	EventType   EventTypeString
	ISBN        ISBNString
	Title       string
	Added       int
	TotalCopies int
	OccurredAt  OccurredAt
}

// BuildBookCopiesAdded creates a new BookCopiesAdded event from the book state after the change.
func BuildBookCopiesAdded(book Book, added int, occurredAt time.Time) BookCopiesAdded {
	return BookCopiesAdded{
		EventType:   BookCopiesAddedEventType,
		ISBN:        book.ISBN,
		Title:       book.Title,
		Added:       added,
		TotalCopies: book.TotalCopies,
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e BookCopiesAdded) IsEventType() string {
	return BookCopiesAddedEventType
}

// HasOccurredAt returns when this event occurred.
func (e BookCopiesAdded) HasOccurredAt() time.Time {
	return e.OccurredAt
}
