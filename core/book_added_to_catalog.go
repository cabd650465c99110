package core

import (
	"time"
)

// BookAddedToCatalogEventType is the event type identifier.
const BookAddedToCatalogEventType = "BookAddedToCatalog"

// BookAddedToCatalog represents when a new title enters the catalog.
type BookAddedToCatalog struct {
	EventType  EventTypeString
	ISBN       ISBNString
	Title      string
	Author     string
	Year       int
	Copies     int
	OccurredAt OccurredAt
}

// BuildBookAddedToCatalog creates a new BookAddedToCatalog event.
func BuildBookAddedToCatalog(book Book, occurredAt time.Time) BookAddedToCatalog {
	return BookAddedToCatalog{
		EventType:  BookAddedToCatalogEventType,
		ISBN:       book.ISBN,
		Title:      book.Title,
		Author:     book.Author,
		Year:       book.Year,
		Copies:     book.TotalCopies,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e BookAddedToCatalog) IsEventType() string {
	return BookAddedToCatalogEventType
}

// HasOccurredAt returns when this event occurred.
func (e BookAddedToCatalog) HasOccurredAt() time.Time {
	return e.OccurredAt
}
