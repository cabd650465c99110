package core

import (
	"time"
)

// BookRemovedFromCatalogEventType is the event type identifier.
const BookRemovedFromCatalogEventType = "BookRemovedFromCatalog"

// BookRemovedFromCatalog represents when a title leaves the catalog.
type BookRemovedFromCatalog struct {
	EventType  EventTypeString
	ISBN       ISBNString
	Title      string
	OccurredAt OccurredAt
}

// BuildBookRemovedFromCatalog creates a new BookRemovedFromCatalog event.
func BuildBookRemovedFromCatalog(book Book, occurredAt time.Time) BookRemovedFromCatalog {
	return BookRemovedFromCatalog{
		EventType:  BookRemovedFromCatalogEventType,
		ISBN:       book.ISBN,
		Title:      book.Title,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e BookRemovedFromCatalog) IsEventType() string {
	return BookRemovedFromCatalogEventType
}

// HasOccurredAt returns when this event occurred.
func (e BookRemovedFromCatalog) HasOccurredAt() time.Time {
	return e.OccurredAt
}
