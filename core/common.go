package core

import (
	"time"
)

// ISBNString represents a book's primary key.
type ISBNString = string

// UserIDString represents a user's primary key.
type UserIDString = string

// EventTypeString represents a domain event type identifier.
type EventTypeString = string

// OccurredAt represents when an event occurred.
type OccurredAt = time.Time

// ToOccurredAt converts a time to OccurredAt with UTC normalization and microsecond precision.
func ToOccurredAt(t time.Time) OccurredAt {
	return t.UTC().Truncate(time.Microsecond)
}

const (
	// DefaultMaxLoansPerUser is the loan limit used when none is configured.
	DefaultMaxLoansPerUser = 5

	// MinPublicationYear is the lowest accepted publication year.
	MinPublicationYear = 1000
)

// MaxPublicationYear returns the highest accepted publication year relative to now.
func MaxPublicationYear(now time.Time) int {
	return now.Year() + 1
}
