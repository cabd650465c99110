package eventstore

import (
	"context"
	"errors"
)

var (
	// ErrEmptyTableNameSupplied is returned when a SQL journal is configured without a table name.
	ErrEmptyTableNameSupplied = errors.New("empty eventTableName supplied")

	// ErrNilDatabaseConnection is returned when an engine constructor receives a nil connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrQueryingEventsFailed is joined with the cause when reading the journal fails.
	ErrQueryingEventsFailed = errors.New("querying events failed")

	// ErrAppendingEventFailed is joined with the cause when writing to the journal fails.
	ErrAppendingEventFailed = errors.New("appending the event failed")

	// ErrBuildingQueryFailed is joined with the cause when the SQL statement cannot be built.
	ErrBuildingQueryFailed = errors.New("building the query failed")

	// ErrScanningDBRowFailed is joined with the cause when a result row cannot be read.
	ErrScanningDBRowFailed = errors.New("scanning the database row failed")

	// ErrCreatingSchemaFailed is joined with the cause when the journal table cannot be created.
	ErrCreatingSchemaFailed = errors.New("creating the journal schema failed")

	// ErrNoEventsToAppend is returned when Append is called without events.
	ErrNoEventsToAppend = errors.New("no events to append")
)

// MaxSequenceNumberUint is a type alias for uint, representing the highest sequence number seen by a query.
type MaxSequenceNumberUint = uint

// EventStore is the append-only operation journal.
//
// Append stores the events in order within one write; sequence numbers are assigned by the store.
// Query returns the events matching the Filter in ascending sequence order together with the
// highest sequence number among them (0 if none matched).
type EventStore interface {
	Append(ctx context.Context, event StorableEvent, additionalEvents ...StorableEvent) error
	Query(ctx context.Context, filter Filter) (StorableEvents, MaxSequenceNumberUint, error)
}
