// Package sqliteengine stores the operation journal in a SQLite file through mattn/go-sqlite3.
//
// Payload predicates use json_extract, so the SQLite build needs the JSON1 functions, which
// go-sqlite3 compiles in. SQLite serializes writers; open the sql.DB with a single connection
// (see shell/config.SQLiteDB) to avoid "database is locked" errors under concurrent appends.
package sqliteengine

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver

	"github.com/AntonStoeckl/library-lending-engine/eventstore"
	"github.com/AntonStoeckl/library-lending-engine/eventstore/internal/adapters"
	"github.com/AntonStoeckl/library-lending-engine/eventstore/internal/sqlstore"
)

// DriverName is the database/sql driver this engine expects.
const DriverName = "sqlite3"

// Option defines a functional option for configuring EventStore.
type Option = sqlstore.Option

// WithTableName sets the journal table. It must be a plain SQL identifier.
func WithTableName(tableName string) Option {
	return sqlstore.WithTableName(tableName)
}

// WithLogger sets the logger for the EventStore.
func WithLogger(logger eventstore.Logger) Option {
	return sqlstore.WithLogger(logger)
}

// WithContextualLogger sets a context-aware logger which takes precedence over WithLogger.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return sqlstore.WithContextualLogger(logger)
}

// WithMetrics sets the metrics collector for the EventStore.
func WithMetrics(collector eventstore.MetricsCollector) Option {
	return sqlstore.WithMetrics(collector)
}

// WithTracing sets the tracing collector for the EventStore.
func WithTracing(collector eventstore.TracingCollector) Option {
	return sqlstore.WithTracing(collector)
}

// EventStore is the SQLite journal.
type EventStore struct {
	store *sqlstore.Store
}

// NewEventStoreFromSQLDB creates a new EventStore on a sql.DB opened with DriverName.
func NewEventStoreFromSQLDB(db *sql.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	store, err := sqlstore.New(adapters.NewSQLConn(db), sqlstore.SQLite, options...)
	if err != nil {
		return nil, err
	}

	return &EventStore{store: store}, nil
}

// CreateSchema creates the journal table and its indexes if they do not exist yet.
func (es *EventStore) CreateSchema(ctx context.Context) error {
	return es.store.CreateSchema(ctx)
}

// TableName returns the journal table.
func (es *EventStore) TableName() string {
	return es.store.TableName()
}

// Query retrieves the events matching filter in ascending sequence order.
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	return es.store.Query(ctx, filter)
}

// Append inserts one or multiple events with a single statement.
func (es *EventStore) Append(ctx context.Context, event eventstore.StorableEvent, additionalEvents ...eventstore.StorableEvent) error {
	return es.store.Append(ctx, event, additionalEvents...)
}
