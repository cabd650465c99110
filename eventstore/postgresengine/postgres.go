package postgresengine

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/library-lending-engine/eventstore"
	"github.com/AntonStoeckl/library-lending-engine/eventstore/internal/adapters"
	"github.com/AntonStoeckl/library-lending-engine/eventstore/internal/sqlstore"
)

// DefaultTableName is used unless WithTableName says otherwise.
const DefaultTableName = sqlstore.DefaultTableName

// Option defines a functional option for configuring EventStore.
type Option = sqlstore.Option

// WithTableName sets the journal table. It must be a plain SQL identifier.
func WithTableName(tableName string) Option {
	return sqlstore.WithTableName(tableName)
}

// WithLogger sets the logger for the EventStore.
//
// Debug level: SQL statements with execution timing (development use)
// Info level: event counts and durations (production-safe)
// Warn level: non-critical issues like failing to close rows
// Error level: failures that make an operation fail.
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

// EventStore is the PostgreSQL journal.
type EventStore struct {
	store *sqlstore.Store
}

// NewEventStoreFromPGXPool creates a new EventStore using a pgx Pool with optional configuration.
func NewEventStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXConn(db), options...)
}

// NewEventStoreFromPGXPoolAndReplica creates an EventStore that queries replica and appends to primary.
func NewEventStoreFromPGXPoolAndReplica(primary *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*EventStore, error) {
	if primary == nil || replica == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXConnWithReplica(primary, replica), options...)
}

// NewEventStoreFromSQLDB creates a new EventStore using a sql.DB with optional configuration.
func NewEventStoreFromSQLDB(db *sql.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLConn(db), options...)
}

// NewEventStoreFromSQLX creates a new EventStore using a sqlx.DB with optional configuration.
func NewEventStoreFromSQLX(db *sqlx.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLXConn(db), options...)
}

func newEventStore(db adapters.Conn, options ...Option) (*EventStore, error) {
	store, err := sqlstore.New(db, sqlstore.Postgres, options...)
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

// Query retrieves the events matching filter in ascending sequence order, together with the
// highest sequence number among them.
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
