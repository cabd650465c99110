// Package sqlstore is the journal on a SQL database. The Postgres and SQLite engines are thin
// wrappers that pick a Dialect and a connection adapter; statements are built with goqu.
package sqlstore

import (
	"context"
	"errors"
	"regexp"
	"slices"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/library-lending-engine/eventstore"
	"github.com/AntonStoeckl/library-lending-engine/eventstore/internal/adapters"
	"github.com/AntonStoeckl/library-lending-engine/eventstore/internal/observing"
)

const (
	DefaultTableName = "library_events"

	logActionQuery        = "query"
	logActionAppend       = "append"
	logActionCreateSchema = "create schema"
	logMsgCloseRowsFailed = "failed to close database rows"
)

// ErrInvalidTableName is returned for table names that are not plain SQL identifiers.
var ErrInvalidTableName = errors.New("table name must match [A-Za-z_][A-Za-z0-9_]*")

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Settings collects what the options configure.
type Settings struct {
	tableName string
	observers observing.Observers
}

// Option defines a functional option for configuring a SQL journal.
type Option func(*Settings) error

// WithTableName sets the journal table. It is used verbatim in DDL, so it must be a plain identifier.
func WithTableName(tableName string) Option {
	return func(s *Settings) error {
		if tableName == "" {
			return eventstore.ErrEmptyTableNameSupplied
		}

		if !tableNamePattern.MatchString(tableName) {
			return ErrInvalidTableName
		}

		s.tableName = tableName

		return nil
	}
}

// WithLogger sets the logger.
// Debug level gets every SQL statement with its duration, Info one line per operation, Error the failures.
func WithLogger(logger eventstore.Logger) Option {
	return func(s *Settings) error {
		s.observers.Logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger which takes precedence over WithLogger.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(s *Settings) error {
		s.observers.ContextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector eventstore.MetricsCollector) Option {
	return func(s *Settings) error {
		s.observers.Metrics = collector
		return nil
	}
}

// WithTracing sets the tracing collector.
func WithTracing(collector eventstore.TracingCollector) Option {
	return func(s *Settings) error {
		s.observers.Tracing = collector
		return nil
	}
}

// Store implements eventstore.EventStore on an adapters.Conn.
type Store struct {
	db        adapters.Conn
	dialect   Dialect
	tableName string
	observers observing.Observers
}

// New creates a Store. It does not touch the database; call CreateSchema for a fresh one.
func New(db adapters.Conn, dialect Dialect, options ...Option) (*Store, error) {
	settings := Settings{
		tableName: DefaultTableName,
		observers: observing.Observers{Engine: dialect.Engine},
	}

	for _, option := range options {
		if err := option(&settings); err != nil {
			return nil, err
		}
	}

	return &Store{
		db:        db,
		dialect:   dialect,
		tableName: settings.tableName,
		observers: settings.observers,
	}, nil
}

// TableName returns the journal table.
func (s *Store) TableName() string {
	return s.tableName
}

// CreateSchema creates the journal table and its indexes if they do not exist yet.
func (s *Store) CreateSchema(ctx context.Context) error {
	for _, statement := range s.dialect.Schema(s.tableName) {
		start := time.Now()
		err := s.db.Exec(ctx, statement)
		s.observers.LogSQL(ctx, statement, logActionCreateSchema, time.Since(start))

		if err != nil {
			return errors.Join(eventstore.ErrCreatingSchemaFailed, err)
		}
	}

	return nil
}

// Query reads the matching events in ascending sequence order.
func (s *Store) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	observation, ctx := s.observers.StartQuery(ctx, filter)

	sqlQuery, err := s.BuildSelectQuery(filter)
	if err != nil {
		return nil, 0, observation.Failed(observing.ErrorTypeBuildQuery, err)
	}

	start := time.Now()
	eventStream, errorType, err := s.readEvents(ctx, sqlQuery)
	s.observers.LogSQL(ctx, sqlQuery, logActionQuery, time.Since(start))

	if err != nil {
		return nil, 0, observation.Failed(errorType, err)
	}

	if filter.LatestLimit() > 0 {
		slices.Reverse(eventStream)
	}

	maxSequenceNumber := eventstore.MaxSequenceNumberUint(0)
	if len(eventStream) > 0 {
		maxSequenceNumber = eventStream[len(eventStream)-1].SequenceNumber
	}

	observation.QuerySucceeded(eventStream, maxSequenceNumber)

	return eventStream, maxSequenceNumber, nil
}

// readEvents returns the error type label alongside a failure. Rows that could not be
// released after a complete read only produce a warning.
func (s *Store) readEvents(ctx context.Context, sqlQuery string) (eventstore.StorableEvents, string, error) {
	var (
		sequenceNumber int64
		eventType      string
		occurredAt     time.Time
		payload        []byte
		metadata       []byte
	)

	eventStream := make(eventstore.StorableEvents, 0)
	errorType := observing.ErrorTypeDBQuery

	err := s.db.Each(ctx, sqlQuery, func(scan adapters.ScanFunc) error {
		if err := scan(&sequenceNumber, &eventType, &occurredAt, &payload, &metadata); err != nil {
			errorType = observing.ErrorTypeRowScan
			return errors.Join(eventstore.ErrScanningDBRowFailed, err)
		}

		event, err := eventstore.BuildStorableEvent(eventType, occurredAt.UTC(), slices.Clone(payload), slices.Clone(metadata))
		if err != nil {
			errorType = observing.ErrorTypeInvalidData
			return errors.Join(eventstore.ErrQueryingEventsFailed, err)
		}

		eventStream = append(eventStream, event.WithSequenceNumber(eventstore.MaxSequenceNumberUint(sequenceNumber)))

		return nil
	})

	switch {
	case err == nil:
		return eventStream, "", nil
	case errors.Is(err, adapters.ErrClosingRowsFailed):
		s.observers.LogWarn(ctx, logMsgCloseRowsFailed, err)
		return eventStream, "", nil
	case errorType == observing.ErrorTypeDBQuery:
		return nil, errorType, errors.Join(eventstore.ErrQueryingEventsFailed, err)
	default:
		return nil, errorType, err
	}
}

// Append inserts the events with one statement, so either all or none are stored.
func (s *Store) Append(ctx context.Context, event eventstore.StorableEvent, additionalEvents ...eventstore.StorableEvent) error {
	allEvents := append(eventstore.StorableEvents{event}, additionalEvents...)

	observation, ctx := s.observers.StartAppend(ctx, allEvents)

	sqlQuery, err := s.BuildInsertQuery(allEvents)
	if err != nil {
		return observation.Failed(observing.ErrorTypeBuildQuery, err)
	}

	start := time.Now()
	err = s.db.Exec(ctx, sqlQuery)
	s.observers.LogSQL(ctx, sqlQuery, logActionAppend, time.Since(start))

	if err != nil {
		return observation.Failed(observing.ErrorTypeDBExec, errors.Join(eventstore.ErrAppendingEventFailed, err))
	}

	observation.AppendSucceeded(len(allEvents))

	return nil
}

// BuildSelectQuery renders the SELECT for filter. With a Latest limit the rows come newest first.
func (s *Store) BuildSelectQuery(filter eventstore.Filter) (string, error) {
	order := goqu.I(colSequenceNumber).Asc()
	if filter.LatestLimit() > 0 {
		order = goqu.I(colSequenceNumber).Desc()
	}

	selectStmt := goqu.Dialect(s.dialect.Name).
		From(s.tableName).
		Select(colSequenceNumber, colEventType, colOccurredAt, colPayload, colMetadata).
		Order(order)

	where, err := s.whereExpression(filter)
	if err != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, err)
	}

	if where != nil {
		selectStmt = selectStmt.Where(where)
	}

	if filter.LatestLimit() > 0 {
		selectStmt = selectStmt.Limit(uint(filter.LatestLimit()))
	}

	sqlQuery, _, err := selectStmt.ToSQL()
	if err != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

// BuildInsertQuery renders one multi-row INSERT for events.
func (s *Store) BuildInsertQuery(events eventstore.StorableEvents) (string, error) {
	rows := make([][]any, 0, len(events))
	for _, event := range events {
		rows = append(rows, []any{
			event.EventType,
			s.dialect.Timestamp(event.OccurredAt),
			string(event.PayloadJSON),
			string(event.MetadataJSON),
		})
	}

	insertStmt := goqu.Dialect(s.dialect.Name).
		Insert(s.tableName).
		Cols(colEventType, colOccurredAt, colPayload, colMetadata).
		Vals(rows...)

	sqlQuery, _, err := insertStmt.ToSQL()
	if err != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}

// whereExpression returns nil for a filter that matches every event.
func (s *Store) whereExpression(filter eventstore.Filter) (exp.Expression, error) {
	conditions := make([]exp.Expression, 0)

	itemExpressions := make([]exp.Expression, 0, len(filter.Items()))
	for _, item := range filter.Items() {
		itemExpression, err := s.itemExpression(item)
		if err != nil {
			return nil, err
		}

		itemExpressions = append(itemExpressions, itemExpression)
	}

	if len(itemExpressions) > 0 {
		conditions = append(conditions, goqu.Or(itemExpressions...))
	}

	if from := filter.OccurredFrom(); !from.IsZero() {
		conditions = append(conditions, goqu.C(colOccurredAt).Gte(s.dialect.Timestamp(from)))
	}

	if until := filter.OccurredUntil(); !until.IsZero() {
		conditions = append(conditions, goqu.C(colOccurredAt).Lte(s.dialect.Timestamp(until)))
	}

	if seq := filter.SequenceNumberHigherThan(); seq > 0 {
		conditions = append(conditions, goqu.C(colSequenceNumber).Gt(seq))
	}

	if len(conditions) == 0 {
		return nil, nil
	}

	return goqu.And(conditions...), nil
}

func (s *Store) itemExpression(item eventstore.FilterItem) (exp.Expression, error) {
	parts := make([]exp.Expression, 0, 2)

	if len(item.EventTypes()) > 0 {
		parts = append(parts, goqu.C(colEventType).In(item.EventTypes()))
	}

	if len(item.Predicates()) > 0 {
		predicateExpressions := make([]exp.Expression, 0, len(item.Predicates()))
		for _, predicate := range item.Predicates() {
			expression, err := s.dialect.Predicate(predicate)
			if err != nil {
				return nil, err
			}

			predicateExpressions = append(predicateExpressions, expression)
		}

		if item.AllPredicatesMustMatch() {
			parts = append(parts, goqu.And(predicateExpressions...))
		} else {
			parts = append(parts, goqu.Or(predicateExpressions...))
		}
	}

	return goqu.And(parts...), nil
}
