package sqlstore

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending-engine/eventstore"
	"github.com/AntonStoeckl/library-lending-engine/eventstore/internal/adapters"
	"github.com/AntonStoeckl/library-lending-engine/testutil/spies"
)

type fakeRow struct {
	sequenceNumber int64
	eventType      string
	occurredAt     time.Time
	payload        string
}

type fakeDB struct {
	rows     []fakeRow
	err      error
	closeErr error
	executed []string
}

func (db *fakeDB) Exec(_ context.Context, statement string) error {
	db.executed = append(db.executed, statement)
	return db.err
}

func (db *fakeDB) Each(_ context.Context, query string, onRow func(scan adapters.ScanFunc) error) error {
	db.executed = append(db.executed, query)
	if db.err != nil {
		return db.err
	}

	for _, row := range db.rows {
		err := onRow(func(dest ...any) error {
			*dest[0].(*int64) = row.sequenceNumber
			*dest[1].(*string) = row.eventType
			*dest[2].(*time.Time) = row.occurredAt
			*dest[3].(*[]byte) = []byte(row.payload)
			*dest[4].(*[]byte) = []byte(`{}`)

			return nil
		})
		if err != nil {
			return err
		}
	}

	if db.closeErr != nil {
		return errors.Join(adapters.ErrClosingRowsFailed, db.closeErr)
	}

	return nil
}

func newStore(t *testing.T, db adapters.Conn, dialect Dialect, options ...Option) *Store {
	t.Helper()

	store, err := New(db, dialect, options...)
	require.NoError(t, err)

	return store
}

//nolint:funlen
func Test_BuildSelectQuery(t *testing.T) {
	from := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		dialect     Dialect
		filter      eventstore.Filter
		contains    []string
		notContains []string
	}{
		{
			name:        "postgres_any_event",
			dialect:     Postgres,
			filter:      eventstore.BuildEventFilter().MatchingAnyEvent(),
			contains:    []string{`FROM "library_events"`, `ORDER BY "sequence_number" ASC`},
			notContains: []string{"WHERE", "LIMIT"},
		},
		{
			name:    "postgres_types_and_predicates",
			dialect: Postgres,
			filter: eventstore.BuildEventFilter().
				Matching().
				AnyEventTypeOf("BookCopyLentToUser", "BookCopyReturnedByUser").
				AndAnyPredicateOf(eventstore.P("ISBN", "B1")).
				Finalize(),
			contains: []string{
				`"event_type" IN ('BookCopyLentToUser', 'BookCopyReturnedByUser')`,
				`payload @> '{"ISBN":"B1"}'::jsonb`,
			},
		},
		{
			name:    "postgres_predicate_values_are_escaped",
			dialect: Postgres,
			filter: eventstore.BuildEventFilter().
				Matching().
				AnyPredicateOf(eventstore.P("Title", "O'Reilly")).
				Finalize(),
			contains: []string{`O''Reilly`},
		},
		{
			name:    "postgres_latest_with_sequence_bound",
			dialect: Postgres,
			filter: eventstore.BuildEventFilter().
				WithSequenceNumberHigherThan(7).
				Finalize().
				Latest(5),
			contains: []string{`"sequence_number" > 7`, `ORDER BY "sequence_number" DESC`, `LIMIT 5`},
		},
		{
			name:    "sqlite_predicates_and_time_bound",
			dialect: SQLite,
			filter: eventstore.BuildEventFilter().
				Matching().
				AllPredicatesOf(eventstore.P("ISBN", "B1"), eventstore.P("UserID", "U1")).
				OccurredFrom(from).
				Finalize(),
			contains: []string{
				`json_extract(payload, '$."ISBN"') = 'B1'`,
				`json_extract(payload, '$."UserID"') = 'U1'`,
				`'2025-06-01 12:00:00.000000000'`,
				" AND ",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// arrange
			store := newStore(t, &fakeDB{}, tt.dialect)

			// act
			sqlQuery, err := store.BuildSelectQuery(tt.filter)

			// assert
			require.NoError(t, err)
			for _, fragment := range tt.contains {
				assert.Contains(t, sqlQuery, fragment)
			}
			for _, fragment := range tt.notContains {
				assert.NotContains(t, sqlQuery, fragment)
			}
		})
	}
}

func Test_BuildInsertQuery_OneStatementForAllEvents(t *testing.T) {
	// arrange
	store := newStore(t, &fakeDB{}, Postgres, WithTableName("journal"))
	first, err := eventstore.BuildStorableEventWithEmptyMetadata("BookCopyLentToUser", time.Now(), []byte(`{"ISBN":"B1"}`))
	require.NoError(t, err)
	second, err := eventstore.BuildStorableEventWithEmptyMetadata("BookCopyReturnedByUser", time.Now(), []byte(`{"ISBN":"B1"}`))
	require.NoError(t, err)

	// act
	sqlQuery, err := store.BuildInsertQuery(eventstore.StorableEvents{first, second})

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `INSERT INTO "journal"`)
	assert.Contains(t, sqlQuery, `'BookCopyLentToUser'`)
	assert.Contains(t, sqlQuery, `'BookCopyReturnedByUser'`)
}

func Test_WithTableName_Validation(t *testing.T) {
	_, emptyErr := New(&fakeDB{}, SQLite, WithTableName(""))
	_, invalidErr := New(&fakeDB{}, SQLite, WithTableName("events; DROP TABLE users"))

	assert.ErrorIs(t, emptyErr, eventstore.ErrEmptyTableNameSupplied)
	assert.ErrorIs(t, invalidErr, ErrInvalidTableName)
}

func Test_Query_LatestIsReturnedAscending(t *testing.T) {
	// arrange
	db := &fakeDB{rows: []fakeRow{
		{sequenceNumber: 9, eventType: "UserRemoved", occurredAt: time.Now(), payload: `{"UserID":"U1"}`},
		{sequenceNumber: 8, eventType: "UserRegistered", occurredAt: time.Now(), payload: `{"UserID":"U1"}`},
	}}
	store := newStore(t, db, SQLite)

	// act
	events, maxSeq, err := store.Query(context.Background(), eventstore.BuildEventFilter().MatchingAnyEvent().Latest(2))

	// assert
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint(8), events[0].SequenceNumber)
	assert.Equal(t, uint(9), events[1].SequenceNumber)
	assert.Equal(t, uint(9), maxSeq)
}

func Test_Query_DatabaseFailureIsObserved(t *testing.T) {
	// arrange
	logHandler := spies.NewLogHandlerSpy(false)
	metrics := spies.NewMetricsCollectorSpy(true)
	tracing := spies.NewTracingCollectorSpy(true)
	dbErr := errors.New("connection refused")
	store := newStore(t, &fakeDB{err: dbErr}, Postgres,
		WithLogger(slog.New(logHandler)),
		WithMetrics(metrics),
		WithTracing(tracing),
	)

	// act
	_, _, err := store.Query(context.Background(), eventstore.BuildEventFilter().MatchingAnyEvent())

	// assert
	assert.ErrorIs(t, err, eventstore.ErrQueryingEventsFailed)
	assert.ErrorIs(t, err, dbErr)
	assert.True(t, metrics.HasCounterRecordForMetric("eventstore_database_errors_total").
		WithErrorType("database_query").WithLabel("engine", "postgres").Assert())
	assert.True(t, tracing.HasSpanRecordForName("eventstore.query").WithStatus("error").Assert())
	assert.True(t, logHandler.HasDebugLogWithMessage("executed sql for: query").WithDurationMS().Assert())
	assert.True(t, logHandler.HasErrorLogWithMessage("eventstore operation: query failed").Assert())
}

func Test_Query_RowsThatCannotBeClosedOnlyWarn(t *testing.T) {
	// arrange
	logHandler := spies.NewLogHandlerSpy(false)
	db := &fakeDB{
		rows:     []fakeRow{{sequenceNumber: 1, eventType: "UserRegistered", occurredAt: time.Now(), payload: `{"UserID":"U1"}`}},
		closeErr: errors.New("bad connection"),
	}
	store := newStore(t, db, Postgres, WithLogger(slog.New(logHandler)))

	// act
	events, _, err := store.Query(context.Background(), eventstore.BuildEventFilter().MatchingAnyEvent())

	// assert
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.True(t, logHandler.HasWarnLogWithMessage("failed to close database rows").Assert())
}

func Test_Query_InvalidRowIsReportedAsInvalidData(t *testing.T) {
	// arrange
	metrics := spies.NewMetricsCollectorSpy(true)
	db := &fakeDB{rows: []fakeRow{{sequenceNumber: 1, eventType: "UserRegistered", occurredAt: time.Now(), payload: `not json`}}}
	store := newStore(t, db, SQLite, WithMetrics(metrics))

	// act
	_, _, err := store.Query(context.Background(), eventstore.BuildEventFilter().MatchingAnyEvent())

	// assert
	assert.ErrorIs(t, err, eventstore.ErrQueryingEventsFailed)
	assert.True(t, metrics.HasCounterRecordForMetric("eventstore_database_errors_total").
		WithErrorType("invalid_data").Assert())
}

func Test_Append_And_CreateSchema_Execute(t *testing.T) {
	// arrange
	db := &fakeDB{}
	metrics := spies.NewMetricsCollectorSpy(true)
	store := newStore(t, db, SQLite, WithMetrics(metrics))
	event, err := eventstore.BuildStorableEventWithEmptyMetadata("UserRegistered", time.Now(), []byte(`{"UserID":"U1"}`))
	require.NoError(t, err)

	// act
	require.NoError(t, store.CreateSchema(context.Background()))
	require.NoError(t, store.Append(context.Background(), event))

	// assert
	require.Len(t, db.executed, len(SQLite.Schema(DefaultTableName))+1)
	assert.Contains(t, db.executed[0], "CREATE TABLE IF NOT EXISTS library_events")
	assert.Contains(t, db.executed[len(db.executed)-1], "INSERT INTO `library_events`")
	assert.True(t, metrics.HasValueRecordForMetric("eventstore_events_appended_total").WithLabel("engine", "sqlite").Assert())
}
