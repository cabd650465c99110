package memengine_test

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending-engine/eventstore"
	"github.com/AntonStoeckl/library-lending-engine/eventstore/memengine"
	"github.com/AntonStoeckl/library-lending-engine/testutil/spies"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func buildEvent(t *testing.T, eventType string, minute int, payload string) eventstore.StorableEvent {
	t.Helper()

	event, err := eventstore.BuildStorableEventWithEmptyMetadata(eventType, baseTime.Add(time.Duration(minute)*time.Minute), []byte(payload))
	require.NoError(t, err)

	return event
}

func seededStore(t *testing.T) *memengine.EventStore {
	t.Helper()

	es, err := memengine.NewEventStore()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, es.Append(ctx, buildEvent(t, "BookAddedToCatalog", 0, `{"ISBN":"B1","Title":"Go"}`)))
	require.NoError(t, es.Append(ctx, buildEvent(t, "UserRegistered", 1, `{"UserID":"U1"}`)))
	require.NoError(t, es.Append(ctx,
		buildEvent(t, "BookCopyLentToUser", 2, `{"ISBN":"B1","UserID":"U1"}`),
		buildEvent(t, "BookCopyReturnedByUser", 3, `{"ISBN":"B1","UserID":"U1"}`),
	))
	require.NoError(t, es.Append(ctx, buildEvent(t, "BookCopyLentToUser", 4, `{"ISBN":"B2","UserID":"U1","Copies":2}`)))

	return es
}

func sequenceNumbers(events eventstore.StorableEvents) []uint {
	numbers := make([]uint, 0, len(events))
	for _, e := range events {
		numbers = append(numbers, e.SequenceNumber)
	}

	return numbers
}

func Test_Append_AssignsAscendingSequenceNumbers(t *testing.T) {
	// arrange
	es := seededStore(t)

	// act
	events, maxSeq, err := es.Query(context.Background(), eventstore.BuildEventFilter().MatchingAnyEvent())

	// assert
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2, 3, 4, 5}, sequenceNumbers(events))
	assert.Equal(t, uint(5), maxSeq)
	assert.Equal(t, 5, es.Len())
}

//nolint:funlen
func Test_Query_FilterSemantics(t *testing.T) {
	es := seededStore(t)

	tests := []struct {
		name     string
		filter   eventstore.Filter
		expected []uint
	}{
		{
			name: "event types are ORed",
			filter: eventstore.BuildEventFilter().
				Matching().
				AnyEventTypeOf("UserRegistered", "BookAddedToCatalog").
				Finalize(),
			expected: []uint{1, 2},
		},
		{
			name: "any predicate",
			filter: eventstore.BuildEventFilter().
				Matching().
				AnyPredicateOf(eventstore.P("ISBN", "B2"), eventstore.P("Title", "Go")).
				Finalize(),
			expected: []uint{1, 5},
		},
		{
			name: "all predicates",
			filter: eventstore.BuildEventFilter().
				Matching().
				AllPredicatesOf(eventstore.P("ISBN", "B1"), eventstore.P("UserID", "U1")).
				Finalize(),
			expected: []uint{3, 4},
		},
		{
			name: "event type and predicate",
			filter: eventstore.BuildEventFilter().
				Matching().
				AnyEventTypeOf("BookCopyLentToUser").
				AndAnyPredicateOf(eventstore.P("ISBN", "B1")).
				Finalize(),
			expected: []uint{3},
		},
		{
			name: "items are ORed",
			filter: eventstore.BuildEventFilter().
				Matching().
				AnyEventTypeOf("UserRegistered").
				OrMatching().
				AnyPredicateOf(eventstore.P("ISBN", "B2")).
				Finalize(),
			expected: []uint{2, 5},
		},
		{
			name: "non-string fields never match",
			filter: eventstore.BuildEventFilter().
				Matching().
				AnyPredicateOf(eventstore.P("Copies", "2")).
				Finalize(),
			expected: []uint{},
		},
		{
			name: "time range is inclusive",
			filter: eventstore.BuildEventFilter().
				OccurredFrom(baseTime.Add(1 * time.Minute)).
				AndOccurredUntil(baseTime.Add(3 * time.Minute)).
				Finalize(),
			expected: []uint{2, 3, 4},
		},
		{
			name: "sequence bound is exclusive",
			filter: eventstore.BuildEventFilter().
				Matching().
				AnyPredicateOf(eventstore.P("UserID", "U1")).
				WithSequenceNumberHigherThan(3).
				Finalize(),
			expected: []uint{4, 5},
		},
		{
			name:     "latest keeps the newest in ascending order",
			filter:   eventstore.BuildEventFilter().MatchingAnyEvent().Latest(2),
			expected: []uint{4, 5},
		},
		{
			name:     "latest above the match count keeps all",
			filter:   eventstore.BuildEventFilter().OccurredUntil(baseTime).Finalize().Latest(10),
			expected: []uint{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// act
			events, maxSeq, err := es.Query(context.Background(), tt.filter)

			// assert
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sequenceNumbers(events))

			if len(tt.expected) == 0 {
				assert.Zero(t, maxSeq)
				return
			}

			assert.Equal(t, tt.expected[len(tt.expected)-1], maxSeq)
		})
	}
}

func Test_Append_RejectsNonObjectPayloadAtomically(t *testing.T) {
	// arrange
	es, err := memengine.NewEventStore()
	require.NoError(t, err)

	valid := buildEvent(t, "UserRegistered", 0, `{"UserID":"U1"}`)
	array := buildEvent(t, "UserRegistered", 0, `["U2"]`)

	// act
	err = es.Append(context.Background(), valid, array)

	// assert
	assert.ErrorIs(t, err, eventstore.ErrAppendingEventFailed)
	assert.ErrorIs(t, err, eventstore.ErrInvalidPayloadJSON)
	assert.Zero(t, es.Len())
}

func Test_Append_CopiesThePayload(t *testing.T) {
	// arrange
	es, err := memengine.NewEventStore()
	require.NoError(t, err)

	event := buildEvent(t, "UserRegistered", 0, `{"UserID":"U1"}`)

	// act
	require.NoError(t, es.Append(context.Background(), event))
	event.PayloadJSON[2] = 'X'

	// assert
	events, _, err := es.Query(context.Background(), eventstore.BuildEventFilter().MatchingAnyEvent())
	require.NoError(t, err)
	assert.JSONEq(t, `{"UserID":"U1"}`, string(events[0].PayloadJSON))
}

func Test_CanceledContext(t *testing.T) {
	// arrange
	es := seededStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// act
	appendErr := es.Append(ctx, buildEvent(t, "UserRegistered", 0, `{}`))
	_, _, queryErr := es.Query(ctx, eventstore.BuildEventFilter().MatchingAnyEvent())

	// assert
	assert.ErrorIs(t, appendErr, context.Canceled)
	assert.ErrorIs(t, appendErr, eventstore.ErrAppendingEventFailed)
	assert.ErrorIs(t, queryErr, eventstore.ErrQueryingEventsFailed)
	assert.Equal(t, 5, es.Len())
}

func Test_ConcurrentAppends_GetDistinctSequenceNumbers(t *testing.T) {
	// arrange
	es, err := memengine.NewEventStore()
	require.NoError(t, err)

	var wg sync.WaitGroup

	// act
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			event := buildEvent(t, "UserRegistered", i, fmt.Sprintf(`{"UserID":"U%d"}`, i))
			assert.NoError(t, es.Append(context.Background(), event))
		}()
	}
	wg.Wait()

	// assert
	events, maxSeq, err := es.Query(context.Background(), eventstore.BuildEventFilter().MatchingAnyEvent())
	require.NoError(t, err)
	assert.Len(t, events, 50)
	assert.Equal(t, uint(50), maxSeq)
	for i, e := range events {
		assert.Equal(t, uint(i+1), e.SequenceNumber)
	}
}

func Test_Observability(t *testing.T) {
	// arrange
	logHandler := spies.NewLogHandlerSpy(false)
	metrics := spies.NewMetricsCollectorSpy(true)
	tracing := spies.NewTracingCollectorSpy(true)

	es, err := memengine.NewEventStore(
		memengine.WithLogger(slog.New(logHandler)),
		memengine.WithMetrics(metrics),
		memengine.WithTracing(tracing),
	)
	require.NoError(t, err)

	// act
	require.NoError(t, es.Append(context.Background(), buildEvent(t, "UserRegistered", 0, `{"UserID":"U1"}`)))
	_, _, err = es.Query(context.Background(), eventstore.BuildEventFilter().MatchingAnyEvent())
	require.NoError(t, err)
	_ = es.Append(context.Background(), buildEvent(t, "UserRegistered", 0, `[]`))

	// assert
	assert.True(t, metrics.HasDurationRecordForMetric("eventstore_append_duration_seconds").WithStatus("success").Assert())
	assert.True(t, metrics.HasDurationRecordForMetric("eventstore_query_duration_seconds").WithLabel("engine", "memory").Assert())
	assert.True(t, metrics.HasValueRecordForMetric("eventstore_events_queried_total").WithOperation("query").Assert())
	assert.True(t, metrics.HasCounterRecordForMetric("eventstore_database_errors_total").WithErrorType("invalid_data").Assert())

	assert.True(t, tracing.HasSpanRecordForName("eventstore.append").WithStatus("success").WithStartAttribute("event_type", "UserRegistered").Assert())
	assert.True(t, tracing.HasSpanRecordForName("eventstore.query").WithEndAttribute("event_count", "1").Assert())
	assert.Equal(t, 2, tracing.CountSpanRecordsForName("eventstore.append"))

	assert.True(t, logHandler.HasInfoLogWithMessage("eventstore operation: events appended").WithEventCount().Assert())
	assert.True(t, logHandler.HasInfoLogWithMessage("eventstore operation: query completed").WithDurationMS().Assert())
	assert.True(t, logHandler.HasErrorLogWithMessage("eventstore operation: append failed").WithAttr("error_type", "invalid_data").Assert())
}
