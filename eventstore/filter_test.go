package eventstore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-lending-engine/eventstore"
)

//nolint:funlen
func Test_FilterBuilder_ValidCombinations(t *testing.T) {
	timeFrom := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	timeUntil := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		name     string
		build    func() eventstore.Filter
		validate func(t *testing.T, filter eventstore.Filter)
	}{
		{
			name: "matching_any_event_creates_empty_filter",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().MatchingAnyEvent()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Empty(t, f.Items())
				assert.True(t, f.OccurredFrom().IsZero())
				assert.True(t, f.OccurredUntil().IsZero())
				assert.Zero(t, f.SequenceNumberHigherThan())
				assert.Zero(t, f.LatestLimit())
			},
		},
		{
			name: "sequence_only_filter",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					WithSequenceNumberHigherThan(12345).
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Equal(t, uint(12345), f.SequenceNumberHigherThan())
				assert.True(t, f.OccurredFrom().IsZero())
				assert.Empty(t, f.Items())
			},
		},
		{
			name: "occurred_from_and_until_filter",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					OccurredFrom(timeFrom).
					AndOccurredUntil(timeUntil).
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Equal(t, timeFrom, f.OccurredFrom())
				assert.Equal(t, timeUntil, f.OccurredUntil())
				assert.Zero(t, f.SequenceNumberHigherThan())
				assert.Empty(t, f.Items())
			},
		},
		{
			name: "occurred_until_only_filter",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					OccurredUntil(timeUntil).
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.True(t, f.OccurredFrom().IsZero())
				assert.Equal(t, timeUntil, f.OccurredUntil())
			},
		},
		{
			name: "multiple_event_types_filter",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					Matching().
					AnyEventTypeOf("BookCopyReturnedByUser", "BookCopyLentToUser").
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Len(t, f.Items(), 1)
				assert.Equal(t, []string{"BookCopyLentToUser", "BookCopyReturnedByUser"}, f.Items()[0].EventTypes())
				assert.Empty(t, f.Items()[0].Predicates())
				assert.False(t, f.Items()[0].AllPredicatesMustMatch())
			},
		},
		{
			name: "all_predicates_filter",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					Matching().
					AllPredicatesOf(
						eventstore.P("UserID", "U001"),
						eventstore.P("ISBN", "978-0-13-468599-1")).
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Len(t, f.Items(), 1)
				assert.Empty(t, f.Items()[0].EventTypes())
				assert.Equal(t, []eventstore.FilterPredicate{
					eventstore.P("ISBN", "978-0-13-468599-1"),
					eventstore.P("UserID", "U001"),
				}, f.Items()[0].Predicates())
				assert.True(t, f.Items()[0].AllPredicatesMustMatch())
			},
		},
		{
			name: "event_types_and_any_predicate_with_time_bound",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					Matching().
					AnyEventTypeOf("BookCopyLentToUser").
					AndAnyPredicateOf(eventstore.P("ISBN", "978-0-13-468599-1")).
					OccurredFrom(timeFrom).
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Len(t, f.Items(), 1)
				assert.Equal(t, []string{"BookCopyLentToUser"}, f.Items()[0].EventTypes())
				assert.Len(t, f.Items()[0].Predicates(), 1)
				assert.Equal(t, timeFrom, f.OccurredFrom())
				assert.True(t, f.OccurredUntil().IsZero())
			},
		},
		{
			name: "predicates_then_event_types_with_sequence_bound",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					Matching().
					AnyPredicateOf(eventstore.P("UserID", "U002")).
					AndAnyEventTypeOf("UserRegistered", "UserRemoved").
					WithSequenceNumberHigherThan(9876).
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Len(t, f.Items(), 1)
				assert.Equal(t, []string{"UserRegistered", "UserRemoved"}, f.Items()[0].EventTypes())
				assert.Equal(t, uint(9876), f.SequenceNumberHigherThan())
			},
		},
		{
			name: "multiple_items_ored",
			build: func() eventstore.Filter {
				return eventstore.BuildEventFilter().
					Matching().
					AnyEventTypeOf("BookAddedToCatalog").
					AndAnyPredicateOf(eventstore.P("ISBN", "978-0-13-468599-1")).
					OrMatching().
					AnyEventTypeOf("UserRegistered").
					AndAllPredicatesOf(eventstore.P("UserID", "U001")).
					Finalize()
			},
			validate: func(t *testing.T, f eventstore.Filter) {
				assert.Len(t, f.Items(), 2)
				assert.Equal(t, []string{"BookAddedToCatalog"}, f.Items()[0].EventTypes())
				assert.False(t, f.Items()[0].AllPredicatesMustMatch())
				assert.Equal(t, []string{"UserRegistered"}, f.Items()[1].EventTypes())
				assert.True(t, f.Items()[1].AllPredicatesMustMatch())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, tt.build())
		})
	}
}

func Test_FilterBuilder_InputSanitization(t *testing.T) {
	t.Run("empty and duplicate event types are removed", func(t *testing.T) {
		// act
		f := eventstore.BuildEventFilter().
			Matching().
			AnyEventTypeOf("UserRemoved", "", "BookAddedToCatalog", "UserRemoved").
			Finalize()

		// assert
		assert.Equal(t, []string{"BookAddedToCatalog", "UserRemoved"}, f.Items()[0].EventTypes())
	})

	t.Run("partial and duplicate predicates are removed", func(t *testing.T) {
		// act
		f := eventstore.BuildEventFilter().
			Matching().
			AnyPredicateOf(
				eventstore.P("UserID", "U002"),
				eventstore.P("", "U001"),
				eventstore.P("ISBN", ""),
				eventstore.P("UserID", "U001"),
				eventstore.P("UserID", "U002")).
			Finalize()

		// assert
		assert.Equal(t, []eventstore.FilterPredicate{
			eventstore.P("UserID", "U001"),
			eventstore.P("UserID", "U002"),
		}, f.Items()[0].Predicates())
	})

	t.Run("an item emptied by sanitization is dropped", func(t *testing.T) {
		// act
		f := eventstore.BuildEventFilter().
			Matching().
			AnyEventTypeOf("").
			Finalize()

		// assert
		assert.Empty(t, f.Items())
	})
}

func Test_FilterBuilder_ChainStepsDoNotShareState(t *testing.T) {
	// arrange
	base := eventstore.BuildEventFilter().
		Matching().
		AnyEventTypeOf("BookAddedToCatalog")

	// act
	withISBN := base.AndAnyPredicateOf(eventstore.P("ISBN", "1")).Finalize()
	withoutPredicates := base.Finalize()

	// assert
	assert.Len(t, withISBN.Items()[0].Predicates(), 1)
	assert.Empty(t, withoutPredicates.Items()[0].Predicates())
}

func Test_Filter_Latest(t *testing.T) {
	// arrange
	f := eventstore.BuildEventFilter().MatchingAnyEvent()

	// act
	limited := f.Latest(10)
	negative := f.Latest(-3)

	// assert
	assert.Equal(t, 10, limited.LatestLimit())
	assert.Zero(t, negative.LatestLimit())
	assert.Zero(t, f.LatestLimit(), "Latest returns a copy")
}
