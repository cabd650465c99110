package memengine

import (
	"context"
	"errors"
	"slices"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-lending-engine/eventstore"
	"github.com/AntonStoeckl/library-lending-engine/eventstore/internal/observing"
)

const engineName = "memory"

type record struct {
	event  eventstore.StorableEvent
	fields map[string]string
}

// EventStore keeps the journal in a slice guarded by a RWMutex.
type EventStore struct {
	mu        sync.RWMutex
	records   []record
	observers observing.Observers
}

// Option defines a functional option for configuring EventStore.
type Option func(*EventStore) error

// WithLogger sets the logger. Debug is unused, Info gets one line per operation, Error gets failures.
func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) error {
		es.observers.Logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger which takes precedence over WithLogger.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(es *EventStore) error {
		es.observers.ContextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector eventstore.MetricsCollector) Option {
	return func(es *EventStore) error {
		es.observers.Metrics = collector
		return nil
	}
}

// WithTracing sets the tracing collector.
func WithTracing(collector eventstore.TracingCollector) Option {
	return func(es *EventStore) error {
		es.observers.Tracing = collector
		return nil
	}
}

// NewEventStore creates an empty in-memory journal.
func NewEventStore(options ...Option) (*EventStore, error) {
	es := &EventStore{observers: observing.Observers{Engine: engineName}}

	for _, option := range options {
		if err := option(es); err != nil {
			return nil, err
		}
	}

	return es, nil
}

// Append stores the events in order and numbers them starting after the current maximum.
// Nothing is stored if any event payload is not a JSON object.
func (es *EventStore) Append(ctx context.Context, event eventstore.StorableEvent, additionalEvents ...eventstore.StorableEvent) error {
	allEvents := append(eventstore.StorableEvents{event}, additionalEvents...)

	observation, ctx := es.observers.StartAppend(ctx, allEvents)

	if err := ctx.Err(); err != nil {
		return observation.Failed(observing.ErrorTypeCanceled, errors.Join(eventstore.ErrAppendingEventFailed, err))
	}

	records := make([]record, 0, len(allEvents))
	for _, e := range allEvents {
		fields, err := topLevelStringFields(e.PayloadJSON)
		if err != nil {
			return observation.Failed(observing.ErrorTypeInvalidData, errors.Join(eventstore.ErrAppendingEventFailed, eventstore.ErrInvalidPayloadJSON, err))
		}

		e.PayloadJSON = slices.Clone(e.PayloadJSON)
		e.MetadataJSON = slices.Clone(e.MetadataJSON)
		records = append(records, record{event: e, fields: fields})
	}

	es.mu.Lock()
	next := eventstore.MaxSequenceNumberUint(len(es.records))
	for i := range records {
		next++
		records[i].event.SequenceNumber = next
	}
	es.records = append(es.records, records...)
	es.mu.Unlock()

	observation.AppendSucceeded(len(records))

	return nil
}

// Query returns the matching events in ascending sequence order.
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	observation, ctx := es.observers.StartQuery(ctx, filter)

	if err := ctx.Err(); err != nil {
		return nil, 0, observation.Failed(observing.ErrorTypeCanceled, errors.Join(eventstore.ErrQueryingEventsFailed, err))
	}

	es.mu.RLock()
	eventStream := make(eventstore.StorableEvents, 0)
	for _, r := range es.records {
		if matches(filter, r) {
			eventStream = append(eventStream, r.event)
		}
	}
	es.mu.RUnlock()

	if limit := filter.LatestLimit(); limit > 0 && len(eventStream) > limit {
		eventStream = eventStream[len(eventStream)-limit:]
	}

	maxSequenceNumber := eventstore.MaxSequenceNumberUint(0)
	if len(eventStream) > 0 {
		maxSequenceNumber = eventStream[len(eventStream)-1].SequenceNumber
	}

	observation.QuerySucceeded(eventStream, maxSequenceNumber)

	return eventStream, maxSequenceNumber, nil
}

// Len returns the number of stored events.
func (es *EventStore) Len() int {
	es.mu.RLock()
	defer es.mu.RUnlock()

	return len(es.records)
}

func matches(filter eventstore.Filter, r record) bool {
	if r.event.SequenceNumber <= filter.SequenceNumberHigherThan() {
		return false
	}

	if from := filter.OccurredFrom(); !from.IsZero() && r.event.OccurredAt.Before(from) {
		return false
	}

	if until := filter.OccurredUntil(); !until.IsZero() && r.event.OccurredAt.After(until) {
		return false
	}

	if len(filter.Items()) == 0 {
		return true
	}

	for _, item := range filter.Items() {
		if matchesItem(item, r) {
			return true
		}
	}

	return false
}

func matchesItem(item eventstore.FilterItem, r record) bool {
	if len(item.EventTypes()) > 0 && !slices.Contains(item.EventTypes(), r.event.EventType) {
		return false
	}

	if len(item.Predicates()) == 0 {
		return true
	}

	holds := func(p eventstore.FilterPredicate) bool {
		val, found := r.fields[p.Key()]
		return found && val == p.Val()
	}

	if item.AllPredicatesMustMatch() {
		for _, p := range item.Predicates() {
			if !holds(p) {
				return false
			}
		}

		return true
	}

	return slices.ContainsFunc(item.Predicates(), holds)
}

func topLevelStringFields(payloadJSON []byte) (map[string]string, error) {
	var payload map[string]any
	if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &payload); err != nil {
		return nil, err
	}

	fields := make(map[string]string, len(payload))
	for key, val := range payload {
		if s, ok := val.(string); ok {
			fields[key] = s
		}
	}

	return fields, nil
}
