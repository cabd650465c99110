package eventstore

import (
	"cmp"
	"slices"
	"time"
)

type FilterEventTypeString = string
type FilterKeyString = string
type FilterValString = string

/***** Filter *****/

// Filter selects journal events. Items are ORed; an empty item list matches every event.
// The time bounds and the sequence bound narrow the result of the items further.
type Filter struct {
	items                    []FilterItem
	occurredFrom             time.Time
	occurredUntil            time.Time
	sequenceNumberHigherThan MaxSequenceNumberUint
	latest                   int
}

func (f Filter) Items() []FilterItem {
	return f.items
}

// OccurredFrom returns the inclusive lower time bound, zero if unset.
func (f Filter) OccurredFrom() time.Time {
	return f.occurredFrom
}

// OccurredUntil returns the inclusive upper time bound, zero if unset.
func (f Filter) OccurredUntil() time.Time {
	return f.occurredUntil
}

// SequenceNumberHigherThan returns the exclusive lower sequence bound, 0 if unset.
func (f Filter) SequenceNumberHigherThan() MaxSequenceNumberUint {
	return f.sequenceNumberHigherThan
}

// Latest returns a copy of the Filter that keeps only the newest n matching events.
// The result stays in ascending sequence order. n < 1 removes the limit.
func (f Filter) Latest(n int) Filter {
	f.latest = max(n, 0)

	return f
}

// LatestLimit returns the limit set with Latest, 0 if unlimited.
func (f Filter) LatestLimit() int {
	return f.latest
}

/***** FilterItem *****/

type FilterItem struct {
	eventTypes             []FilterEventTypeString
	predicates             []FilterPredicate
	allPredicatesMustMatch bool
}

func (fi FilterItem) EventTypes() []FilterEventTypeString {
	return fi.eventTypes
}

func (fi FilterItem) Predicates() []FilterPredicate {
	return fi.predicates
}

func (fi FilterItem) AllPredicatesMustMatch() bool {
	return fi.allPredicatesMustMatch
}

func (fi FilterItem) isEmpty() bool {
	return len(fi.eventTypes) == 0 && len(fi.predicates) == 0
}

/***** FilterPredicate *****/

// FilterPredicate matches a top-level string field of the event payload.
type FilterPredicate struct {
	key FilterKeyString
	val FilterValString
}

func P(key FilterKeyString, val FilterValString) FilterPredicate {
	return FilterPredicate{key: key, val: val}
}

func (fp FilterPredicate) Key() FilterKeyString {
	return fp.key
}

func (fp FilterPredicate) Val() FilterValString {
	return fp.val
}

/***** FilterBuilder *****/

// FilterBuilder builds an engine-agnostic journal filter. The engines translate it into
// SQL (Postgres, SQLite) or evaluate it directly (memory).
//
// Supported item shapes:
//
//   - (eventType OR eventType...)
//   - (predicate OR predicate...)
//   - (predicate AND predicate...)
//   - ((eventType OR eventType...) AND (predicate OR predicate...))
//   - ((eventType OR eventType...) AND (predicate AND predicate...))
//   - several of the above, ORed via OrMatching
//
// Any shape, including no item at all, can be bounded either by time (OccurredFrom,
// AndOccurredUntil, OccurredUntil) or by sequence number (WithSequenceNumberHigherThan),
// never by both.
type FilterBuilder interface {
	// Matching starts a new FilterItem.
	Matching() EmptyFilterItemBuilder

	// MatchingAnyEvent directly creates an empty Filter.
	MatchingAnyEvent() Filter

	BoundingFilterBuilder
}

// BoundingFilterBuilder adds the time or sequence bound. Each bound ends the item part of the chain.
type BoundingFilterBuilder interface {
	// OccurredFrom keeps events that occurred at or after t.
	OccurredFrom(t time.Time) OccurredFromFilterBuilder

	// OccurredUntil keeps events that occurred at or before t.
	OccurredUntil(t time.Time) FinalFilterBuilder

	// WithSequenceNumberHigherThan keeps events appended after sequenceNumber.
	WithSequenceNumberHigherThan(sequenceNumber MaxSequenceNumberUint) FinalFilterBuilder
}

type OccurredFromFilterBuilder interface {
	// AndOccurredUntil adds the upper time bound.
	AndOccurredUntil(t time.Time) FinalFilterBuilder

	Finalize() Filter
}

type FinalFilterBuilder interface {
	Finalize() Filter
}

type EmptyFilterItemBuilder interface {
	// AnyEventTypeOf adds one or multiple EventTypes to the current FilterItem.
	AnyEventTypeOf(eventType FilterEventTypeString, eventTypes ...FilterEventTypeString) FilterItemBuilderLackingPredicates

	// AnyPredicateOf adds FilterPredicate(s) of which at least one must match.
	AnyPredicateOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterItemBuilderLackingEventTypes

	// AllPredicatesOf adds FilterPredicate(s) which must all match.
	AllPredicatesOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterItemBuilderLackingEventTypes
}

type FilterItemBuilderLackingPredicates interface {
	AndAnyPredicateOf(predicate FilterPredicate, predicates ...FilterPredicate) CompletedFilterItemBuilder
	AndAllPredicatesOf(predicate FilterPredicate, predicates ...FilterPredicate) CompletedFilterItemBuilder
	CompletedFilterItemBuilder
}

type FilterItemBuilderLackingEventTypes interface {
	AndAnyEventTypeOf(eventType FilterEventTypeString, eventTypes ...FilterEventTypeString) CompletedFilterItemBuilder
	CompletedFilterItemBuilder
}

type CompletedFilterItemBuilder interface {
	// OrMatching closes the current FilterItem and starts a new one.
	OrMatching() EmptyFilterItemBuilder

	BoundingFilterBuilder

	// Finalize returns the Filter. Items without event types and predicates are dropped.
	Finalize() Filter
}

// filterBuilder implements all builder interfaces. It is passed by value, so every
// chain step works on its own copy.
type filterBuilder struct {
	filter            Filter
	currentFilterItem FilterItem
}

// BuildEventFilter creates a FilterBuilder which must eventually be finalized with Finalize() or MatchingAnyEvent().
func BuildEventFilter() FilterBuilder {
	return filterBuilder{}
}

func (fb filterBuilder) Matching() EmptyFilterItemBuilder {
	fb.currentFilterItem = FilterItem{}

	return fb
}

// AnyEventTypeOf drops empty EventTypes, then sorts and deduplicates them.
func (fb filterBuilder) AnyEventTypeOf(
	eventType FilterEventTypeString,
	eventTypes ...FilterEventTypeString,
) FilterItemBuilderLackingPredicates {

	fb.currentFilterItem.eventTypes = sanitizeEventTypes(
		append(slices.Clone(fb.currentFilterItem.eventTypes), append([]FilterEventTypeString{eventType}, eventTypes...)...),
	)

	return fb
}

func (fb filterBuilder) AndAnyEventTypeOf(
	eventType FilterEventTypeString,
	eventTypes ...FilterEventTypeString,
) CompletedFilterItemBuilder {

	return fb.AnyEventTypeOf(eventType, eventTypes...)
}

// AnyPredicateOf drops partial predicates (empty key or value), then sorts and deduplicates them.
func (fb filterBuilder) AnyPredicateOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) FilterItemBuilderLackingEventTypes {

	fb.currentFilterItem.predicates = sanitizePredicates(
		append(slices.Clone(fb.currentFilterItem.predicates), append([]FilterPredicate{predicate}, predicates...)...),
	)

	return fb
}

func (fb filterBuilder) AndAnyPredicateOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) CompletedFilterItemBuilder {

	return fb.AnyPredicateOf(predicate, predicates...)
}

// AllPredicatesOf sanitizes like AnyPredicateOf.
func (fb filterBuilder) AllPredicatesOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) FilterItemBuilderLackingEventTypes {

	fb.currentFilterItem.allPredicatesMustMatch = true

	return fb.AnyPredicateOf(predicate, predicates...)
}

func (fb filterBuilder) AndAllPredicatesOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) CompletedFilterItemBuilder {

	return fb.AllPredicatesOf(predicate, predicates...)
}

func (fb filterBuilder) OrMatching() EmptyFilterItemBuilder {
	fb.closeCurrentItem()

	return fb
}

func (fb filterBuilder) OccurredFrom(t time.Time) OccurredFromFilterBuilder {
	fb.filter.occurredFrom = t

	return fb
}

func (fb filterBuilder) AndOccurredUntil(t time.Time) FinalFilterBuilder {
	fb.filter.occurredUntil = t

	return fb
}

func (fb filterBuilder) OccurredUntil(t time.Time) FinalFilterBuilder {
	fb.filter.occurredUntil = t

	return fb
}

func (fb filterBuilder) WithSequenceNumberHigherThan(sequenceNumber MaxSequenceNumberUint) FinalFilterBuilder {
	fb.filter.sequenceNumberHigherThan = sequenceNumber

	return fb
}

func (fb filterBuilder) MatchingAnyEvent() Filter {
	return Filter{}
}

func (fb filterBuilder) Finalize() Filter {
	fb.closeCurrentItem()

	return fb.filter
}

func (fb *filterBuilder) closeCurrentItem() {
	if !fb.currentFilterItem.isEmpty() {
		fb.filter.items = append(slices.Clone(fb.filter.items), fb.currentFilterItem)
	}

	fb.currentFilterItem = FilterItem{}
}

func sanitizeEventTypes(eventTypes []FilterEventTypeString) []FilterEventTypeString {
	eventTypes = slices.DeleteFunc(eventTypes, func(e FilterEventTypeString) bool { return e == "" })
	slices.Sort(eventTypes)

	return slices.Clip(slices.Compact(eventTypes))
}

func sanitizePredicates(predicates []FilterPredicate) []FilterPredicate {
	predicates = slices.DeleteFunc(predicates, func(p FilterPredicate) bool { return p.key == "" || p.val == "" })
	slices.SortFunc(predicates, func(a, b FilterPredicate) int {
		return cmp.Or(cmp.Compare(a.key, b.key), cmp.Compare(a.val, b.val))
	})

	return slices.Clip(slices.Compact(predicates))
}
