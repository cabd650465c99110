// Package eventstore defines the operation journal of the lending engine.
//
// Every successful mutation of the library is recorded as one StorableEvent. The package
// holds the engine-agnostic parts: the EventStore interface, the Filter builder, the
// StorableEvent DTO and the dependency-free observability interfaces. The engines live in
// the subpackages memengine, postgresengine and sqliteengine.
//
// Filters select events by type, by top-level payload fields and by either a time range or
// a sequence number bound:
//
//	filter := eventstore.BuildEventFilter().
//		Matching().
//		AnyEventTypeOf(
//			core.BookCopyLentToUserEventType,
//			core.BookCopyReturnedByUserEventType).
//		AndAnyPredicateOf(eventstore.P(core.PayloadKeyUserID, "U001")).
//		OccurredFrom(since).
//		Finalize().
//		Latest(20)
//
//	events, maxSeq, err := store.Query(ctx, filter)
//
// Infrastructure failures are reported as one of the sentinel errors of this package joined
// with the cause, so callers can test them with errors.Is.
package eventstore
