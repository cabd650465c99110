// Package memengine is the in-memory journal. It is the default engine of the library and
// the reference for the filter semantics the SQL engines implement: event types are ORed,
// predicates compare top-level string fields of the JSON payload, and the time and sequence
// bounds are inclusive and exclusive respectively.
package memengine
