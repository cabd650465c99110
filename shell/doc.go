// Package shell connects the library's domain events to the operation journal.
//
// It maps core.DomainEvent values to eventstore.StorableEvent and back, attaches
// EventMetadata (message, causation and correlation ids) and retries journal writes that
// failed for transient reasons with exponential backoff.
package shell
