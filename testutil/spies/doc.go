// Package spies provides test doubles that capture log records, metrics calls and tracing spans
// emitted by the library facade and the journal engines.
//
// All spies are safe for concurrent use; the simulation and the concurrency tests log from many goroutines.
package spies
