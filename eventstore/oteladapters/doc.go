// Package oteladapters backs the dependency-free observability interfaces of eventstore with
// OpenTelemetry. The library facade and the journal engines accept them unchanged.
package oteladapters
