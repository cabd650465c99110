package shell

import (
	"context"

	"github.com/AntonStoeckl/library-lending-engine/eventstore"
)

const (
	// JournalRetriesMetric counts repeated journal attempts.
	//
	// Labels:
	//   - operation: library operation whose event is journaled (e.g., "borrow")
	//   - attempt_number: which retry (1, 2, ...)
	//   - error_type: category of the error causing the retry
	JournalRetriesMetric = "library_journal_retries_total"

	// JournalRetryDelayMetric tracks backoff delays before each retry.
	JournalRetryDelayMetric = "library_journal_retry_delay_seconds"

	// JournalMaxRetriesReachedMetric counts journal writes that gave up after the last attempt.
	JournalMaxRetriesReachedMetric = "library_journal_max_retries_reached_total"

	LabelOperation      = "operation"
	LabelAttemptNumber  = "attempt_number"
	LabelErrorType      = "error_type"
	LabelFinalErrorType = "final_error_type"

	ErrorTypeNone             = "none"
	ErrorTypeJournal          = "journal"
	ErrorTypeInvalidData      = "invalid_data"
	ErrorTypeContextCanceled  = "context_canceled"
	ErrorTypeDeadlineExceeded = "context_deadline_exceeded"
	ErrorTypeOther            = "other"
)

// MetricsCollector is the metrics interface shared with the journal engines.
type MetricsCollector = eventstore.MetricsCollector

// ContextualMetricsCollector is the context-aware variant of MetricsCollector.
type ContextualMetricsCollector = eventstore.ContextualMetricsCollector

func incrementCounter(ctx context.Context, collector MetricsCollector, name string, labels map[string]string) {
	if contextual, ok := collector.(ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, name, labels)
		return
	}

	collector.IncrementCounter(name, labels)
}
