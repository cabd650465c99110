package shell

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-lending-engine/eventstore"
)

const (
	defaultMaxAttempts  = 4
	defaultBaseDelay    = 10 * time.Millisecond
	defaultJitterFactor = 0.3
)

var (
	// ErrNilMetricsCollector is returned when a nil metrics collector is provided to WithMetrics.
	ErrNilMetricsCollector = errors.New("metrics collector must not be nil")

	// ErrEmptyOperation is returned when an empty operation is provided to WithMetrics.
	ErrEmptyOperation = errors.New("operation must not be empty")

	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned when the base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidJitterFactor is returned when the jitter factor is not between 0.0 and 1.0.
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

// RetryableFunc represents a function that can be retried.
type RetryableFunc func(ctx context.Context) error

// RetryMetadata describes how a retried call went.
type RetryMetadata struct {
	Attempts      int
	TotalDelay    time.Duration
	LastErrorType string
}

type retryConfig struct {
	maxAttempts      int
	baseDelay        time.Duration
	jitterFactor     float64
	metricsCollector MetricsCollector
	operation        string
}

// RetryWithExponentialBackoff runs fn until it succeeds, fails permanently or maxAttempts is reached.
//
// Retry schedule (default): 0 ms, 10 ms, 20 ms, 40 ms, each with up to 30% jitter.
// Only failed journal reads and writes are retried. Context errors and invalid payloads fail fast.
func RetryWithExponentialBackoff(ctx context.Context, fn RetryableFunc, options ...RetryOption) (RetryMetadata, error) {
	config := &retryConfig{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return RetryMetadata{}, err
		}
	}

	meta := RetryMetadata{LastErrorType: ErrorTypeNone}

	var lastErr error

	for attempt := range config.maxAttempts {
		if attempt > 0 {
			delay := config.baseDelay * time.Duration(1<<(attempt-1))
			jitter := rand.Float64() * float64(delay) * config.jitterFactor //nolint:gosec // jitter needs no crypto rand
			backoffDelay := delay + time.Duration(jitter)

			recordRetryDelay(ctx, config, attempt, backoffDelay)

			select {
			case <-time.After(backoffDelay):
				meta.TotalDelay += backoffDelay
			case <-ctx.Done():
				meta.LastErrorType = ErrorTypeOf(ctx.Err())
				return meta, ctx.Err()
			}
		}

		meta.Attempts++

		lastErr = fn(ctx)
		meta.LastErrorType = ErrorTypeOf(lastErr)

		if lastErr == nil {
			return meta, nil
		}

		if !IsRetryable(lastErr) {
			return meta, lastErr
		}

		if attempt < config.maxAttempts-1 {
			recordRetryAttempt(ctx, config, attempt+1, lastErr)
		}
	}

	recordMaxRetriesReached(ctx, config, lastErr)

	return meta, lastErr
}

// IsRetryable reports whether a journal error may go away on its own.
// Timeouts are not retried: retrying under overload only adds load.
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, eventstore.ErrInvalidPayloadJSON), errors.Is(err, eventstore.ErrInvalidMetadataJSON):
		return false
	case errors.Is(err, eventstore.ErrAppendingEventFailed), errors.Is(err, eventstore.ErrQueryingEventsFailed):
		return true
	default:
		return false
	}
}

// ErrorTypeOf classifies err for metric labels.
func ErrorTypeOf(err error) string {
	switch {
	case err == nil:
		return ErrorTypeNone
	case errors.Is(err, context.Canceled):
		return ErrorTypeContextCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeDeadlineExceeded
	case errors.Is(err, eventstore.ErrInvalidPayloadJSON), errors.Is(err, eventstore.ErrInvalidMetadataJSON):
		return ErrorTypeInvalidData
	case errors.Is(err, eventstore.ErrAppendingEventFailed), errors.Is(err, eventstore.ErrQueryingEventsFailed):
		return ErrorTypeJournal
	default:
		return ErrorTypeOther
	}
}

func recordRetryDelay(ctx context.Context, config *retryConfig, attempt int, backoffDelay time.Duration) {
	if config.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		LabelOperation:     config.operation,
		LabelAttemptNumber: strconv.Itoa(attempt),
	}

	if contextual, ok := config.metricsCollector.(ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, JournalRetryDelayMetric, backoffDelay, labels)
		return
	}

	config.metricsCollector.RecordDuration(JournalRetryDelayMetric, backoffDelay, labels)
}

func recordRetryAttempt(ctx context.Context, config *retryConfig, attemptNumber int, lastErr error) {
	if config.metricsCollector == nil {
		return
	}

	incrementCounter(ctx, config.metricsCollector, JournalRetriesMetric, map[string]string{
		LabelOperation:     config.operation,
		LabelAttemptNumber: strconv.Itoa(attemptNumber),
		LabelErrorType:     ErrorTypeOf(lastErr),
	})
}

func recordMaxRetriesReached(ctx context.Context, config *retryConfig, lastErr error) {
	if config.metricsCollector == nil {
		return
	}

	incrementCounter(ctx, config.metricsCollector, JournalMaxRetriesReachedMetric, map[string]string{
		LabelOperation:      config.operation,
		LabelFinalErrorType: ErrorTypeOf(lastErr),
	})
}

// RetryOption configures retry behavior using the functional options pattern.
type RetryOption func(*retryConfig) error

// WithMaxAttempts sets the maximum number of attempts, the first one included.
func WithMaxAttempts(attempts int) RetryOption {
	return func(config *retryConfig) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		config.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the base delay for exponential backoff.
// Actual delays: baseDelay, baseDelay*2, baseDelay*4, etc.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		config.baseDelay = delay

		return nil
	}
}

// WithJitterFactor sets the jitter as a fraction of the backoff delay, from 0.0 to 1.0.
func WithJitterFactor(factor float64) RetryOption {
	return func(config *retryConfig) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		config.jitterFactor = factor

		return nil
	}
}

// WithMetrics sets the metrics collector for retry instrumentation, labeled with operation.
func WithMetrics(collector MetricsCollector, operation string) RetryOption {
	return func(config *retryConfig) error {
		if collector == nil {
			return ErrNilMetricsCollector
		}

		if operation == "" {
			return ErrEmptyOperation
		}

		config.metricsCollector = collector
		config.operation = operation

		return nil
	}
}
