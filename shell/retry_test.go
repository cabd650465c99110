package shell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending-engine/eventstore"
	"github.com/AntonStoeckl/library-lending-engine/shell"
	"github.com/AntonStoeckl/library-lending-engine/testutil/spies"
)

var errDatabaseDown = errors.New("connection refused")

func journalFailure() error {
	return errors.Join(eventstore.ErrAppendingEventFailed, errDatabaseDown)
}

func Test_RetryWithExponentialBackoff_SucceedsWithoutRetries(t *testing.T) {
	// arrange
	callCount := 0
	fn := func(context.Context) error {
		callCount++
		return nil
	}

	// act
	meta, err := shell.RetryWithExponentialBackoff(context.Background(), fn)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, shell.RetryMetadata{Attempts: 1, LastErrorType: shell.ErrorTypeNone}, meta)
}

func Test_RetryWithExponentialBackoff_RetriesJournalFailures(t *testing.T) {
	// arrange
	metrics := spies.NewMetricsCollectorSpy(true)
	callCount := 0
	fn := func(context.Context) error {
		callCount++
		if callCount < 3 {
			return journalFailure()
		}

		return nil
	}

	// act
	meta, err := shell.RetryWithExponentialBackoff(
		context.Background(),
		fn,
		shell.WithBaseDelay(time.Millisecond),
		shell.WithMetrics(metrics, "borrow"),
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 3, meta.Attempts)
	assert.Greater(t, meta.TotalDelay, time.Duration(0))
	assert.Equal(t, 2, metrics.CountCounterRecordsForMetric(shell.JournalRetriesMetric))
	assert.Equal(t, 2, metrics.CountDurationRecordsForMetric(shell.JournalRetryDelayMetric))
	assert.True(t, metrics.HasCounterRecordForMetric(shell.JournalRetriesMetric).
		WithOperation("borrow").
		WithErrorType(shell.ErrorTypeJournal).
		WithLabel(shell.LabelAttemptNumber, "2").
		Assert())
	assert.Zero(t, metrics.CountCounterRecordsForMetric(shell.JournalMaxRetriesReachedMetric))
}

func Test_RetryWithExponentialBackoff_GivesUpAfterMaxAttempts(t *testing.T) {
	// arrange
	metrics := spies.NewMetricsCollectorSpy(true)
	callCount := 0
	fn := func(context.Context) error {
		callCount++
		return journalFailure()
	}

	// act
	meta, err := shell.RetryWithExponentialBackoff(
		context.Background(),
		fn,
		shell.WithMaxAttempts(3),
		shell.WithBaseDelay(0),
		shell.WithJitterFactor(0),
		shell.WithMetrics(metrics, "return"),
	)

	// assert
	assert.ErrorIs(t, err, eventstore.ErrAppendingEventFailed)
	assert.ErrorIs(t, err, errDatabaseDown)
	assert.Equal(t, 3, callCount)
	assert.Equal(t, 3, meta.Attempts)
	assert.Equal(t, shell.ErrorTypeJournal, meta.LastErrorType)
	assert.Equal(t, 2, metrics.CountCounterRecordsForMetric(shell.JournalRetriesMetric))
	assert.True(t, metrics.HasCounterRecordForMetric(shell.JournalMaxRetriesReachedMetric).
		WithOperation("return").
		WithLabel(shell.LabelFinalErrorType, shell.ErrorTypeJournal).
		Assert())
}

func Test_RetryWithExponentialBackoff_FailsFast(t *testing.T) {
	tests := []struct {
		name              string
		err               error
		expectedErrorType string
	}{
		{
			name:              "invalid payload",
			err:               errors.Join(eventstore.ErrAppendingEventFailed, eventstore.ErrInvalidPayloadJSON),
			expectedErrorType: shell.ErrorTypeInvalidData,
		},
		{
			name:              "canceled",
			err:               errors.Join(eventstore.ErrAppendingEventFailed, context.Canceled),
			expectedErrorType: shell.ErrorTypeContextCanceled,
		},
		{
			name:              "deadline",
			err:               context.DeadlineExceeded,
			expectedErrorType: shell.ErrorTypeDeadlineExceeded,
		},
		{
			name:              "unrelated",
			err:               errDatabaseDown,
			expectedErrorType: shell.ErrorTypeOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// arrange
			callCount := 0
			fn := func(context.Context) error {
				callCount++
				return tt.err
			}

			// act
			meta, err := shell.RetryWithExponentialBackoff(context.Background(), fn)

			// assert
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, 1, callCount)
			assert.Equal(t, tt.expectedErrorType, meta.LastErrorType)
			assert.False(t, shell.IsRetryable(tt.err))
		})
	}
}

func Test_RetryWithExponentialBackoff_StopsWaitingOnCancel(t *testing.T) {
	// arrange
	ctx, cancel := context.WithCancel(context.Background())
	fn := func(context.Context) error {
		cancel()
		return journalFailure()
	}

	// act
	meta, err := shell.RetryWithExponentialBackoff(ctx, fn, shell.WithBaseDelay(time.Hour))

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, meta.Attempts)
	assert.Equal(t, shell.ErrorTypeContextCanceled, meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_InvalidOptions(t *testing.T) {
	tests := []struct {
		name     string
		option   shell.RetryOption
		expected error
	}{
		{name: "zero attempts", option: shell.WithMaxAttempts(0), expected: shell.ErrInvalidMaxAttempts},
		{name: "negative delay", option: shell.WithBaseDelay(-time.Second), expected: shell.ErrNegativeBaseDelay},
		{name: "jitter above one", option: shell.WithJitterFactor(1.5), expected: shell.ErrInvalidJitterFactor},
		{name: "nil collector", option: shell.WithMetrics(nil, "borrow"), expected: shell.ErrNilMetricsCollector},
		{
			name:     "empty operation",
			option:   shell.WithMetrics(spies.NewMetricsCollectorSpy(false), ""),
			expected: shell.ErrEmptyOperation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false

			_, err := shell.RetryWithExponentialBackoff(context.Background(), func(context.Context) error {
				called = true
				return nil
			}, tt.option)

			assert.ErrorIs(t, err, tt.expected)
			assert.False(t, called)
		})
	}
}
