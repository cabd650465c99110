package library

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-lending-engine/core"
	"github.com/AntonStoeckl/library-lending-engine/eventstore"
	"github.com/AntonStoeckl/library-lending-engine/shell"
)

const (
	// OperationDurationMetric tracks the duration of every instrumented operation in seconds.
	OperationDurationMetric = "library_operation_duration_seconds"

	// OperationCallsMetric counts instrumented operations by outcome.
	OperationCallsMetric = "library_operation_calls_total"

	// JournalFailuresMetric counts committed operations whose event could not be journaled.
	JournalFailuresMetric = "library_journal_failures_total"

	// PendingNotificationsMetric is the number of queued notifications.
	PendingNotificationsMetric = "library_pending_notifications"

	OperationAddBook    = "add_book"
	OperationAddCopies  = "add_copies"
	OperationRemoveBook = "remove_book"
	OperationAddUser    = "add_user"
	OperationRemoveUser = "remove_user"
	OperationBorrow     = "borrow"
	OperationReturn     = "return"
	OperationHistory    = "history"

	// StatusSuccess marks a completed operation.
	StatusSuccess = "success"

	// StatusRejected marks an operation refused with a domain error; nothing changed.
	StatusRejected = "rejected"

	// StatusError marks an infrastructure failure.
	StatusError = "error"

	LabelOperation = "operation"
	LabelStatus    = "status"
	LabelErrorCode = "error_code"
	LabelErrorType = "error_type"

	errorCodeNone = "none"

	spanNamePrefix = "library."

	logMsgOperation     = "library operation: "
	logMsgCompleted     = "completed"
	logMsgRejected      = "rejected"
	logMsgFailed        = "failed"
	logMsgJournalFailed = "journal append failed"
	logAttrOperation    = "operation"
	logAttrStatus       = "status"
	logAttrErrorCode    = "error_code"
	logAttrError        = "error"
	logAttrDurationMS   = "duration_ms"
	logAttrISBN         = "isbn"
	logAttrUserID       = "user_id"
	logAttrAttempts     = "attempts"
)

type observers struct {
	logger           eventstore.Logger
	contextualLogger eventstore.ContextualLogger
	metrics          eventstore.MetricsCollector
	tracing          eventstore.TracingCollector
}

// observation covers one instrumented operation from start to finish.
type observation struct {
	ctx       context.Context
	observers observers
	operation string
	attrs     map[string]string
	span      eventstore.SpanContext
	start     time.Time
}

// observe starts an observation. attrs go to the span and the log records.
func (l *Library) observe(ctx context.Context, operation string, attrs map[string]string) (*observation, context.Context) {
	o := &observation{
		ctx:       ctx,
		observers: l.observers,
		operation: operation,
		attrs:     attrs,
		start:     time.Now(),
	}

	if l.observers.tracing != nil {
		spanAttrs := map[string]string{LabelOperation: operation}
		for key, value := range attrs {
			spanAttrs[key] = value
		}

		o.ctx, o.span = l.observers.tracing.StartSpan(ctx, spanNamePrefix+operation, spanAttrs)
	}

	return o, o.ctx
}

// finish records the outcome of err and returns err unchanged.
func (o *observation) finish(err error) error {
	duration := time.Since(o.start)
	status, errorCode := classify(err)

	labels := map[string]string{
		LabelOperation: o.operation,
		LabelStatus:    status,
		LabelErrorCode: errorCode,
	}

	o.recordDuration(OperationDurationMetric, duration, labels)
	o.incrementCounter(OperationCallsMetric, labels)

	if o.observers.tracing != nil && o.span != nil {
		endAttrs := map[string]string{
			LabelErrorCode:    errorCode,
			logAttrDurationMS: strconv.FormatFloat(toMilliseconds(duration), 'f', 3, 64),
		}

		if err != nil {
			endAttrs[logAttrError] = err.Error()
		}

		o.observers.tracing.FinishSpan(o.span, status, endAttrs)
	}

	args := []any{logAttrOperation, o.operation, logAttrStatus, status, logAttrDurationMS, toMilliseconds(duration)}
	for key, value := range o.attrs {
		args = append(args, key, value)
	}

	switch status {
	case StatusSuccess:
		o.debug(logMsgOperation+logMsgCompleted, args...)
	case StatusRejected:
		o.info(logMsgOperation+logMsgRejected, append(args, logAttrErrorCode, errorCode, logAttrError, err.Error())...)
	default:
		o.logError(logMsgOperation+logMsgFailed, append(args, logAttrError, err.Error())...)
	}

	return err
}

// journalFailed records an event that could not be appended after a committed mutation.
func (o *observation) journalFailed(err error, attempts int) {
	o.incrementCounter(JournalFailuresMetric, map[string]string{
		LabelOperation: o.operation,
		LabelErrorType: shell.ErrorTypeOf(err),
	})

	o.warn(logMsgOperation+logMsgJournalFailed,
		logAttrOperation, o.operation,
		logAttrAttempts, attempts,
		logAttrError, err.Error(),
	)
}

// classify maps err to a status and an error code label.
func classify(err error) (status, errorCode string) {
	if err == nil {
		return StatusSuccess, errorCodeNone
	}

	var domainErr *core.Error
	if errors.As(err, &domainErr) {
		return StatusRejected, string(domainErr.Code)
	}

	return StatusError, shell.ErrorTypeOf(err)
}

func toMilliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1e3
}

func (o *observation) recordDuration(name string, duration time.Duration, labels map[string]string) {
	if o.observers.metrics == nil {
		return
	}

	if contextual, ok := o.observers.metrics.(eventstore.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(o.ctx, name, duration, labels)
		return
	}

	o.observers.metrics.RecordDuration(name, duration, labels)
}

func (o *observation) incrementCounter(name string, labels map[string]string) {
	if o.observers.metrics == nil {
		return
	}

	if contextual, ok := o.observers.metrics.(eventstore.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(o.ctx, name, labels)
		return
	}

	o.observers.metrics.IncrementCounter(name, labels)
}

func (o *observation) debug(msg string, args ...any) {
	switch {
	case o.observers.contextualLogger != nil:
		o.observers.contextualLogger.DebugContext(o.ctx, msg, args...)
	case o.observers.logger != nil:
		o.observers.logger.Debug(msg, args...)
	}
}

func (o *observation) info(msg string, args ...any) {
	switch {
	case o.observers.contextualLogger != nil:
		o.observers.contextualLogger.InfoContext(o.ctx, msg, args...)
	case o.observers.logger != nil:
		o.observers.logger.Info(msg, args...)
	}
}

func (o *observation) warn(msg string, args ...any) {
	switch {
	case o.observers.contextualLogger != nil:
		o.observers.contextualLogger.WarnContext(o.ctx, msg, args...)
	case o.observers.logger != nil:
		o.observers.logger.Warn(msg, args...)
	}
}

func (o *observation) logError(msg string, args ...any) {
	switch {
	case o.observers.contextualLogger != nil:
		o.observers.contextualLogger.ErrorContext(o.ctx, msg, args...)
	case o.observers.logger != nil:
		o.observers.logger.Error(msg, args...)
	}
}

// recordPending reports the queue length; it runs outside of any operation.
func (l *Library) recordPending(ctx context.Context, pending int) {
	if l.observers.metrics == nil {
		return
	}

	if contextual, ok := l.observers.metrics.(eventstore.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, PendingNotificationsMetric, float64(pending), nil)
		return
	}

	l.observers.metrics.RecordValue(PendingNotificationsMetric, float64(pending), nil)
}
