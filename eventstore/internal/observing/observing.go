// Package observing carries the logging, metrics and tracing of the journal engines.
// Every collaborator is optional; a zero Observers does nothing.
package observing

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-lending-engine/eventstore"
)

const (
	MetricQueryDuration  = "eventstore_query_duration_seconds"
	MetricAppendDuration = "eventstore_append_duration_seconds"
	MetricEventsQueried  = "eventstore_events_queried_total"
	MetricEventsAppended = "eventstore_events_appended_total"
	MetricDatabaseErrors = "eventstore_database_errors_total"

	SpanNameQuery  = "eventstore.query"
	SpanNameAppend = "eventstore.append"

	AttrOperation   = "operation"
	AttrStatus      = "status"
	AttrErrorType   = "error_type"
	AttrEventCount  = "event_count"
	AttrEventType   = "event_type"
	AttrMaxSequence = "max_sequence"
	AttrDurationMS  = "duration_ms"
	AttrEngine      = "engine"

	OperationQuery  = "query"
	OperationAppend = "append"

	StatusSuccess = "success"
	StatusError   = "error"

	ErrorTypeBuildQuery  = "build_query"
	ErrorTypeDBQuery     = "database_query"
	ErrorTypeDBExec      = "database_exec"
	ErrorTypeRowScan     = "row_scan"
	ErrorTypeInvalidData = "invalid_data"
	ErrorTypeCanceled    = "context_canceled"

	logMsgOperation      = "eventstore operation: "
	logMsgSQLExecuted    = "executed sql for: "
	logMsgQueryCompleted = "query completed"
	logMsgEventsAppended = "events appended"
	logMsgQueryFailed    = "query failed"
	logMsgAppendFailed   = "append failed"
	logAttrError         = "error"
	logAttrQuery         = "query"
)

// Observers bundles the optional collaborators. ContextualLogger wins over Logger when both are set.
type Observers struct {
	Engine           string
	Logger           eventstore.Logger
	ContextualLogger eventstore.ContextualLogger
	Metrics          eventstore.MetricsCollector
	Tracing          eventstore.TracingCollector
}

// ToMilliseconds converts a duration to float64 milliseconds with 3 decimal places.
func ToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// LogSQL logs an executed statement with its duration at debug level.
func (o Observers) LogSQL(ctx context.Context, sqlQuery, action string, duration time.Duration) {
	o.debug(ctx, logMsgSQLExecuted+action, AttrDurationMS, ToMilliseconds(duration), logAttrQuery, sqlQuery)
}

// LogWarn logs a non-fatal problem, e.g. failing to close rows.
func (o Observers) LogWarn(ctx context.Context, msg string, err error) {
	switch {
	case o.ContextualLogger != nil:
		o.ContextualLogger.WarnContext(ctx, msg, logAttrError, err.Error())
	case o.Logger != nil:
		o.Logger.Warn(msg, logAttrError, err.Error())
	}
}

func (o Observers) debug(ctx context.Context, msg string, args ...any) {
	switch {
	case o.ContextualLogger != nil:
		o.ContextualLogger.DebugContext(ctx, msg, args...)
	case o.Logger != nil:
		o.Logger.Debug(msg, args...)
	}
}

func (o Observers) info(ctx context.Context, msg string, args ...any) {
	switch {
	case o.ContextualLogger != nil:
		o.ContextualLogger.InfoContext(ctx, msg, args...)
	case o.Logger != nil:
		o.Logger.Info(msg, args...)
	}
}

func (o Observers) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	switch {
	case o.ContextualLogger != nil:
		o.ContextualLogger.ErrorContext(ctx, msg, allArgs...)
	case o.Logger != nil:
		o.Logger.Error(msg, allArgs...)
	}
}

func (o Observers) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if o.Metrics == nil {
		return
	}

	if contextual, ok := o.Metrics.(eventstore.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	o.Metrics.RecordDuration(metric, duration, labels)
}

func (o Observers) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if o.Metrics == nil {
		return
	}

	if contextual, ok := o.Metrics.(eventstore.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, metric, value, labels)
		return
	}

	o.Metrics.RecordValue(metric, value, labels)
}

func (o Observers) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if o.Metrics == nil {
		return
	}

	if contextual, ok := o.Metrics.(eventstore.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	o.Metrics.IncrementCounter(metric, labels)
}

func (o Observers) labels(operation, status string) map[string]string {
	labels := map[string]string{AttrOperation: operation, AttrStatus: status}
	if o.Engine != "" {
		labels[AttrEngine] = o.Engine
	}

	return labels
}

func (o Observers) spanAttrs(operation string) map[string]string {
	attrs := map[string]string{AttrOperation: operation}
	if o.Engine != "" {
		attrs[AttrEngine] = o.Engine
	}

	return attrs
}

func (o Observers) startSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, eventstore.SpanContext) {
	if o.Tracing == nil {
		return ctx, nil
	}

	return o.Tracing.StartSpan(ctx, name, attrs)
}

func (o Observers) finishSpan(span eventstore.SpanContext, status string, attrs map[string]string) {
	if o.Tracing == nil || span == nil {
		return
	}

	span.SetStatus(status)
	for key, value := range attrs {
		span.AddAttribute(key, value)
	}

	o.Tracing.FinishSpan(span, status, attrs)
}

// Observation tracks one query or append from start to finish.
type Observation struct {
	observers Observers
	ctx       context.Context
	operation string
	span      eventstore.SpanContext
	start     time.Time
}

// StartQuery opens the span for a query. Use the returned context for the database call.
func (o Observers) StartQuery(ctx context.Context, filter eventstore.Filter) (*Observation, context.Context) {
	attrs := o.spanAttrs(OperationQuery)
	if filter.LatestLimit() > 0 {
		attrs["latest"] = strconv.Itoa(filter.LatestLimit())
	}

	spanCtx, span := o.startSpan(ctx, SpanNameQuery, attrs)

	return &Observation{observers: o, ctx: spanCtx, operation: OperationQuery, span: span, start: time.Now()}, spanCtx
}

// StartAppend opens the span for an append. Use the returned context for the database call.
func (o Observers) StartAppend(ctx context.Context, events eventstore.StorableEvents) (*Observation, context.Context) {
	attrs := o.spanAttrs(OperationAppend)
	attrs[AttrEventCount] = strconv.Itoa(len(events))
	if len(events) > 0 {
		attrs[AttrEventType] = events[0].EventType
	}

	spanCtx, span := o.startSpan(ctx, SpanNameAppend, attrs)

	return &Observation{observers: o, ctx: spanCtx, operation: OperationAppend, span: span, start: time.Now()}, spanCtx
}

// QuerySucceeded records a finished query.
func (ob *Observation) QuerySucceeded(events eventstore.StorableEvents, maxSequenceNumber eventstore.MaxSequenceNumberUint) {
	duration := time.Since(ob.start)
	o := ob.observers

	o.recordDuration(ob.ctx, MetricQueryDuration, duration, o.labels(OperationQuery, StatusSuccess))
	o.recordValue(ob.ctx, MetricEventsQueried, float64(len(events)), o.labels(OperationQuery, StatusSuccess))
	o.finishSpan(ob.span, StatusSuccess, map[string]string{
		AttrEventCount:  strconv.Itoa(len(events)),
		AttrMaxSequence: strconv.FormatUint(uint64(maxSequenceNumber), 10),
		AttrDurationMS:  strconv.FormatFloat(ToMilliseconds(duration), 'f', 2, 64),
	})
	o.info(ob.ctx, logMsgOperation+logMsgQueryCompleted, AttrEventCount, len(events), AttrDurationMS, ToMilliseconds(duration))
}

// AppendSucceeded records a finished append.
func (ob *Observation) AppendSucceeded(eventCount int) {
	duration := time.Since(ob.start)
	o := ob.observers

	o.recordDuration(ob.ctx, MetricAppendDuration, duration, o.labels(OperationAppend, StatusSuccess))
	o.recordValue(ob.ctx, MetricEventsAppended, float64(eventCount), o.labels(OperationAppend, StatusSuccess))
	o.finishSpan(ob.span, StatusSuccess, map[string]string{
		AttrEventCount: strconv.Itoa(eventCount),
		AttrDurationMS: strconv.FormatFloat(ToMilliseconds(duration), 'f', 2, 64),
	})
	o.info(ob.ctx, logMsgOperation+logMsgEventsAppended, AttrEventCount, eventCount, AttrDurationMS, ToMilliseconds(duration))
}

// Failed records a failed query or append and returns err unchanged.
// A canceled context is reported with its own error type.
func (ob *Observation) Failed(errorType string, err error) error {
	duration := time.Since(ob.start)
	o := ob.observers

	if ob.ctx.Err() != nil {
		errorType = ErrorTypeCanceled
	}

	durationMetric, msg := MetricQueryDuration, logMsgQueryFailed
	if ob.operation == OperationAppend {
		durationMetric, msg = MetricAppendDuration, logMsgAppendFailed
	}

	errorLabels := o.labels(ob.operation, StatusError)
	errorLabels[AttrErrorType] = errorType

	o.recordDuration(ob.ctx, durationMetric, duration, o.labels(ob.operation, StatusError))
	o.incrementCounter(ob.ctx, MetricDatabaseErrors, errorLabels)
	o.finishSpan(ob.span, StatusError, map[string]string{
		AttrErrorType:  errorType,
		AttrDurationMS: strconv.FormatFloat(ToMilliseconds(duration), 'f', 2, 64),
	})
	o.logError(ob.ctx, logMsgOperation+msg, err, AttrErrorType, errorType, AttrDurationMS, ToMilliseconds(duration))

	return err
}
