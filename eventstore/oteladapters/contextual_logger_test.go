package oteladapters_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/embedded"
	"go.opentelemetry.io/otel/log/noop"

	"github.com/AntonStoeckl/library-lending-engine/eventstore/oteladapters"
)

func Test_SlogBridgeLogger_WithHandler(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(
		slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)

	// act
	logger.DebugContext(context.Background(), "executed sql for: query", "query", "SELECT 1")
	logger.InfoContext(context.Background(), "library operation: borrow", "isbn", "B1")
	logger.WarnContext(context.Background(), "library operation: journal failed")
	logger.ErrorContext(context.Background(), "eventstore operation: append failed", "error", "boom")

	// assert
	output := buf.String()
	assert.Contains(t, output, `"msg":"executed sql for: query"`)
	assert.Contains(t, output, `"isbn":"B1"`)
	assert.Contains(t, output, `"level":"WARN"`)
	assert.Contains(t, output, `"error":"boom"`)
}

type recordingLogger struct {
	embedded.Logger

	records []log.Record
}

func (l *recordingLogger) Emit(_ context.Context, record log.Record) {
	l.records = append(l.records, record)
}

func (l *recordingLogger) Enabled(context.Context, log.EnabledParameters) bool {
	return true
}

func Test_OTelLogger_Emit(t *testing.T) {
	// arrange
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)

	// act
	logger.WarnContext(context.Background(), "library operation: rejected",
		"isbn", "B1", "count", 2, "ratio", 0.5, "ok", false, "dangling")

	// assert
	require.Len(t, recorder.records, 1)
	record := recorder.records[0]
	assert.Equal(t, log.SeverityWarn, record.Severity())
	assert.Equal(t, "library operation: rejected", record.Body().AsString())

	attrs := make(map[string]log.Value)
	record.WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value
		return true
	})
	assert.Len(t, attrs, 4)
	assert.Equal(t, "B1", attrs["isbn"].AsString())
	assert.Equal(t, int64(2), attrs["count"].AsInt64())
	assert.InDelta(t, 0.5, attrs["ratio"].AsFloat64(), 0.0001)
	assert.False(t, attrs["ok"].AsBool())
}

func Test_OTelLogger_NoopProviderDoesNotPanic(t *testing.T) {
	logger := oteladapters.NewOTelLogger(noop.NewLoggerProvider().Logger("test"))

	assert.NotPanics(t, func() {
		logger.DebugContext(context.Background(), "nothing to see")
		logger.InfoContext(context.Background(), "nothing to see")
		logger.ErrorContext(context.Background(), "nothing to see")
	})
}
