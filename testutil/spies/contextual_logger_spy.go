package spies

import (
	"context"
	"sync"
)

// SpyLogEntry is one captured contextual log call.
type SpyLogEntry struct {
	Level   string
	Message string
	Args    []any
	Ctx     context.Context
}

// ContextualLoggerSpy captures the calls of an eventstore.ContextualLogger.
type ContextualLoggerSpy struct {
	entries     []SpyLogEntry
	mu          sync.Mutex
	recordCalls bool
}

// NewContextualLoggerSpy creates a new ContextualLoggerSpy.
// Set recordCalls to true to capture all log calls for inspection in tests.
func NewContextualLoggerSpy(recordCalls bool) *ContextualLoggerSpy {
	return &ContextualLoggerSpy{
		entries:     make([]SpyLogEntry, 0),
		recordCalls: recordCalls,
	}
}

func (s *ContextualLoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "debug", msg, args)
}

func (s *ContextualLoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "info", msg, args)
}

func (s *ContextualLoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "warn", msg, args)
}

func (s *ContextualLoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "error", msg, args)
}

func (s *ContextualLoggerSpy) record(ctx context.Context, level, msg string, args []any) {
	if !s.recordCalls {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, SpyLogEntry{
		Level:   level,
		Message: msg,
		Args:    append([]any(nil), args...),
		Ctx:     ctx,
	})
}

// GetTotalRecordCount returns the number of captured log calls.
func (s *ContextualLoggerSpy) GetTotalRecordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// GetEntries returns a copy of all captured log calls.
func (s *ContextualLoggerSpy) GetEntries() []SpyLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]SpyLogEntry, len(s.entries))
	copy(entries, s.entries)

	return entries
}

// HasDebugLog checks if there's a debug-level call with the specified message.
func (s *ContextualLoggerSpy) HasDebugLog(message string) bool {
	return s.has("debug", message)
}

// HasInfoLog checks if there's an info-level call with the specified message.
func (s *ContextualLoggerSpy) HasInfoLog(message string) bool {
	return s.has("info", message)
}

// HasWarnLog checks if there's a warn-level call with the specified message.
func (s *ContextualLoggerSpy) HasWarnLog(message string) bool {
	return s.has("warn", message)
}

// HasErrorLog checks if there's an error-level call with the specified message.
func (s *ContextualLoggerSpy) HasErrorLog(message string) bool {
	return s.has("error", message)
}

func (s *ContextualLoggerSpy) has(level, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.entries {
		if entry.Level == level && entry.Message == message {
			return true
		}
	}

	return false
}
