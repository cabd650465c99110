package library

import (
	"errors"
	"sync"
	"time"

	"github.com/AntonStoeckl/library-lending-engine/catalog"
	"github.com/AntonStoeckl/library-lending-engine/core"
	"github.com/AntonStoeckl/library-lending-engine/eventstore"
	"github.com/AntonStoeckl/library-lending-engine/eventstore/memengine"
	"github.com/AntonStoeckl/library-lending-engine/lending"
	"github.com/AntonStoeckl/library-lending-engine/registry"
	"github.com/AntonStoeckl/library-lending-engine/shell"
)

// DefaultNotificationCapacity is the notification queue size used when none is configured.
const DefaultNotificationCapacity = 100

var (
	// ErrInvalidOption is joined with the reason of every rejected option.
	ErrInvalidOption = errors.New("invalid library option")

	// ErrNilJournal is returned when WithJournal receives nil.
	ErrNilJournal = errors.New("journal must not be nil")
)

// Library is the engine instance. Create it with New; all methods are safe for concurrent use.
type Library struct {
	engine        *lending.Engine
	catalog       *catalog.Catalog
	registry      *registry.Registry
	journal       eventstore.EventStore
	notifications *notificationQueue
	observers     observers
	retryOptions  []shell.RetryOption
	now           func() time.Time

	// journalTurn is taken by the commit hooks while the mutated records are still locked and
	// released once the event is journaled, so events reach the journal in commit order.
	journalTurn sync.Mutex
}

type settings struct {
	maxLoansPerUser      int
	notificationCapacity int
	journal              eventstore.EventStore
	observers            observers
	retryOptions         []shell.RetryOption
	now                  func() time.Time
}

// Option defines a functional option for configuring a Library.
type Option func(*settings) error

// WithMaxLoansPerUser sets the loan limit per user.
func WithMaxLoansPerUser(n int) Option {
	return func(s *settings) error {
		if n < 1 {
			return errors.Join(ErrInvalidOption, errors.New("max loans per user must be at least 1"))
		}

		s.maxLoansPerUser = n

		return nil
	}
}

// WithNotificationCapacity sets how many notifications are kept before the oldest is dropped.
func WithNotificationCapacity(n int) Option {
	return func(s *settings) error {
		if n < 1 {
			return errors.Join(ErrInvalidOption, errors.New("notification capacity must be at least 1"))
		}

		s.notificationCapacity = n

		return nil
	}
}

// WithJournal sets the operation journal. Without it, events go to an in-memory journal.
func WithJournal(journal eventstore.EventStore) Option {
	return func(s *settings) error {
		if journal == nil {
			return errors.Join(ErrInvalidOption, ErrNilJournal)
		}

		s.journal = journal

		return nil
	}
}

// WithJournalRetry configures how failed journal appends are retried.
func WithJournalRetry(options ...shell.RetryOption) Option {
	return func(s *settings) error {
		s.retryOptions = append(s.retryOptions, options...)
		return nil
	}
}

// WithClock sets the clock for event timestamps and the publication year bound.
func WithClock(now func() time.Time) Option {
	return func(s *settings) error {
		if now == nil {
			return errors.Join(ErrInvalidOption, errors.New("clock must not be nil"))
		}

		s.now = now

		return nil
	}
}

// WithLogger sets the logger for operation outcomes and journal failures.
func WithLogger(logger eventstore.Logger) Option {
	return func(s *settings) error {
		s.observers.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger. It takes precedence over WithLogger.
func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(s *settings) error {
		s.observers.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector eventstore.MetricsCollector) Option {
	return func(s *settings) error {
		s.observers.metrics = collector
		return nil
	}
}

// WithTracing sets the tracing collector.
func WithTracing(collector eventstore.TracingCollector) Option {
	return func(s *settings) error {
		s.observers.tracing = collector
		return nil
	}
}

// New creates an empty Library.
func New(options ...Option) (*Library, error) {
	s := settings{
		maxLoansPerUser:      core.DefaultMaxLoansPerUser,
		notificationCapacity: DefaultNotificationCapacity,
		now:                  time.Now,
	}

	for _, option := range options {
		if err := option(&s); err != nil {
			return nil, err
		}
	}

	if s.journal == nil {
		journal, err := memengine.NewEventStore()
		if err != nil {
			return nil, err
		}

		s.journal = journal
	}

	l := &Library{
		journal:       s.journal,
		notifications: newNotificationQueue(s.notificationCapacity),
		observers:     s.observers,
		retryOptions:  s.retryOptions,
		now:           s.now,
	}

	l.catalog = catalog.New(catalog.WithClock(s.now), catalog.WithCommitHook(l.journalTurn.Lock))
	l.registry = registry.New(
		registry.WithMaxLoansPerUser(s.maxLoansPerUser),
		registry.WithCommitHook(l.journalTurn.Lock),
	)
	l.engine = lending.NewEngine(l.catalog, l.registry,
		lending.WithClock(s.now),
		lending.WithCommitHook(l.journalTurn.Lock),
	)

	return l, nil
}

// MaxLoansPerUser returns the configured loan limit.
func (l *Library) MaxLoansPerUser() int {
	return l.registry.MaxLoansPerUser()
}

// Journal returns the operation journal.
func (l *Library) Journal() eventstore.EventStore {
	return l.journal
}
