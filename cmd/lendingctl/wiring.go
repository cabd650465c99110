package main

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/log/global"

	"github.com/AntonStoeckl/library-lending-engine/eventstore"
	"github.com/AntonStoeckl/library-lending-engine/eventstore/memengine"
	"github.com/AntonStoeckl/library-lending-engine/eventstore/oteladapters"
	"github.com/AntonStoeckl/library-lending-engine/eventstore/postgresengine"
	"github.com/AntonStoeckl/library-lending-engine/eventstore/sqliteengine"
	"github.com/AntonStoeckl/library-lending-engine/library"
	"github.com/AntonStoeckl/library-lending-engine/seed"
	"github.com/AntonStoeckl/library-lending-engine/shell/config"
)

const instrumentationName = "github.com/AntonStoeckl/library-lending-engine"

// ObservabilityConfig holds the observability adapters handed to the journal and the library.
type ObservabilityConfig struct {
	Logger                  eventstore.Logger
	ContextualLogger        eventstore.ContextualLogger
	JournalContextualLogger eventstore.ContextualLogger
	MetricsCollector        eventstore.MetricsCollector
	TracingCollector        eventstore.TracingCollector
}

func (a *app) setupObservability(ctx context.Context) error {
	a.obs = ObservabilityConfig{Logger: a.logger}

	if !a.cfg.Observability.Enabled {
		return nil
	}

	providers, err := config.NewObservabilityProviders(ctx, a.cfg.Observability, version)
	if err != nil {
		return err
	}

	a.providers = providers
	a.obs.ContextualLogger = oteladapters.NewSlogBridgeLogger(instrumentationName)
	a.obs.JournalContextualLogger = oteladapters.NewOTelLogger(global.GetLoggerProvider().Logger(instrumentationName))
	a.obs.MetricsCollector = oteladapters.NewMetricsCollector(providers.MeterProvider.Meter(instrumentationName))
	a.obs.TracingCollector = oteladapters.NewTracingCollector(providers.TracerProvider.Tracer(instrumentationName))

	a.logger.InfoContext(ctx, "observability: exporting via OTLP",
		"endpoint", a.cfg.Observability.OTLPEndpoint,
		"service_name", a.cfg.Observability.ServiceName,
	)

	return nil
}

// newJournal opens the configured backend. SQL backends get their table created on demand.
func (a *app) newJournal(ctx context.Context) (eventstore.EventStore, error) {
	journalCfg := a.cfg.Journal

	switch journalCfg.Backend {
	case config.BackendMemory:
		return memengine.NewEventStore(buildMemEngineOptions(a.obs)...)

	case config.BackendSQLite:
		db, err := config.SQLiteDB(ctx, journalCfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)

		options := append(buildSQLiteEngineOptions(a.obs), sqliteengine.WithTableName(journalCfg.Table))

		journal, err := sqliteengine.NewEventStoreFromSQLDB(db, options...)
		if err != nil {
			return nil, err
		}

		return journal, journal.CreateSchema(ctx)

	case config.BackendPostgres:
		journal, err := a.newPostgresJournal(ctx, journalCfg)
		if err != nil {
			return nil, err
		}

		return journal, journal.CreateSchema(ctx)

	default:
		return nil, fmt.Errorf("unsupported journal backend %q", journalCfg.Backend)
	}
}

func (a *app) newPostgresJournal(ctx context.Context, journalCfg config.JournalConfig) (*postgresengine.EventStore, error) {
	pgCfg := journalCfg.Postgres
	options := append(buildPostgresEngineOptions(a.obs), postgresengine.WithTableName(journalCfg.Table))

	switch pgCfg.Adapter {
	case config.AdapterSQL:
		db, err := config.PostgresSQLDB(ctx, pgCfg.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)

		return postgresengine.NewEventStoreFromSQLDB(db, options...)

	case config.AdapterSQLX:
		db, err := config.PostgresSQLX(ctx, pgCfg.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)

		return postgresengine.NewEventStoreFromSQLX(db, options...)

	default:
		primary, err := config.PostgresPGXPool(ctx, pgCfg.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { primary.Close(); return nil })

		if pgCfg.ReplicaDSN == "" {
			return postgresengine.NewEventStoreFromPGXPool(primary, options...)
		}

		replica, err := config.PostgresPGXPool(ctx, pgCfg.ReplicaDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { replica.Close(); return nil })

		return postgresengine.NewEventStoreFromPGXPoolAndReplica(primary, replica, options...)
	}
}

// newLibrary builds an empty library journaling to the configured backend.
func (a *app) newLibrary(ctx context.Context) (*library.Library, error) {
	journal, err := a.newJournal(ctx)
	if err != nil {
		return nil, err
	}

	options := append(buildLibraryOptions(a.obs),
		library.WithMaxLoansPerUser(a.cfg.Library.MaxLoansPerUser),
		library.WithNotificationCapacity(a.cfg.Library.NotificationCapacity),
		library.WithJournal(journal),
	)

	return library.New(options...)
}

// newSeededLibrary builds a library and applies the configured seed to it.
func (a *app) newSeededLibrary(ctx context.Context) (*library.Library, error) {
	doc, err := seed.Load(a.cfg.Seed.File)
	if err != nil {
		return nil, err
	}

	lib, err := a.newLibrary(ctx)
	if err != nil {
		return nil, err
	}

	if err = seed.Apply(ctx, lib, doc); err != nil {
		return nil, err
	}

	// seeding notifications are not interesting to the caller
	lib.DrainNotifications()

	return lib, nil
}

func buildLibraryOptions(obs ObservabilityConfig) []library.Option {
	var options []library.Option
	if obs.MetricsCollector != nil {
		options = append(options, library.WithMetrics(obs.MetricsCollector))
	}
	if obs.TracingCollector != nil {
		options = append(options, library.WithTracing(obs.TracingCollector))
	}
	if obs.ContextualLogger != nil {
		options = append(options, library.WithContextualLogger(obs.ContextualLogger))
	}
	if obs.Logger != nil {
		options = append(options, library.WithLogger(obs.Logger))
	}
	return options
}

func buildMemEngineOptions(obs ObservabilityConfig) []memengine.Option {
	var options []memengine.Option
	if obs.MetricsCollector != nil {
		options = append(options, memengine.WithMetrics(obs.MetricsCollector))
	}
	if obs.TracingCollector != nil {
		options = append(options, memengine.WithTracing(obs.TracingCollector))
	}
	if obs.JournalContextualLogger != nil {
		options = append(options, memengine.WithContextualLogger(obs.JournalContextualLogger))
	}
	if obs.Logger != nil {
		options = append(options, memengine.WithLogger(obs.Logger))
	}
	return options
}

func buildSQLiteEngineOptions(obs ObservabilityConfig) []sqliteengine.Option {
	var options []sqliteengine.Option
	if obs.MetricsCollector != nil {
		options = append(options, sqliteengine.WithMetrics(obs.MetricsCollector))
	}
	if obs.TracingCollector != nil {
		options = append(options, sqliteengine.WithTracing(obs.TracingCollector))
	}
	if obs.JournalContextualLogger != nil {
		options = append(options, sqliteengine.WithContextualLogger(obs.JournalContextualLogger))
	}
	if obs.Logger != nil {
		options = append(options, sqliteengine.WithLogger(obs.Logger))
	}
	return options
}

func buildPostgresEngineOptions(obs ObservabilityConfig) []postgresengine.Option {
	var options []postgresengine.Option
	if obs.MetricsCollector != nil {
		options = append(options, postgresengine.WithMetrics(obs.MetricsCollector))
	}
	if obs.TracingCollector != nil {
		options = append(options, postgresengine.WithTracing(obs.TracingCollector))
	}
	if obs.JournalContextualLogger != nil {
		options = append(options, postgresengine.WithContextualLogger(obs.JournalContextualLogger))
	}
	if obs.Logger != nil {
		options = append(options, postgresengine.WithLogger(obs.Logger))
	}
	return options
}
