package config

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // postgres driver for database/sql and sqlx
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// ErrOpeningDatabaseFailed is joined with the driver error of every connection helper.
var ErrOpeningDatabaseFailed = errors.New("opening database failed")

const (
	pgxMaxConnections    = int32(8)
	pgxMinConnections    = int32(2)
	pgxHealthCheckPeriod = time.Minute
	connectTimeout       = 5 * time.Second

	sqlMaxOpenConnections = 50
	sqlMaxIdleConnections = 10

	maxConnLifetime = time.Hour
	maxConnIdleTime = 5 * time.Minute

	sqliteDSNOptions = "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
)

// PostgresPGXPoolConfig parses dsn and applies the pool limits.
func PostgresPGXPoolConfig(dsn string) (*pgxpool.Config, error) {
	dbConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	dbConfig.MaxConns = pgxMaxConnections
	dbConfig.MinConns = pgxMinConnections
	dbConfig.MaxConnLifetime = maxConnLifetime
	dbConfig.MaxConnIdleTime = maxConnIdleTime
	dbConfig.HealthCheckPeriod = pgxHealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = connectTimeout

	return dbConfig, nil
}

// PostgresPGXPool opens and pings a pgx pool.
func PostgresPGXPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	dbConfig, err := PostgresPGXPoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	return pool, nil
}

// PostgresSQLDB opens and pings a database/sql pool on lib/pq.
func PostgresSQLDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	configurePool(db)

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	return db, nil
}

// PostgresSQLX opens and pings a sqlx pool on lib/pq.
func PostgresSQLX(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	configurePool(db.DB)

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	return db, nil
}

// SQLiteDB opens the journal file at path. SQLite allows one writer, so the pool has
// exactly one connection.
func SQLiteDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", "file:"+path+sqliteDSNOptions)
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	return db, nil
}

func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(sqlMaxOpenConnections)
	db.SetMaxIdleConns(sqlMaxIdleConnections)
	db.SetConnMaxLifetime(maxConnLifetime)
	db.SetConnMaxIdleTime(maxConnIdleTime)
}
