package adapters

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrClosingRowsFailed is joined with the driver error when rows could not be released.
var ErrClosingRowsFailed = errors.New("closing rows failed")

// ScanFunc copies the columns of the current row into dest.
type ScanFunc func(dest ...any) error

// Conn is a journal connection.
type Conn interface {
	// Exec runs a statement that returns no rows.
	Exec(ctx context.Context, statement string) error

	// Each runs query and calls onRow once per row, in result order.
	// The first error returned by onRow stops the iteration and is returned unchanged.
	Each(ctx context.Context, query string, onRow func(scan ScanFunc) error) error
}

// cursor is the part of sql.Rows and pgx.Rows that Each needs.
type cursor interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func eachRow(rows cursor, onRow func(scan ScanFunc) error) error {
	for rows.Next() {
		if err := onRow(rows.Scan); err != nil {
			return err
		}
	}

	return rows.Err()
}

// SQLConn runs the journal on a database/sql pool, lib/pq for Postgres or go-sqlite3 for SQLite.
type SQLConn struct {
	db *sql.DB
}

func NewSQLConn(db *sql.DB) *SQLConn {
	return &SQLConn{db: db}
}

func (c *SQLConn) Exec(ctx context.Context, statement string) error {
	_, err := c.db.ExecContext(ctx, statement)
	return err
}

func (c *SQLConn) Each(ctx context.Context, query string, onRow func(scan ScanFunc) error) error {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}

	return closeAfter(rows, eachRow(rows, onRow))
}

// SQLXConn runs the journal on a sqlx pool.
type SQLXConn struct {
	db *sqlx.DB
}

func NewSQLXConn(db *sqlx.DB) *SQLXConn {
	return &SQLXConn{db: db}
}

func (c *SQLXConn) Exec(ctx context.Context, statement string) error {
	_, err := c.db.ExecContext(ctx, statement)
	return err
}

// Each reads through Queryx; columns are still scanned positionally.
func (c *SQLXConn) Each(ctx context.Context, query string, onRow func(scan ScanFunc) error) error {
	rows, err := c.db.QueryxContext(ctx, query)
	if err != nil {
		return err
	}

	return closeAfter(rows, eachRow(rows, onRow))
}

type closer interface {
	Close() error
}

// closeAfter closes rows and reports a close failure only when reading succeeded.
func closeAfter(rows closer, err error) error {
	closeErr := rows.Close()
	if err != nil {
		return err
	}

	if closeErr != nil {
		return errors.Join(ErrClosingRowsFailed, closeErr)
	}

	return nil
}
