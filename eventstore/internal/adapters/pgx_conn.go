package adapters

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGXConn runs the journal on pgx pools. Reads go to the replica when there is one.
type PGXConn struct {
	primary *pgxpool.Pool
	replica *pgxpool.Pool
}

func NewPGXConn(primary *pgxpool.Pool) *PGXConn {
	return &PGXConn{primary: primary}
}

func NewPGXConnWithReplica(primary, replica *pgxpool.Pool) *PGXConn {
	return &PGXConn{primary: primary, replica: replica}
}

// Exec always uses the primary.
func (c *PGXConn) Exec(ctx context.Context, statement string) error {
	_, err := c.primary.Exec(ctx, statement)
	return err
}

func (c *PGXConn) Each(ctx context.Context, query string, onRow func(scan ScanFunc) error) error {
	pool := c.primary
	if c.replica != nil {
		pool = c.replica
	}

	rows, err := pool.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	return eachRow(rows, onRow)
}
