package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/miqalab/miqa/pkg/miqa"
)

// PoolAdapter adapts *pgxpool.Pool to the miqa.DBConnection interface so the
// public API does not expose pgx types directly.
//
// Safe for concurrent use (pgxpool.Pool is thread-safe).
type PoolAdapter struct {
	pool *pgxpool.Pool
}

// NewPoolAdapter creates a new PoolAdapter wrapping the given pool.
func NewPoolAdapter(pool *pgxpool.Pool) miqa.DBConnection {
	return &PoolAdapter{pool: pool}
}

// Exec executes a query without returning any rows.
func (p *PoolAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return p.pool.Exec(ctx, sql, args...)
}

// QueryRow executes a query that is expected to return at most one row.
func (p *PoolAdapter) QueryRow(ctx context.Context, sql string, args ...any) miqa.Row {
	return &rowAdapter{row: p.pool.QueryRow(ctx, sql, args...)}
}

// Acquire obtains a dedicated connection from the pool.
func (p *PoolAdapter) Acquire(ctx context.Context) (miqa.PooledConnection, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &pooledConnAdapter{conn: conn}, nil
}

type rowAdapter struct {
	row interface{ Scan(...any) error }
}

func (r *rowAdapter) Scan(dest ...any) error {
	return r.row.Scan(dest...)
}

type pooledConnAdapter struct {
	conn *pgxpool.Conn
}

func (p *pooledConnAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return p.conn.Exec(ctx, sql, args...)
}

func (p *pooledConnAdapter) Release() {
	p.conn.Release()
}

var _ miqa.DBConnection = (*PoolAdapter)(nil)
