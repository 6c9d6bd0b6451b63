package store

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database operations shared by *sql.DB and *sql.Tx.
// Stores accept it so the same implementation works standalone or inside a
// transaction managed by the caller.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
