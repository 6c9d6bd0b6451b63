// Package postgres implements the store interfaces against PostgreSQL using
// database/sql with the pgx stdlib driver. Stores accept a store.DBTX so
// they run equally inside or outside a caller-managed transaction.
package postgres
