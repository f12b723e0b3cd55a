// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database types
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Querier is satisfied by both *sql.DB and *sql.Tx
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, dbType, databaseURL string) (*sql.DB, error) {
	driver := TypePostgres
	if dbType == TypeSQLite {
		driver = "sqlite"
	}

	conn, err := sql.Open(driver, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if dbType == TypeSQLite {
		// One writer at a time; also keeps ":memory:" a single database
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetConnMaxIdleTime(5 * time.Minute)
		conn.SetConnMaxLifetime(30 * time.Minute)
		conn.SetMaxIdleConns(10)
		conn.SetMaxOpenConns(20)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, Classify(fmt.Errorf("ping db: %w", err))
	}
	return conn, nil
}

// WithTx runs fn inside a transaction. fn's error rolls back and is
// returned unchanged; begin and commit failures are classified.
func WithTx(ctx context.Context, conn *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return Classify(fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return Classify(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// Millis converts a time to the stored representation
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts a stored time back to time.Time (UTC)
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
