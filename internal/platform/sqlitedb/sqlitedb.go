// Package sqlitedb opens SQLite databases. The pure-Go modernc driver is used
// by default; build with -tags cgo_sqlite to use mattn/go-sqlite3 instead.
package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"
)

// Open opens the database at dsn and pings it. A DSN of ":memory:" yields a
// private in-memory database; the pool is capped at one connection so every
// query sees the same database.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", dsn, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite %s: %w", dsn, err)
	}
	return db, nil
}

// Driver reports which database/sql driver this build uses.
func Driver() string {
	return driverName
}
