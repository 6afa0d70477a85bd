// Package sqlitedb opens SQLite databases through the pure Go
// modernc.org/sqlite driver and applies a schema.
package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Memory is the path for a private in-memory database.
const Memory = ":memory:"

// Open opens (creating if needed) the database at path and executes each
// schema statement in order. Statements should be idempotent
// (CREATE ... IF NOT EXISTS).
//
// File databases use WAL journaling and a busy timeout. An in-memory
// database is pinned to a single connection, since every connection would
// otherwise see its own empty database.
func Open(ctx context.Context, path string, schema ...string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if isMemory(path) {
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	} else {
		pragmas := []string{
			"PRAGMA journal_mode=WAL",
			fmt.Sprintf("PRAGMA busy_timeout=%d", (5 * time.Second).Milliseconds()),
		}
		for _, p := range pragmas {
			if _, err := db.ExecContext(ctx, p); err != nil {
				db.Close()
				return nil, fmt.Errorf("%s: %w", p, err)
			}
		}
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	return db, nil
}

func isMemory(path string) bool {
	return path == Memory || strings.Contains(path, "mode=memory")
}
