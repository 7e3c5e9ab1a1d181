//go:build cgo_sqlite

// CGO SQLite driver using mattn/go-sqlite3.
// Build with: go build -tags cgo_sqlite (requires CGO_ENABLED=1)
package db

import (
	_ "github.com/mattn/go-sqlite3"
)

const sqliteDriverName = "sqlite3"

// SQLiteDriverName returns the database/sql driver registered for SQLite
func SQLiteDriverName() string {
	return sqliteDriverName
}
