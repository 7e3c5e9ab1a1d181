//go:build !cgo_sqlite

package db

import (
	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

// SQLiteDriverName returns the database/sql driver registered for SQLite.
// The pure Go driver is used unless built with -tags cgo_sqlite.
func SQLiteDriverName() string {
	return sqliteDriverName
}
