package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Platform names reported by Conn.Platform
const (
	PlatformSQLite   = "sqlite"
	PlatformMySQL    = "mysql"
	PlatformPostgres = "postgres"
)

// ErrUnsupportedPlatform is returned for connections whose platform has
// no reader
var ErrUnsupportedPlatform = errors.New("unsupported database platform")

// Conn is the connection handle shared by the readers and the overlay store.
// It is supplied by the caller; nothing in this module closes it.
type Conn interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	// Platform names the engine behind the connection
	Platform() string
	// CurrentSchema resolves the schema queries run against
	CurrentSchema(ctx context.Context) (string, error)
}

// Client is a Conn that owns its underlying *sql.DB
type Client interface {
	Conn
	GetDB() *sql.DB
	Close() error
}

// placeholder returns the n-th (one-based) bind parameter for the platform
func placeholder(platform string, n int) string {
	if platform == PlatformPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// quoteIdentifier quotes a table, column or schema name for the platform
func quoteIdentifier(platform, name string) string {
	if platform == PlatformMySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteValue quotes a string literal
func quoteValue(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// nullString converts a scanned sql.NullString into an optional string
func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullInt64(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	i := ni.Int64
	return &i
}
