package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SQLiteClient manages the connection to SQLite
type SQLiteClient struct {
	db *sql.DB
}

// NewSQLiteClient creates a new SQLite client
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	db, err := sql.Open(SQLiteDriverName(), path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every pooled connection to an in-memory database sees its own database
	if isMemoryPath(path) {
		db.SetMaxOpenConns(1)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteClient{db: db}, nil
}

// NewSQLiteConn wraps an already open SQLite handle. The caller keeps
// ownership of db.
func NewSQLiteConn(db *sql.DB) *SQLiteClient {
	return &SQLiteClient{db: db}
}

func isMemoryPath(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

// Close closes the database connection
func (c *SQLiteClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *SQLiteClient) GetDB() *sql.DB {
	return c.db
}

func (c *SQLiteClient) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, query, args...)
}

func (c *SQLiteClient) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return c.db.QueryRowContext(ctx, query, args...)
}

func (c *SQLiteClient) Platform() string { return PlatformSQLite }

// CurrentSchema always resolves to the main database of the connection
func (c *SQLiteClient) CurrentSchema(context.Context) (string, error) {
	return "main", nil
}
