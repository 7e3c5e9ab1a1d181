package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// PostgresClient manages the connection to PostgreSQL
type PostgresClient struct {
	db *sql.DB
}

// NewPostgresClient creates a new PostgreSQL client
func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	cfg, err := pgx.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	db := stdlib.OpenDB(*cfg)

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{db: db}, nil
}

// NewPostgresConn wraps an already open PostgreSQL handle. The caller keeps
// ownership of db.
func NewPostgresConn(db *sql.DB) *PostgresClient {
	return &PostgresClient{db: db}
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *PostgresClient) GetDB() *sql.DB {
	return c.db
}

func (c *PostgresClient) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, query, args...)
}

func (c *PostgresClient) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return c.db.QueryRowContext(ctx, query, args...)
}

func (c *PostgresClient) Platform() string { return PlatformPostgres }

// CurrentSchema returns the first schema of the search path
func (c *PostgresClient) CurrentSchema(ctx context.Context) (string, error) {
	var name sql.NullString
	if err := c.db.QueryRowContext(ctx, "SELECT current_schema()").Scan(&name); err != nil {
		return "", fmt.Errorf("failed to resolve current schema: %w", err)
	}
	if !name.Valid {
		return "public", nil
	}
	return name.String, nil
}
