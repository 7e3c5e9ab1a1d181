package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// MySQLClient manages the connection to MySQL
type MySQLClient struct {
	db     *sql.DB
	dbName string
}

// NewMySQLClient creates a new MySQL client
func NewMySQLClient(ctx context.Context, connString string) (*MySQLClient, error) {
	cfg, err := mysql.ParseDSN(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db := sql.OpenDB(connector)

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &MySQLClient{db: db, dbName: cfg.DBName}, nil
}

// NewMySQLConn wraps an already open MySQL handle. The caller keeps
// ownership of db.
func NewMySQLConn(db *sql.DB) *MySQLClient {
	return &MySQLClient{db: db}
}

// ParseDatabaseName returns the database named by a MySQL DSN
func ParseDatabaseName(connString string) (string, error) {
	cfg, err := mysql.ParseDSN(connString)
	if err != nil {
		return "", fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.DBName == "" {
		return "", fmt.Errorf("connection string names no database")
	}
	return cfg.DBName, nil
}

// Close closes the database connection
func (c *MySQLClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *MySQLClient) GetDB() *sql.DB {
	return c.db
}

func (c *MySQLClient) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, query, args...)
}

func (c *MySQLClient) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return c.db.QueryRowContext(ctx, query, args...)
}

func (c *MySQLClient) Platform() string { return PlatformMySQL }

// CurrentSchema returns the database selected by the connection
func (c *MySQLClient) CurrentSchema(ctx context.Context) (string, error) {
	var name sql.NullString
	if err := c.db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&name); err != nil {
		return "", fmt.Errorf("failed to resolve current database: %w", err)
	}
	if name.Valid && name.String != "" {
		return name.String, nil
	}
	if c.dbName != "" {
		return c.dbName, nil
	}
	return "", fmt.Errorf("no database selected")
}
