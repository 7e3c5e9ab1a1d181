package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// newFixtureClient opens an in-memory database holding the blog fixture
func newFixtureClient(t *testing.T) *SQLiteClient {
	t.Helper()

	ddl, err := os.ReadFile("../../testdata/blog.sql")
	require.NoError(t, err)

	ctx := context.Background()
	client, err := NewSQLiteClient(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	_, err = client.GetDB().ExecContext(ctx, string(ddl))
	require.NoError(t, err)

	return client
}
