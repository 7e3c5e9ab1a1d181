//go:build integration

package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/tordrt/metaschema/internal/schema"
)

const postgresFixture = `
CREATE TABLE authors (
	id SERIAL PRIMARY KEY,
	name VARCHAR(120) NOT NULL,
	email TEXT UNIQUE
);
COMMENT ON TABLE authors IS 'People who write';
CREATE TABLE posts (
	id INTEGER GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	price NUMERIC(10,2),
	author_id INTEGER REFERENCES authors(id)
);
CREATE TABLE directus_collections (
	collection VARCHAR(64) PRIMARY KEY,
	item_name_template VARCHAR(255),
	preview_url VARCHAR(255),
	hidden BOOLEAN,
	single BOOLEAN,
	comment VARCHAR(1024)
);
CREATE TABLE directus_relations (
	id SERIAL PRIMARY KEY,
	collection_a VARCHAR(64) NOT NULL,
	field_a VARCHAR(64) NOT NULL,
	junction_key_a VARCHAR(64),
	junction_collection VARCHAR(64),
	junction_mixed_collections VARCHAR(64),
	junction_key_b VARCHAR(64),
	collection_b VARCHAR(64),
	field_b VARCHAR(64)
);
INSERT INTO directus_collections (collection, hidden) VALUES ('posts', NULL), ('authors', true);
INSERT INTO directus_relations (collection_a, field_a, collection_b) VALUES ('posts', 'author_id', 'authors');
`

func setupPostgres(t *testing.T) *PostgresClient {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	client, err := NewPostgresClient(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	_, err = client.GetDB().ExecContext(ctx, postgresFixture)
	require.NoError(t, err)

	return client
}

func TestPostgresReader(t *testing.T) {
	ctx := context.Background()
	client := setupPostgres(t)
	reader := NewPostgresReader(client)

	t.Run("schema_name", func(t *testing.T) {
		name, err := reader.SchemaName(ctx)
		require.NoError(t, err)
		assert.Equal(t, "public", name)
	})

	t.Run("list_tables", func(t *testing.T) {
		tables, err := reader.ListTables(ctx)
		require.NoError(t, err)
		require.Len(t, tables, 4)

		assert.Equal(t, "authors", tables[0].Name)
		require.NotNil(t, tables[0].Comment)
		assert.Equal(t, "People who write", *tables[0].Comment)
	})

	t.Run("probe", func(t *testing.T) {
		assert.Equal(t, ProbeFound, reader.ProbeTable(ctx, "posts").Status)
		assert.Equal(t, ProbeNotFound, reader.ProbeTable(ctx, "missing").Status)
	})

	t.Run("columns", func(t *testing.T) {
		columns, err := reader.ListColumns(ctx, "posts", "")
		require.NoError(t, err)
		require.Len(t, columns, 4)

		assert.Equal(t, schema.KeyPrimary, columns[0].Key)
		assert.Equal(t, schema.ExtraAutoIncrement, columns[0].Extra)
		assert.Equal(t, "character varying", columns[1].Type)
		require.NotNil(t, columns[1].CharacterMaximumLength)
		assert.Equal(t, int64(255), *columns[1].CharacterMaximumLength)
		require.NotNil(t, columns[2].NumericScale)
		assert.Equal(t, int64(2), *columns[2].NumericScale)

		authors, err := reader.ListColumns(ctx, "authors", "public")
		require.NoError(t, err)
		assert.Equal(t, schema.ExtraAutoIncrement, authors[0].Extra)
	})

	t.Run("constraints", func(t *testing.T) {
		constraints, err := reader.Constraints(ctx, "posts")
		require.NoError(t, err)
		require.Len(t, constraints, 2)

		assert.Equal(t, schema.ConstraintPrimaryKey, constraints[0].Type)
		assert.Equal(t, []string{"id"}, constraints[0].Columns)
		assert.Equal(t, schema.ConstraintForeignKey, constraints[1].Type)
		assert.Equal(t, "authors", constraints[1].ReferencedTable)
		assert.Equal(t, []string{"id"}, constraints[1].ReferencedColumns)
	})
}

func TestPostgresOverlay(t *testing.T) {
	ctx := context.Background()
	store := NewOverlayStore(setupPostgres(t), OverlayTablesWithPrefix(DefaultTablePrefix))

	row, ok, err := store.CollectionRow(ctx, "posts")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, row.Hidden)

	row, ok, err = store.CollectionRow(ctx, "authors")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, row.Hidden)

	relations, err := store.Relations(ctx, "authors")
	require.NoError(t, err)
	require.Len(t, relations, 1)
	assert.Equal(t, "author_id", relations[0].FieldA)
}
