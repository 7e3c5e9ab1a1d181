package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tordrt/metaschema/internal/datatype"
	"github.com/tordrt/metaschema/internal/schema"
)

func TestParseNativeType(t *testing.T) {
	tests := []struct {
		declared string
		base     string
		args     string
		ok       bool
	}{
		{"VARCHAR(255)", "VARCHAR", "(255)", true},
		{"INTEGER", "INTEGER", "", true},
		{"decimal(10,2)", "decimal", "(10,2)", true},
		{"UNSIGNED BIG INT", "", "", false},
		{"", "", "", false},
		{"INT8(", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.declared, func(t *testing.T) {
			base, args, ok := ParseNativeType(tt.declared)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.base, base)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestSQLiteReader_ListTables(t *testing.T) {
	client := newFixtureClient(t)
	reader := NewSQLiteReader(client, datatype.Default())

	tables, err := reader.ListTables(context.Background())
	require.NoError(t, err)

	var names []string
	for _, table := range tables {
		names = append(names, table.Name)
		assert.Equal(t, "main", table.Schema)
		assert.Nil(t, table.Comment)
	}
	assert.Equal(t, []string{
		"authors", "comments", "directus_collections", "directus_fields",
		"directus_relations", "posts", "tags",
	}, names)
}

func TestSQLiteReader_ProbeTable(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		reader := NewSQLiteReader(newFixtureClient(t), datatype.Default())

		probe := reader.ProbeTable(ctx, "posts")
		assert.True(t, probe.Found())
		assert.Equal(t, ProbeFound, probe.Status)
		assert.Equal(t, "posts", probe.Table.Name)
		assert.NoError(t, probe.Err)
	})

	t.Run("not_found", func(t *testing.T) {
		reader := NewSQLiteReader(newFixtureClient(t), datatype.Default())

		probe := reader.ProbeTable(ctx, "missing")
		assert.False(t, probe.Found())
		assert.Equal(t, ProbeNotFound, probe.Status)
		assert.NoError(t, probe.Err)
	})

	t.Run("internal_table", func(t *testing.T) {
		client := newFixtureClient(t)
		_, err := client.GetDB().ExecContext(ctx, "CREATE TABLE counters (id INTEGER PRIMARY KEY AUTOINCREMENT)")
		require.NoError(t, err)
		reader := NewSQLiteReader(client, datatype.Default())

		tables, err := reader.ListTables(ctx)
		require.NoError(t, err)
		for _, table := range tables {
			assert.NotEqual(t, "sqlite_sequence", table.Name)
		}

		probe := reader.ProbeTable(ctx, "sqlite_sequence")
		assert.Equal(t, ProbeNotFound, probe.Status)
	})

	t.Run("query_error", func(t *testing.T) {
		client := newFixtureClient(t)
		reader := NewSQLiteReader(client, datatype.Default())
		require.NoError(t, client.Close())

		probe := reader.ProbeTable(ctx, "posts")
		assert.False(t, probe.Found())
		assert.Equal(t, ProbeQueryError, probe.Status)
		assert.Error(t, probe.Err)
	})
}

func TestSQLiteReader_ListColumns(t *testing.T) {
	reader := NewSQLiteReader(newFixtureClient(t), datatype.Default())

	columns, err := reader.ListColumns(context.Background(), "posts", "main")
	require.NoError(t, err)
	require.Len(t, columns, 5)

	id := columns[0]
	assert.Equal(t, "id", id.Name)
	assert.Equal(t, "posts", id.Table)
	assert.Equal(t, 1, id.OrdinalPosition)
	assert.Equal(t, "INTEGER", id.Type)
	assert.Equal(t, schema.KeyPrimary, id.Key)
	assert.Equal(t, schema.ExtraAutoIncrement, id.Extra)

	title := columns[1]
	assert.Equal(t, 2, title.OrdinalPosition)
	assert.Equal(t, "VARCHAR", title.Type)
	assert.False(t, title.Nullable)
	assert.Empty(t, title.Key)
	assert.Empty(t, title.Extra)
	assert.Nil(t, title.CharacterMaximumLength)

	body := columns[2]
	assert.True(t, body.Nullable)
	assert.Nil(t, body.Default)

	published := columns[4]
	assert.Equal(t, 5, published.OrdinalPosition)
	assert.Equal(t, "BOOLEAN", published.Type)
	require.NotNil(t, published.Default)
	assert.Equal(t, "0", *published.Default)
}

func TestSQLiteReader_ListColumnsUnparsedTypes(t *testing.T) {
	reader := NewSQLiteReader(newFixtureClient(t), datatype.Default())

	columns, err := reader.ListColumns(context.Background(), "tags", "")
	require.NoError(t, err)
	require.Len(t, columns, 4)

	// only the first column of a composite key is marked
	assert.Equal(t, schema.KeyPrimary, columns[0].Key)
	assert.Equal(t, schema.ExtraAutoIncrement, columns[0].Extra)
	assert.Empty(t, columns[1].Key)
	assert.Empty(t, columns[1].Extra)

	assert.Equal(t, "UNSIGNED BIG INT", columns[2].Type)
	assert.Equal(t, "", columns[3].Type)
}

func TestSQLiteReader_ListColumnsUnknownTable(t *testing.T) {
	reader := NewSQLiteReader(newFixtureClient(t), datatype.Default())

	columns, err := reader.ListColumns(context.Background(), "missing", "main")
	require.NoError(t, err)
	assert.Empty(t, columns)
}

func TestSQLiteReader_Constraints(t *testing.T) {
	ctx := context.Background()
	reader := NewSQLiteReader(newFixtureClient(t), datatype.Default())

	t.Run("primary_and_foreign_key", func(t *testing.T) {
		constraints, err := reader.Constraints(ctx, "posts")
		require.NoError(t, err)
		require.Len(t, constraints, 2)

		assert.Equal(t, schema.Constraint{
			Name:    "PRIMARY",
			Type:    schema.ConstraintPrimaryKey,
			Columns: []string{"id"},
		}, constraints[0])

		fk := constraints[1]
		assert.Equal(t, schema.ConstraintForeignKey, fk.Type)
		assert.Equal(t, []string{"author_id"}, fk.Columns)
		assert.Equal(t, "authors", fk.ReferencedTable)
		assert.Equal(t, []string{"id"}, fk.ReferencedColumns)
	})

	t.Run("unique", func(t *testing.T) {
		constraints, err := reader.Constraints(ctx, "authors")
		require.NoError(t, err)

		var unique []schema.Constraint
		for _, c := range constraints {
			if c.Type == schema.ConstraintUnique {
				unique = append(unique, c)
			}
		}
		require.Len(t, unique, 1)
		assert.Equal(t, []string{"email"}, unique[0].Columns)
	})

	t.Run("composite_primary_key", func(t *testing.T) {
		constraints, err := reader.Constraints(ctx, "tags")
		require.NoError(t, err)
		require.Len(t, constraints, 1)

		assert.Equal(t, []string{"post_id", "tag"}, constraints[0].Columns)
		pk, ok := schema.PrimaryKeyColumn(constraints)
		assert.True(t, ok)
		assert.Equal(t, "post_id", pk)
	})
}

func TestSQLiteReader_CompositeKeyOrder(t *testing.T) {
	ctx := context.Background()
	client := newFixtureClient(t)
	_, err := client.GetDB().ExecContext(ctx, "CREATE TABLE pairs (a INTEGER, b INTEGER, PRIMARY KEY (b, a))")
	require.NoError(t, err)
	reader := NewSQLiteReader(client, datatype.Default())

	constraints, err := reader.Constraints(ctx, "pairs")
	require.NoError(t, err)
	require.Len(t, constraints, 1)
	assert.Equal(t, []string{"b", "a"}, constraints[0].Columns)

	pk, ok := schema.PrimaryKeyColumn(constraints)
	require.True(t, ok)

	columns, err := reader.ListColumns(ctx, "pairs", "")
	require.NoError(t, err)

	var marked []string
	for _, col := range columns {
		if col.Key == schema.KeyPrimary {
			marked = append(marked, col.Name)
		}
	}
	assert.Equal(t, []string{pk}, marked)
	assert.Equal(t, "b", pk)
}

func TestNewReader(t *testing.T) {
	client := newFixtureClient(t)

	reader, err := NewReader(client, datatype.Default())
	require.NoError(t, err)
	assert.Equal(t, PlatformSQLite, reader.Platform())

	_, err = NewReader(fakeConn{platform: "oracle"}, datatype.Default())
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
}

type fakeConn struct {
	Conn
	platform string
}

func (c fakeConn) Platform() string { return c.platform }
