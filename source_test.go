package metaschema

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tordrt/metaschema/internal/datatype"
	"github.com/tordrt/metaschema/internal/db"
	"github.com/tordrt/metaschema/internal/mocks"
	"github.com/tordrt/metaschema/internal/schema"
)

func newBlogSchema(t *testing.T) (*Schema, Client) {
	t.Helper()

	ctx := context.Background()
	client, err := Connect(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	ddl, err := os.ReadFile("testdata/blog.sql")
	require.NoError(t, err)
	_, err = client.GetDB().ExecContext(ctx, string(ddl))
	require.NoError(t, err)

	src, err := New(client, nil)
	require.NoError(t, err)
	return src, client
}

func collectionNames(collections []Collection) []string {
	names := make([]string, 0, len(collections))
	for _, c := range collections {
		names = append(names, c.Name)
	}
	return names
}

func TestGetCollections(t *testing.T) {
	ctx := context.Background()
	src, client := newBlogSchema(t)

	_, err := client.GetDB().ExecContext(ctx, "UPDATE directus_collections SET hidden = 1 WHERE collection = 'posts'")
	require.NoError(t, err)

	collections, err := src.GetCollections(ctx, &Params{Include: []string{"posts", "comments"}})
	require.NoError(t, err)
	require.Len(t, collections, 2)

	byName := make(map[string]Collection)
	for _, c := range collections {
		byName[c.Name] = c
	}

	posts := byName["posts"]
	assert.True(t, posts.Hidden)
	assert.True(t, posts.Managed)
	require.NotNil(t, posts.Comment)
	assert.Equal(t, "Blog posts", *posts.Comment)

	comments := byName["comments"]
	assert.False(t, comments.Hidden)
	assert.False(t, comments.Managed)
	assert.Nil(t, comments.ItemNameTemplate)
}

func TestGetCollections_Params(t *testing.T) {
	ctx := context.Background()
	src, _ := newBlogSchema(t)

	tests := []struct {
		name   string
		params *Params
		want   []string
	}{
		{
			name:   "nil params keep everything",
			params: nil,
			want: []string{"authors", "comments", "directus_collections", "directus_fields",
				"directus_relations", "posts", "tags"},
		},
		{
			name:   "include",
			params: &Params{Include: []string{"posts", "tags", "missing"}},
			want:   []string{"posts", "tags"},
		},
		{
			name: "include then exclude",
			params: &Params{
				Include: []string{"posts", "tags"},
				Exclude: []string{"tags"},
			},
			want: []string{"posts"},
		},
		{
			name: "exclude",
			params: &Params{Exclude: []string{
				"directus_collections", "directus_fields", "directus_relations",
			}},
			want: []string{"authors", "comments", "posts", "tags"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collections, err := src.GetCollections(ctx, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, collectionNames(collections))
		})
	}
}

func TestCollectionExists(t *testing.T) {
	ctx := context.Background()
	src, client := newBlogSchema(t)

	assert.True(t, src.CollectionExists(ctx, "posts"))
	assert.False(t, src.CollectionExists(ctx, "ghost"))

	require.NoError(t, client.Close())
	assert.False(t, src.CollectionExists(ctx, "posts"))
}

func TestGetCollection(t *testing.T) {
	ctx := context.Background()
	src, _ := newBlogSchema(t)

	posts, ok, err := src.GetCollection(ctx, "posts")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, posts.Managed)
	require.NotNil(t, posts.ItemNameTemplate)
	assert.Equal(t, "{{title}}", *posts.ItemNameTemplate)

	authors, ok, err := src.GetCollection(ctx, "authors")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, authors.Managed)

	// overlay-only collections do not exist
	_, ok, err = src.GetCollection(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetFields(t *testing.T) {
	ctx := context.Background()
	src, _ := newBlogSchema(t)

	fields, err := src.GetFields(ctx, "posts", nil)
	require.NoError(t, err)
	require.Len(t, fields, 5)

	var names []string
	for _, f := range fields {
		names = append(names, f.Field)
		assert.Equal(t, "posts", f.Collection)
	}
	assert.Equal(t, []string{"id", "title", "body", "author_id", "published"}, names)

	id := fields[0]
	assert.True(t, id.IsPrimaryKey())
	assert.Equal(t, "auto_increment", id.Extra)
	require.NotNil(t, id.ID)
	assert.Equal(t, int64(3), *id.ID)
	assert.Equal(t, 1, id.Sort)
	assert.Equal(t, datatype.InterfaceNumeric, id.Interface)

	title := fields[1]
	require.NotNil(t, title.ID)
	assert.Equal(t, int64(1), *title.ID)
	assert.True(t, title.Required)
	assert.Equal(t, 2, title.Sort)
	assert.JSONEq(t, `{"placeholder":"Title"}`, string(title.Options))

	body := fields[2]
	assert.Equal(t, "wysiwyg", body.Interface)
	// no overlay sort: falls back to the column position
	assert.Equal(t, 3, body.Sort)

	authorID := fields[3]
	assert.Nil(t, authorID.ID)
	assert.False(t, authorID.Required)
	assert.Equal(t, 4, authorID.Sort)
	assert.Equal(t, datatype.InterfaceNumeric, authorID.Interface)

	// BOOLEAN has no interface of its own
	published := fields[4]
	assert.Equal(t, datatype.InterfaceTextInput, published.Interface)
}

func TestGetFields_Params(t *testing.T) {
	ctx := context.Background()
	src, _ := newBlogSchema(t)

	fields, err := src.GetFields(ctx, "posts", &Params{Exclude: []string{"body", "published"}})
	require.NoError(t, err)
	require.Len(t, fields, 3)
	assert.Equal(t, "author_id", fields[2].Field)
}

func TestGetAllFields(t *testing.T) {
	ctx := context.Background()
	src, _ := newBlogSchema(t)

	fields, err := src.GetAllFields(ctx)
	require.NoError(t, err)

	perCollection := make(map[string]int)
	for _, f := range fields {
		perCollection[f.Collection]++
	}
	assert.Equal(t, 4, perCollection["authors"])
	assert.Equal(t, 5, perCollection["posts"])
	assert.Equal(t, 3, perCollection["comments"])
	assert.Equal(t, 4, perCollection["tags"])
	assert.Zero(t, perCollection["ghost"])
}

func TestGetField(t *testing.T) {
	ctx := context.Background()
	src, _ := newBlogSchema(t)

	field, ok, err := src.GetField(ctx, "posts", "title")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "VARCHAR", field.Type)

	ok, err = src.HasField(ctx, "posts", "subtitle")
	require.NoError(t, err)
	assert.False(t, ok)

	// overlay rows without a column do not create fields
	ok, err = src.HasField(ctx, "ghost", "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetRelations(t *testing.T) {
	ctx := context.Background()
	src, _ := newBlogSchema(t)

	relations, err := src.GetRelations(ctx, "posts")
	require.NoError(t, err)
	require.Len(t, relations, 2)
	for _, rel := range relations {
		assert.True(t, rel.CollectionA == "posts" || rel.CollectionB == "posts")
	}

	all, err := src.GetAllRelations(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGetPrimaryKey(t *testing.T) {
	ctx := context.Background()
	src, client := newBlogSchema(t)

	_, err := client.GetDB().ExecContext(ctx, "CREATE TABLE log (message TEXT)")
	require.NoError(t, err)
	_, err = client.GetDB().ExecContext(ctx, "CREATE TABLE pairs (a INTEGER, b INTEGER, PRIMARY KEY (b, a))")
	require.NoError(t, err)

	tests := []struct {
		collection string
		want       string
		ok         bool
	}{
		{"posts", "id", true},
		{"tags", "post_id", true},
		// key order, not column order
		{"pairs", "b", true},
		{"log", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.collection, func(t *testing.T) {
			pk, ok, err := src.GetPrimaryKey(ctx, tt.collection)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, pk)

			has, err := src.HasPrimaryKey(ctx, tt.collection)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, has)

			fields, err := src.GetFields(ctx, tt.collection, nil)
			require.NoError(t, err)
			for _, f := range fields {
				assert.Equal(t, f.Field == pk, f.IsPrimaryKey(), "field %s", f.Field)
			}
		})
	}
}

func TestClassifierPassthroughs(t *testing.T) {
	src, _ := newBlogSchema(t)

	assert.Equal(t, db.PlatformSQLite, src.Platform())
	assert.Equal(t, "text", src.DataType("json"))
	assert.Equal(t, "longtext", src.DataType("longjson"))
	assert.Equal(t, "varchar", src.DataType("varchar"))
	assert.Equal(t, datatype.InterfaceTextInput, src.ColumnDefaultInterface("GEOMETRY"))

	length, ok := src.ColumnDefaultLength("VARCHAR")
	assert.True(t, ok)
	assert.Equal(t, 255, length)
	_, ok = src.ColumnDefaultLength("DATETIME")
	assert.False(t, ok)

	assert.True(t, src.IsType("INT", []string{"int", "integer"}))
	assert.True(t, src.IsIntegerType("BIGINT"))
	assert.True(t, src.IsDecimalType("decimal"))
	assert.True(t, src.IsNumericType("float"))
	assert.True(t, src.IsStringType("varchar"))

	v, err := src.CastValue("42", "INTEGER")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestWithoutOverlay(t *testing.T) {
	ctx := context.Background()
	src, client := newBlogSchema(t)

	plain, err := New(client, &Options{WithoutOverlay: true})
	require.NoError(t, err)

	collections, err := plain.GetCollections(ctx, &Params{Include: []string{"posts"}})
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.False(t, collections[0].Managed)

	fields, err := plain.GetFields(ctx, "posts", nil)
	require.NoError(t, err)
	assert.Nil(t, fields[1].ID)

	relations, err := plain.GetRelations(ctx, "posts")
	require.NoError(t, err)
	assert.Empty(t, relations)

	managed, _, err := src.GetCollection(ctx, "posts")
	require.NoError(t, err)
	assert.True(t, managed.Managed)
}

func TestTablePrefix(t *testing.T) {
	ctx := context.Background()
	_, client := newBlogSchema(t)

	src, err := New(client, &Options{TablePrefix: "cms_"})
	require.NoError(t, err)

	_, err = src.GetCollections(ctx, nil)
	assert.ErrorContains(t, err, "cms_collections")
}

func TestSchema_ErrorPropagation(t *testing.T) {
	ctx := context.Background()
	queryErr := errors.New("connection reset")

	t.Run("list_tables", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		reader := mocks.NewMockReader(ctrl)
		overlay := mocks.NewMockOverlay(ctrl)
		reader.EXPECT().Platform().Return(db.PlatformMySQL).AnyTimes()
		reader.EXPECT().ListTables(ctx).Return(nil, queryErr)

		src := newSchema(reader, overlay, datatype.Default(), nil)
		_, err := src.GetCollections(ctx, nil)
		assert.ErrorIs(t, err, queryErr)
	})

	t.Run("collection_overlay", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		reader := mocks.NewMockReader(ctrl)
		overlay := mocks.NewMockOverlay(ctrl)
		reader.EXPECT().Platform().Return(db.PlatformMySQL).AnyTimes()
		reader.EXPECT().ListTables(ctx).Return([]schema.Table{{Name: "posts"}}, nil)
		overlay.EXPECT().CollectionRows(ctx).Return(nil, queryErr)

		src := newSchema(reader, overlay, datatype.Default(), nil)
		_, err := src.GetCollections(ctx, nil)
		assert.ErrorIs(t, err, queryErr)
	})

	t.Run("probe_query_error_is_absence", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		reader := mocks.NewMockReader(ctrl)
		overlay := mocks.NewMockOverlay(ctrl)
		reader.EXPECT().Platform().Return(db.PlatformMySQL).AnyTimes()
		reader.EXPECT().ProbeTable(ctx, "posts").
			Return(db.Probe{Status: db.ProbeQueryError, Err: queryErr}).Times(2)

		src := newSchema(reader, overlay, datatype.Default(), nil)
		assert.False(t, src.CollectionExists(ctx, "posts"))

		_, ok, err := src.GetCollection(ctx, "posts")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("columns", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		reader := mocks.NewMockReader(ctrl)
		overlay := mocks.NewMockOverlay(ctrl)
		reader.EXPECT().Platform().Return(db.PlatformPostgres).AnyTimes()
		reader.EXPECT().SchemaName(ctx).Return("public", nil)
		reader.EXPECT().ListColumns(ctx, "posts", "public").Return(nil, queryErr)

		src := newSchema(reader, overlay, datatype.Default(), nil)
		_, err := src.GetFields(ctx, "posts", nil)
		assert.ErrorIs(t, err, queryErr)
	})

	t.Run("constraints", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		reader := mocks.NewMockReader(ctrl)
		overlay := mocks.NewMockOverlay(ctrl)
		reader.EXPECT().Platform().Return(db.PlatformPostgres).AnyTimes()
		reader.EXPECT().Constraints(ctx, "posts").Return(nil, queryErr)

		src := newSchema(reader, overlay, datatype.Default(), nil)
		_, _, err := src.GetPrimaryKey(ctx, "posts")
		assert.ErrorIs(t, err, queryErr)
	})

	t.Run("relations", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		reader := mocks.NewMockReader(ctrl)
		overlay := mocks.NewMockOverlay(ctrl)
		reader.EXPECT().Platform().Return(db.PlatformPostgres).AnyTimes()
		overlay.EXPECT().Relations(ctx, "posts").Return(nil, queryErr)

		src := newSchema(reader, overlay, datatype.Default(), nil)
		_, err := src.GetRelations(ctx, "posts")
		assert.ErrorIs(t, err, queryErr)
	})
}

func TestSchema_MergesReaderOutput(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	reader := mocks.NewMockReader(ctrl)
	overlay := mocks.NewMockOverlay(ctrl)

	sort := 7
	iface := "slider"
	reader.EXPECT().Platform().Return(db.PlatformMySQL).AnyTimes()
	reader.EXPECT().SchemaName(ctx).Return("cms", nil)
	reader.EXPECT().ListColumns(ctx, "products", "cms").Return([]schema.Column{
		{Table: "products", Name: "id", OrdinalPosition: 1, Type: "int", Key: schema.KeyPrimary, Extra: schema.ExtraAutoIncrement},
		{Table: "products", Name: "rating", OrdinalPosition: 2, Type: "tinyint"},
	}, nil)
	overlay.EXPECT().FieldRows(ctx, "products").Return([]schema.FieldOverlay{
		{ID: 10, Collection: "products", Field: "rating", Interface: &iface, Sort: &sort},
		{ID: 11, Collection: "products", Field: "rating"},
	}, nil)

	src := newSchema(reader, overlay, datatype.Default(), nil)
	fields, err := src.GetFields(ctx, "products", nil)
	require.NoError(t, err)
	require.Len(t, fields, 2)

	assert.Nil(t, fields[0].ID)
	assert.Equal(t, 1, fields[0].Sort)

	require.NotNil(t, fields[1].ID)
	assert.Equal(t, int64(10), *fields[1].ID)
	assert.Equal(t, "slider", fields[1].Interface)
	assert.Equal(t, 7, fields[1].Sort)
}

func TestNew_UnsupportedPlatform(t *testing.T) {
	_, err := New(oracleConn{}, nil)
	assert.ErrorIs(t, err, db.ErrUnsupportedPlatform)
}

type oracleConn struct {
	Conn
}

func (oracleConn) Platform() string { return "oracle" }
