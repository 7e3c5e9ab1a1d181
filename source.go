package metaschema

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tordrt/metaschema/internal/datatype"
	"github.com/tordrt/metaschema/internal/db"
	"github.com/tordrt/metaschema/internal/merge"
	"github.com/tordrt/metaschema/internal/schema"
)

// Record types returned by a Source
type (
	Collection = schema.Collection
	Field      = schema.Field
	Relation   = schema.Relation
	Params     = schema.Params
	Classifier = datatype.Classifier
	Conn       = db.Conn
	Client     = db.Client
)

// Source is the engine independent view of a database: its tables as
// collections, its columns as fields and the relations stored next to them.
//
// Lookups that may legitimately miss (CollectionExists, GetCollection,
// GetField) report absence through a boolean. A catalog query that fails
// during such a probe is logged and treated as absence. Every other query
// failure is returned to the caller.
type Source interface {
	// Platform names the engine behind the source
	Platform() string
	// SchemaName resolves the schema the source reads from
	SchemaName(ctx context.Context) (string, error)

	GetCollections(ctx context.Context, params *Params) ([]Collection, error)
	CollectionExists(ctx context.Context, name string) bool
	GetCollection(ctx context.Context, name string) (Collection, bool, error)

	GetFields(ctx context.Context, collection string, params *Params) ([]Field, error)
	GetAllFields(ctx context.Context) ([]Field, error)
	HasField(ctx context.Context, collection, field string) (bool, error)
	GetField(ctx context.Context, collection, field string) (Field, bool, error)

	GetRelations(ctx context.Context, collection string) ([]Relation, error)
	GetAllRelations(ctx context.Context) ([]Relation, error)

	GetPrimaryKey(ctx context.Context, collection string) (string, bool, error)
	HasPrimaryKey(ctx context.Context, collection string) (bool, error)

	DataType(t string) string
	ColumnDefaultInterface(nativeType string) string
	ColumnDefaultLength(nativeType string) (int, bool)
	IsType(nativeType string, list []string) bool
	CastValue(value any, nativeType string) (any, error)
	IsIntegerType(nativeType string) bool
	IsDecimalType(nativeType string) bool
	IsNumericType(nativeType string) bool
	IsStringType(nativeType string) bool
}

// Options configures a Schema.
//
// All fields are optional. If not specified:
//   - TablePrefix: "directus_"
//   - Classifier: the default type tables
//   - Logger: slog.Default()
type Options struct {
	// TablePrefix prefixes the collections, fields and relations overlay
	// tables
	TablePrefix string

	// WithoutOverlay reads the native catalog only. Every collection is
	// then unmanaged and no relations are reported.
	WithoutOverlay bool

	// Classifier supplies type classification. It is shared, never copied.
	Classifier *Classifier

	Logger *slog.Logger
}

// Schema implements Source over a single connection handle. The handle
// belongs to the caller; Schema never closes it.
type Schema struct {
	reader     db.Reader
	overlay    db.Overlay
	classifier *datatype.Classifier
	logger     *slog.Logger
}

var _ Source = (*Schema)(nil)

// New creates a Schema reading through conn
func New(conn Conn, opts *Options) (*Schema, error) {
	if opts == nil {
		opts = &Options{}
	}

	classifier := opts.Classifier
	if classifier == nil {
		classifier = datatype.Default()
	}

	reader, err := db.NewReader(conn, classifier)
	if err != nil {
		return nil, err
	}

	var overlay db.Overlay = emptyOverlay{}
	if !opts.WithoutOverlay {
		prefix := opts.TablePrefix
		if prefix == "" {
			prefix = db.DefaultTablePrefix
		}
		overlay = db.NewOverlayStore(conn, db.OverlayTablesWithPrefix(prefix))
	}

	return newSchema(reader, overlay, classifier, opts.Logger), nil
}

func newSchema(reader db.Reader, overlay db.Overlay, classifier *datatype.Classifier, logger *slog.Logger) *Schema {
	if logger == nil {
		logger = slog.Default()
	}
	return &Schema{
		reader:     reader,
		overlay:    overlay,
		classifier: classifier,
		logger:     logger.With("platform", reader.Platform()),
	}
}

// DefaultClassifier returns a classifier over the built-in type tables
func DefaultClassifier() *Classifier {
	return datatype.Default()
}

func (s *Schema) Platform() string {
	return s.reader.Platform()
}

func (s *Schema) SchemaName(ctx context.Context) (string, error) {
	return s.reader.SchemaName(ctx)
}

// GetCollections returns every table kept by params, merged with its
// collection overlay row
func (s *Schema) GetCollections(ctx context.Context, params *Params) ([]Collection, error) {
	tables, err := s.reader.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	kept := tables[:0]
	for _, table := range tables {
		if params.Keep(table.Name) {
			kept = append(kept, table)
		}
	}

	overlays, err := s.overlay.CollectionRows(ctx)
	if err != nil {
		return nil, err
	}

	collections := merge.Collections(kept, overlays)
	s.logger.Debug("merged collections", "tables", len(kept), "overlay_rows", len(overlays))
	return collections, nil
}

// CollectionExists reports whether a table named name exists. It never
// fails: a catalog query error counts as absence.
func (s *Schema) CollectionExists(ctx context.Context, name string) bool {
	return s.probe(ctx, name).Found()
}

// GetCollection returns one collection. ok is false when the table does
// not exist or could not be looked up.
func (s *Schema) GetCollection(ctx context.Context, name string) (Collection, bool, error) {
	probe := s.probe(ctx, name)
	if !probe.Found() {
		return Collection{}, false, nil
	}

	overlay, ok, err := s.overlay.CollectionRow(ctx, name)
	if err != nil {
		return Collection{}, false, err
	}

	return merge.Collection(probe.Table, overlay, ok), true, nil
}

func (s *Schema) probe(ctx context.Context, name string) db.Probe {
	probe := s.reader.ProbeTable(ctx, name)
	if probe.Status == db.ProbeQueryError {
		s.logger.Debug("collection probe failed", "collection", name, "error", probe.Err)
	}
	return probe
}

// GetFields returns the fields of a collection in column order. params
// filters field names.
func (s *Schema) GetFields(ctx context.Context, collection string, params *Params) ([]Field, error) {
	schemaName, err := s.reader.SchemaName(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve schema name: %w", err)
	}

	columns, err := s.reader.ListColumns(ctx, collection, schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", collection, err)
	}

	kept := columns[:0]
	for _, column := range columns {
		if params.Keep(column.Name) {
			kept = append(kept, column)
		}
	}

	overlays, err := s.overlay.FieldRows(ctx, collection)
	if err != nil {
		return nil, err
	}

	return merge.Fields(kept, overlays, s.classifier), nil
}

// GetAllFields returns the fields of every collection
func (s *Schema) GetAllFields(ctx context.Context) ([]Field, error) {
	tables, err := s.reader.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	var fields []Field
	for _, table := range tables {
		tableFields, err := s.GetFields(ctx, table.Name, nil)
		if err != nil {
			return nil, err
		}
		fields = append(fields, tableFields...)
	}
	return fields, nil
}

func (s *Schema) HasField(ctx context.Context, collection, field string) (bool, error) {
	_, ok, err := s.GetField(ctx, collection, field)
	return ok, err
}

// GetField returns a single field of a collection
func (s *Schema) GetField(ctx context.Context, collection, field string) (Field, bool, error) {
	fields, err := s.GetFields(ctx, collection, &Params{Include: []string{field}})
	if err != nil {
		return Field{}, false, err
	}
	if len(fields) == 0 {
		return Field{}, false, nil
	}
	return fields[0], true, nil
}

// GetRelations returns the relations with collection on either side
func (s *Schema) GetRelations(ctx context.Context, collection string) ([]Relation, error) {
	return s.overlay.Relations(ctx, collection)
}

func (s *Schema) GetAllRelations(ctx context.Context) ([]Relation, error) {
	return s.overlay.AllRelations(ctx)
}

// GetPrimaryKey returns the primary key column of a collection. Only the
// first column of a composite key is reported.
func (s *Schema) GetPrimaryKey(ctx context.Context, collection string) (string, bool, error) {
	constraints, err := s.reader.Constraints(ctx, collection)
	if err != nil {
		return "", false, fmt.Errorf("failed to read constraints of %s: %w", collection, err)
	}

	column, ok := schema.PrimaryKeyColumn(constraints)
	return column, ok, nil
}

func (s *Schema) HasPrimaryKey(ctx context.Context, collection string) (bool, error) {
	_, ok, err := s.GetPrimaryKey(ctx, collection)
	return ok, err
}

func (s *Schema) DataType(t string) string {
	return s.classifier.DataType(t)
}

func (s *Schema) ColumnDefaultInterface(nativeType string) string {
	return s.classifier.DefaultInterface(nativeType)
}

// ColumnDefaultLength returns false when the type has no default length
func (s *Schema) ColumnDefaultLength(nativeType string) (int, bool) {
	return s.classifier.DefaultLength(nativeType)
}

func (s *Schema) IsType(nativeType string, list []string) bool {
	return s.classifier.IsType(nativeType, list)
}

func (s *Schema) CastValue(value any, nativeType string) (any, error) {
	return s.classifier.CastValue(value, nativeType)
}

func (s *Schema) IsIntegerType(nativeType string) bool { return s.classifier.IsIntegerType(nativeType) }
func (s *Schema) IsDecimalType(nativeType string) bool { return s.classifier.IsDecimalType(nativeType) }
func (s *Schema) IsNumericType(nativeType string) bool { return s.classifier.IsNumericType(nativeType) }
func (s *Schema) IsStringType(nativeType string) bool  { return s.classifier.IsStringType(nativeType) }

// emptyOverlay stands in for the overlay tables of a plain database
type emptyOverlay struct{}

func (emptyOverlay) CollectionRows(context.Context) ([]schema.CollectionOverlay, error) {
	return nil, nil
}

func (emptyOverlay) CollectionRow(context.Context, string) (schema.CollectionOverlay, bool, error) {
	return schema.CollectionOverlay{}, false, nil
}

func (emptyOverlay) FieldRows(context.Context, string) ([]schema.FieldOverlay, error) {
	return nil, nil
}

func (emptyOverlay) Relations(context.Context, string) ([]schema.Relation, error) {
	return nil, nil
}

func (emptyOverlay) AllRelations(context.Context) ([]schema.Relation, error) {
	return nil, nil
}
