package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tordrt/metaschema/internal/schema"
)

// DefaultTablePrefix prefixes the overlay table names
const DefaultTablePrefix = "directus_"

// OverlayTables names the three overlay tables
type OverlayTables struct {
	Collections string
	Fields      string
	Relations   string
}

// OverlayTablesWithPrefix returns the overlay table names for a prefix
func OverlayTablesWithPrefix(prefix string) OverlayTables {
	return OverlayTables{
		Collections: prefix + "collections",
		Fields:      prefix + "fields",
		Relations:   prefix + "relations",
	}
}

// OverlayStore reads the collection, field and relation overlay tables.
// It never writes to them.
type OverlayStore struct {
	conn   Conn
	tables OverlayTables
}

// NewOverlayStore creates an overlay store over conn
func NewOverlayStore(conn Conn, tables OverlayTables) *OverlayStore {
	return &OverlayStore{conn: conn, tables: tables}
}

// Tables returns the overlay table names in use
func (s *OverlayStore) Tables() OverlayTables {
	return s.tables
}

func (s *OverlayStore) quote(name string) string {
	return quoteIdentifier(s.conn.Platform(), name)
}

func (s *OverlayStore) param(n int) string {
	return placeholder(s.conn.Platform(), n)
}

// collectionColumns coalesces hidden and single so NULL reads as false
func (s *OverlayStore) collectionColumns() string {
	falsy := "0"
	if s.conn.Platform() == PlatformPostgres {
		falsy = "false"
	}
	return fmt.Sprintf(`collection, item_name_template, preview_url,
		COALESCE(hidden, %[1]s) AS hidden, COALESCE(single, %[1]s) AS single, comment`, falsy)
}

// CollectionRows returns every row of the collections overlay table
func (s *OverlayStore) CollectionRows(ctx context.Context) ([]schema.CollectionOverlay, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", s.collectionColumns(), s.quote(s.tables.Collections))

	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection overlay: %w", err)
	}
	defer rows.Close()

	var overlays []schema.CollectionOverlay
	for rows.Next() {
		o, err := scanCollectionOverlay(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection overlay: %w", err)
		}
		overlays = append(overlays, o)
	}

	return overlays, rows.Err()
}

// CollectionRow returns the overlay row of one collection
func (s *OverlayStore) CollectionRow(ctx context.Context, collection string) (schema.CollectionOverlay, bool, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE collection = %s",
		s.collectionColumns(), s.quote(s.tables.Collections), s.param(1))

	o, err := scanCollectionOverlay(s.conn.QueryRowContext(ctx, query, collection))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.CollectionOverlay{}, false, nil
	}
	if err != nil {
		return schema.CollectionOverlay{}, false, fmt.Errorf("failed to query collection overlay: %w", err)
	}
	return o, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCollectionOverlay(row scanner) (schema.CollectionOverlay, error) {
	var (
		o                 schema.CollectionOverlay
		template, preview sql.NullString
		comment           sql.NullString
		hidden, single    sql.NullBool
	)
	if err := row.Scan(&o.Collection, &template, &preview, &hidden, &single, &comment); err != nil {
		return o, err
	}
	o.ItemNameTemplate = nullString(template)
	o.PreviewURL = nullString(preview)
	o.Hidden = hidden.Bool
	o.Single = single.Bool
	o.Comment = nullString(comment)
	return o, nil
}

// FieldRows returns the field overlay rows of a collection ordered by sort
func (s *OverlayStore) FieldRows(ctx context.Context, collection string) ([]schema.FieldOverlay, error) {
	query := fmt.Sprintf(`SELECT id, collection, field, type, interface, options, locked, translation,
		required, sort, comment, hidden_input, hidden_list
		FROM %s WHERE collection = %s ORDER BY sort`, s.quote(s.tables.Fields), s.param(1))

	rows, err := s.conn.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query field overlay: %w", err)
	}
	defer rows.Close()

	var overlays []schema.FieldOverlay
	for rows.Next() {
		var (
			o                             schema.FieldOverlay
			typ, iface, options, comment  sql.NullString
			locked, translation, required sql.NullBool
			hiddenInput, hiddenList       sql.NullBool
			sort                          sql.NullInt64
		)
		if err := rows.Scan(&o.ID, &o.Collection, &o.Field, &typ, &iface, &options, &locked, &translation,
			&required, &sort, &comment, &hiddenInput, &hiddenList); err != nil {
			return nil, fmt.Errorf("failed to scan field overlay: %w", err)
		}
		o.Type = nullString(typ)
		o.Interface = nullString(iface)
		o.Options = rawOptions(options)
		o.Locked = locked.Bool
		o.Translation = translation.Bool
		o.Required = required.Bool
		o.HiddenInput = hiddenInput.Bool
		o.HiddenList = hiddenList.Bool
		o.Comment = nullString(comment)
		if sort.Valid {
			v := int(sort.Int64)
			o.Sort = &v
		}
		overlays = append(overlays, o)
	}

	return overlays, rows.Err()
}

// rawOptions keeps stored options that are valid JSON; anything else is
// encoded as a JSON string
func rawOptions(options sql.NullString) json.RawMessage {
	if !options.Valid || strings.TrimSpace(options.String) == "" {
		return nil
	}
	if json.Valid([]byte(options.String)) {
		return json.RawMessage(options.String)
	}
	encoded, err := json.Marshal(options.String)
	if err != nil {
		return nil
	}
	return encoded
}

const relationColumns = `id, collection_a, field_a, junction_key_a, junction_collection,
		junction_mixed_collections, junction_key_b, collection_b, field_b`

// Relations returns every relation with the collection on either side
func (s *OverlayStore) Relations(ctx context.Context, collection string) ([]schema.Relation, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE (collection_a = %s OR collection_b = %s) ORDER BY id",
		relationColumns, s.quote(s.tables.Relations), s.param(1), s.param(2))

	return s.queryRelations(ctx, query, collection, collection)
}

// AllRelations returns every row of the relations overlay table
func (s *OverlayStore) AllRelations(ctx context.Context) ([]schema.Relation, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", relationColumns, s.quote(s.tables.Relations))

	return s.queryRelations(ctx, query)
}

func (s *OverlayStore) queryRelations(ctx context.Context, query string, args ...any) ([]schema.Relation, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query relations: %w", err)
	}
	defer rows.Close()

	var relations []schema.Relation
	for rows.Next() {
		var (
			rel                         schema.Relation
			collectionA, fieldA         sql.NullString
			keyA, junction, mixed, keyB sql.NullString
			collectionB, fieldB         sql.NullString
		)
		if err := rows.Scan(&rel.ID, &collectionA, &fieldA, &keyA, &junction, &mixed, &keyB,
			&collectionB, &fieldB); err != nil {
			return nil, fmt.Errorf("failed to scan relation: %w", err)
		}
		// a side left NULL in the overlay reads as empty
		rel.CollectionA = collectionA.String
		rel.FieldA = fieldA.String
		rel.CollectionB = collectionB.String
		rel.JunctionKeyA = nullString(keyA)
		rel.JunctionCollection = nullString(junction)
		rel.JunctionMixedCollections = nullString(mixed)
		rel.JunctionKeyB = nullString(keyB)
		rel.FieldB = nullString(fieldB)
		relations = append(relations, rel)
	}

	return relations, rows.Err()
}
