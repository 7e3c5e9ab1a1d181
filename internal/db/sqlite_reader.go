package db

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/tordrt/metaschema/internal/datatype"
	"github.com/tordrt/metaschema/internal/schema"
)

// nativeTypePattern splits "VARCHAR(255)" into "VARCHAR" and "(255)"
var nativeTypePattern = regexp.MustCompile(`^([a-zA-Z]+)(\(.*\))?$`)

// ParseNativeType returns the base type of a declared column type and the
// parenthesized suffix, if any. ok is false when the declaration does not
// have the form letters[(...)].
func ParseNativeType(declared string) (base, args string, ok bool) {
	m := nativeTypePattern.FindStringSubmatch(declared)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// SQLiteReader reads catalog metadata from SQLite through sqlite_master
// and pragmas
type SQLiteReader struct {
	conn       Conn
	classifier *datatype.Classifier
}

// NewSQLiteReader creates a new SQLite metadata reader
func NewSQLiteReader(conn Conn, classifier *datatype.Classifier) *SQLiteReader {
	return &SQLiteReader{
		conn:       conn,
		classifier: classifier,
	}
}

func (r *SQLiteReader) Platform() string { return PlatformSQLite }

func (r *SQLiteReader) SchemaName(ctx context.Context) (string, error) {
	return r.conn.CurrentSchema(ctx)
}

// ListTables returns user tables ordered by name
func (r *SQLiteReader) ListTables(ctx context.Context) ([]schema.Table, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []schema.Table
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, schema.Table{Name: name, Schema: "main"})
	}

	return tables, rows.Err()
}

// ProbeTable looks a table up in sqlite_master
func (r *SQLiteReader) ProbeTable(ctx context.Context, name string) Probe {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name = ? AND name NOT LIKE 'sqlite_%'
	`

	var tableName string
	err := r.conn.QueryRowContext(ctx, query, name).Scan(&tableName)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return notFound()
	case err != nil:
		return queryError(err)
	}
	return found(schema.Table{Name: tableName, Schema: "main"})
}

// ListColumns reads PRAGMA table_info for a table
func (r *SQLiteReader) ListColumns(ctx context.Context, table, schemaName string) ([]schema.Column, error) {
	rows, err := r.fetchPragma(ctx, "table_info", table, schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var (
			cid          int
			name         string
			declaredType string
			notNull      int
			defaultValue sql.NullString
			pk           int
		)
		if err := rows.Scan(&cid, &name, &declaredType, &notNull, &defaultValue, &pk); err != nil {
			return nil, err
		}

		columns = append(columns, r.column(table, cid, name, declaredType, notNull, defaultValue, pk))
	}

	return columns, rows.Err()
}

func (r *SQLiteReader) column(table string, cid int, name, declaredType string, notNull int, defaultValue sql.NullString, pk int) schema.Column {
	dataType, _, ok := ParseNativeType(declaredType)
	if !ok {
		// typeless columns and multi-word declarations such as "UNSIGNED BIG INT"
		dataType = strings.TrimSpace(declaredType)
	}

	col := schema.Column{
		Table: table,
		Name:  name,
		// cid is zero-based
		OrdinalPosition: cid + 1,
		Default:         nullString(defaultValue),
		Nullable:        notNull == 0,
		Type:            dataType,
	}

	// SQLite assigns rowids to any integer primary key
	if pk == 1 {
		col.Key = schema.KeyPrimary
		if r.classifier.IsIntegerType(dataType) {
			col.Extra = schema.ExtraAutoIncrement
		}
	}

	return col
}

// Constraints derives the primary key from table_info, unique
// constraints from index_list and foreign keys from foreign_key_list
func (r *SQLiteReader) Constraints(ctx context.Context, table string) ([]schema.Constraint, error) {
	var constraints []schema.Constraint

	pk, err := r.primaryKey(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read primary key: %w", err)
	}
	if len(pk) > 0 {
		constraints = append(constraints, schema.Constraint{
			Name:    "PRIMARY",
			Type:    schema.ConstraintPrimaryKey,
			Columns: pk,
		})
	}

	unique, err := r.uniqueConstraints(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read unique constraints: %w", err)
	}
	constraints = append(constraints, unique...)

	foreign, err := r.foreignKeys(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign keys: %w", err)
	}
	constraints = append(constraints, foreign...)

	return constraints, nil
}

// primaryKey returns the primary key columns in key order, which is the
// pk position reported by table_info and not the column order
func (r *SQLiteReader) primaryKey(ctx context.Context, table string) ([]string, error) {
	rows, err := r.fetchPragma(ctx, "table_info", table, "")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type keyColumn struct {
		order int
		name  string
	}
	var keyColumns []keyColumn
	for rows.Next() {
		var (
			cid          int
			name         string
			declaredType string
			notNull      int
			defaultValue sql.NullString
			pkOrder      int
		)
		if err := rows.Scan(&cid, &name, &declaredType, &notNull, &defaultValue, &pkOrder); err != nil {
			return nil, err
		}
		if pkOrder > 0 {
			keyColumns = append(keyColumns, keyColumn{order: pkOrder, name: name})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(keyColumns, func(a, b keyColumn) int { return cmp.Compare(a.order, b.order) })

	pk := make([]string, 0, len(keyColumns))
	for _, kc := range keyColumns {
		pk = append(pk, kc.name)
	}
	return pk, nil
}

func (r *SQLiteReader) uniqueConstraints(ctx context.Context, table string) ([]schema.Constraint, error) {
	rows, err := r.fetchPragma(ctx, "index_list", table, "")
	if err != nil {
		return nil, err
	}

	var names []string
	for rows.Next() {
		var (
			seq     int
			name    string
			unique  int
			origin  string
			partial int
		)
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return nil, err
		}
		// origin "u" marks indexes created by a UNIQUE constraint
		if unique == 1 && origin == "u" {
			names = append(names, name)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var constraints []schema.Constraint
	for _, name := range names {
		columns, err := r.indexColumns(ctx, name)
		if err != nil {
			return nil, err
		}
		constraints = append(constraints, schema.Constraint{
			Name:    name,
			Type:    schema.ConstraintUnique,
			Columns: columns,
		})
	}

	return constraints, nil
}

func (r *SQLiteReader) indexColumns(ctx context.Context, index string) ([]string, error) {
	rows, err := r.fetchPragma(ctx, "index_info", index, "")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			seqno   int
			cid     int
			colName sql.NullString
		)
		if err := rows.Scan(&seqno, &cid, &colName); err != nil {
			return nil, err
		}
		if colName.Valid {
			columns = append(columns, colName.String)
		}
	}

	return columns, rows.Err()
}

func (r *SQLiteReader) foreignKeys(ctx context.Context, table string) ([]schema.Constraint, error) {
	rows, err := r.fetchPragma(ctx, "foreign_key_list", table, "")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	b := newConstraintBuilder()
	for rows.Next() {
		var (
			id          int
			seq         int
			targetTable string
			fromCol     string
			toCol       sql.NullString
			onUpdate    string
			onDelete    string
			match       string
		)
		if err := rows.Scan(&id, &seq, &targetTable, &fromCol, &toCol, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}
		name := fmt.Sprintf("fk_%s_%d", table, id)
		b.add(name, schema.ConstraintForeignKey, fromCol, targetTable, toCol.String)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return b.constraints(), nil
}

// fetchPragma runs PRAGMA [schema.]name('value')
func (r *SQLiteReader) fetchPragma(ctx context.Context, name, value, schemaName string) (*sql.Rows, error) {
	var sb strings.Builder
	sb.WriteString("PRAGMA ")
	if schemaName != "" {
		sb.WriteString(quoteIdentifier(PlatformSQLite, schemaName))
		sb.WriteString(".")
	}
	sb.WriteString(name)
	if value != "" {
		sb.WriteString("(")
		sb.WriteString(quoteValue(value))
		sb.WriteString(")")
	}

	return r.conn.QueryContext(ctx, sb.String())
}
