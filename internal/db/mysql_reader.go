package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/tordrt/metaschema/internal/schema"
)

// MySQLReader reads catalog metadata from MySQL's information_schema
type MySQLReader struct {
	conn Conn
}

// NewMySQLReader creates a new MySQL metadata reader
func NewMySQLReader(conn Conn) *MySQLReader {
	return &MySQLReader{conn: conn}
}

func (r *MySQLReader) Platform() string { return PlatformMySQL }

func (r *MySQLReader) SchemaName(ctx context.Context) (string, error) {
	return r.conn.CurrentSchema(ctx)
}

// ListTables returns the base tables of the current database
func (r *MySQLReader) ListTables(ctx context.Context) ([]schema.Table, error) {
	schemaName, err := r.SchemaName(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT table_name, table_comment
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := r.conn.QueryContext(ctx, query, schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []schema.Table
	for rows.Next() {
		var (
			name    string
			comment sql.NullString
		)
		if err := rows.Scan(&name, &comment); err != nil {
			return nil, err
		}
		tables = append(tables, schema.Table{Name: name, Schema: schemaName, Comment: tableComment(comment)})
	}

	return tables, rows.Err()
}

// ProbeTable looks a table up in information_schema.tables
func (r *MySQLReader) ProbeTable(ctx context.Context, name string) Probe {
	schemaName, err := r.SchemaName(ctx)
	if err != nil {
		return queryError(err)
	}

	query := `
		SELECT table_name, table_comment
		FROM information_schema.tables
		WHERE table_schema = ? AND table_name = ? AND table_type = 'BASE TABLE'
	`

	var (
		tableName string
		comment   sql.NullString
	)
	err = r.conn.QueryRowContext(ctx, query, schemaName, name).Scan(&tableName, &comment)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return notFound()
	case err != nil:
		return queryError(err)
	}
	return found(schema.Table{Name: tableName, Schema: schemaName, Comment: tableComment(comment)})
}

// ListColumns reads information_schema.columns for a table
func (r *MySQLReader) ListColumns(ctx context.Context, table, schemaName string) ([]schema.Column, error) {
	if schemaName == "" {
		var err error
		if schemaName, err = r.SchemaName(ctx); err != nil {
			return nil, err
		}
	}

	query := `
		SELECT
			c.column_name,
			c.ordinal_position,
			c.column_default,
			c.is_nullable,
			c.data_type,
			c.column_type,
			c.column_key,
			c.extra,
			c.character_maximum_length,
			c.character_octet_length,
			c.numeric_precision,
			c.numeric_scale
		FROM information_schema.columns c
		WHERE c.table_schema = ? AND c.table_name = ?
		ORDER BY c.ordinal_position
	`

	rows, err := r.conn.QueryContext(ctx, query, schemaName, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var (
			col        = schema.Column{Table: table}
			defaultVal sql.NullString
			nullable   string
			columnType string
			columnKey  string
			extra      string
			charLen    sql.NullInt64
			octetLen   sql.NullInt64
			precision  sql.NullInt64
			scale      sql.NullInt64
		)
		if err := rows.Scan(&col.Name, &col.OrdinalPosition, &defaultVal, &nullable, &col.Type, &columnType,
			&columnKey, &extra, &charLen, &octetLen, &precision, &scale); err != nil {
			return nil, err
		}

		col.Default = nullString(defaultVal)
		col.Nullable = nullable == "YES"
		col.Key = mysqlKey(columnKey)
		col.Extra = mysqlExtra(extra)
		col.CharacterMaximumLength = nullInt64(charLen)
		col.CharacterOctetLength = nullInt64(octetLen)
		col.NumericPrecision = nullInt64(precision)
		col.NumericScale = nullInt64(scale)
		if precision.Valid {
			unsigned := strings.Contains(strings.ToLower(columnType), "unsigned")
			col.NumericUnsigned = &unsigned
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// mysqlKey keeps the primary key marker only; MUL and UNI are reported
// through Constraints
func mysqlKey(columnKey string) string {
	if columnKey == schema.KeyPrimary {
		return schema.KeyPrimary
	}
	return ""
}

func mysqlExtra(extra string) string {
	if strings.Contains(strings.ToLower(extra), schema.ExtraAutoIncrement) {
		return schema.ExtraAutoIncrement
	}
	return ""
}

// Constraints reads table_constraints joined with key_column_usage
func (r *MySQLReader) Constraints(ctx context.Context, table string) ([]schema.Constraint, error) {
	schemaName, err := r.SchemaName(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT
			tc.constraint_name,
			tc.constraint_type,
			kcu.column_name,
			kcu.referenced_table_name,
			kcu.referenced_column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
			AND tc.table_name = kcu.table_name
		WHERE tc.table_schema = ?
			AND tc.table_name = ?
			AND tc.constraint_type IN ('PRIMARY KEY', 'UNIQUE', 'FOREIGN KEY')
		ORDER BY tc.constraint_type = 'PRIMARY KEY' DESC, tc.constraint_name, kcu.ordinal_position
	`

	rows, err := r.conn.QueryContext(ctx, query, schemaName, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	b := newConstraintBuilder()
	for rows.Next() {
		var (
			name, typ, column string
			refTable          sql.NullString
			refColumn         sql.NullString
		)
		if err := rows.Scan(&name, &typ, &column, &refTable, &refColumn); err != nil {
			return nil, err
		}
		b.add(name, schema.ConstraintType(typ), column, refTable.String, refColumn.String)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return b.constraints(), nil
}

func tableComment(comment sql.NullString) *string {
	if !comment.Valid || comment.String == "" {
		return nil
	}
	return &comment.String
}
