package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/tordrt/metaschema/internal/schema"
)

// PostgresReader reads catalog metadata from PostgreSQL's information_schema
type PostgresReader struct {
	conn Conn
}

// NewPostgresReader creates a new PostgreSQL metadata reader
func NewPostgresReader(conn Conn) *PostgresReader {
	return &PostgresReader{conn: conn}
}

func (r *PostgresReader) Platform() string { return PlatformPostgres }

func (r *PostgresReader) SchemaName(ctx context.Context) (string, error) {
	return r.conn.CurrentSchema(ctx)
}

const postgresTablesQuery = `
	SELECT
		t.table_name,
		obj_description(format('%I.%I', t.table_schema, t.table_name)::regclass, 'pg_class')
	FROM information_schema.tables t
	WHERE t.table_schema = $1 AND t.table_type = 'BASE TABLE'
`

// ListTables returns the base tables of the current schema
func (r *PostgresReader) ListTables(ctx context.Context) ([]schema.Table, error) {
	schemaName, err := r.SchemaName(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.QueryContext(ctx, postgresTablesQuery+" ORDER BY t.table_name", schemaName)
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
func (r *PostgresReader) ProbeTable(ctx context.Context, name string) Probe {
	schemaName, err := r.SchemaName(ctx)
	if err != nil {
		return queryError(err)
	}

	var (
		tableName string
		comment   sql.NullString
	)
	err = r.conn.QueryRowContext(ctx, postgresTablesQuery+" AND t.table_name = $2", schemaName, name).
		Scan(&tableName, &comment)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return notFound()
	case err != nil:
		return queryError(err)
	}
	return found(schema.Table{Name: tableName, Schema: schemaName, Comment: tableComment(comment)})
}

// ListColumns reads information_schema.columns for a table
func (r *PostgresReader) ListColumns(ctx context.Context, table, schemaName string) ([]schema.Column, error) {
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
			c.is_identity,
			EXISTS (
				SELECT 1 FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
					ON tc.constraint_name = kcu.constraint_name
					AND tc.table_schema = kcu.table_schema
					AND tc.table_name = kcu.table_name
				WHERE tc.table_schema = c.table_schema
					AND tc.table_name = c.table_name
					AND tc.constraint_type = 'PRIMARY KEY'
					AND kcu.column_name = c.column_name
					AND kcu.ordinal_position = 1
			) AS is_primary,
			c.character_maximum_length,
			c.character_octet_length,
			c.numeric_precision,
			c.numeric_scale
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
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
			identity   sql.NullString
			isPrimary  bool
			charLen    sql.NullInt64
			octetLen   sql.NullInt64
			precision  sql.NullInt64
			scale      sql.NullInt64
		)
		if err := rows.Scan(&col.Name, &col.OrdinalPosition, &defaultVal, &nullable, &col.Type, &identity,
			&isPrimary, &charLen, &octetLen, &precision, &scale); err != nil {
			return nil, err
		}

		col.Default = nullString(defaultVal)
		col.Nullable = nullable == "YES"
		if isPrimary {
			col.Key = schema.KeyPrimary
		}
		col.Extra = postgresExtra(col.Default, identity.String)
		col.CharacterMaximumLength = nullInt64(charLen)
		col.CharacterOctetLength = nullInt64(octetLen)
		col.NumericPrecision = nullInt64(precision)
		col.NumericScale = nullInt64(scale)

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// postgresExtra marks serial and identity columns as auto incremented
func postgresExtra(defaultValue *string, isIdentity string) string {
	if isIdentity == "YES" {
		return schema.ExtraAutoIncrement
	}
	if defaultValue != nil && strings.HasPrefix(*defaultValue, "nextval(") {
		return schema.ExtraAutoIncrement
	}
	return ""
}

// Constraints reads table_constraints joined with key_column_usage.
// Foreign key targets are resolved through referential_constraints.
func (r *PostgresReader) Constraints(ctx context.Context, table string) ([]schema.Constraint, error) {
	schemaName, err := r.SchemaName(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT
			tc.constraint_name,
			tc.constraint_type,
			kcu.column_name,
			COALESCE(ref.table_name, ''),
			COALESCE(ref.column_name, '')
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
			AND tc.table_name = kcu.table_name
		LEFT JOIN information_schema.referential_constraints rc
			ON rc.constraint_schema = tc.constraint_schema
			AND rc.constraint_name = tc.constraint_name
		LEFT JOIN information_schema.key_column_usage ref
			ON ref.constraint_schema = rc.unique_constraint_schema
			AND ref.constraint_name = rc.unique_constraint_name
			AND ref.ordinal_position = kcu.position_in_unique_constraint
		WHERE tc.table_schema = $1
			AND tc.table_name = $2
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
		var name, typ, column, refTable, refColumn string
		if err := rows.Scan(&name, &typ, &column, &refTable, &refColumn); err != nil {
			return nil, err
		}
		b.add(name, schema.ConstraintType(typ), column, refTable, refColumn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return b.constraints(), nil
}
