package db

import (
	"context"
	"fmt"

	"github.com/tordrt/metaschema/internal/datatype"
	"github.com/tordrt/metaschema/internal/schema"
)

//go:generate mockgen -source=reader.go -destination=../mocks/mock_db.go -package=mocks

// Reader reads native catalog metadata for one engine
type Reader interface {
	// Platform names the engine the reader queries
	Platform() string
	// SchemaName resolves the schema of the connection
	SchemaName(ctx context.Context) (string, error)
	// ListTables returns the base tables of the current schema
	ListTables(ctx context.Context) ([]schema.Table, error)
	// ProbeTable looks a single table up without failing
	ProbeTable(ctx context.Context, name string) Probe
	// ListColumns returns the columns of a table in ordinal order.
	// An empty schemaName means the current schema.
	ListColumns(ctx context.Context, table, schemaName string) ([]schema.Column, error)
	// Constraints returns the primary key, unique and foreign key
	// constraints of a table
	Constraints(ctx context.Context, table string) ([]schema.Constraint, error)
}

// Overlay reads application metadata stored in the overlay tables
type Overlay interface {
	CollectionRows(ctx context.Context) ([]schema.CollectionOverlay, error)
	CollectionRow(ctx context.Context, collection string) (schema.CollectionOverlay, bool, error)
	FieldRows(ctx context.Context, collection string) ([]schema.FieldOverlay, error)
	Relations(ctx context.Context, collection string) ([]schema.Relation, error)
	AllRelations(ctx context.Context) ([]schema.Relation, error)
}

// ProbeStatus is the outcome of a table lookup
type ProbeStatus int

const (
	ProbeFound ProbeStatus = iota
	ProbeNotFound
	ProbeQueryError
)

func (s ProbeStatus) String() string {
	switch s {
	case ProbeFound:
		return "found"
	case ProbeNotFound:
		return "not found"
	case ProbeQueryError:
		return "query error"
	}
	return fmt.Sprintf("ProbeStatus(%d)", int(s))
}

// Probe is the result of ProbeTable. Err is set only for ProbeQueryError.
type Probe struct {
	Status ProbeStatus
	Table  schema.Table
	Err    error
}

// Found reports whether the table exists
func (p Probe) Found() bool {
	return p.Status == ProbeFound
}

func found(table schema.Table) Probe { return Probe{Status: ProbeFound, Table: table} }
func notFound() Probe                { return Probe{Status: ProbeNotFound} }
func queryError(err error) Probe     { return Probe{Status: ProbeQueryError, Err: err} }

// NewReader returns the reader matching the platform of conn
func NewReader(conn Conn, classifier *datatype.Classifier) (Reader, error) {
	switch conn.Platform() {
	case PlatformSQLite:
		return NewSQLiteReader(conn, classifier), nil
	case PlatformMySQL:
		return NewMySQLReader(conn), nil
	case PlatformPostgres:
		return NewPostgresReader(conn), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, conn.Platform())
	}
}

// constraintBuilder groups catalog rows into constraints, keeping the order
// in which constraints first appear
type constraintBuilder struct {
	byName map[string]*schema.Constraint
	order  []string
}

func newConstraintBuilder() *constraintBuilder {
	return &constraintBuilder{byName: make(map[string]*schema.Constraint)}
}

func (b *constraintBuilder) add(name string, typ schema.ConstraintType, column, refTable, refColumn string) {
	c, ok := b.byName[name]
	if !ok {
		c = &schema.Constraint{Name: name, Type: typ}
		b.byName[name] = c
		b.order = append(b.order, name)
	}
	c.Columns = append(c.Columns, column)
	if refTable != "" {
		c.ReferencedTable = refTable
		c.ReferencedColumns = append(c.ReferencedColumns, refColumn)
	}
}

func (b *constraintBuilder) constraints() []schema.Constraint {
	out := make([]schema.Constraint, 0, len(b.order))
	for _, name := range b.order {
		out = append(out, *b.byName[name])
	}
	return out
}
