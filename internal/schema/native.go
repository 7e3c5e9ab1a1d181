package schema

import "encoding/json"

// Column key and extra markers shared by every engine
const (
	KeyPrimary         = "PRI"
	ExtraAutoIncrement = "auto_increment"
)

// Table represents a table as reported by the engine catalog
type Table struct {
	Name    string
	Schema  string
	Comment *string
}

// Column represents a column as reported by the engine catalog.
// OrdinalPosition is one-based on every engine.
type Column struct {
	Table           string
	Name            string
	OrdinalPosition int
	Default         *string
	Nullable        bool
	Type            string
	Key             string
	Extra           string

	// Engines that cannot supply these cheaply leave them nil
	CharacterMaximumLength *int64
	CharacterOctetLength   *int64
	NumericPrecision       *int64
	NumericScale           *int64
	NumericUnsigned        *bool
}

// ConstraintType identifies the kind of a table constraint
type ConstraintType string

const (
	ConstraintPrimaryKey ConstraintType = "PRIMARY KEY"
	ConstraintUnique     ConstraintType = "UNIQUE"
	ConstraintForeignKey ConstraintType = "FOREIGN KEY"
)

// Constraint represents a table constraint and the columns it covers
type Constraint struct {
	Name              string
	Type              ConstraintType
	Columns           []string
	ReferencedTable   string
	ReferencedColumns []string
}

// IsPrimaryKey reports whether the constraint is the table's primary key
func (c Constraint) IsPrimaryKey() bool {
	return c.Type == ConstraintPrimaryKey
}

// PrimaryKeyColumn returns the first column of the first primary key
// constraint. Only single-column keys are supported: for a composite key
// the first column wins.
func PrimaryKeyColumn(constraints []Constraint) (string, bool) {
	for _, c := range constraints {
		if !c.IsPrimaryKey() {
			continue
		}
		if len(c.Columns) == 0 {
			return "", false
		}
		return c.Columns[0], true
	}
	return "", false
}

// CollectionOverlay is a row of the collections overlay table
type CollectionOverlay struct {
	Collection       string
	ItemNameTemplate *string
	PreviewURL       *string
	Hidden           bool
	Single           bool
	Comment          *string
}

// FieldOverlay is a row of the fields overlay table
type FieldOverlay struct {
	ID          int64
	Collection  string
	Field       string
	Type        *string
	Interface   *string
	Options     json.RawMessage
	Locked      bool
	Translation bool
	Required    bool
	Sort        *int
	Comment     *string
	HiddenInput bool
	HiddenList  bool
}
