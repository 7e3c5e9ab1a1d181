package schema

import (
	"encoding/json"
	"slices"
)

// Schema represents every collection of a database together with its
// fields and relations
type Schema struct {
	Collections []CollectionSchema `json:"collections"`
}

// CollectionSchema groups a collection with the records that describe it
type CollectionSchema struct {
	Collection Collection `json:"collection"`
	PrimaryKey string     `json:"primary_key,omitempty"`
	Fields     []Field    `json:"fields"`
	Relations  []Relation `json:"relations"`
}

// Collection represents a table merged with its overlay row
type Collection struct {
	Name             string  `json:"collection"`
	ItemNameTemplate *string `json:"item_name_template"`
	PreviewURL       *string `json:"preview_url"`
	Hidden           bool    `json:"hidden"`
	Single           bool    `json:"single"`
	Comment          *string `json:"comment"`
	Managed          bool    `json:"managed"`
}

// Field represents a column merged with its overlay row
type Field struct {
	ID           *int64          `json:"id"`
	Collection   string          `json:"collection"`
	Field        string          `json:"field"`
	Type         string          `json:"type"`
	Key          string          `json:"key,omitempty"`
	Extra        string          `json:"extra,omitempty"`
	Nullable     bool            `json:"nullable"`
	DefaultValue *string         `json:"default_value"`
	Interface    string          `json:"interface"`
	Options      json.RawMessage `json:"options,omitempty"`
	Locked       bool            `json:"locked"`
	Translation  bool            `json:"translation"`
	Required     bool            `json:"required"`
	HiddenInput  bool            `json:"hidden_input"`
	HiddenList   bool            `json:"hidden_list"`
	Sort         int             `json:"sort"`
	Comment      *string         `json:"comment"`
}

// IsPrimaryKey reports whether the field carries the primary key marker
func (f Field) IsPrimaryKey() bool {
	return f.Key == KeyPrimary
}

// Relation represents a row of the relations overlay table
type Relation struct {
	ID                       int64   `json:"id"`
	CollectionA              string  `json:"collection_a"`
	FieldA                   string  `json:"field_a"`
	JunctionKeyA             *string `json:"junction_key_a"`
	JunctionCollection       *string `json:"junction_collection"`
	JunctionMixedCollections *string `json:"junction_mixed_collections"`
	JunctionKeyB             *string `json:"junction_key_b"`
	CollectionB              string  `json:"collection_b"`
	FieldB                   *string `json:"field_b"`
}

// Involves reports whether either side of the relation is the given collection
func (r Relation) Involves(collection string) bool {
	return r.CollectionA == collection || r.CollectionB == collection
}

// Params narrows the names returned by list operations.
// Include is applied first, then Exclude. Empty lists keep everything.
type Params struct {
	Include []string
	Exclude []string
}

// Keep reports whether name survives the Include/Exclude filters
func (p *Params) Keep(name string) bool {
	if p == nil {
		return true
	}
	if len(p.Include) > 0 && !slices.Contains(p.Include, name) {
		return false
	}
	return !slices.Contains(p.Exclude, name)
}
