// Package merge joins native catalog descriptors with overlay rows.
//
// Every native record produces exactly one merged record. Overlay rows are
// matched by name through an index built once per call: the first row for
// a name is consumed by the first native record with that name and removed
// from the index, so duplicated overlay rows are never matched twice.
// Overlay rows without a native counterpart are dropped.
package merge

import (
	"github.com/tordrt/metaschema/internal/datatype"
	"github.com/tordrt/metaschema/internal/schema"
)

// index is a name keyed queue of overlay rows
type index[T any] map[string][]T

func newIndex[T any](rows []T, key func(T) string) index[T] {
	idx := make(index[T], len(rows))
	for _, row := range rows {
		k := key(row)
		idx[k] = append(idx[k], row)
	}
	return idx
}

// take removes and returns the first row stored under name
func (idx index[T]) take(name string) (T, bool) {
	var zero T
	queue := idx[name]
	if len(queue) == 0 {
		return zero, false
	}
	row := queue[0]
	if len(queue) == 1 {
		delete(idx, name)
	} else {
		idx[name] = queue[1:]
	}
	return row, true
}

// Collections merges native tables with collection overlay rows
func Collections(tables []schema.Table, overlays []schema.CollectionOverlay) []schema.Collection {
	idx := newIndex(overlays, func(o schema.CollectionOverlay) string { return o.Collection })

	collections := make([]schema.Collection, 0, len(tables))
	for _, table := range tables {
		overlay, ok := idx.take(table.Name)
		collections = append(collections, Collection(table, overlay, ok))
	}
	return collections
}

// Collection builds one collection. When ok is false the overlay is ignored
// and every overlay sourced attribute takes its default.
func Collection(table schema.Table, overlay schema.CollectionOverlay, ok bool) schema.Collection {
	c := schema.Collection{
		Name:    table.Name,
		Comment: table.Comment,
	}
	if !ok {
		return c
	}

	c.Managed = true
	c.ItemNameTemplate = overlay.ItemNameTemplate
	c.PreviewURL = overlay.PreviewURL
	c.Hidden = overlay.Hidden
	c.Single = overlay.Single
	if overlay.Comment != nil {
		c.Comment = overlay.Comment
	}
	return c
}

// Fields merges native columns with field overlay rows. The classifier
// supplies the interface of fields whose overlay names none.
func Fields(columns []schema.Column, overlays []schema.FieldOverlay, classifier *datatype.Classifier) []schema.Field {
	idx := newIndex(overlays, func(o schema.FieldOverlay) string { return o.Field })

	fields := make([]schema.Field, 0, len(columns))
	for _, column := range columns {
		overlay, ok := idx.take(column.Name)
		fields = append(fields, Field(column, overlay, ok, classifier))
	}
	return fields
}

// Field builds one field from a column and, when ok, its overlay row
func Field(column schema.Column, overlay schema.FieldOverlay, ok bool, classifier *datatype.Classifier) schema.Field {
	f := schema.Field{
		Collection:   column.Table,
		Field:        column.Name,
		Type:         column.Type,
		Key:          column.Key,
		Extra:        column.Extra,
		Nullable:     column.Nullable,
		DefaultValue: column.Default,
		Interface:    classifier.DefaultInterface(column.Type),
		Sort:         column.OrdinalPosition,
	}
	if !ok {
		return f
	}

	id := overlay.ID
	f.ID = &id
	if overlay.Interface != nil && *overlay.Interface != "" {
		f.Interface = *overlay.Interface
	}
	f.Options = overlay.Options
	f.Locked = overlay.Locked
	f.Translation = overlay.Translation
	f.Required = overlay.Required
	f.HiddenInput = overlay.HiddenInput
	f.HiddenList = overlay.HiddenList
	f.Comment = overlay.Comment
	if overlay.Sort != nil {
		f.Sort = *overlay.Sort
	}
	return f
}
