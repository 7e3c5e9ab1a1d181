// Package formatter renders a described schema as text, markdown or JSON,
// either to a single writer or as one file per collection.
package formatter

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/metaschema/internal/schema"
)

// Output formats
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// ErrUnknownFormat is returned for formats other than text, markdown and json
var ErrUnknownFormat = errors.New("unknown output format")

// Formatter writes a whole schema
type Formatter interface {
	Format(s *schema.Schema) error
}

// collectionWriter writes one collection; every single-writer formatter
// implements it so the multi-file formatter can reuse the layout
type collectionWriter interface {
	writeCollection(w io.Writer, c schema.CollectionSchema) error
}

// New returns the formatter for format writing to w
func New(format string, w io.Writer) (Formatter, error) {
	switch format {
	case FormatText:
		return NewTextFormatter(w), nil
	case FormatMarkdown:
		return NewMarkdownFormatter(w), nil
	case FormatJSON:
		return NewJSONFormatter(w), nil
	default:
		return nil, fmt.Errorf("%w: %q (must be 'text', 'markdown' or 'json')", ErrUnknownFormat, format)
	}
}

// Formats lists the accepted format names
func Formats() []string {
	return []string{FormatText, FormatMarkdown, FormatJSON}
}

// fieldAttributes lists the notable attributes of a field in display order
func fieldAttributes(f schema.Field, primaryKey string) []string {
	var attrs []string

	if f.Field == primaryKey || f.IsPrimaryKey() {
		attrs = append(attrs, "PK")
	}
	if f.Extra != "" {
		attrs = append(attrs, f.Extra)
	}
	if !f.Nullable {
		attrs = append(attrs, "NOT NULL")
	}
	if f.DefaultValue != nil {
		attrs = append(attrs, fmt.Sprintf("DEFAULT %s", *f.DefaultValue))
	}
	if f.Required {
		attrs = append(attrs, "required")
	}
	if f.Locked {
		attrs = append(attrs, "locked")
	}
	if f.HiddenInput || f.HiddenList {
		attrs = append(attrs, "hidden")
	}

	return attrs
}

// collectionFlags lists the overlay flags set on a collection
func collectionFlags(c schema.Collection) []string {
	var flags []string
	if c.Managed {
		flags = append(flags, "managed")
	}
	if c.Hidden {
		flags = append(flags, "hidden")
	}
	if c.Single {
		flags = append(flags, "single")
	}
	return flags
}

// relationString renders a relation as "a.field → b[.field]", naming the
// junction collection of many-to-many relations
func relationString(rel schema.Relation) string {
	var sb strings.Builder
	sb.WriteString(rel.CollectionA)
	sb.WriteString(".")
	sb.WriteString(rel.FieldA)
	sb.WriteString(" → ")
	sb.WriteString(rel.CollectionB)
	if rel.FieldB != nil && *rel.FieldB != "" {
		sb.WriteString(".")
		sb.WriteString(*rel.FieldB)
	}
	if rel.JunctionCollection != nil && *rel.JunctionCollection != "" {
		sb.WriteString(" via ")
		sb.WriteString(*rel.JunctionCollection)
	}
	return sb.String()
}

// relatedCollections returns the other collections a collection's
// relations point at, in first-seen order
func relatedCollections(c schema.CollectionSchema) []string {
	seen := make(map[string]bool)
	var related []string
	for _, rel := range c.Relations {
		for _, name := range []string{rel.CollectionA, rel.CollectionB} {
			if name == "" || name == c.Collection.Name || seen[name] {
				continue
			}
			seen[name] = true
			related = append(related, name)
		}
	}
	return related
}
