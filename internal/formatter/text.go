package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/metaschema/internal/schema"
)

// TextFormatter formats schema as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the schema in compact text format
func (f *TextFormatter) Format(s *schema.Schema) error {
	for i, c := range s.Collections {
		if i > 0 {
			if _, err := fmt.Fprintln(f.writer); err != nil { // Blank line between collections
				return err
			}
		}

		if err := f.writeCollection(f.writer, c); err != nil {
			return err
		}
	}
	return nil
}

func (f *TextFormatter) writeCollection(w io.Writer, c schema.CollectionSchema) error {
	ew := &errWriter{w: w}

	// Collection header with primary key and flags
	header := "COLLECTION " + c.Collection.Name
	if c.PrimaryKey != "" {
		header += fmt.Sprintf(" (PK: %s)", c.PrimaryKey)
	}
	if flags := collectionFlags(c.Collection); len(flags) > 0 {
		header += " [" + strings.Join(flags, ", ") + "]"
	}
	ew.println(header)

	if c.Collection.Comment != nil {
		ew.printf("  -- %s\n", *c.Collection.Comment)
	}

	for _, field := range c.Fields {
		ew.printf("  %s\n", f.formatField(field, c.PrimaryKey))
	}

	if len(c.Relations) > 0 {
		ew.println()
		ew.println("  RELATIONS:")
		for _, rel := range c.Relations {
			ew.printf("    %s\n", relationString(rel))
		}
	}

	return ew.err
}

func (f *TextFormatter) formatField(field schema.Field, primaryKey string) string {
	parts := []string{field.Field + ":", field.Type}
	parts = append(parts, fieldAttributes(field, primaryKey)...)
	parts = append(parts, "interface="+field.Interface)
	return strings.Join(parts, " ")
}

// errWriter keeps the first write error and skips later writes
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, args...)
}

func (ew *errWriter) print(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}
