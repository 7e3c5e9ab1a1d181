package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/metaschema/internal/schema"
)

// MarkdownFormatter formats schema as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the schema in markdown format
func (f *MarkdownFormatter) Format(s *schema.Schema) error {
	if _, err := fmt.Fprint(f.writer, "# Database Schema\n\n"); err != nil {
		return err
	}

	for _, c := range s.Collections {
		if err := f.writeCollection(f.writer, c); err != nil {
			return err
		}
	}
	return nil
}

func (f *MarkdownFormatter) writeCollection(w io.Writer, c schema.CollectionSchema) error {
	ew := &errWriter{w: w}
	col := c.Collection

	ew.printf("## %s\n\n", col.Name)

	if col.Comment != nil {
		ew.printf("%s\n\n", *col.Comment)
	}

	if flags := collectionFlags(col); len(flags) > 0 {
		ew.printf("_%s_\n\n", strings.Join(flags, ", "))
	}
	if col.ItemNameTemplate != nil {
		ew.printf("- Item name template: `%s`\n", *col.ItemNameTemplate)
	}
	if col.PreviewURL != nil {
		ew.printf("- Preview URL: `%s`\n", *col.PreviewURL)
	}
	if col.ItemNameTemplate != nil || col.PreviewURL != nil {
		ew.println()
	}

	// Fields
	ew.print("### Fields\n\n")
	for _, field := range c.Fields {
		ew.printf("- %s\n", f.formatField(field, c.PrimaryKey))
	}
	ew.println()

	// Relations
	if len(c.Relations) > 0 {
		ew.print("### Relations\n\n")
		for _, rel := range c.Relations {
			ew.printf("- %s\n", relationString(rel))
		}
		ew.println()
	}

	return ew.err
}

func (f *MarkdownFormatter) formatField(field schema.Field, primaryKey string) string {
	parts := []string{field.Type}
	parts = append(parts, fieldAttributes(field, primaryKey)...)
	parts = append(parts, "interface `"+field.Interface+"`")

	line := fmt.Sprintf("**%s:** %s", field.Field, strings.Join(parts, ", "))
	if field.Comment != nil {
		line += " - " + *field.Comment
	}
	return line
}
