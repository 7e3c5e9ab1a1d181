package formatter

import (
	"encoding/json"
	"io"

	"github.com/tordrt/metaschema/internal/schema"
)

// JSONFormatter writes the schema as indented JSON
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

func (f *JSONFormatter) Format(s *schema.Schema) error {
	return encode(f.writer, s)
}

func (f *JSONFormatter) writeCollection(w io.Writer, c schema.CollectionSchema) error {
	return encode(w, c)
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
