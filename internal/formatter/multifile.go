package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tordrt/metaschema/internal/schema"
)

// MultiFileFormatter writes schema to multiple files in a directory: an
// overview plus one file per collection
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string

	collection collectionWriter
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) (*MultiFileFormatter, error) {
	f := &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}

	switch format {
	case FormatText:
		f.collection = &TextFormatter{}
	case FormatMarkdown:
		f.collection = &MarkdownFormatter{}
	case FormatJSON:
		f.collection = &JSONFormatter{}
	default:
		return nil, fmt.Errorf("%w: %q (must be 'text', 'markdown' or 'json')", ErrUnknownFormat, format)
	}

	return f, nil
}

// Format writes the schema to multiple files
func (f *MultiFileFormatter) Format(s *schema.Schema) error {
	// Create output directory if it doesn't exist
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeFile("_overview", func(w io.Writer) error { return f.writeOverview(w, s) }); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	// Write per-collection files
	for _, c := range s.Collections {
		if err := f.writeFile(c.Collection.Name, func(w io.Writer) error {
			return f.collection.writeCollection(w, c)
		}); err != nil {
			return fmt.Errorf("failed to write collection file for %s: %w", c.Collection.Name, err)
		}
	}

	return nil
}

func (f *MultiFileFormatter) writeFile(name string, write func(io.Writer) error) (err error) {
	file, err := os.Create(filepath.Join(f.OutputDir, name+f.fileExtension()))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	return write(file)
}

func (f *MultiFileFormatter) writeOverview(w io.Writer, s *schema.Schema) error {
	// Sort collections alphabetically
	sorted := make([]schema.CollectionSchema, len(s.Collections))
	copy(sorted, s.Collections)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Collection.Name < sorted[j].Collection.Name
	})

	switch f.OutputFormat {
	case FormatMarkdown:
		return f.writeMarkdownOverview(w, sorted)
	case FormatJSON:
		return f.writeJSONOverview(w, sorted)
	default:
		return f.writeTextOverview(w, sorted)
	}
}

func (f *MultiFileFormatter) writeMarkdownOverview(w io.Writer, collections []schema.CollectionSchema) error {
	ew := &errWriter{w: w}
	ew.print("# Schema Overview\n\n")
	ew.printf("Each collection has a corresponding file: `<collection>%s`\n\n", f.fileExtension())
	ew.print("## Collections\n\n")

	for _, c := range collections {
		ew.printf("- **%s**", c.Collection.Name)
		if related := relatedCollections(c); len(related) > 0 {
			ew.printf(" (related: %s)", strings.Join(related, ", "))
		}
		ew.print("\n")
	}

	return ew.err
}

func (f *MultiFileFormatter) writeTextOverview(w io.Writer, collections []schema.CollectionSchema) error {
	ew := &errWriter{w: w}
	ew.print("SCHEMA OVERVIEW\n")
	ew.printf("Each collection has a file: <collection>%s\n\n", f.fileExtension())

	for _, c := range collections {
		ew.print(c.Collection.Name)
		if related := relatedCollections(c); len(related) > 0 {
			ew.printf(" (related: %s)", strings.Join(related, ","))
		}
		ew.print("\n")
	}

	return ew.err
}

type overviewEntry struct {
	Collection string   `json:"collection"`
	Managed    bool     `json:"managed"`
	Fields     int      `json:"fields"`
	Related    []string `json:"related,omitempty"`
}

func (f *MultiFileFormatter) writeJSONOverview(w io.Writer, collections []schema.CollectionSchema) error {
	entries := make([]overviewEntry, 0, len(collections))
	for _, c := range collections {
		entries = append(entries, overviewEntry{
			Collection: c.Collection.Name,
			Managed:    c.Collection.Managed,
			Fields:     len(c.Fields),
			Related:    relatedCollections(c),
		})
	}
	return encode(w, entries)
}

func (f *MultiFileFormatter) fileExtension() string {
	switch f.OutputFormat {
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}
