package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"github.com/tordrt/metaschema"
	"github.com/tordrt/metaschema/internal/config"
	"github.com/tordrt/metaschema/internal/formatter"
)

func newDescribeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Describe every collection with its fields and relations",
		Args:  cobra.NoArgs,
		RunE:  c.runDescribe,
	}
	describeFlags(cmd, c)
	return cmd
}

func newCollectionsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collections",
		Short: "List collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, closeSource, err := c.openSource(cmd.Context())
			if err != nil {
				return err
			}
			defer closeSource()

			collections, err := src.GetCollections(cmd.Context(), c.params())
			if err != nil {
				return err
			}

			if c.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), collections)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, col := range collections {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", col.Name, flagString(col), deref(col.Comment))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&c.tables, "tables", "t", "", "Specific collections (comma-separated, optional)")
	cmd.Flags().StringVar(&c.exclude, "exclude", "", "Collections to skip (comma-separated, optional)")
	return cmd
}

func newCollectionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "collection <name>",
		Short: "Show one collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, closeSource, err := c.openSource(ctx)
			if err != nil {
				return err
			}
			defer closeSource()

			col, ok, err := src.GetCollection(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return notFound(cmd, src, "collection", args[0])
			}

			if c.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), col)
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "collection:         %s\n", col.Name)
			_, _ = fmt.Fprintf(w, "managed:            %t\n", col.Managed)
			_, _ = fmt.Fprintf(w, "hidden:             %t\n", col.Hidden)
			_, _ = fmt.Fprintf(w, "single:             %t\n", col.Single)
			_, _ = fmt.Fprintf(w, "item_name_template: %s\n", deref(col.ItemNameTemplate))
			_, _ = fmt.Fprintf(w, "preview_url:        %s\n", deref(col.PreviewURL))
			_, err = fmt.Fprintf(w, "comment:            %s\n", deref(col.Comment))
			return err
		},
	}
}

func newFieldsCmd(c *cli) *cobra.Command {
	var fieldNames string

	cmd := &cobra.Command{
		Use:   "fields <collection> [field]",
		Short: "List the fields of a collection",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, closeSource, err := c.openSource(ctx)
			if err != nil {
				return err
			}
			defer closeSource()

			if !src.CollectionExists(ctx, args[0]) {
				return notFound(cmd, src, "collection", args[0])
			}

			var fields []metaschema.Field
			if len(args) == 2 {
				field, ok, err := src.GetField(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("field %q not found in %s", args[1], args[0])
				}
				fields = append(fields, field)
			} else {
				fields, err = src.GetFields(ctx, args[0], &metaschema.Params{Include: parseList(fieldNames)})
				if err != nil {
					return err
				}
			}

			if c.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), fields)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "FIELD\tTYPE\tKEY\tEXTRA\tNULL\tINTERFACE\tSORT")
			for _, f := range fields {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\t%d\n",
					f.Field, f.Type, f.Key, f.Extra, f.Nullable, f.Interface, f.Sort)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&fieldNames, "only", "", "Specific fields (comma-separated, optional)")
	return cmd
}

func newRelationsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "relations [collection]",
		Short: "List relations, optionally those touching one collection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, closeSource, err := c.openSource(ctx)
			if err != nil {
				return err
			}
			defer closeSource()

			var relations []metaschema.Relation
			if len(args) == 1 {
				relations, err = src.GetRelations(ctx, args[0])
			} else {
				relations, err = src.GetAllRelations(ctx)
			}
			if err != nil {
				return err
			}

			if c.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), relations)
			}
			for _, rel := range relations {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), relationLine(rel)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newPrimaryKeyCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "primary-key <collection>",
		Short: "Print the primary key field of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, closeSource, err := c.openSource(ctx)
			if err != nil {
				return err
			}
			defer closeSource()

			if !src.CollectionExists(ctx, args[0]) {
				return notFound(cmd, src, "collection", args[0])
			}

			pk, ok, err := src.GetPrimaryKey(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("collection %s has no primary key", args[0])
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), pk)
			return err
		},
	}
}

func newInitConfigCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := c.configPath
			if path == "" {
				var err error
				if path, err = config.DefaultPath(); err != nil {
					return err
				}
			}

			cfg := *c.cfg
			if url, err := c.databaseURL(); err == nil {
				cfg.DatabaseURL = url
			}
			if err := cfg.Save(path); err != nil {
				return err
			}
			slog.Info("config written", "path", path)
			_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}
}

func (c *cli) jsonOutput() bool {
	return c.cfg.Output.Format == formatter.FormatJSON
}

// notFound builds the error for a missing collection, suggesting close
// matches among the existing ones
func notFound(cmd *cobra.Command, src metaschema.Source, kind, name string) error {
	collections, err := src.GetCollections(cmd.Context(), nil)
	if err != nil {
		slog.Debug("failed to list collections for suggestions", "error", err)
		return fmt.Errorf("%s %q not found", kind, name)
	}

	names := make([]string, 0, len(collections))
	for _, col := range collections {
		names = append(names, col.Name)
	}

	if suggestions := suggest(name, names); len(suggestions) > 0 {
		return fmt.Errorf("%s %q not found (did you mean: %s?)", kind, name, strings.Join(suggestions, ", "))
	}
	return fmt.Errorf("%s %q not found", kind, name)
}

// suggest returns up to three candidates fuzzily matching name, best first
func suggest(name string, candidates []string) []string {
	matches := fuzzy.Find(strings.ToLower(name), lower(candidates))

	var out []string
	for i, m := range matches {
		if i == 3 {
			break
		}
		out = append(out, candidates[m.Index])
	}
	return out
}

func lower(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func flagString(col metaschema.Collection) string {
	var flags []string
	if col.Managed {
		flags = append(flags, "managed")
	}
	if col.Hidden {
		flags = append(flags, "hidden")
	}
	if col.Single {
		flags = append(flags, "single")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}

func relationLine(rel metaschema.Relation) string {
	line := fmt.Sprintf("%d\t%s.%s -> %s", rel.ID, rel.CollectionA, rel.FieldA, rel.CollectionB)
	if rel.FieldB != nil {
		line += "." + *rel.FieldB
	}
	if rel.JunctionCollection != nil {
		line += " via " + *rel.JunctionCollection
	}
	return line
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
