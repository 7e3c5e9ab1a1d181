package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tordrt/metaschema"
	"github.com/tordrt/metaschema/internal/config"
	"github.com/tordrt/metaschema/internal/formatter"
)

// cli holds the flag values shared by every command
type cli struct {
	dbURL          string
	mysqlURL       string
	sqlitePath     string
	configPath     string
	tablePrefix    string
	noOverlay      bool
	logLevel       string
	format         string
	outputFile     string
	outputDir      string
	tables         string
	exclude        string
	splitThreshold int

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "metaschema",
		Short: "Describe a database as collections, fields and relations",
		Long: `metaschema reads the catalog of a PostgreSQL, MySQL or SQLite database, merges it with
the collection, field and relation overlay tables stored next to it, and prints the result.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		RunE:              c.runDescribe,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.dbURL, "db-url", "", "PostgreSQL connection string")
	flags.StringVar(&c.mysqlURL, "mysql-url", "", "MySQL connection string")
	flags.StringVar(&c.sqlitePath, "sqlite", "", "SQLite database file path")
	flags.StringVar(&c.configPath, "config", "", "Config file (default: ~/.config/metaschema/config.yaml)")
	flags.StringVar(&c.tablePrefix, "table-prefix", "", "Overlay table prefix (default: directus_)")
	flags.BoolVar(&c.noOverlay, "no-overlay", false, "Read the native catalog only")
	flags.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVarP(&c.format, "format", "f", "", "Output format: text, markdown or json (default: text)")

	describeFlags(rootCmd, c)

	rootCmd.AddCommand(
		newDescribeCmd(c),
		newCollectionsCmd(c),
		newCollectionCmd(c),
		newFieldsCmd(c),
		newRelationsCmd(c),
		newPrimaryKeyCmd(c),
		newMCPCmd(c),
		newInitConfigCmd(c),
	)

	return rootCmd
}

func describeFlags(cmd *cobra.Command, c *cli) {
	cmd.Flags().StringVarP(&c.outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&c.outputDir, "output-dir", "d", "", "Output directory for multi-file output")
	cmd.Flags().StringVarP(&c.tables, "tables", "t", "", "Specific collections (comma-separated, optional)")
	cmd.Flags().StringVar(&c.exclude, "exclude", "", "Collections to skip (comma-separated, optional)")
	cmd.Flags().IntVar(&c.splitThreshold, "split-threshold", 0, "Split into multiple files when collection count exceeds this (requires --output-dir)")
}

// setup loads the config file, applies flag overrides and installs the logger
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	if c.tablePrefix != "" {
		cfg.Overlay.TablePrefix = c.tablePrefix
	}
	if c.noOverlay {
		cfg.Overlay.Disabled = true
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if c.format != "" {
		cfg.Output.Format = c.format
	}
	if c.outputDir != "" {
		cfg.Output.Dir = c.outputDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	slog.SetDefault(newLogger(cmd.ErrOrStderr(), level, cfg.Log.Format))

	c.cfg = cfg
	return nil
}

func (c *cli) loadConfig() (*config.Config, error) {
	if c.configPath != "" {
		return config.Load(c.configPath)
	}
	path, err := config.DefaultPath()
	if err != nil {
		// no home directory: run on defaults and flags alone
		return config.DefaultConfig(), nil
	}
	return config.Load(path)
}

func newLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// databaseURL picks the database from the connection flags, falling back
// to the config file
func (c *cli) databaseURL() (string, error) {
	// Validate database flags
	dbCount := 0
	if c.dbURL != "" {
		dbCount++
	}
	if c.mysqlURL != "" {
		dbCount++
	}
	if c.sqlitePath != "" {
		dbCount++
	}
	if dbCount > 1 {
		return "", fmt.Errorf("only one of --db-url, --mysql-url, or --sqlite can be specified")
	}

	switch {
	case c.dbURL != "":
		return c.dbURL, nil
	case c.mysqlURL != "":
		if strings.HasPrefix(c.mysqlURL, "mysql://") {
			return c.mysqlURL, nil
		}
		return "mysql://" + c.mysqlURL, nil
	case c.sqlitePath != "":
		return "sqlite://" + c.sqlitePath, nil
	case c.cfg != nil && c.cfg.DatabaseURL != "":
		return c.cfg.DatabaseURL, nil
	}

	return "", fmt.Errorf("one of --db-url, --mysql-url, or --sqlite must be specified")
}

// openSource connects and builds the Source. The returned function closes
// the connection.
func (c *cli) openSource(ctx context.Context) (metaschema.Source, func(), error) {
	url, err := c.databaseURL()
	if err != nil {
		return nil, nil, err
	}

	client, err := metaschema.Connect(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	closeClient := func() {
		if err := client.Close(); err != nil {
			slog.Warn("failed to close database connection", "error", err)
		}
	}

	src, err := metaschema.New(client, &metaschema.Options{
		TablePrefix:    c.cfg.Overlay.TablePrefix,
		WithoutOverlay: c.cfg.Overlay.Disabled,
		Logger:         slog.Default(),
	})
	if err != nil {
		closeClient()
		return nil, nil, err
	}

	slog.Debug("connected", "platform", src.Platform())
	return src, closeClient, nil
}

// params builds collection filters from --tables/--exclude and the config
func (c *cli) params() *metaschema.Params {
	p := &metaschema.Params{
		Include: c.cfg.Include,
		Exclude: c.cfg.Exclude,
	}
	if list := parseList(c.tables); len(list) > 0 {
		p.Include = list
	}
	if list := parseList(c.exclude); len(list) > 0 {
		p.Exclude = list
	}
	return p
}

// parseList splits a comma-separated flag value
func parseList(value string) []string {
	if value == "" {
		return nil
	}
	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

func (c *cli) runDescribe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// Validate flag combinations
	if c.cfg.Output.Dir != "" && c.outputFile != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}
	if _, err := formatter.New(c.cfg.Output.Format, io.Discard); err != nil {
		return err
	}

	src, closeSource, err := c.openSource(ctx)
	if err != nil {
		return err
	}
	defer closeSource()

	described, err := metaschema.Describe(ctx, src, c.params())
	if err != nil {
		return fmt.Errorf("failed to describe schema: %w", err)
	}

	// Check if we should use multi-file output
	shouldSplit := c.cfg.Output.Dir != "" && (c.splitThreshold == 0 || len(described.Collections) > c.splitThreshold)
	if shouldSplit {
		return metaschema.FormatSchema(described, &metaschema.OutputOptions{
			OutputDir: c.cfg.Output.Dir,
			Format:    c.cfg.Output.Format,
		})
	}

	// Single-file output
	writer := cmd.OutOrStdout()
	if c.outputFile != "" {
		f, err := os.Create(c.outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				slog.Warn("failed to close output file", "error", err)
			}
		}()
		writer = f
	}

	if err := metaschema.FormatSchema(described, &metaschema.OutputOptions{
		Writer: writer,
		Format: c.cfg.Output.Format,
	}); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
