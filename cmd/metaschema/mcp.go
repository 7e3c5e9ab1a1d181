package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/tordrt/metaschema"
	"github.com/tordrt/metaschema/internal/formatter"
)

const version = "0.1.0"

func newMCPCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the schema over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, closeSource, err := c.openSource(cmd.Context())
			if err != nil {
				return err
			}
			defer closeSource()

			return startMCPServer(src)
		},
	}
}

// startMCPServer registers the schema tools and serves them on stdio
// until the client disconnects
func startMCPServer(src metaschema.Source) error {
	s := server.NewMCPServer(
		"metaschema",
		version,
		server.WithToolCapabilities(false),
	)

	listCollectionsTool := mcp.NewTool("list_collections",
		mcp.WithDescription("List the collections of the database with their managed, hidden and single flags"),
		mcp.WithString("tables",
			mcp.Description("Comma-separated collections to include (default: all)"),
		),
		mcp.WithString("exclude",
			mcp.Description("Comma-separated collections to skip"),
		),
	)
	s.AddTool(listCollectionsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := &metaschema.Params{
			Include: parseList(request.GetString("tables", "")),
			Exclude: parseList(request.GetString("exclude", "")),
		}
		return toolResult(listCollectionsCore(ctx, src, params))
	})

	getCollectionTool := mcp.NewTool("get_collection",
		mcp.WithDescription("Show one collection"),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("Collection name"),
		),
	)
	s.AddTool(getCollectionTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("collection")
		if err != nil {
			return mcp.NewToolResultError("collection parameter is required"), nil
		}
		return toolResult(getCollectionCore(ctx, src, name))
	})

	getFieldsTool := mcp.NewTool("get_fields",
		mcp.WithDescription("List the fields of a collection, merged with their display metadata"),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("Collection name"),
		),
		mcp.WithString("field",
			mcp.Description("A single field to show (default: all fields)"),
		),
	)
	s.AddTool(getFieldsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("collection")
		if err != nil {
			return mcp.NewToolResultError("collection parameter is required"), nil
		}
		return toolResult(getFieldsCore(ctx, src, name, request.GetString("field", "")))
	})

	getRelationsTool := mcp.NewTool("get_relations",
		mcp.WithDescription("List relations, optionally only those touching one collection"),
		mcp.WithString("collection",
			mcp.Description("Collection name (default: all relations)"),
		),
	)
	s.AddTool(getRelationsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return toolResult(getRelationsCore(ctx, src, request.GetString("collection", "")))
	})

	describeTool := mcp.NewTool("describe_schema",
		mcp.WithDescription("Describe collections with their fields, primary keys and relations"),
		mcp.WithString("format",
			mcp.Description("Output format (default: markdown)"),
			mcp.Enum(formatter.Formats()...),
		),
		mcp.WithString("tables",
			mcp.Description("Comma-separated collections to include (default: all)"),
		),
	)
	s.AddTool(describeTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		format := request.GetString("format", formatter.FormatMarkdown)
		params := &metaschema.Params{Include: parseList(request.GetString("tables", ""))}
		return toolResult(describeSchemaCore(ctx, src, params, format))
	})

	slog.Info("starting metaschema mcp server", "platform", src.Platform())
	return server.ServeStdio(s)
}

func toolResult(output string, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(output), nil
}

func listCollectionsCore(ctx context.Context, src metaschema.Source, params *metaschema.Params) (string, error) {
	collections, err := src.GetCollections(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to list collections: %w", err)
	}
	return jsonString(collections)
}

func getCollectionCore(ctx context.Context, src metaschema.Source, name string) (string, error) {
	col, ok, err := src.GetCollection(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to read collection: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("collection %q not found", name)
	}
	return jsonString(col)
}

func getFieldsCore(ctx context.Context, src metaschema.Source, collection, field string) (string, error) {
	if !src.CollectionExists(ctx, collection) {
		return "", fmt.Errorf("collection %q not found", collection)
	}

	if field != "" {
		f, ok, err := src.GetField(ctx, collection, field)
		if err != nil {
			return "", fmt.Errorf("failed to read field: %w", err)
		}
		if !ok {
			return "", fmt.Errorf("field %q not found in %s", field, collection)
		}
		return jsonString(f)
	}

	fields, err := src.GetFields(ctx, collection, nil)
	if err != nil {
		return "", fmt.Errorf("failed to read fields: %w", err)
	}
	return jsonString(fields)
}

func getRelationsCore(ctx context.Context, src metaschema.Source, collection string) (string, error) {
	var (
		relations []metaschema.Relation
		err       error
	)
	if collection != "" {
		relations, err = src.GetRelations(ctx, collection)
	} else {
		relations, err = src.GetAllRelations(ctx)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read relations: %w", err)
	}
	if relations == nil {
		relations = []metaschema.Relation{}
	}
	return jsonString(relations)
}

func describeSchemaCore(ctx context.Context, src metaschema.Source, params *metaschema.Params, format string) (string, error) {
	described, err := metaschema.Describe(ctx, src, params)
	if err != nil {
		return "", fmt.Errorf("failed to describe schema: %w", err)
	}

	var buf bytes.Buffer
	if err := metaschema.FormatSchema(described, &metaschema.OutputOptions{Writer: &buf, Format: format}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func jsonString(v any) (string, error) {
	var buf bytes.Buffer
	if err := printJSON(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}
