package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/mvp-joe/memgrep/internal/apierror"
	"github.com/mvp-joe/memgrep/internal/logger"
	"github.com/mvp-joe/memgrep/internal/search"
)

// Boundary is the set of JSON operations the tools expose. *api.Service
// implements it.
type Boundary interface {
	Search(ctx context.Context, pattern, filesJSON, optionsJSON string) (string, error)
	SearchDirectory(ctx context.Context, pattern, configJSON, filesJSON, optionsJSON string) (string, error)
	FilterDirectoryFiles(ctx context.Context, configJSON, pathsJSON string) (string, error)
	Grep(ctx context.Context, pattern, filesJSON, optionsJSON string) (string, error)
	GrepCmd(ctx context.Context, argsJSON, filesJSON string) (string, error)
}

type searchArgs struct {
	Pattern string                 `json:"pattern"`
	Files   []search.FileEntry     `json:"files"`
	Options map[string]interface{} `json:"options"`
}

type searchDirectoryArgs struct {
	Pattern string                 `json:"pattern"`
	Config  map[string]interface{} `json:"config"`
	Files   []search.FileEntry     `json:"files"`
	Options map[string]interface{} `json:"options"`
}

type filterArgs struct {
	Config map[string]interface{} `json:"config"`
	Paths  []string               `json:"paths"`
}

type grepCmdArgs struct {
	Args  []string           `json:"args"`
	Files []search.FileEntry `json:"files"`
}

const (
	filesDescription   = "In-memory files to search: [{\"path\": \"...\", \"content\": \"...\"}]"
	optionsDescription = "Search options: case_insensitive, fixed_strings, word_boundary, line_numbers (default true), output_format (\"detailed\" or \"files_only\")"
	configDescription  = "Directory config: root_path (required), max_depth, file_types, ignore_patterns, respect_gitignore (default true), include_hidden, gitignore_files [{path, content}], override_patterns, exclude_patterns"
)

// AddSearchTool registers the search tool.
func AddSearchTool(s *server.MCPServer, b Boundary, log *zap.Logger) {
	tool := mcp.NewTool(
		"search",
		mcp.WithDescription("Search in-memory file contents for a regex or literal pattern, line by line. Returns matches with line numbers, or only the matching paths when output_format is files_only."),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Regular expression (RE2 syntax), or a literal with fixed_strings")),
		mcp.WithArray("files", mcp.Required(), mcp.Description(filesDescription)),
		mcp.WithObject("options", mcp.Description(optionsDescription)),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createSearchHandler(b, log))
}

func createSearchHandler(b Boundary, log *zap.Logger) server.ToolHandlerFunc {
	return withLogging("search", log, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args searchArgs
		if res := bind(request, &args); res != nil {
			return res, nil
		}
		if args.Pattern == "" {
			return mcp.NewToolResultError("pattern parameter is required"), nil
		}

		files, err := toJSON(args.Files)
		if err != nil {
			return nil, err
		}
		options, err := toJSON(args.Options)
		if err != nil {
			return nil, err
		}

		return boundaryResult(b.Search(ctx, args.Pattern, files, options))
	})
}

// AddSearchDirectoryTool registers the search_directory tool.
func AddSearchDirectoryTool(s *server.MCPServer, b Boundary, log *zap.Logger) {
	tool := mcp.NewTool(
		"search_directory",
		mcp.WithDescription("Search in-memory files that belong to a directory tree. Entries are expected to be filtered already (see filter_directory_files); config is validated but not applied. Always returns detailed matches."),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Regular expression (RE2 syntax), or a literal with fixed_strings")),
		mcp.WithObject("config", mcp.Required(), mcp.Description(configDescription)),
		mcp.WithArray("files", mcp.Required(), mcp.Description(filesDescription)),
		mcp.WithObject("options", mcp.Description(optionsDescription)),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createSearchDirectoryHandler(b, log))
}

func createSearchDirectoryHandler(b Boundary, log *zap.Logger) server.ToolHandlerFunc {
	return withLogging("search_directory", log, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args searchDirectoryArgs
		if res := bind(request, &args); res != nil {
			return res, nil
		}
		if args.Pattern == "" {
			return mcp.NewToolResultError("pattern parameter is required"), nil
		}

		config, err := toJSON(args.Config)
		if err != nil {
			return nil, err
		}
		files, err := toJSON(args.Files)
		if err != nil {
			return nil, err
		}
		options, err := toJSON(args.Options)
		if err != nil {
			return nil, err
		}

		return boundaryResult(b.SearchDirectory(ctx, args.Pattern, config, files, options))
	})
}

// AddFilterDirectoryFilesTool registers the filter_directory_files tool.
func AddFilterDirectoryFilesTool(s *server.MCPServer, b Boundary, log *zap.Logger) {
	tool := mcp.NewTool(
		"filter_directory_files",
		mcp.WithDescription("Filter candidate paths with gitignore rules, include/exclude overrides, file-type globs, ignore globs, max depth and hidden-file rules. Returns the kept paths with their relative path and depth, in input order."),
		mcp.WithObject("config", mcp.Required(), mcp.Description(configDescription)),
		mcp.WithArray("paths", mcp.Required(), mcp.Description("Candidate file paths")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createFilterHandler(b, log))
}

func createFilterHandler(b Boundary, log *zap.Logger) server.ToolHandlerFunc {
	return withLogging("filter_directory_files", log, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args filterArgs
		if res := bind(request, &args); res != nil {
			return res, nil
		}

		config, err := toJSON(args.Config)
		if err != nil {
			return nil, err
		}
		paths, err := toJSON(nonNil(args.Paths))
		if err != nil {
			return nil, err
		}

		return boundaryResult(b.FilterDirectoryFiles(ctx, config, paths))
	})
}

// AddGrepTool registers the grep tool.
func AddGrepTool(s *server.MCPServer, b Boundary, log *zap.Logger) {
	tool := mcp.NewTool(
		"grep",
		mcp.WithDescription("Return the sorted, de-duplicated paths of in-memory files containing at least one line that matches pattern."),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Regular expression (RE2 syntax), or a literal with fixed_strings")),
		mcp.WithArray("files", mcp.Required(), mcp.Description(filesDescription)),
		mcp.WithObject("options", mcp.Description(optionsDescription)),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createGrepHandler(b, log))
}

func createGrepHandler(b Boundary, log *zap.Logger) server.ToolHandlerFunc {
	return withLogging("grep", log, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args searchArgs
		if res := bind(request, &args); res != nil {
			return res, nil
		}
		if args.Pattern == "" {
			return mcp.NewToolResultError("pattern parameter is required"), nil
		}

		files, err := toJSON(args.Files)
		if err != nil {
			return nil, err
		}
		options, err := toJSON(args.Options)
		if err != nil {
			return nil, err
		}

		return boundaryResult(b.Grep(ctx, args.Pattern, files, options))
	})
}

// AddGrepCmdTool registers the grep_cmd tool.
func AddGrepCmdTool(s *server.MCPServer, b Boundary, log *zap.Logger) {
	tool := mcp.NewTool(
		"grep_cmd",
		mcp.WithDescription("Run a grep-style command line against in-memory files, e.g. [\"grep\", \"-iw\", \"main\"]. Supports -i -w -F -n and their long forms. Returns matching paths."),
		mcp.WithArray("args", mcp.Required(), mcp.Description("Argument vector; a leading \"grep\" is optional")),
		mcp.WithArray("files", mcp.Required(), mcp.Description(filesDescription)),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createGrepCmdHandler(b, log))
}

func createGrepCmdHandler(b Boundary, log *zap.Logger) server.ToolHandlerFunc {
	return withLogging("grep_cmd", log, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args grepCmdArgs
		if res := bind(request, &args); res != nil {
			return res, nil
		}

		argv, err := toJSON(nonNil(args.Args))
		if err != nil {
			return nil, err
		}
		files, err := toJSON(args.Files)
		if err != nil {
			return nil, err
		}

		return boundaryResult(b.GrepCmd(ctx, argv, files))
	})
}

// bind returns a tool error result when the arguments cannot be bound.
func bind[T any](request mcp.CallToolRequest, target *T) *mcp.CallToolResult {
	if _, ok := request.GetRawArguments().(map[string]interface{}); !ok {
		return mcp.NewToolResultError("invalid arguments format")
	}
	if err := CoerceBindArguments(request, target); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err))
	}
	return nil
}

// toJSON encodes a bound argument for the boundary. Absent files encode as
// an empty list and absent options as null.
func toJSON(v interface{}) (string, error) {
	if files, ok := v.([]search.FileEntry); ok && files == nil {
		return "[]", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal arguments: %w", err)
	}
	return string(data), nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// boundaryResult turns a boundary error into a tool error carrying the
// structured payload. Boundary errors are caller mistakes, never server
// faults.
func boundaryResult(out string, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(apierror.JSON(err)), nil
	}
	return mcp.NewToolResultText(out), nil
}

// withLogging gives every call a request_id and hands the request-scoped
// logger to the boundary through ctx.
func withLogging(name string, base *zap.Logger, next server.ToolHandlerFunc) server.ToolHandlerFunc {
	if base == nil {
		base = zap.NewNop()
	}
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		log := base.With(zap.String("tool", name), zap.String("request_id", uuid.NewString()))

		result, err := next(logger.ContextWithLogger(ctx, log), request)

		switch {
		case err != nil:
			log.Error("tool call failed", zap.Error(err), zap.Duration("took", time.Since(start)))
		case result != nil && result.IsError:
			log.Info("tool call rejected", zap.Duration("took", time.Since(start)))
		default:
			log.Debug("tool call completed", zap.Duration("took", time.Since(start)))
		}
		return result, err
	}
}
