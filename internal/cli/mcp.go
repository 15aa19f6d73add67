package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/memgrep/internal/mcp"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Long: `Start the Model Context Protocol (MCP) server so coding assistants can call
the memgrep operations as tools:

  search                  regex search over in-memory files
  search_directory        directory filter + search
  filter_directory_files  gitignore/glob/depth filtering of candidate paths
  grep                    matching paths only
  grep_cmd                grep-style argument vector

Logs go to stderr; stdout carries the MCP transport.

Example:
  memgrep mcp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := mcp.NewServer(a.svc, a.logger, Version)
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}
			if err := server.Serve(cmd.Context()); err != nil {
				return fmt.Errorf("MCP server error: %w", err)
			}
			return nil
		},
	}
}
