package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		flags     searchFlags
		filesPath string
	)

	cmd := &cobra.Command{
		Use:   "search PATTERN",
		Short: "Search a JSON list of in-memory files",
		Long: `Search runs PATTERN over every line of the files in --files, a JSON array
of {"path", "content"} objects. Prints a SearchResult document, or the sorted
matching paths with --files-only.

Examples:
  memgrep search 'func \w+' --files files.json
  cat files.json | memgrep search -i todo --files - --files-only
  memgrep search main --files files.json --options '{"word_boundary": true}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := a.readInput(filesPath)
			if err != nil {
				return err
			}
			options, err := flags.optionsJSON(cmd, a.cfg.ToSearchOptions())
			if err != nil {
				return err
			}

			out, err := a.svc.Search(cmd.Context(), args[0], files, options)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVar(&filesPath, "files", "-", "JSON file entries, or - for stdin")
	return cmd
}

func newSearchDirCmd(a *app) *cobra.Command {
	var (
		flags      searchFlags
		configPath string
		filesPath  string
	)

	cmd := &cobra.Command{
		Use:   "search-dir PATTERN",
		Short: "Search pre-filtered in-memory files of a directory tree",
		Long: `search-dir validates the directory filter in --dir-config and searches every
entry of --files. Entries are expected to be filtered already, for example
with the filter command. Output is always detailed.

Example:
  memgrep search-dir TODO --dir-config dir.json --files files.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dirConfig, err := a.readInput(configPath)
			if err != nil {
				return err
			}
			files, err := a.readInput(filesPath)
			if err != nil {
				return err
			}
			options, err := flags.optionsJSON(cmd, a.cfg.ToSearchOptions())
			if err != nil {
				return err
			}

			out, err := a.svc.SearchDirectory(cmd.Context(), args[0], dirConfig, files, options)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	flags.register(cmd, false)
	cmd.Flags().StringVar(&configPath, "dir-config", "", "JSON directory config file, or - for stdin")
	cmd.Flags().StringVar(&filesPath, "files", "-", "JSON file entries, or - for stdin")
	_ = cmd.MarkFlagRequired("dir-config")
	return cmd
}

func newFilterCmd(a *app) *cobra.Command {
	var (
		configPath string
		pathsPath  string
	)

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Filter candidate paths with directory rules",
		Long: `filter runs the JSON array of paths in --paths through the directory filter
in --dir-config and prints the kept entries, in input order, with their
relative path and depth.

Example:
  memgrep filter --dir-config dir.json --paths paths.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dirConfig, err := a.readInput(configPath)
			if err != nil {
				return err
			}
			paths, err := a.readInput(pathsPath)
			if err != nil {
				return err
			}

			out, err := a.svc.FilterDirectoryFiles(cmd.Context(), dirConfig, paths)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "dir-config", "", "JSON directory config file, or - for stdin")
	cmd.Flags().StringVar(&pathsPath, "paths", "-", "JSON array of candidate paths, or - for stdin")
	_ = cmd.MarkFlagRequired("dir-config")
	return cmd
}

func newGrepCmd(a *app) *cobra.Command {
	var (
		flags     searchFlags
		filesPath string
	)

	cmd := &cobra.Command{
		Use:   "grep PATTERN",
		Short: "Print the sorted paths of in-memory files that match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := a.readInput(filesPath)
			if err != nil {
				return err
			}
			options, err := flags.optionsJSON(cmd, a.cfg.ToSearchOptions())
			if err != nil {
				return err
			}

			out, err := a.svc.Grep(cmd.Context(), args[0], files, options)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	flags.register(cmd, false)
	cmd.Flags().StringVar(&filesPath, "files", "-", "JSON file entries, or - for stdin")
	return cmd
}

func newGrepCmdCmd(a *app) *cobra.Command {
	var filesPath string

	cmd := &cobra.Command{
		Use:   "grep-cmd -- [grep] [FLAGS] PATTERN",
		Short: "Run a grep-style command line against in-memory files",
		Long: `grep-cmd parses everything after -- as a grep command line (-i -w -F -n and
their long forms) and prints the sorted matching paths.

Example:
  memgrep grep-cmd --files files.json -- grep -iw main`,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := a.readInput(filesPath)
			if err != nil {
				return err
			}
			if args == nil {
				args = []string{}
			}
			argv, err := json.Marshal(args)
			if err != nil {
				return fmt.Errorf("failed to encode arguments: %w", err)
			}

			out, err := a.svc.GrepCmd(cmd.Context(), string(argv), files)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&filesPath, "files", "-", "JSON file entries, or - for stdin")
	return cmd
}
