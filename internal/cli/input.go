package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/memgrep/internal/search"
)

// readInput returns the contents of path, or of stdin when path is "-".
func (a *app) readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// searchFlags are the option flags shared by search and grep.
type searchFlags struct {
	options         string
	caseInsensitive bool
	wordBoundary    bool
	fixedStrings    bool
	noLineNumbers   bool
	filesOnly       bool
}

func (f *searchFlags) register(cmd *cobra.Command, withOutput bool) {
	cmd.Flags().StringVar(&f.options, "options", "", "search options as JSON; replaces the individual flags")
	cmd.Flags().BoolVarP(&f.caseInsensitive, "ignore-case", "i", false, "case-insensitive matching")
	cmd.Flags().BoolVarP(&f.wordBoundary, "word-regexp", "w", false, "match whole words only")
	cmd.Flags().BoolVarP(&f.fixedStrings, "fixed-strings", "F", false, "treat the pattern as a literal string")
	if withOutput {
		cmd.Flags().BoolVar(&f.noLineNumbers, "no-line-number", false, "turn off line numbers")
		cmd.Flags().BoolVarP(&f.filesOnly, "files-only", "l", false, "print only the sorted matching paths")
	}
}

// optionsJSON returns --options verbatim when given, otherwise the configured
// defaults with the flags that were set on the command line applied.
func (f *searchFlags) optionsJSON(cmd *cobra.Command, defaults search.Options) (string, error) {
	if f.options != "" {
		return f.options, nil
	}
	opts := f.apply(cmd, defaults)
	data, err := json.Marshal(opts)
	if err != nil {
		return "", fmt.Errorf("failed to encode options: %w", err)
	}
	return string(data), nil
}

func (f *searchFlags) apply(cmd *cobra.Command, opts search.Options) search.Options {
	flags := cmd.Flags()
	if flags.Changed("ignore-case") {
		opts.CaseInsensitive = f.caseInsensitive
	}
	if flags.Changed("word-regexp") {
		opts.WordBoundary = f.wordBoundary
	}
	if flags.Changed("fixed-strings") {
		opts.FixedStrings = f.fixedStrings
	}
	if flags.Changed("no-line-number") {
		opts.LineNumbers = !f.noLineNumbers
	}
	if flags.Changed("files-only") && f.filesOnly {
		opts.OutputFormat = search.OutputFilesOnly
	}
	return opts
}
