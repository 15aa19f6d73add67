package search

import (
	"encoding/json"
	"fmt"
)

// FileEntry is one file whose content has already been read into memory.
type FileEntry struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// OutputFormat selects between full match records and a path list.
type OutputFormat string

const (
	OutputDetailed  OutputFormat = "detailed"
	OutputFilesOnly OutputFormat = "files_only"
)

// UnmarshalJSON accepts only the known formats.
func (f *OutputFormat) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch OutputFormat(s) {
	case OutputDetailed, OutputFilesOnly:
		*f = OutputFormat(s)
		return nil
	default:
		return fmt.Errorf("unknown variant `%s`, expected `%s` or `%s`", s, OutputDetailed, OutputFilesOnly)
	}
}

// Options controls how a pattern is compiled and what a search returns.
type Options struct {
	CaseInsensitive bool         `json:"case_insensitive"`
	FixedStrings    bool         `json:"fixed_strings"`
	WordBoundary    bool         `json:"word_boundary"`
	LineNumbers     bool         `json:"line_numbers"`
	OutputFormat    OutputFormat `json:"output_format"`
}

// DefaultOptions returns regex matching with line numbers and detailed output.
func DefaultOptions() Options {
	return Options{
		LineNumbers:  true,
		OutputFormat: OutputDetailed,
	}
}

// UnmarshalJSON fills absent fields from DefaultOptions.
func (o *Options) UnmarshalJSON(data []byte) error {
	type rawOptions Options
	raw := rawOptions(DefaultOptions())
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = Options(raw)
	return nil
}

// MatchResult is one matching line.
type MatchResult struct {
	Path       string `json:"path"`
	LineNumber int    `json:"line_number"`
	Line       string `json:"line"`
	ByteOffset int    `json:"byte_offset"`
}

// Result aggregates the matches of one search call.
type Result struct {
	Matches          []MatchResult `json:"matches"`
	TotalMatches     int           `json:"total_matches"`
	FilesWithMatches int           `json:"files_with_matches"`
}
