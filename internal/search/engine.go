// Package search runs a compiled pattern over in-memory file entries line by
// line and collects one match record per matching line.
package search

import (
	"bufio"
	"context"
	"regexp"
	"slices"
	"strings"
	"unicode"
)

const (
	// DefaultMaxLineBytes bounds a single line; minified bundles can get close.
	DefaultMaxLineBytes = 10 * 1024 * 1024

	initialScanBuffer = 64 * 1024
)

// Engine scans file entries. The zero value uses DefaultMaxLineBytes.
type Engine struct {
	MaxLineBytes int
}

// NewEngine returns an Engine with the given line limit. Non-positive limits
// fall back to DefaultMaxLineBytes.
func NewEngine(maxLineBytes int) *Engine {
	return &Engine{MaxLineBytes: maxLineBytes}
}

// BuildPattern composes and compiles the regex for pattern under opts:
// escape when fixed_strings, wrap in word boundaries when word_boundary, then
// prefix the case-insensitive flag.
func BuildPattern(pattern string, opts Options) (*regexp.Regexp, error) {
	source := pattern
	if opts.FixedStrings {
		source = regexp.QuoteMeta(source)
	}
	if opts.WordBoundary {
		source = `\b` + source + `\b`
	}
	if opts.CaseInsensitive {
		source = "(?i)" + source
	}

	re, err := regexp.Compile(source)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Cause: err}
	}
	return re, nil
}

// Search compiles pattern and scans files in order. Any failure discards all
// matches collected so far.
func (e *Engine) Search(ctx context.Context, pattern string, files []FileEntry, opts Options) (*Result, error) {
	re, err := BuildPattern(pattern, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Matches: []MatchResult{}}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		matches, err := e.scan(re, file, opts.LineNumbers)
		if err != nil {
			return nil, &ScanError{Path: file.Path, Cause: err}
		}
		if len(matches) > 0 {
			result.FilesWithMatches++
			result.Matches = append(result.Matches, matches...)
		}
	}
	result.TotalMatches = len(result.Matches)

	return result, nil
}

func (e *Engine) scan(re *regexp.Regexp, file FileEntry, lineNumbers bool) ([]MatchResult, error) {
	maxLine := e.MaxLineBytes
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}

	scanner := bufio.NewScanner(strings.NewReader(file.Content))
	scanner.Buffer(make([]byte, 0, min(initialScanBuffer, maxLine)), maxLine)

	var matches []MatchResult
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if !re.Match(line) {
			continue
		}

		if !lineNumbers {
			return nil, ErrLineNumbersDisabled
		}
		matches = append(matches, MatchResult{
			Path:       file.Path,
			LineNumber: lineNo,
			Line:       strings.TrimRightFunc(string(line), unicode.IsSpace),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return matches, nil
}

// UniquePaths returns the sorted, de-duplicated paths of result's matches.
func UniquePaths(result *Result) []string {
	paths := make([]string, 0, len(result.Matches))
	for _, m := range result.Matches {
		paths = append(paths, m.Path)
	}
	slices.Sort(paths)
	return slices.Compact(paths)
}
