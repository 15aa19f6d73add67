package config

import (
	"github.com/mvp-joe/memgrep/internal/filter"
	"github.com/mvp-joe/memgrep/internal/search"
)

// ToSearchOptions converts the search section into engine options with
// detailed output.
func (c *Config) ToSearchOptions() search.Options {
	return search.Options{
		CaseInsensitive: c.Search.CaseInsensitive,
		FixedStrings:    c.Search.FixedStrings,
		WordBoundary:    c.Search.WordBoundary,
		LineNumbers:     c.Search.LineNumbers,
		OutputFormat:    search.OutputDetailed,
	}
}

// ToFilterConfig converts the directory section into a filter config rooted
// at rootDir. Gitignore files are left for the caller to collect.
func (c *Config) ToFilterConfig(rootDir string) filter.Config {
	cfg := filter.DefaultConfig(rootDir)
	cfg.RespectGitignore = c.Directory.RespectGitignore
	cfg.IncludeHidden = c.Directory.IncludeHidden
	if c.Directory.MaxDepth >= 0 {
		depth := c.Directory.MaxDepth
		cfg.MaxDepth = &depth
	}
	if len(c.Directory.IgnorePatterns) > 0 {
		cfg.IgnorePatterns = append([]string(nil), c.Directory.IgnorePatterns...)
	}
	return cfg
}
