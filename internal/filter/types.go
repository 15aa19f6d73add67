package filter

import (
	"encoding/json"
	"errors"
)

// GitignoreFile is the content of one .gitignore file and the directory it
// lives in.
type GitignoreFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Config selects which candidate paths survive filtering.
type Config struct {
	RootPath         string          `json:"root_path"`
	MaxDepth         *int            `json:"max_depth,omitempty"`
	FileTypes        []string        `json:"file_types"`
	IgnorePatterns   []string        `json:"ignore_patterns"`
	RespectGitignore bool            `json:"respect_gitignore"`
	IncludeHidden    bool            `json:"include_hidden"`
	GitignoreFiles   []GitignoreFile `json:"gitignore_files"`
	OverridePatterns []string        `json:"override_patterns"`
	ExcludePatterns  []string        `json:"exclude_patterns"`
}

// ErrMissingRootPath is returned when a decoded config has no root_path.
var ErrMissingRootPath = errors.New("missing field `root_path`")

// DefaultConfig returns a config rooted at rootPath with gitignore rules
// respected and hidden files excluded.
func DefaultConfig(rootPath string) Config {
	return Config{
		RootPath:         rootPath,
		RespectGitignore: true,
	}
}

// UnmarshalJSON applies defaults for absent fields and requires root_path.
func (c *Config) UnmarshalJSON(data []byte) error {
	type rawConfig Config
	raw := struct {
		rawConfig
		RootPath *string `json:"root_path"`
	}{
		rawConfig: rawConfig(DefaultConfig("")),
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.RootPath == nil {
		return ErrMissingRootPath
	}

	*c = Config(raw.rawConfig)
	c.RootPath = *raw.RootPath
	return nil
}

// FilePathEntry is a candidate path that survived filtering.
type FilePathEntry struct {
	Path         string `json:"path"`
	RelativePath string `json:"relative_path"`
	Depth        int    `json:"depth"`
}
