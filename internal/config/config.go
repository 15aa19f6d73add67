// Package config loads memgrep settings.
//
// Sources, lowest to highest priority:
//  1. Built-in defaults (Default)
//  2. User config (~/.memgrep.yaml)
//  3. Project config (.memgrep.yaml or .memgrep.yml in the root directory),
//     or the file passed explicitly with --config
//  4. Environment variables (MEMGREP_SEARCH_CASE_INSENSITIVE, ...)
package config

// Config is the complete memgrep configuration.
type Config struct {
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Directory DirectoryConfig `yaml:"directory" mapstructure:"directory"`
	Limits    LimitsConfig    `yaml:"limits" mapstructure:"limits"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Watch     WatchConfig     `yaml:"watch" mapstructure:"watch"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
}

// SearchConfig holds the default search options used by the CLI.
type SearchConfig struct {
	CaseInsensitive bool `yaml:"case_insensitive" mapstructure:"case_insensitive"`
	FixedStrings    bool `yaml:"fixed_strings" mapstructure:"fixed_strings"`
	WordBoundary    bool `yaml:"word_boundary" mapstructure:"word_boundary"`
	LineNumbers     bool `yaml:"line_numbers" mapstructure:"line_numbers"`
}

// DirectoryConfig holds the defaults for directory scans.
type DirectoryConfig struct {
	RespectGitignore bool     `yaml:"respect_gitignore" mapstructure:"respect_gitignore"`
	IncludeHidden    bool     `yaml:"include_hidden" mapstructure:"include_hidden"`
	MaxDepth         int      `yaml:"max_depth" mapstructure:"max_depth"` // -1 means unlimited
	IgnorePatterns   []string `yaml:"ignore_patterns" mapstructure:"ignore_patterns"`
}

// LimitsConfig bounds what the scanner and the file loader accept.
type LimitsConfig struct {
	MaxLineBytes      int   `yaml:"max_line_bytes" mapstructure:"max_line_bytes"`
	MaxFileBytes      int64 `yaml:"max_file_bytes" mapstructure:"max_file_bytes"`
	BinarySampleBytes int   `yaml:"binary_sample_bytes" mapstructure:"binary_sample_bytes"`
}

// CacheConfig sizes the file content cache used by scan.
type CacheConfig struct {
	Capacity int `yaml:"capacity" mapstructure:"capacity"` // max cached files
}

// WatchConfig tunes scan --watch.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// LoggingConfig selects the zap preset and level.
type LoggingConfig struct {
	Env   string `yaml:"env" mapstructure:"env"`     // "local", "dev" or "prod"
	Level string `yaml:"level" mapstructure:"level"` // empty keeps the preset's level
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			LineNumbers: true,
		},
		Directory: DirectoryConfig{
			RespectGitignore: true,
			MaxDepth:         -1,
			IgnorePatterns:   []string{},
		},
		Limits: LimitsConfig{
			MaxLineBytes:      10 * 1024 * 1024,
			MaxFileBytes:      50 * 1024 * 1024,
			BinarySampleBytes: 8 * 1024,
		},
		Cache: CacheConfig{
			Capacity: 10_000,
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
		Logging: LoggingConfig{
			Env:   "local",
			Level: "warn",
		},
	}
}
