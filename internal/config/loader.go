package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix      = "MEMGREP"
	configBaseName = ".memgrep"
)

var configExtensions = []string{".yaml", ".yml"}

// envKeys lists every key that may be overridden from the environment.
var envKeys = []string{
	"search.case_insensitive",
	"search.fixed_strings",
	"search.word_boundary",
	"search.line_numbers",
	"directory.respect_gitignore",
	"directory.include_hidden",
	"directory.max_depth",
	"directory.ignore_patterns",
	"limits.max_line_bytes",
	"limits.max_file_bytes",
	"limits.binary_sample_bytes",
	"cache.capacity",
	"watch.debounce_ms",
	"logging.env",
	"logging.level",
}

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from files and environment variables.
	// Priority: defaults → user file → project file → environment (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	homeDir    string
	configFile string
}

// LoaderOption customizes a Loader.
type LoaderOption func(*loader)

// WithConfigFile replaces the project config lookup with an explicit file.
// The file must exist.
func WithConfigFile(path string) LoaderOption {
	return func(l *loader) { l.configFile = path }
}

// WithHomeDir overrides where the user config is looked up. An empty dir
// disables the user config.
func WithHomeDir(dir string) LoaderOption {
	return func(l *loader) { l.homeDir = dir }
}

// NewLoader creates a configuration loader for the given root directory.
func NewLoader(rootDir string, opts ...LoaderOption) Loader {
	l := &loader{rootDir: rootDir}
	if home, err := os.UserHomeDir(); err == nil {
		l.homeDir = home
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load merges every config source into a validated Config.
func (l *loader) Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Enable environment variable overrides (MEMGREP_LIMITS_MAX_LINE_BYTES)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	setDefaults(v)

	files, err := l.configFiles()
	if err != nil {
		return nil, err
	}
	for _, path := range files {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// configFiles returns the existing config files, lowest priority first.
func (l *loader) configFiles() ([]string, error) {
	var files []string

	if l.homeDir != "" {
		if path, ok := firstExisting(l.homeDir); ok {
			files = append(files, path)
		}
	}

	if l.configFile != "" {
		if _, err := os.Stat(l.configFile); err != nil {
			return nil, fmt.Errorf("config file %s: %w", l.configFile, err)
		}
		return append(files, l.configFile), nil
	}

	if path, ok := firstExisting(l.rootDir); ok && !samePath(files, path) {
		files = append(files, path)
	}
	return files, nil
}

func firstExisting(dir string) (string, bool) {
	for _, ext := range configExtensions {
		path := filepath.Join(dir, configBaseName+ext)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// samePath reports whether path is already queued, which happens when the
// scan root is the home directory.
func samePath(files []string, path string) bool {
	for _, f := range files {
		if filepath.Clean(f) == filepath.Clean(path) {
			return true
		}
	}
	return false
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("search.case_insensitive", defaults.Search.CaseInsensitive)
	v.SetDefault("search.fixed_strings", defaults.Search.FixedStrings)
	v.SetDefault("search.word_boundary", defaults.Search.WordBoundary)
	v.SetDefault("search.line_numbers", defaults.Search.LineNumbers)

	v.SetDefault("directory.respect_gitignore", defaults.Directory.RespectGitignore)
	v.SetDefault("directory.include_hidden", defaults.Directory.IncludeHidden)
	v.SetDefault("directory.max_depth", defaults.Directory.MaxDepth)
	v.SetDefault("directory.ignore_patterns", defaults.Directory.IgnorePatterns)

	v.SetDefault("limits.max_line_bytes", defaults.Limits.MaxLineBytes)
	v.SetDefault("limits.max_file_bytes", defaults.Limits.MaxFileBytes)
	v.SetDefault("limits.binary_sample_bytes", defaults.Limits.BinarySampleBytes)

	v.SetDefault("cache.capacity", defaults.Cache.Capacity)
	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)

	v.SetDefault("logging.env", defaults.Logging.Env)
	v.SetDefault("logging.level", defaults.Logging.Level)
}
