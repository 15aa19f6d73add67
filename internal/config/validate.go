package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidDepth indicates a max_depth below -1
	ErrInvalidDepth = errors.New("invalid max depth")

	// ErrInvalidLimit indicates a non-positive size limit
	ErrInvalidLimit = errors.New("invalid limit")

	// ErrInvalidCache indicates invalid cache settings
	ErrInvalidCache = errors.New("invalid cache settings")

	// ErrInvalidWatch indicates invalid watch settings
	ErrInvalidWatch = errors.New("invalid watch settings")

	// ErrInvalidLogging indicates an unknown logging env or level
	ErrInvalidLogging = errors.New("invalid logging settings")
)

var (
	validLogEnvs   = []string{"local", "dev", "prod"}
	validLogLevels = []string{"", "debug", "info", "warn", "error", "dpanic", "panic", "fatal"}
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateDirectory(&cfg.Directory); err != nil {
		errs = append(errs, err)
	}

	if err := validateLimits(&cfg.Limits); err != nil {
		errs = append(errs, err)
	}

	if cfg.Cache.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidCache, cfg.Cache.Capacity))
	}

	if cfg.Watch.DebounceMs < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidWatch, cfg.Watch.DebounceMs))
	}

	if err := validateLogging(&cfg.Logging); err != nil {
		errs = append(errs, err)
	}

	return joinErrors(errs)
}

func validateDirectory(cfg *DirectoryConfig) error {
	if cfg.MaxDepth < -1 {
		return fmt.Errorf("%w: max_depth must be -1 (unlimited) or greater, got %d", ErrInvalidDepth, cfg.MaxDepth)
	}
	return nil
}

func validateLimits(cfg *LimitsConfig) error {
	var errs []error

	if cfg.MaxLineBytes <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_line_bytes must be positive, got %d", ErrInvalidLimit, cfg.MaxLineBytes))
	}
	if cfg.MaxFileBytes <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_file_bytes must be positive, got %d", ErrInvalidLimit, cfg.MaxFileBytes))
	}
	if cfg.BinarySampleBytes <= 0 {
		errs = append(errs, fmt.Errorf("%w: binary_sample_bytes must be positive, got %d", ErrInvalidLimit, cfg.BinarySampleBytes))
	}

	return joinErrors(errs)
}

func validateLogging(cfg *LoggingConfig) error {
	var errs []error

	if !contains(validLogEnvs, strings.ToLower(cfg.Env)) {
		errs = append(errs, fmt.Errorf("%w: env must be one of %s, got '%s'", ErrInvalidLogging, strings.Join(validLogEnvs, ", "), cfg.Env))
	}
	if !contains(validLogLevels, strings.ToLower(cfg.Level)) {
		errs = append(errs, fmt.Errorf("%w: unknown level '%s'", ErrInvalidLogging, cfg.Level))
	}

	return joinErrors(errs)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
