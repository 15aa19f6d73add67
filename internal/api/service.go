// Package api is the JSON-in/JSON-out boundary. Every operation takes JSON
// strings, returns a JSON string on success and an *apierror.Error on
// failure. Operations are synchronous and keep no state between calls.
package api

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mvp-joe/memgrep/internal/apierror"
	"github.com/mvp-joe/memgrep/internal/filter"
	"github.com/mvp-joe/memgrep/internal/grepargs"
	"github.com/mvp-joe/memgrep/internal/logger"
	"github.com/mvp-joe/memgrep/internal/matcher"
	"github.com/mvp-joe/memgrep/internal/search"
)

// Service carries the immutable settings shared by the boundary operations.
// It is safe for concurrent use.
type Service struct {
	compiler matcher.Compiler
	engine   *search.Engine
	logger   *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for per-call debug records.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCompiler replaces the matcher backend.
func WithCompiler(c matcher.Compiler) Option {
	return func(s *Service) {
		if c != nil {
			s.compiler = c
		}
	}
}

// WithMaxLineBytes bounds the length of a single scanned line.
func WithMaxLineBytes(n int) Option {
	return func(s *Service) {
		s.engine = search.NewEngine(n)
	}
}

// NewService returns a Service with the library matchers, the default line
// limit and a no-op logger unless overridden.
func NewService(opts ...Option) *Service {
	s := &Service{
		compiler: matcher.NewCompiler(),
		engine:   search.NewEngine(search.DefaultMaxLineBytes),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search runs pattern over the file entries in filesJSON. The result is a
// SearchResult document, or a sorted path list when output_format is
// files_only.
func (s *Service) Search(ctx context.Context, pattern, filesJSON, optionsJSON string) (string, error) {
	start := time.Now()

	files, err := decodeFiles(filesJSON)
	if err != nil {
		return "", s.fail(ctx, "search", start, err)
	}
	opts, err := decodeOptions(optionsJSON)
	if err != nil {
		return "", s.fail(ctx, "search", start, err)
	}

	result, err := s.engine.Search(ctx, pattern, files, opts)
	if err != nil {
		return "", s.fail(ctx, "search", start, fromSearchError(err))
	}
	s.done(ctx, "search", start, len(files), result)

	if opts.OutputFormat == search.OutputFilesOnly {
		return encodePaths(search.UniquePaths(result))
	}
	return encodeResult(result)
}

// SearchDirectory validates the directory config and searches every entry
// in filesJSON. The entries are expected to be filtered by the caller; the
// config is only parsed. Output is always detailed.
func (s *Service) SearchDirectory(ctx context.Context, pattern, configJSON, filesJSON, optionsJSON string) (string, error) {
	start := time.Now()

	if _, err := decodeConfig(configJSON); err != nil {
		return "", s.fail(ctx, "search_directory", start, err)
	}
	files, err := decodeFiles(filesJSON)
	if err != nil {
		return "", s.fail(ctx, "search_directory", start, err)
	}
	opts, err := decodeOptions(optionsJSON)
	if err != nil {
		return "", s.fail(ctx, "search_directory", start, err)
	}
	opts.OutputFormat = search.OutputDetailed

	result, err := s.engine.Search(ctx, pattern, files, opts)
	if err != nil {
		return "", s.fail(ctx, "search_directory", start, fromSearchError(err))
	}
	s.done(ctx, "search_directory", start, len(files), result)

	return encodeResult(result)
}

// FilterDirectoryFiles runs the candidate paths in pathsJSON through the
// filter pipeline built from configJSON.
func (s *Service) FilterDirectoryFiles(ctx context.Context, configJSON, pathsJSON string) (string, error) {
	start := time.Now()

	cfg, err := decodeConfig(configJSON)
	if err != nil {
		return "", s.fail(ctx, "filter_directory_files", start, err)
	}
	paths, err := decodePaths(pathsJSON)
	if err != nil {
		return "", s.fail(ctx, "filter_directory_files", start, err)
	}

	pipeline, err := filter.New(cfg, s.compiler, filter.WithLogger(s.log(ctx)))
	if err != nil {
		return "", s.fail(ctx, "filter_directory_files", start, fromBuildError(err))
	}
	entries := pipeline.Filter(paths)

	s.log(ctx).Debug("filter_directory_files completed",
		zap.Int("candidates", len(paths)),
		zap.Int("kept", len(entries)),
		zap.Duration("took", time.Since(start)))

	return encodeEntries(entries)
}

// Grep returns the sorted unique paths of entries with at least one match.
func (s *Service) Grep(ctx context.Context, pattern, filesJSON, optionsJSON string) (string, error) {
	start := time.Now()

	files, err := decodeFiles(filesJSON)
	if err != nil {
		return "", s.fail(ctx, "grep", start, err)
	}
	opts, err := decodeOptions(optionsJSON)
	if err != nil {
		return "", s.fail(ctx, "grep", start, err)
	}
	opts.OutputFormat = search.OutputFilesOnly

	return s.grepPaths(ctx, "grep", start, pattern, files, opts)
}

// GrepCmd is Grep driven by a grep-style argument vector.
func (s *Service) GrepCmd(ctx context.Context, argsJSON, filesJSON string) (string, error) {
	start := time.Now()

	args, err := decodeArgs(argsJSON)
	if err != nil {
		return "", s.fail(ctx, "grep_cmd", start, err)
	}
	pattern, opts, err := grepargs.Parse(args)
	if err != nil {
		return "", s.fail(ctx, "grep_cmd", start, apierror.InvalidConfig("args", err.Error()))
	}
	files, err := decodeFiles(filesJSON)
	if err != nil {
		return "", s.fail(ctx, "grep_cmd", start, err)
	}
	opts.OutputFormat = search.OutputFilesOnly

	return s.grepPaths(ctx, "grep_cmd", start, pattern, files, opts)
}

// SearchEntries is Search for in-process callers that already hold decoded
// entries and options. Errors are *apierror.Error.
func (s *Service) SearchEntries(ctx context.Context, pattern string, files []search.FileEntry, opts search.Options) (*search.Result, error) {
	start := time.Now()

	result, err := s.engine.Search(ctx, pattern, files, opts)
	if err != nil {
		return nil, s.fail(ctx, "search_entries", start, fromSearchError(err))
	}
	s.done(ctx, "search_entries", start, len(files), result)
	return result, nil
}

// FilterPaths is FilterDirectoryFiles without the JSON layer. Errors are
// *apierror.Error.
func (s *Service) FilterPaths(ctx context.Context, cfg filter.Config, paths []string) ([]filter.FilePathEntry, error) {
	start := time.Now()

	pipeline, err := filter.New(cfg, s.compiler, filter.WithLogger(s.log(ctx)))
	if err != nil {
		return nil, s.fail(ctx, "filter_paths", start, fromBuildError(err))
	}
	entries := pipeline.Filter(paths)

	s.log(ctx).Debug("filter_paths completed",
		zap.Int("candidates", len(paths)),
		zap.Int("kept", len(entries)),
		zap.Duration("took", time.Since(start)))
	return entries, nil
}

func (s *Service) grepPaths(ctx context.Context, op string, start time.Time, pattern string, files []search.FileEntry, opts search.Options) (string, error) {
	result, err := s.engine.Search(ctx, pattern, files, opts)
	if err != nil {
		return "", s.fail(ctx, op, start, fromSearchError(err))
	}
	s.done(ctx, op, start, len(files), result)
	return encodePaths(search.UniquePaths(result))
}

// log prefers a request-scoped logger carried by ctx.
func (s *Service) log(ctx context.Context) *zap.Logger {
	if l, ok := logger.Lookup(ctx); ok {
		return l
	}
	return s.logger
}

func (s *Service) done(ctx context.Context, op string, start time.Time, files int, result *search.Result, extra ...zap.Field) {
	fields := append([]zap.Field{
		zap.Int("files", files),
		zap.Int("matches", result.TotalMatches),
		zap.Int("files_with_matches", result.FilesWithMatches),
		zap.Duration("took", time.Since(start)),
	}, extra...)
	s.log(ctx).Debug(op+" completed", fields...)
}

// fail logs at debug: boundary errors are caller mistakes, not faults.
func (s *Service) fail(ctx context.Context, op string, start time.Time, err error) error {
	e := apierror.Wrap(err)
	s.log(ctx).Debug(op+" failed",
		zap.String("kind", string(e.Kind)),
		zap.String("error", e.Message),
		zap.Duration("took", time.Since(start)))
	return e
}
