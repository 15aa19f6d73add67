package hostfs

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/maypok86/otter"
	"go.uber.org/zap"

	"github.com/mvp-joe/memgrep/internal/apierror"
	"github.com/mvp-joe/memgrep/internal/search"
)

// LoaderConfig bounds what the loader reads.
type LoaderConfig struct {
	MaxFileBytes      int64
	BinarySampleBytes int
	CacheCapacity     int
}

// DefaultLoaderConfig mirrors the config package defaults.
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		MaxFileBytes:      50 * 1024 * 1024,
		BinarySampleBytes: 8 * 1024,
		CacheCapacity:     10_000,
	}
}

// LoadStats summarizes one Load call.
type LoadStats struct {
	Loaded    int
	CacheHits int
	Binary    int
	Oversized int
	// Failed holds a FileError for every file that could not be read.
	Failed []*apierror.Error
}

// ProgressFunc is called after each path is processed.
type ProgressFunc func(done, total int)

// cachedFile is keyed by path and trusted while size and mtime are unchanged.
type cachedFile struct {
	modTime time.Time
	size    int64
	content string
	binary  bool
}

// Loader reads files into search entries, reusing content for files whose
// size and modification time have not changed since the last read. It is
// safe for concurrent use.
type Loader struct {
	cfg    LoaderConfig
	cache  otter.Cache[string, cachedFile]
	logger *zap.Logger
}

// NewLoader builds a Loader backed by an otter cache of cfg.CacheCapacity
// entries.
func NewLoader(cfg LoaderConfig, logger *zap.Logger) (*Loader, error) {
	if cfg.CacheCapacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", cfg.CacheCapacity)
	}
	if cfg.BinarySampleBytes <= 0 {
		cfg.BinarySampleBytes = DefaultLoaderConfig().BinarySampleBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cache, err := otter.MustBuilder[string, cachedFile](cfg.CacheCapacity).Build()
	if err != nil {
		return nil, fmt.Errorf("build file cache: %w", err)
	}

	return &Loader{cfg: cfg, cache: cache, logger: logger}, nil
}

// Close releases the cache.
func (l *Loader) Close() {
	l.cache.Close()
}

// Load reads paths in order. Binary files, files over the size limit and
// files that cannot be read are skipped; read failures are reported in the
// stats rather than aborting the batch.
func (l *Loader) Load(ctx context.Context, paths []string, progress ProgressFunc) ([]search.FileEntry, LoadStats, error) {
	var stats LoadStats
	entries := make([]search.FileEntry, 0, len(paths))

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		file, hit, err := l.read(path)
		switch {
		case err != nil:
			stats.Failed = append(stats.Failed, apierror.File(
				fmt.Sprintf("Failed to read file '%s': %v", path, err), path, err))
			l.logger.Warn("skipping unreadable file", zap.String("path", path), zap.Error(err))
		case file.size > l.cfg.MaxFileBytes && l.cfg.MaxFileBytes > 0:
			stats.Oversized++
			l.logger.Debug("skipping oversized file", zap.String("path", path), zap.Int64("size", file.size))
		case file.binary:
			stats.Binary++
			l.logger.Debug("skipping binary file", zap.String("path", path))
		default:
			stats.Loaded++
			if hit {
				stats.CacheHits++
			}
			entries = append(entries, search.FileEntry{Path: path, Content: file.content})
		}

		if progress != nil {
			progress(i+1, len(paths))
		}
	}

	return entries, stats, nil
}

// read returns the cached file when it is still fresh, otherwise reads it
// from disk. Oversized files are stat'ed but never read.
func (l *Loader) read(path string) (cachedFile, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return cachedFile{}, false, err
	}

	if cached, ok := l.cache.Get(path); ok && cached.size == info.Size() && cached.modTime.Equal(info.ModTime()) {
		return cached, true, nil
	}

	file := cachedFile{modTime: info.ModTime(), size: info.Size()}
	if l.cfg.MaxFileBytes > 0 && info.Size() > l.cfg.MaxFileBytes {
		return file, false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cachedFile{}, false, err
	}
	file.binary = isBinaryContent(data, l.cfg.BinarySampleBytes)
	if !file.binary {
		file.content = string(data)
	}

	l.cache.Set(path, file)
	return file, false, nil
}
