package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mvp-joe/memgrep/internal/api"
	"github.com/mvp-joe/memgrep/internal/filter"
	"github.com/mvp-joe/memgrep/internal/hostfs"
	"github.com/mvp-joe/memgrep/internal/pathutil"
	"github.com/mvp-joe/memgrep/internal/search"
	"github.com/mvp-joe/memgrep/internal/watcher"
)

type scanFlags struct {
	search   searchFlags
	maxDepth int
	types    []string
	ignores  []string
	includes []string
	excludes []string
	hidden   bool
	noIgnore bool
	progress bool
	watch    bool
	jsonOut  bool
}

func newScanCmd(a *app) *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "scan PATTERN [DIR]",
		Short: "Search a directory on disk",
		Long: `scan walks DIR (default: the current directory), applies .gitignore files,
overrides, file-type and ignore globs, depth and hidden-file rules, reads the
surviving text files and searches them.

Binary files and files over limits.max_file_bytes are skipped. Files that
cannot be read are reported and skipped.

Examples:
  memgrep scan TODO
  memgrep scan -i 'fixme|hack' ./src -t '*.go' --max-depth 3
  memgrep scan -l main --exclude '*_test.go' --include '*.go'
  memgrep scan --watch --progress handler`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 2 {
				dir = args[1]
				if err := a.setup(dir); err != nil {
					return err
				}
			}
			return runScan(cmd, a, &flags, args[0], dir)
		},
	}

	flags.search.register(cmd, true)
	cmd.Flags().IntVar(&flags.maxDepth, "max-depth", -1, "maximum path depth below DIR (-1 for unlimited)")
	cmd.Flags().StringSliceVarP(&flags.types, "type", "t", nil, "only search paths matching this glob (repeatable)")
	cmd.Flags().StringSliceVar(&flags.ignores, "ignore", nil, "skip paths matching this glob (repeatable)")
	cmd.Flags().StringSliceVar(&flags.includes, "include", nil, "override glob; when given, only matching paths are searched")
	cmd.Flags().StringSliceVar(&flags.excludes, "exclude", nil, "override glob for paths to skip")
	cmd.Flags().BoolVar(&flags.hidden, "hidden", false, "search hidden files")
	cmd.Flags().BoolVar(&flags.noIgnore, "no-ignore", false, "do not respect .gitignore files")
	cmd.Flags().BoolVar(&flags.progress, "progress", false, "show a progress bar and a summary on stderr")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "re-run the scan when files change")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "print JSON instead of path:line:text")
	return cmd
}

func runScan(cmd *cobra.Command, a *app, flags *scanFlags, pattern, dir string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(cmd.ErrOrStderr(), "\nInterrupted, stopping...")
			cancel()
		case <-ctx.Done():
		}
	}()

	loader, err := hostfs.NewLoader(hostfs.LoaderConfig{
		MaxFileBytes:      a.cfg.Limits.MaxFileBytes,
		BinarySampleBytes: a.cfg.Limits.BinarySampleBytes,
		CacheCapacity:     a.cfg.Cache.Capacity,
	}, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create file loader: %w", err)
	}
	defer loader.Close()

	s := &scanner{
		svc:     a.svc,
		loader:  loader,
		root:    dir,
		pattern: pattern,
		filter:  flags.filterConfig(cmd, a.cfg.ToFilterConfig("")),
		opts:    flags.search.apply(cmd, a.cfg.ToSearchOptions()),
		logger:  a.logger,
	}
	if flags.progress {
		s.progress = newLoadProgress(cmd.ErrOrStderr())
	}

	report, err := s.run(ctx)
	if err != nil {
		return err
	}
	if err := writeReport(cmd.OutOrStdout(), report, s.opts, flags.jsonOut); err != nil {
		return err
	}

	if !flags.watch {
		return nil
	}
	return s.watch(ctx, cmd, report.root, time.Duration(a.cfg.Watch.DebounceMs)*time.Millisecond, flags)
}

// filterConfig applies the directory flags that were set on top of the
// configured defaults.
func (f *scanFlags) filterConfig(cmd *cobra.Command, cfg filter.Config) filter.Config {
	flags := cmd.Flags()
	if flags.Changed("max-depth") {
		if f.maxDepth >= 0 {
			depth := f.maxDepth
			cfg.MaxDepth = &depth
		} else {
			cfg.MaxDepth = nil
		}
	}
	if flags.Changed("hidden") {
		cfg.IncludeHidden = f.hidden
	}
	if flags.Changed("no-ignore") {
		cfg.RespectGitignore = !f.noIgnore
	}
	cfg.FileTypes = append(cfg.FileTypes, f.types...)
	cfg.IgnorePatterns = append(cfg.IgnorePatterns, f.ignores...)
	cfg.OverridePatterns = append(cfg.OverridePatterns, f.includes...)
	cfg.ExcludePatterns = append(cfg.ExcludePatterns, f.excludes...)
	return cfg
}

// scanner runs one walk-filter-load-search pass over a directory.
type scanner struct {
	svc      *api.Service
	loader   *hostfs.Loader
	root     string
	pattern  string
	filter   filter.Config
	opts     search.Options
	progress *loadProgress
	logger   *zap.Logger
}

type scanReport struct {
	root   string
	walked int
	kept   int
	stats  hostfs.LoadStats
	result *search.Result
	took   time.Duration
}

func (s *scanner) run(ctx context.Context) (*scanReport, error) {
	start := time.Now()

	tree, err := hostfs.Walk(ctx, s.root, hostfs.WalkOptions{IncludeHidden: s.filter.IncludeHidden})
	if err != nil {
		return nil, err
	}

	cfg := s.filter
	cfg.RootPath = tree.Root
	cfg.GitignoreFiles = tree.Gitignores

	entries, err := s.svc.FilterPaths(ctx, cfg, tree.Files)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}

	var progress hostfs.ProgressFunc
	if s.progress != nil {
		progress = s.progress.Func()
	}
	files, stats, err := s.loader.Load(ctx, paths, progress)
	if s.progress != nil {
		s.progress.Finish()
	}
	if err != nil {
		return nil, err
	}

	// --no-line-number only changes how scan prints matches.
	opts := s.opts
	opts.LineNumbers = true
	result, err := s.svc.SearchEntries(ctx, s.pattern, files, opts)
	if err != nil {
		return nil, err
	}

	report := &scanReport{
		root:   tree.Root,
		walked: len(tree.Files),
		kept:   len(entries),
		stats:  stats,
		result: result,
		took:   time.Since(start),
	}
	s.logger.Debug("scan completed",
		zap.String("root", report.root),
		zap.Int("walked", report.walked),
		zap.Int("kept", report.kept),
		zap.Int("loaded", stats.Loaded),
		zap.Int("cache_hits", stats.CacheHits),
		zap.Int("matches", result.TotalMatches),
		zap.Duration("took", report.took))
	if s.progress != nil {
		s.progress.summary(report)
	}
	return report, nil
}

// watch re-runs the scan after each debounced batch of changes until ctx is
// cancelled. Events that arrive during a scan are held until it finishes.
func (s *scanner) watch(ctx context.Context, cmd *cobra.Command, root string, debounce time.Duration, flags *scanFlags) error {
	fw, err := watcher.NewFileWatcher(root,
		watcher.WithDebounce(debounce),
		watcher.WithLogger(s.logger),
		watcher.WithFilter(func(path string) bool {
			name := pathutil.FileName(path)
			return flags.hidden || name == ".gitignore" || !strings.HasPrefix(name, ".")
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Stop()

	changes := make(chan []string, 1)
	if err := fw.Start(ctx, func(paths []string) {
		select {
		case changes <- paths:
		default:
			// a rescan is already queued and will see these changes
		}
	}); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for changes (Ctrl+C to stop)...\n", root)

	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-changes:
			s.logger.Info("files changed, rescanning", zap.Int("changed", len(paths)))

			fw.Pause()
			report, err := s.run(ctx)
			if err != nil {
				if ctx.Err() != nil {
					fw.Resume()
					return nil
				}
				printError(cmd.ErrOrStderr(), err)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "--- %d file(s) changed ---\n", len(paths))
				if err := writeReport(cmd.OutOrStdout(), report, s.opts, flags.jsonOut); err != nil {
					fw.Resume()
					return err
				}
			}
			fw.Resume()
		}
	}
}

// writeReport prints matches as path:line:text (paths relative to the scan
// root), or as JSON.
func writeReport(w io.Writer, r *scanReport, opts search.Options, jsonOut bool) error {
	filesOnly := opts.OutputFormat == search.OutputFilesOnly

	if jsonOut {
		var v interface{} = r.result
		if filesOnly {
			paths := search.UniquePaths(r.result)
			if paths == nil {
				paths = []string{}
			}
			v = paths
		}
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	if filesOnly {
		for _, path := range search.UniquePaths(r.result) {
			if _, err := fmt.Fprintln(w, displayPath(path, r.root)); err != nil {
				return err
			}
		}
		return nil
	}

	for _, m := range r.result.Matches {
		var err error
		if opts.LineNumbers {
			_, err = fmt.Fprintf(w, "%s:%d:%s\n", displayPath(m.Path, r.root), m.LineNumber, m.Line)
		} else {
			_, err = fmt.Fprintf(w, "%s:%s\n", displayPath(m.Path, r.root), m.Line)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func displayPath(path, root string) string {
	if rel, ok := pathutil.StripPrefix(path, root); ok {
		return rel
	}
	return path
}
