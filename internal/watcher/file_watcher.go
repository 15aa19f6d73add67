// Package watcher turns fsnotify events under a directory tree into
// debounced batches of changed paths.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period before a batch fires.
const DefaultDebounce = 500 * time.Millisecond

// Option configures a file watcher.
type Option func(*fileWatcher)

// WithDebounce sets the quiet period. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(fw *fileWatcher) {
		if d > 0 {
			fw.debounceTime = d
		}
	}
}

// WithLogger sets the logger used for watch errors.
func WithLogger(logger *zap.Logger) Option {
	return func(fw *fileWatcher) {
		if logger != nil {
			fw.logger = logger
		}
	}
}

// WithFilter restricts which paths count as changes. Directories named .git
// are never watched regardless of the filter.
func WithFilter(keep func(path string) bool) Option {
	return func(fw *fileWatcher) {
		if keep != nil {
			fw.keep = keep
		}
	}
}

type fileWatcher struct {
	watcher       *fsnotify.Watcher
	root          string
	debounceTime  time.Duration
	keep          func(path string) bool
	logger        *zap.Logger
	callback      func(paths []string)
	ctx           context.Context
	cancel        context.CancelFunc
	paused        bool
	pausedMu      sync.RWMutex
	accumulated   map[string]struct{}
	accumulatedMu sync.Mutex
	debounceTimer *time.Timer
	timerMu       sync.Mutex
	stopOnce      sync.Once
	doneCh        chan struct{}
}

// NewFileWatcher watches root and every directory below it.
func NewFileWatcher(root string, opts ...Option) (FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &fileWatcher{
		watcher:      w,
		root:         root,
		debounceTime: DefaultDebounce,
		keep:         func(string) bool { return true },
		logger:       zap.NewNop(),
		accumulated:  make(map[string]struct{}),
		doneCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(fw)
	}

	if err := fw.addDirectoriesRecursively(root); err != nil {
		w.Close()
		return nil, err
	}

	return fw, nil
}

// Start begins watching for changes.
func (fw *fileWatcher) Start(ctx context.Context, callback func(paths []string)) error {
	if callback == nil {
		return nil
	}

	fw.callback = callback
	fw.ctx, fw.cancel = context.WithCancel(ctx)

	go fw.watch()
	return nil
}

// Stop stops the watcher.
func (fw *fileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()
			<-fw.doneCh
		} else {
			close(fw.doneCh)
		}
		err = fw.watcher.Close()
	})
	return err
}

// Pause stops firing callbacks but continues accumulating events.
func (fw *fileWatcher) Pause() {
	fw.pausedMu.Lock()
	defer fw.pausedMu.Unlock()
	fw.paused = true
}

// Resume resumes firing callbacks, flushing anything accumulated while paused.
func (fw *fileWatcher) Resume() {
	fw.pausedMu.Lock()
	wasPaused := fw.paused
	fw.paused = false
	fw.pausedMu.Unlock()

	if wasPaused {
		fw.flush()
	}
}

func (fw *fileWatcher) watch() {
	defer close(fw.doneCh)

	fireCh := make(chan struct{}, 1)

	for {
		select {
		case <-fw.ctx.Done():
			fw.stopDebounceTimer()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.addDirectoriesRecursively(event.Name); err != nil {
						fw.logger.Warn("failed to watch new directory",
							zap.String("dir", event.Name), zap.Error(err))
					}
				}
			}

			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.accumulatedMu.Lock()
			fw.accumulated[filepath.ToSlash(event.Name)] = struct{}{}
			fw.accumulatedMu.Unlock()

			fw.resetDebounceTimer(fireCh)

		case <-fireCh:
			fw.pausedMu.RLock()
			paused := fw.paused
			fw.pausedMu.RUnlock()
			if !paused {
				fw.flush()
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

// flush hands the accumulated paths, sorted, to the callback.
func (fw *fileWatcher) flush() {
	fw.accumulatedMu.Lock()
	if len(fw.accumulated) == 0 {
		fw.accumulatedMu.Unlock()
		return
	}
	paths := make([]string, 0, len(fw.accumulated))
	for p := range fw.accumulated {
		paths = append(paths, p)
	}
	fw.accumulated = make(map[string]struct{})
	fw.accumulatedMu.Unlock()

	sort.Strings(paths)
	if fw.callback != nil {
		fw.callback(paths)
	}
}

func (fw *fileWatcher) resetDebounceTimer(fireCh chan struct{}) {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}

	fw.debounceTimer = time.AfterFunc(fw.debounceTime, func() {
		select {
		case fireCh <- struct{}{}:
		default:
		}
	})
}

func (fw *fileWatcher) stopDebounceTimer() {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
		fw.debounceTimer = nil
	}
}

// shouldProcessEvent keeps writes, creates, removes and renames that pass the
// filter and do not come from inside a .git directory.
func (fw *fileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if inGitDir(event.Name) {
		return false
	}
	return fw.keep(filepath.ToSlash(event.Name))
}

func inGitDir(path string) bool {
	for dir := filepath.Dir(path); dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		if filepath.Base(dir) == ".git" {
			return true
		}
	}
	return false
}

func (fw *fileWatcher) addDirectoriesRecursively(rootPath string) error {
	return filepath.WalkDir(rootPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == rootPath {
				return err
			}
			fw.logger.Debug("error accessing path", zap.String("path", path), zap.Error(err))
			return nil
		}

		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" && path != rootPath {
			return filepath.SkipDir
		}

		if err := fw.watcher.Add(path); err != nil {
			fw.logger.Warn("failed to watch directory", zap.String("dir", path), zap.Error(err))
		}
		return nil
	})
}
