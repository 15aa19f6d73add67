package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - NewFileWatcher succeeds on a directory and fails on a missing one
// - A file change fires the callback after the debounce period
// - Rapid changes are coalesced and deduplicated into one sorted batch
// - Pause accumulates, Resume flushes
// - New directories are watched recursively
// - Filter and .git events are ignored
// - Stop is idempotent, including before Start

const testDebounce = 50 * time.Millisecond

type batchRecorder struct {
	mu      sync.Mutex
	batches [][]string
	ch      chan struct{}
}

func newBatchRecorder() *batchRecorder {
	return &batchRecorder{ch: make(chan struct{}, 16)}
}

func (r *batchRecorder) callback(paths []string) {
	r.mu.Lock()
	r.batches = append(r.batches, paths)
	r.mu.Unlock()
	r.ch <- struct{}{}
}

func (r *batchRecorder) wait(t *testing.T) []string {
	t.Helper()
	select {
	case <-r.ch:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batches[len(r.batches)-1]
}

func (r *batchRecorder) expectNone(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case <-r.ch:
		t.Fatal("unexpected callback")
	case <-time.After(d):
	}
}

func startWatcher(t *testing.T, dir string, opts ...Option) (FileWatcher, *batchRecorder) {
	t.Helper()
	w, err := NewFileWatcher(dir, append([]Option{WithDebounce(testDebounce)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	rec := newBatchRecorder()
	require.NoError(t, w.Start(context.Background(), rec.callback))
	time.Sleep(50 * time.Millisecond)
	return w, rec
}

func TestNewFileWatcher(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop(), "stop is idempotent")

	w, err = NewFileWatcher(filepath.Join(t.TempDir(), "nonexistent"))
	assert.Error(t, err)
	assert.Nil(t, w)
}

func TestFileWatcher_FiresAfterDebounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir)

	path := filepath.Join(dir, "a.go")
	require.NoError(t, os.WriteFile(path, []byte("package a"), 0644))

	batch := rec.wait(t)
	assert.Contains(t, batch, filepath.ToSlash(path))
}

func TestFileWatcher_CoalescesAndDeduplicates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir)

	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(b, []byte(strings.Repeat("b", i+1)), 0644))
		require.NoError(t, os.WriteFile(a, []byte(strings.Repeat("a", i+1)), 0644))
	}

	batch := rec.wait(t)
	assert.Equal(t, []string{filepath.ToSlash(a), filepath.ToSlash(b)}, batch)
}

func TestFileWatcher_PauseResume(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, rec := startWatcher(t, dir)

	w.Pause()
	path := filepath.Join(dir, "paused.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	rec.expectNone(t, 4*testDebounce)

	w.Resume()
	batch := rec.wait(t)
	assert.Contains(t, batch, filepath.ToSlash(path))
}

func TestFileWatcher_WatchesNewDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, rec := startWatcher(t, dir)

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))
	rec.wait(t) // the directory creation itself

	time.Sleep(50 * time.Millisecond)
	path := filepath.Join(sub, "nested.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	assert.Contains(t, rec.wait(t), filepath.ToSlash(path))
}

func TestFileWatcher_Filters(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	gitDir := filepath.Join(dir, ".git")
	require.NoError(t, os.Mkdir(gitDir, 0755))

	_, rec := startWatcher(t, dir, WithFilter(func(path string) bool {
		return !strings.HasSuffix(path, ".log")
	}))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "noise.log"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "HEAD"), []byte("x"), 0644))
	rec.expectNone(t, 4*testDebounce)

	kept := filepath.Join(dir, "kept.txt")
	require.NoError(t, os.WriteFile(kept, []byte("x"), 0644))
	assert.Equal(t, []string{filepath.ToSlash(kept)}, rec.wait(t))
}

func TestInGitDir(t *testing.T) {
	t.Parallel()

	assert.True(t, inGitDir("/repo/.git/HEAD"))
	assert.True(t, inGitDir("/repo/.git/refs/heads/main"))
	assert.False(t, inGitDir("/repo/src/main.go"))
	assert.False(t, inGitDir("/repo/.gitignore"))
}
