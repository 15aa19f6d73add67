package watcher

import "context"

// FileWatcher reports debounced batches of changed paths under a directory
// tree, with pause/resume support.
type FileWatcher interface {
	// Start begins watching, calling callback with each debounced batch.
	Start(ctx context.Context, callback func(paths []string)) error

	// Stop stops the watcher and releases its resources. It is idempotent.
	Stop() error

	// Pause stops firing callbacks but keeps accumulating events.
	Pause()

	// Resume resumes firing callbacks. Events accumulated while paused fire
	// immediately.
	Resume()
}
