package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay batches the write/rename bursts editors and atomic-save
// tools produce into a single reload.
const debounceDelay = 500 * time.Millisecond

// Watcher reloads the catalog whenever the seed file changes.
//
// It watches the seed file's parent directory rather than the file itself,
// because atomic saves (write temp, rename over) replace the inode and a
// direct file watch would go stale after the first save.
type Watcher struct {
	path     string
	loader   *Loader
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	debounce *time.Timer
}

// NewWatcher creates a watcher for the given seed file.
func NewWatcher(path string, loader *Loader, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Watcher{
		path:    filepath.Clean(path),
		loader:  loader,
		logger:  logger,
		watcher: fsWatcher,
	}, nil
}

// Start begins watching and blocks until the context is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch seed directory: %w", err)
	}

	w.logger.Info("watching catalog seed", "path", w.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("catalog watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(debounceDelay, func() {
		w.reload(ctx)
	})
}

func (w *Watcher) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	w.logger.Info("catalog seed changed, reloading", "path", w.path)
	if err := w.loader.LoadAndApply(ctx, w.path); err != nil {
		// Keep serving the previous catalog; an operator fixing a typo
		// mid-edit shouldn't blank the archive.
		w.logger.Error("catalog reload failed", "path", w.path, "error", err)
	}
}
