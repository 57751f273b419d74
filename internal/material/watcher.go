package material

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/p-n-ai/pai-study/internal/course"
)

const defaultResync = 30 * time.Second

// Remover detaches a vanished document from the courses that list it.
type Remover interface {
	RemoveMissingFile(ctx context.Context, path string) error
}

// Watcher keeps course attachments in sync with the filesystem. The store is
// only read here; removals go through the remover so they are serialised with
// every other course edit.
type Watcher struct {
	store   course.Store
	remover Remover
	fsw     *fsnotify.Watcher
	resync  time.Duration
	mu      sync.Mutex
	watched map[string]bool
}

// NewWatcher creates a watcher over the directories of all attached documents.
func NewWatcher(store course.Store, remover Remover, resync time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}
	if resync <= 0 {
		resync = defaultResync
	}
	return &Watcher{
		store:   store,
		remover: remover,
		fsw:     fsw,
		resync:  resync,
		watched: make(map[string]bool),
	}, nil
}

// Sync adds a watch for every directory holding an attached document.
func (w *Watcher) Sync() error {
	courses, err := w.store.FindAll()
	if err != nil {
		return fmt.Errorf("list courses: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, c := range courses {
		for _, f := range c.Files {
			dir := filepath.Dir(f.Path)
			if w.watched[dir] {
				continue
			}
			if err := w.fsw.Add(dir); err != nil {
				slog.Warn("cannot watch material directory", "dir", dir, "error", err)
				continue
			}
			w.watched[dir] = true
		}
	}
	return nil
}

// Run processes filesystem events until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	if err := w.Sync(); err != nil {
		slog.Warn("initial material sync failed", "error", err)
	}

	ticker := time.NewTicker(w.resync)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Sync(); err != nil {
				slog.Warn("material resync failed", "error", err)
			}
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if _, err := w.Handle(ctx, event); err != nil {
				slog.Warn("material event failed", "path", event.Name, "error", err)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("fs watcher error", "error", err)
		}
	}
}

// Handle forwards a remove or rename event to the remover and reports
// whether it did.
func (w *Watcher) Handle(ctx context.Context, event fsnotify.Event) (bool, error) {
	if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false, nil
	}
	if err := w.remover.RemoveMissingFile(ctx, event.Name); err != nil {
		return true, fmt.Errorf("remove %s: %w", event.Name, err)
	}
	return true, nil
}

// Close stops the underlying fs watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
