// Package watch re-ingests documents when they change on disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/acervo-ai/acervo-cli/internal/core/ports/driving"
	"github.com/acervo-ai/acervo-cli/internal/logger"
)

// debounceDelay batches rapid successive writes to the same file, as
// editors commonly produce several events per save.
const debounceDelay = 500 * time.Millisecond

// ignoredDirs are never descended into.
var ignoredDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	".idea":        true,
	".vscode":      true,
	"vendor":       true,
}

// Watcher monitors a directory tree and re-ingests changed files.
// Document and chunk IDs are content-derived, so re-ingesting an
// updated file overwrites its previous entries.
type Watcher struct {
	ingestion driving.IngestionService

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a watcher driving the given ingestion service.
func New(ingestion driving.IngestionService) *Watcher {
	return &Watcher{
		ingestion: ingestion,
		pending:   make(map[string]*time.Timer),
	}
}

// Watch blocks, re-ingesting files under dir as they are written or
// created, until the context is cancelled.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := addRecursive(fsw, dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Info("Watching %s for changes", dir)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Watch cancelled")
			w.stopPending()
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fsw, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, fsw *fsnotify.Watcher, event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || ignoredDirs[name] {
		return
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	// New directories must be added to the watch set; fsnotify does
	// not watch recursively on its own.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := addRecursive(fsw, event.Name); err == nil {
				logger.Debug("Watching new directory %s", event.Name)
			}
			return
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[event.Name]; ok {
		t.Stop()
	}
	path := event.Name
	w.pending[path] = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.reingest(ctx, path)
	})
}

func (w *Watcher) reingest(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	res := w.ingestion.Ingest(ctx, path)
	if !res.Success() {
		logger.Warn("Re-ingestion of %s failed: %v", path, res.Err)
		return
	}
	logger.Info("Re-ingested %s: %d chunks", path, res.ChunksStored)
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

// addRecursive watches dir and every non-ignored subdirectory.
func addRecursive(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != dir && (strings.HasPrefix(name, ".") || ignoredDirs[name]) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}
