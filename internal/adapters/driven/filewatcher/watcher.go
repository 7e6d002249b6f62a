// Package filewatcher provides directory monitoring for automatic
// ingestion, backed by fsnotify.
package filewatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/corpora/internal/core/ports/driven"
	"github.com/custodia-labs/corpora/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.FileWatcher = (*Watcher)(nil)

// Watcher monitors a directory with fsnotify, filtered to the file
// extensions the extractor registry can handle.
type Watcher struct {
	watcher    *fsnotify.Watcher
	extensions map[string]struct{}
}

// New creates a watcher limited to the given extensions (lowercase,
// with leading dot). An empty list watches nothing useful, so callers
// pass the extractor registry's supported extensions.
func New(extensions []string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}

	return &Watcher{
		watcher:    w,
		extensions: exts,
	}, nil
}

// Watch starts monitoring dir and emits events until ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan driven.FileEvent, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	events := make(chan driven.FileEvent, 100)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !w.watched(event.Name) {
					continue
				}

				var op driven.FileOp
				switch {
				case event.Op.Has(fsnotify.Create):
					op = driven.FileCreated
				case event.Op.Has(fsnotify.Write):
					op = driven.FileModified
				case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
					op = driven.FileRemoved
				default:
					continue
				}

				select {
				case events <- driven.FileEvent{Path: event.Name, Op: op}:
				case <-ctx.Done():
					return
				}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("File watcher error: %v", err)
			}
		}
	}()

	return events, nil
}

// Stop shuts the watcher down.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// watched reports whether the path's extension is monitored.
func (w *Watcher) watched(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := w.extensions[ext]
	return ok
}
