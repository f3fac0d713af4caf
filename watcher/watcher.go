// Package watcher turns file system changes below a local store root into cache
// invalidations, so searches over the local backend see edits before the index TTL expires.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lexandro/davsearch-mcp/ignore"
	"github.com/lexandro/davsearch-mcp/store"
)

const defaultDebounce = 100 * time.Millisecond

// Invalidator drops cached state for a changed store path. *search.Engine implements it.
type Invalidator interface {
	Invalidate(storePath string)
}

// Watcher mirrors the directory tree of a local store into fsnotify watches and
// feeds debounced changes to an Invalidator.
type Watcher struct {
	fsWatcher   *fsnotify.Watcher
	debouncer   *Debouncer
	local       *store.LocalStore
	matcher     *ignore.Matcher
	invalidator Invalidator
	logger      *slog.Logger
}

// New watches every non-ignored directory below local.Root. matcher may be nil.
func New(local *store.LocalStore, matcher *ignore.Matcher, invalidator Invalidator, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	w := &Watcher{
		fsWatcher:   fsWatcher,
		debouncer:   NewDebouncer(defaultDebounce),
		local:       local,
		matcher:     matcher,
		invalidator: invalidator,
		logger:      logger,
	}
	if err := w.watchTree(local.Root); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watching %s: %w", local.Root, err)
	}
	logger.Info("watching local store", "root", local.Root, "directories", len(fsWatcher.WatchList()))
	return w, nil
}

// watchTree adds dir and every non-ignored directory below it. Unreadable entries are skipped.
func (w *Watcher) watchTree(dir string) error {
	return filepath.WalkDir(dir, func(osPath string, d fs.DirEntry, err error) error {
		switch {
		case err != nil, !d.IsDir():
			return nil
		case osPath != w.local.Root && w.ignored(osPath, true):
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(osPath); err != nil {
			w.logger.Warn("failed to watch directory", "path", osPath, "error", err)
		}
		return nil
	})
}

// Run applies debounced changes until ctx ends, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case batch := <-w.debouncer.Output():
			w.apply(batch)
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("fsnotify error", "error", err)
		}
	}
}

// opFor maps an fsnotify event to the op recorded for it; chmod-only events are dropped.
func opFor(event fsnotify.Event) (EventOp, bool) {
	for _, candidate := range []struct {
		flag fsnotify.Op
		op   EventOp
	}{
		{fsnotify.Create, OpCreate},
		{fsnotify.Write, OpWrite},
		{fsnotify.Remove, OpRemove},
		{fsnotify.Rename, OpRename},
	} {
		if event.Has(candidate.flag) {
			return candidate.op, true
		}
	}
	return 0, false
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	op, ok := opFor(event)
	if !ok {
		return
	}
	storePath, err := w.local.ToStorePath(event.Name)
	if err != nil {
		w.logger.Debug("event outside store root", "path", event.Name, "error", err)
		return
	}

	isDir := false
	if op == OpCreate {
		info, statErr := os.Stat(event.Name)
		isDir = statErr == nil && info.IsDir()
	}
	if w.matcher != nil && w.matcher.ShouldIgnore(storePath, isDir) {
		return
	}
	// A directory moved in may already hold subfolders
	if isDir {
		if err := w.watchTree(event.Name); err != nil {
			w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
		}
	}
	w.debouncer.Add(storePath, op)
}

// apply invalidates each changed path, plus its parent folder when the folder listing changed.
func (w *Watcher) apply(batch []DebouncedEvent) {
	for _, event := range batch {
		w.invalidator.Invalidate(event.Path)
		if event.Op.changesListing() && event.Path != "/" {
			w.invalidator.Invalidate(path.Dir(event.Path))
		}
		w.logger.Debug("change applied", "path", event.Path, "op", event.Op.String())
	}
	w.logger.Info("store changes applied", "paths", len(batch))
}

func (w *Watcher) ignored(osPath string, isDir bool) bool {
	if w.matcher == nil {
		return false
	}
	storePath, err := w.local.ToStorePath(osPath)
	if err != nil {
		return true
	}
	return w.matcher.ShouldIgnore(storePath, isDir)
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	w.debouncer.Stop()
	return w.fsWatcher.Close()
}
