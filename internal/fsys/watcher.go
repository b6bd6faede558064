// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Taskdeck Contributors

package fsys

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	tderr "github.com/taskdeck/taskdeck/pkg/errors"
)

// Watcher watches one folder per card and forwards change events to the
// Notifier. fsnotify does not recurse, so subdirectories present at watch
// time are added individually; directories created later are picked up on
// the next WatchFolder call.
type Watcher struct {
	mu       sync.Mutex
	notifier Notifier
	watchers map[string]*fsnotify.Watcher // card ID → watcher
}

// NewWatcher creates a Watcher forwarding events to notifier.
func NewWatcher(notifier Notifier) *Watcher {
	return &Watcher{
		notifier: notifier,
		watchers: make(map[string]*fsnotify.Watcher),
	}
}

// WatchFolder starts watching path (and its current subdirectories) on
// behalf of cardID. Watching a card that is already watched replaces the
// previous watch.
func (w *Watcher) WatchFolder(cardID, path string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return tderr.Wrapf(err, tderr.CodeFsysWatchFailure, "creating watcher for card %s", cardID)
	}

	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if p != path && (name[0] == '.' || name == "node_modules") {
			return filepath.SkipDir
		}
		return fw.Add(p)
	})
	if err != nil {
		fw.Close()
		return tderr.Wrapf(err, tderr.CodeFsysWatchFailure, "watching folder %s", path)
	}

	go w.forward(fw)

	w.mu.Lock()
	if prev, ok := w.watchers[cardID]; ok {
		prev.Close()
	}
	w.watchers[cardID] = fw
	w.mu.Unlock()
	return nil
}

// Unwatch stops watching on behalf of cardID. Unknown IDs are ignored.
func (w *Watcher) Unwatch(cardID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if fw, ok := w.watchers[cardID]; ok {
		fw.Close()
		delete(w.watchers, cardID)
	}
}

// Close stops all watches.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for id, fw := range w.watchers {
		fw.Close()
		delete(w.watchers, id)
	}
}

func (w *Watcher) forward(fw *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.notifier.RefreshFileTree()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			slog.Warn("file watcher error", "error", err)
		}
	}
}
