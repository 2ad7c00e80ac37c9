// Package watcher polls the media directory for freshly written capture
// documents and enqueues import jobs for them.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

const defaultPollInterval = 30 * time.Second

// JobSink receives the directories the watcher considers new.
type JobSink func(ctx context.Context, dir string) error

// Watcher scans a root directory for capture document directories and calls
// the sink once per directory it has not seen before. Polling keeps it
// portable across the network mounts capture cards usually live on, where
// inotify-style events are unreliable.
type Watcher struct {
	root         string
	sink         JobSink
	logger       *slog.Logger
	pollInterval time.Duration
	running      atomic.Bool

	seen map[string]time.Time
}

func New(root string, sink JobSink, logger *slog.Logger) *Watcher {
	return &Watcher{
		root:         root,
		sink:         sink,
		logger:       logger,
		pollInterval: defaultPollInterval,
		seen:         make(map[string]time.Time),
	}
}

func (w *Watcher) Start(ctx context.Context) {
	if w.running.Swap(true) {
		return
	}

	w.logger.Info("capture watcher started", "root", w.root)

	// Prime the seen set so a restart does not re-enqueue everything.
	w.scan(ctx, false)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("capture watcher stopping")
			w.running.Store(false)
			return
		case <-ticker.C:
			w.scan(ctx, true)
		}
	}
}

func (w *Watcher) IsRunning() bool {
	return w.running.Load()
}

// scan walks the root for capture directories. When notify is set, unseen
// directories whose documents have settled are handed to the sink.
func (w *Watcher) scan(ctx context.Context, notify bool) {
	found := make(map[string]time.Time)

	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), "_data.json") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		dir := filepath.Dir(path)
		if info.ModTime().After(found[dir]) {
			found[dir] = info.ModTime()
		}
		return nil
	})
	if err != nil {
		w.logger.Warn("capture scan failed", "root", w.root, "error", err)
		return
	}

	for dir, modTime := range found {
		prev, known := w.seen[dir]
		w.seen[dir] = modTime
		if !notify {
			continue
		}
		if known && !modTime.After(prev) {
			continue
		}
		// Skip directories still being written; they will settle by the
		// next poll.
		if time.Since(modTime) < w.pollInterval/2 {
			w.seen[dir] = prev
			if !known {
				delete(w.seen, dir)
			}
			continue
		}

		w.logger.Info("new capture directory detected", "dir", dir)
		if err := w.sink(ctx, dir); err != nil {
			w.logger.Error("failed to enqueue import for capture directory", "dir", dir, "error", err)
			// Retry on the next poll.
			if known {
				w.seen[dir] = prev
			} else {
				delete(w.seen, dir)
			}
		}
	}
}
