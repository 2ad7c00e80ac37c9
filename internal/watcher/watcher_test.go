package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestWatcher(t *testing.T, root string, sink JobSink) *Watcher {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := New(root, sink, logger)
	w.pollInterval = 10 * time.Millisecond
	return w
}

func writeDoc(t *testing.T, root, name string, modTime time.Time) string {
	t.Helper()
	dir := filepath.Join(root, name+"_captures")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	path := filepath.Join(dir, name+"_data.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("failed to write doc: %v", err)
	}
	if !modTime.IsZero() {
		if err := os.Chtimes(path, modTime, modTime); err != nil {
			t.Fatalf("failed to set mtime: %v", err)
		}
	}
	return dir
}

func TestWatcher_PrimeDoesNotNotify(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "GH010001", time.Now().Add(-time.Hour))

	var notified []string
	w := newTestWatcher(t, root, func(ctx context.Context, dir string) error {
		notified = append(notified, dir)
		return nil
	})

	w.scan(context.Background(), false)
	if len(notified) != 0 {
		t.Errorf("priming scan notified %v, want none", notified)
	}

	// Same content on the next notifying scan: still nothing.
	w.scan(context.Background(), true)
	if len(notified) != 0 {
		t.Errorf("unchanged scan notified %v, want none", notified)
	}
}

func TestWatcher_NotifiesNewSettledDirectory(t *testing.T) {
	root := t.TempDir()

	var notified []string
	w := newTestWatcher(t, root, func(ctx context.Context, dir string) error {
		notified = append(notified, dir)
		return nil
	})
	w.scan(context.Background(), false)

	dir := writeDoc(t, root, "GH010002", time.Now().Add(-time.Minute))
	w.scan(context.Background(), true)

	if len(notified) != 1 || notified[0] != dir {
		t.Fatalf("notified = %v, want [%s]", notified, dir)
	}

	// No duplicate on the next scan.
	w.scan(context.Background(), true)
	if len(notified) != 1 {
		t.Errorf("second scan re-notified: %v", notified)
	}
}

func TestWatcher_SkipsUnsettledDirectory(t *testing.T) {
	root := t.TempDir()

	var notified []string
	w := newTestWatcher(t, root, func(ctx context.Context, dir string) error {
		notified = append(notified, dir)
		return nil
	})
	w.pollInterval = time.Hour // settle window of 30 minutes
	w.scan(context.Background(), false)

	writeDoc(t, root, "GH010003", time.Now())
	w.scan(context.Background(), true)

	if len(notified) != 0 {
		t.Errorf("notified %v for a still-settling directory, want none", notified)
	}
}

func TestWatcher_RetriesAfterSinkError(t *testing.T) {
	root := t.TempDir()

	fail := true
	var notified int
	w := newTestWatcher(t, root, func(ctx context.Context, dir string) error {
		notified++
		if fail {
			return context.DeadlineExceeded
		}
		return nil
	})
	w.scan(context.Background(), false)

	writeDoc(t, root, "GH010004", time.Now().Add(-time.Minute))

	w.scan(context.Background(), true)
	fail = false
	w.scan(context.Background(), true)

	if notified != 2 {
		t.Errorf("sink called %d times, want 2 (failure then retry)", notified)
	}
}
