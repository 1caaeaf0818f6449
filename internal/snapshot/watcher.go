package snapshot

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Importer applies a snapshot document to the live store.
type Importer interface {
	ImportSnapshot(ctx context.Context, doc *Document) error
}

// Sync imports every snapshot file currently present under the root.
// Imports are idempotent upserts, so re-running is safe.
func Sync(ctx context.Context, store *Store, imp Importer, logger *slog.Logger) error {
	names, err := store.List()
	if err != nil {
		return err
	}
	for _, name := range names {
		doc, err := store.Read(name)
		if err != nil {
			logger.Warn("snapshot sync: read failed", slog.String("file", name), slog.String("error", err.Error()))
			continue
		}
		if err := imp.ImportSnapshot(ctx, doc); err != nil {
			logger.Warn("snapshot sync: import failed", slog.String("file", name), slog.String("error", err.Error()))
		} else {
			logger.Debug("snapshot sync: imported", slog.String("file", name))
		}
	}
	return nil
}

// Watch starts an fsnotify watcher on the snapshot root and imports .json
// documents as they are created or modified, until ctx is cancelled.
// Writes are debounced per file so a burst of write events (editors, the
// store's own atomic rename) produces a single import.
func Watch(ctx context.Context, store *Store, imp Importer, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(store.Root()); err != nil {
		return err
	}

	logger.Info("snapshot watcher: started", slog.String("root", store.Root()))

	pending := make(map[string]struct{})
	var flushTimer *time.Timer
	var flushCh <-chan time.Time

	scheduleFlush := func() {
		if flushTimer == nil {
			flushTimer = time.NewTimer(200 * time.Millisecond)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			logger.Info("snapshot watcher: stopped")
			return nil

		case <-flushCh:
			for name := range pending {
				delete(pending, name)
				doc, err := store.Read(name)
				if err != nil {
					logger.Warn("snapshot watcher: read failed",
						slog.String("file", name), slog.String("error", err.Error()))
					continue
				}
				if err := imp.ImportSnapshot(ctx, doc); err != nil {
					logger.Warn("snapshot watcher: import failed",
						slog.String("file", name), slog.String("error", err.Error()))
				} else {
					logger.Info("snapshot watcher: imported", slog.String("file", name))
				}
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
				continue
			}
			pending[name] = struct{}{}
			scheduleFlush()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("snapshot watcher: error", slog.String("error", err.Error()))
		}
	}
}
