package seed

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/kinfolk/internal/store"
)

// Importer receives snapshots loaded from the seed directory.
type Importer interface {
	Import(ctx context.Context, snap store.Snapshot) error
}

// Sync loads d once and hands the snapshot to imp.
func Sync(ctx context.Context, d *Dir, imp Importer, logger *slog.Logger) error {
	snap, err := Load(d)
	if err != nil {
		return err
	}
	if err := imp.Import(ctx, snap); err != nil {
		return err
	}
	logger.Info("seed: imported",
		slog.String("root", d.Root()),
		slog.Int("persons", len(snap.Persons)),
		slog.Int("relationships", len(snap.Relationships)))
	return nil
}

// debounce absorbs the burst of events editors emit for a single save.
const debounce = 200 * time.Millisecond

// Watch re-imports d whenever one of its table files changes, until ctx is
// cancelled. Bursts of events are coalesced into one import. A snapshot
// that fails to load is logged and skipped; the store keeps its content.
func Watch(ctx context.Context, d *Dir, imp Importer, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(d.Root()); err != nil {
		return err
	}
	logger.Info("seed watcher: started", slog.String("root", d.Root()))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("seed watcher: stopped")
			return nil

		case <-fire:
			if err := Sync(ctx, d, imp, logger); err != nil {
				logger.Warn("seed watcher: reload failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isTableFile(filepath.Base(ev.Name)) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				logger.Debug("seed watcher: change", slog.String("file", ev.Name), slog.String("op", ev.Op.String()))
				schedule()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("seed watcher: error", slog.String("error", err.Error()))
		}
	}
}
