package corpus

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 2 * time.Second

// Watcher reloads a Holder whenever the corpus database file changes on
// disk, e.g. after the crawler has written new rows.
type Watcher struct {
	holder   *Holder
	path     string
	debounce time.Duration
	logger   *zap.Logger
}

// NewWatcher creates a watcher for the database file at path. Bursts of
// writes within debounce trigger a single reload.
func NewWatcher(holder *Holder, path string, debounce time.Duration, logger *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{
		holder:   holder,
		path:     path,
		debounce: debounce,
		logger:   logger,
	}
}

// Run watches until ctx is cancelled. The parent directory is watched
// rather than the file itself so that journal files and atomic renames are
// seen too.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.logger.Info("Watching corpus database", zap.String("path", w.path))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Corpus watcher error", zap.Error(err))

		case <-timer.C:
			if err := w.holder.Reload(ctx); err != nil {
				w.logger.Warn("Corpus reload after file change failed", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !strings.HasPrefix(filepath.Base(event.Name), filepath.Base(w.path)) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
