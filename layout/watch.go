package layout

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultReloadDelay = 100 * time.Millisecond

// Watcher reloads a layout file whenever it changes on disk. Rapid successive writes
// are collapsed into one reload.
type Watcher struct {
	path     string
	delay    time.Duration
	onReload func(*Document)
	errChan  chan error
}

func NewWatcher(path string, onReload func(*Document)) *Watcher {
	return &Watcher{
		path:     ResolvePath(path),
		delay:    DefaultReloadDelay,
		onReload: onReload,
		errChan:  make(chan error, 8),
	}
}

// WithDelay sets how long writes must settle before a reload.
func (w *Watcher) WithDelay(d time.Duration) *Watcher {
	w.delay = d

	return w
}

// Errors reports reload and watch failures. Errors are dropped when nobody reads them.
func (w *Watcher) Errors() <-chan error {
	return w.errChan
}

// Watch blocks until ctx is done. The containing directory is watched so that editors
// replacing the file are noticed.
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}

	var debounceTimer *time.Timer

	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}

			debounceTimer = time.AfterFunc(w.delay, w.reload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			w.report(err)
		}
	}
}

func (w *Watcher) reload() {
	doc, err := LoadFile(w.path)
	if err != nil {
		slog.WarnContext(logCtx, "Keeping previous layout", "path", w.path, "error", err)
		w.report(fmt.Errorf("reload layout: %w", err))

		return
	}

	w.onReload(doc)
}

func (w *Watcher) report(err error) {
	select {
	case w.errChan <- err:
	default:
	}
}
