package filesource

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/turtacn/CohortMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CohortMap/pkg/errors"
)

// DefaultDebounce is how long the watcher waits after the last change before
// reloading.
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc is called after the watched files settle.
type ReloadFunc func(ctx context.Context) error

// Watcher reloads the default dataset when a source file is written,
// created or renamed.  Bursts of events collapse into one reload.
type Watcher struct {
	source   *Source
	reload   ReloadFunc
	debounce time.Duration
	logger   logging.Logger
}

func NewWatcher(source *Source, reload ReloadFunc, debounce time.Duration, log logging.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Watcher{source: source, reload: reload, debounce: debounce, logger: log.Named("filesource")}
}

// Run watches until ctx is cancelled.  It watches the parent directories so
// files replaced by editors or atomic renames are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	paths, err := w.source.Paths()
	if err != nil {
		return err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create file watcher")
	}
	defer fw.Close()

	watched := make(map[string]bool, len(paths))
	dirs := make(map[string]bool, len(paths))
	for _, p := range paths {
		watched[p] = true
		dir := filepath.Dir(p)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			return errors.Wrap(err, errors.ErrCodeNotFound, "failed to watch "+dir)
		}
		dirs[dir] = true
	}
	w.logger.Info("watching source files", logging.Strings("paths", paths))

	var (
		mu    sync.Mutex
		timer *time.Timer
		wg    sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		mu.Unlock()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", logging.Err(err))
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(ev.Name)] || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			mu.Lock()
			if timer != nil && timer.Stop() {
				wg.Done()
			}
			wg.Add(1)
			timer = time.AfterFunc(w.debounce, func() {
				defer wg.Done()
				w.fire(ctx)
			})
			mu.Unlock()
		}
	}
}

func (w *Watcher) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := w.reload(ctx); err != nil {
		w.logger.Warn("reload after file change failed; keeping previous dataset", logging.Err(err))
		return
	}
	w.logger.Info("default dataset reloaded")
}

//Personal.AI order the ending
