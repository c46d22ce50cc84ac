package skills

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jingkaihe/skillreg/pkg/logger"
	"github.com/pkg/errors"
)

// DefaultDebounce is how long the watcher waits for events to settle
// before reloading
const DefaultDebounce = 300 * time.Millisecond

// ReloadFunc is called after the watcher reloaded the registry
type ReloadFunc func(ctx context.Context, changes Changes, before, after *Snapshot)

// ErrorFunc is called when a reload fails. The registry keeps its previous
// contents.
type ErrorFunc func(ctx context.Context, err error)

// Watcher reloads a registry whenever its source directory changes
type Watcher struct {
	registry *Registry
	dir      string
	debounce time.Duration
	onReload ReloadFunc
	onError  ErrorFunc
}

// WatcherOption is a function that configures a Watcher
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before a reload
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// OnReload sets the callback run after each successful reload
func OnReload(fn ReloadFunc) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// OnError sets the callback run after each failed reload
func OnError(fn ErrorFunc) WatcherOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// NewWatcher creates a watcher that reloads registry from dir
func NewWatcher(registry *Registry, dir string, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		registry: registry,
		dir:      dir,
		debounce: DefaultDebounce,
		onReload: func(context.Context, Changes, *Snapshot, *Snapshot) {},
		onError:  func(context.Context, error) {},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the directory and its skill directories until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer fsw.Close()

	if err := w.addDirs(fsw); err != nil {
		return err
	}

	log := logger.G(ctx).WithField("dir", w.dir)
	log.Info("Watching skills directory")

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod || strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			log.WithField("event", event.String()).Debug("Skills directory changed")

			if event.Has(fsnotify.Create) && filepath.Dir(event.Name) == filepath.Clean(w.dir) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fsw.Add(event.Name); err != nil {
						log.WithError(err).WithField("path", event.Name).Warn("Failed to watch skill directory")
					}
				}
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerCh = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("File watcher error")

		case <-timerCh:
			timerCh = nil
			w.reload(ctx)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	before, after, err := w.registry.load(ctx, w.dir)
	if err != nil {
		logger.G(ctx).WithError(err).Warn("Failed to reload skills, keeping previous contents")
		w.onError(ctx, err)
		return
	}
	w.onReload(ctx, Diff(before, after), before, after)
}

// addDirs watches the source directory and each directory directly below it
func (w *Watcher) addDirs(fsw *fsnotify.Watcher) error {
	if err := fsw.Add(w.dir); err != nil {
		return errors.Wrapf(err, "failed to watch %s", w.dir)
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", w.dir)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := fsw.Add(path); err != nil {
				return errors.Wrapf(err, "failed to watch %s", path)
			}
		}
	}
	return nil
}
