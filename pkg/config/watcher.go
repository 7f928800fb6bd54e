package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads settings whenever the project or local settings file
// changes on disk. Only the JSON settings files that exist when Start or a
// reload runs are watched; a file created later, or a .yaml fallback file,
// does not trigger a reload on its own. Per the Non-goal on dynamic mid-turn reconfiguration, a
// reload only republishes a new Settings value through OnChange; it is the
// caller's responsibility to apply it only to sessions started after the
// reload, never to a turn already in flight.
type Watcher struct {
	loader   *SettingsLoader
	debounce time.Duration

	fsw *fsnotify.Watcher

	stop chan struct{}
	done chan struct{}

	mu      sync.Mutex
	watched map[string]struct{}

	onChange func(*Settings)
	onError  func(error)
}

// WatcherOption configures the hot reloader.
type WatcherOption func(*Watcher)

// WithDebounce overrides the default debounce window.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// OnChange registers a callback fired with the initial settings from Start
// and after each successful reload.
func OnChange(fn func(*Settings)) WatcherOption {
	return func(w *Watcher) { w.onChange = fn }
}

// OnError registers a callback for reload failures.
func OnError(fn func(error)) WatcherOption {
	return func(w *Watcher) { w.onError = fn }
}

// NewWatcher wires a file watcher around the provided loader.
func NewWatcher(loader *SettingsLoader, opts ...WatcherOption) (*Watcher, error) {
	if loader == nil {
		return nil, errors.New("loader is nil")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		loader:   loader,
		debounce: 150 * time.Millisecond,
		fsw:      fsw,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		watched:  map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.debounce <= 0 {
		w.debounce = 150 * time.Millisecond
	}
	return w, nil
}

// Start loads the initial settings and begins watching the project's
// settings files.
func (w *Watcher) Start() (*Settings, error) {
	settings, err := w.loader.Load()
	if err != nil {
		return nil, err
	}
	if err := w.refreshTargets(); err != nil {
		return nil, err
	}
	if w.onChange != nil {
		w.onChange(settings)
	}
	go w.loop()
	return settings, nil
}

// Close stops file watching.
func (w *Watcher) Close() error {
	close(w.stop)
	<-w.done
	return w.fsw.Close()
}

func (w *Watcher) refreshTargets() error {
	root := w.loader.ProjectRoot
	desired := map[string]struct{}{
		getProjectSettingsPath(root): {},
		getLocalSettingsPath(root):   {},
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for path := range desired {
		if _, ok := w.watched[path]; ok {
			continue
		}
		if err := w.addWatch(path); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) addWatch(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := w.fsw.Add(path); err != nil {
		return err
	}
	w.watched[path] = struct{}{}
	return nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	var timer *time.Timer
	schedule := func() {
		if timer == nil {
			timer = time.AfterFunc(w.debounce, w.reload)
			return
		}
		timer.Reset(w.debounce)
	}

	for {
		select {
		case <-w.stop:
			if timer != nil {
				timer.Stop()
			}
			return
		case err := <-w.fsw.Errors:
			if err != nil && w.onError != nil {
				w.onError(err)
			}
		case evt := <-w.fsw.Events:
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}
		}
	}
}

func (w *Watcher) reload() {
	settings, err := w.loader.Load()
	if err != nil {
		if w.onError != nil {
			w.onError(err)
		}
		return
	}
	if err := w.refreshTargets(); err != nil {
		if w.onError != nil {
			w.onError(err)
		}
		return
	}
	if w.onChange != nil {
		w.onChange(settings)
	}
}
