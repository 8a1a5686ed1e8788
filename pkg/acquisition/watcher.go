package acquisition

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ConfigWatcher watches registered config files and reports edits so cached
// snapshots can be refreshed before the next acquisition.
type ConfigWatcher struct {
	watcher  *fsnotify.Watcher
	logger   zerolog.Logger
	onChange func(path string)
	debounce time.Duration

	mu     sync.Mutex
	paths  map[string]bool
	timers map[string]*time.Timer
	stopCh chan struct{}
}

// NewConfigWatcher creates a watcher. onChange receives the absolute path of
// a changed config file, debounced per file.
func NewConfigWatcher(logger zerolog.Logger, onChange func(path string)) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	cw := &ConfigWatcher{
		watcher:  watcher,
		logger:   logger.With().Str("component", "config-watcher").Logger(),
		onChange: onChange,
		debounce: 500 * time.Millisecond,
		paths:    make(map[string]bool),
		timers:   make(map[string]*time.Timer),
		stopCh:   make(chan struct{}),
	}

	go cw.run()

	return cw, nil
}

// Watch registers a config file. The parent directory is watched because
// editors replace files instead of writing in place.
func (cw *ConfigWatcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	cw.mu.Lock()
	cw.paths[abs] = true
	cw.mu.Unlock()

	return cw.watcher.Add(filepath.Dir(abs))
}

// Stop stops the watcher and cancels pending notifications.
func (cw *ConfigWatcher) Stop() error {
	close(cw.stopCh)

	cw.mu.Lock()
	for _, timer := range cw.timers {
		timer.Stop()
	}
	cw.mu.Unlock()

	return cw.watcher.Close()
}

// run processes file system events.
func (cw *ConfigWatcher) run() {
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}

			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}

			cw.mu.Lock()
			registered := cw.paths[abs]
			cw.mu.Unlock()
			if !registered {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				cw.logger.Debug().
					Str("file", filepath.Base(abs)).
					Str("op", event.Op.String()).
					Msg("Config file change detected")

				cw.scheduleNotify(abs)
			}

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Error().Err(err).Msg("Config watcher error")

		case <-cw.stopCh:
			return
		}
	}
}

// scheduleNotify debounces the change notification per file.
func (cw *ConfigWatcher) scheduleNotify(path string) {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if timer, exists := cw.timers[path]; exists {
		timer.Stop()
	}
	cw.timers[path] = time.AfterFunc(cw.debounce, func() {
		cw.onChange(path)
	})
}
