package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// ReloadCallback receives the freshly loaded configuration after the watched
// file changed and passed validation.
type ReloadCallback func(*Config)

// Watcher reloads the configuration file when it changes on disk. Edits that
// do not load cleanly are logged and dropped; the previous configuration
// stays in effect.
type Watcher struct {
	watcher   *fsnotify.Watcher
	path      string
	threshold time.Duration
	onReload  ReloadCallback
	done      chan struct{}
	debounce  *time.Timer
	mu        sync.Mutex
	stopOnce  sync.Once
}

// NewWatcher creates a watcher for the given configuration file. A zero
// threshold selects a 100ms debounce.
func NewWatcher(path string, threshold time.Duration, onReload ReloadCallback) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve config path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("cannot create watcher: %w", err)
	}

	if threshold == 0 {
		threshold = 100 * time.Millisecond
	}

	return &Watcher{
		watcher:   fsw,
		path:      abs,
		threshold: threshold,
		onReload:  onReload,
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching. The parent directory is watched rather than the
// file itself: editors that save via rename would detach a watch on the
// file after the first save.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("cannot watch %s: %w", dir, err)
	}

	go w.eventLoop()

	log.Info().Str("path", w.path).Msg("configuration watcher started")
	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.done)
	})

	w.mu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.mu.Unlock()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("cannot close watcher: %w", err)
	}
	return nil
}

// eventLoop processes file system events
func (w *Watcher) eventLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("configuration watcher error")

		case <-w.done:
			return
		}
	}
}

// handleEvent filters directory events down to writes of the watched file
func (w *Watcher) handleEvent(event fsnotify.Event) {
	name, err := filepath.Abs(event.Name)
	if err != nil || name != w.path {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	w.scheduleReload()
}

// scheduleReload debounces a burst of writes into a single reload.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.threshold, func() {
		select {
		case <-w.done:
			return
		default:
			w.reload()
		}
	})
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		log.Warn().
			Err(err).
			Str("path", w.path).
			Msg("configuration reload failed, keeping the previous one")
		return
	}

	log.Info().
		Str("path", w.path).
		Int("wishlistSize", len(cfg.Wishlist)).
		Msg("configuration reloaded")

	if w.onReload != nil {
		w.onReload(cfg)
	}
}
