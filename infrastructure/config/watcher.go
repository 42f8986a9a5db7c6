package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// OverridesWatcher watches the tuning override file for changes and pushes
// reloaded overrides to registered listeners.
type OverridesWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	current  *Overrides
	mu       sync.RWMutex
	onChange []func(*Overrides)
	logger   *zap.Logger
	stopCh   chan struct{}
}

// NewOverridesWatcher creates a watcher over the given override file. The
// file must parse at construction time.
func NewOverridesWatcher(path string, logger *zap.Logger) (*OverridesWatcher, error) {
	overrides, err := LoadOverrides(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial overrides: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch overrides file: %w", err)
	}

	// Also watch the directory for atomic saves (rename operations)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		logger.Warn("Failed to watch overrides directory", zap.Error(err))
	}

	return &OverridesWatcher{
		path:     path,
		watcher:  watcher,
		current:  overrides,
		onChange: make([]func(*Overrides), 0),
		logger:   logger,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins watching for override changes
func (w *OverridesWatcher) Start() {
	go w.watchLoop()
	w.logger.Info("Overrides watcher started", zap.String("path", w.path))
}

// Stop stops watching for override changes
func (w *OverridesWatcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
	w.logger.Info("Overrides watcher stopped")
}

func (w *OverridesWatcher) watchLoop() {
	// Debounce to avoid multiple reloads on editor save patterns
	var debounceTimer *time.Timer
	debounceDuration := 100 * time.Millisecond

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, func() {
					w.handleChange()
				})
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

func (w *OverridesWatcher) handleChange() {
	w.logger.Info("Overrides file changed, reloading", zap.String("path", w.path))

	overrides, err := LoadOverrides(w.path)
	if err != nil {
		w.logger.Error("Failed to reload overrides, keeping current", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = overrides
	handlers := append([]func(*Overrides){}, w.onChange...)
	w.mu.Unlock()

	for _, handler := range handlers {
		go handler(overrides)
	}

	w.logger.Info("Overrides reloaded successfully")
}

// OnChange registers a callback for override changes
func (w *OverridesWatcher) OnChange(handler func(*Overrides)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, handler)
}

// Current returns the most recently loaded overrides
func (w *OverridesWatcher) Current() *Overrides {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}
