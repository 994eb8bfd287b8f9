package appconfig

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors the config file and invokes a callback when its content
// changes, letting the CLI pick up theme or interval edits without a
// restart. It watches the containing directory for atomic-save
// compatibility, debounces bursts of events, and suppresses reloads when
// the content hash is unchanged.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
	onChange func(Config)

	fsWatcher *fsnotify.Watcher
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	lastHash  string

	mu      sync.Mutex
	pending bool
	lastEvt time.Time
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the debounce duration for file change events.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithWatchLogger sets the watcher's logger.
func WithWatchLogger(l *slog.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// NewWatcher creates a Watcher for the config file at path.
func NewWatcher(path string, onChange func(Config), opts ...WatcherOption) *Watcher {
	w := &Watcher{
		path:     path,
		debounce: 500 * time.Millisecond,
		logger:   slog.Default(),
		onChange: onChange,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching the config file's directory for changes.
func (w *Watcher) Start() error {
	hash, err := hashFile(w.path)
	if err != nil {
		return fmt.Errorf("config watcher: initial hash: %w", err)
	}
	w.lastHash = hash

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: create fsnotify: %w", err)
	}
	w.fsWatcher = fsw

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("config watcher: watch %s: %w", filepath.Dir(w.path), err)
	}

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop terminates the watcher and waits for the background goroutine to
// exit. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() { close(w.done) })
	w.wg.Wait()
	if w.fsWatcher != nil {
		return w.fsWatcher.Close()
	}
	return nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			// Any write/create/rename in the directory may be our file being
			// rewritten or atomically renamed over; the hash check decides.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.mu.Lock()
				w.pending = true
				w.lastEvt = time.Now()
				w.mu.Unlock()
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", "err", err)

		case <-ticker.C:
			w.mu.Lock()
			ready := w.pending && time.Since(w.lastEvt) >= w.debounce
			if ready {
				w.pending = false
			}
			w.mu.Unlock()
			if ready {
				w.processChange()
			}
		}
	}
}

func (w *Watcher) processChange() {
	newHash, err := hashFile(w.path)
	if err != nil {
		w.logger.Error("config watcher: hash config", "path", w.path, "err", err)
		return
	}
	if newHash == w.lastHash {
		return
	}

	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Error("config watcher: reload config", "path", w.path, "err", err)
		return
	}

	w.lastHash = newHash
	w.logger.Info("config changed", "path", w.path)
	w.onChange(cfg)
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
