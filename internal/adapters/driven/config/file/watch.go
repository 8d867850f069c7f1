package file

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/agentops-cli/internal/logger"
)

// DefaultReloadDelay coalesces bursts of writes (editors often write twice).
const DefaultReloadDelay = 100 * time.Millisecond

// Reload reports the outcome of reloading the config file.
type Reload struct {
	// Path is the file that was reloaded.
	Path string

	// Err is non-nil if the file could not be read or parsed.
	// The store keeps its previous contents in that case.
	Err error
}

// Watcher reloads a ConfigStore whenever its file changes on disk.
// The parent directory is watched so atomic renames by editors are seen.
type Watcher struct {
	store *ConfigStore
	delay time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher for the store's config file.
func NewWatcher(store *ConfigStore) *Watcher {
	return &Watcher{
		store: store,
		delay: DefaultReloadDelay,
	}
}

// Watch starts watching and returns a channel of reload results.
// The channel is closed when ctx is cancelled or Close is called.
func (w *Watcher) Watch(ctx context.Context) (<-chan Reload, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(w.store.Path())
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w.mu.Lock()
	w.watcher = fsw
	w.mu.Unlock()

	reloads := make(chan Reload, 1)
	go w.loop(ctx, fsw, reloads)
	logger.Debug("Watching %s for changes", w.store.Path())
	return reloads, nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, reloads chan<- Reload) {
	defer close(reloads)
	defer func() { _ = fsw.Close() }()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if w.handleFsEvent(event) {
				pending = time.After(w.delay)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("Config watcher error: %v", err)
		case <-pending:
			pending = nil
			result := Reload{Path: w.store.Path(), Err: w.store.Load()}
			if result.Err != nil {
				logger.Warn("Config reload failed: %v", result.Err)
			} else {
				logger.Info("Reloaded config from %s", result.Path)
			}
			select {
			case reloads <- result:
			case <-ctx.Done():
				return
			}
		}
	}
}

// handleFsEvent reports whether event should trigger a reload.
func (w *Watcher) handleFsEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(w.store.Path()) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	w.watcher = nil
	return err
}
