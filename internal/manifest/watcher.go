package manifest

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the manifest when its file changes on disk and hands the
// parsed result to a callback. Events are debounced because editors commonly
// emit several writes per save.
type Watcher struct {
	path     string
	logger   *zap.Logger
	onChange func(*Manifest)

	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	lastTrigger time.Time
	debounceDur time.Duration
	running     bool
	stopCh      chan struct{}
	doneCh      chan struct{}

	stats WatcherStats
}

// WatcherStats tracks watcher activity for debugging.
type WatcherStats struct {
	Events        int
	Reloads       int
	ReloadErrors  int
	LastEventTime time.Time
}

// NewWatcher creates a watcher for the manifest at path. onChange is invoked
// with each successfully reloaded manifest; parse failures are logged and the
// previous manifest stays in effect.
func NewWatcher(path string, logger *zap.Logger, onChange func(*Manifest)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:        path,
		logger:      logger,
		onChange:    onChange,
		watcher:     fsw,
		debounceDur: 500 * time.Millisecond,
	}, nil
}

// Start begins watching. Non-blocking; watching the containing directory
// rather than the file itself survives the rename-and-replace save strategy.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	go w.loop(w.stopCh, w.doneCh)
	return nil
}

// Stop halts the watcher and waits for its loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)
	<-doneCh
	_ = w.watcher.Close()
}

// Stats returns a copy of the watcher's counters.
func (w *Watcher) Stats() WatcherStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) loop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

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
			w.logger.Warn("manifest watcher error", zap.Error(err))
		case <-stopCh:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	w.mu.Lock()
	w.stats.Events++
	w.stats.LastEventTime = time.Now()
	if time.Since(w.lastTrigger) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.lastTrigger = time.Now()
	w.mu.Unlock()

	m, err := Load(w.path)
	if err != nil {
		w.mu.Lock()
		w.stats.ReloadErrors++
		w.mu.Unlock()
		w.logger.Warn("manifest changed but failed to reload", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.stats.Reloads++
	w.mu.Unlock()
	w.logger.Info("manifest reloaded", zap.String("path", w.path))
	w.onChange(m)
}
