// Package watcher monitors a mod project tree for external changes to
// config and ship-log documents. Rapid events are debounced and delivered
// as batches of changed paths, ready to feed a revalidation pass.
package watcher

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the delay used to coalesce bursts of events, such
// as an editor writing a file via rename.
const DefaultDebounce = 100 * time.Millisecond

// Watcher watches a project root recursively and emits debounced batches
// of changed document paths. Only .json and .xml files are reported.
type Watcher struct {
	fsw    *fsnotify.Watcher
	logger *slog.Logger
	delay  time.Duration

	batches chan []string

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer
	closed  bool

	closeCh chan struct{}
	wg      sync.WaitGroup
}

// New starts watching root and every directory below it. New directories
// appearing later are picked up automatically.
func New(root string, delay time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		logger:  logger,
		delay:   delay,
		batches: make(chan []string, 16),
		pending: make(map[string]bool),
		closeCh: make(chan struct{}),
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if addErr := fsw.Add(path); addErr != nil {
				logger.Warn("failed to watch directory", "path", path, "error", addErr)
			}
		}
		return nil
	})
	if err != nil {
		fsw.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.processLoop()
	return w, nil
}

// Batches returns the channel of debounced change batches. The channel
// is closed when the watcher is closed.
func (w *Watcher) Batches() <-chan []string {
	return w.batches
}

// Close stops the watcher and closes the batch channel.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.closeCh)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()

	// flush sends while holding the mutex, so closing under it too means
	// no send can race the close.
	w.mu.Lock()
	close(w.batches)
	w.mu.Unlock()
	return err
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	// Newly created directories must be watched before anything is
	// written into them.
	if event.Op.Has(fsnotify.Create) {
		if err := w.fsw.Add(event.Name); err == nil {
			w.logger.Debug("watching new path", "path", event.Name)
		}
	}

	if !relevant(event) {
		return
	}
	w.enqueue(event.Name)
}

// relevant reports whether an event concerns a document the project
// tracks: JSON configs and XML documents, on any op except chmod.
func relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	switch filepath.Ext(event.Name) {
	case ".json", ".xml":
		return true
	}
	return false
}

// enqueue adds a path to the pending batch, starting or extending the
// debounce window.
func (w *Watcher) enqueue(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.pending[path] = true
	if w.timer == nil {
		w.timer = time.AfterFunc(w.delay, w.flush)
		return
	}
	w.timer.Reset(w.delay)
}

// flush delivers the pending batch. Delivery is non-blocking; a full
// channel drops the batch, the next change will trigger a fresh one.
func (w *Watcher) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || len(w.pending) == 0 {
		return
	}
	batch := make([]string, 0, len(w.pending))
	for path := range w.pending {
		batch = append(batch, path)
	}
	w.pending = make(map[string]bool)
	w.timer = nil

	slices.Sort(batch)

	select {
	case w.batches <- batch:
	default:
		w.logger.Warn("dropping change batch, channel full", "size", len(batch))
	}
}
