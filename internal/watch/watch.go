// Package watch triggers a debounced retrain when corpus files change,
// adapted from the teacher's file-watcher/debouncer pair. The caller
// supplies the actual retrain function and is responsible for any locking
// needed to keep a retrain from racing a concurrent query (spec.md §5: no
// engine permits concurrent mutation).
package watch

import (
	"log"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher debounces filesystem events under one or more root directories
// and calls Retrain once the debounce window has elapsed with no further
// events.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending bool

	done chan struct{}

	// Retrain is invoked (on its own goroutine) after a debounced batch of
	// events settles. The caller owns the locking discipline against
	// concurrent engine queries.
	Retrain func()
}

// New creates a watcher with the given debounce window. logger defaults to
// log.Default() when nil.
func New(debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{
		fsw:      fsw,
		debounce: debounce,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// Add registers a directory (non-recursively; callers add subdirectories
// themselves, matching fsnotify's own non-recursive watch semantics).
func (w *Watcher) Add(dir string) error {
	return w.fsw.Add(dir)
}

// Start begins processing filesystem events until Close is called.
func (w *Watcher) Start() {
	go w.loop()
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.scheduleRetrain(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Printf("watch: error: %v", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) scheduleRetrain(event fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fireRetrain)
	w.logger.Printf("watch: debouncing retrain after %s", event)
}

func (w *Watcher) fireRetrain() {
	w.mu.Lock()
	if !w.pending {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.mu.Unlock()

	if w.Retrain != nil {
		w.Retrain()
	}
}

// Close stops the watcher and releases its underlying file descriptors.
func (w *Watcher) Close() error {
	close(w.done)
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}
