// Package watcher turns filesystem changes under .jobdone/tasks/ into
// refresh signals for connected clients. Events carry no diff; they tell
// subscribers to re-fetch the full task state.
package watcher

import (
	"os"
	"sync"
	"time"

	"github.com/bborn/jobdone/internal/project"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a broadcast fires. A single
// logical operation (a move is a delete plus a create) produces several
// raw events that clients should see as one refresh.
const DefaultDebounce = 200 * time.Millisecond

// EventRefresh tells subscribers to re-fetch task state.
const EventRefresh = "refresh"

// Event is the notification payload sent to subscribers.
type Event struct {
	Type string `json:"type"`
}

// Watcher watches the status directories and fans out debounced refresh
// events to any number of subscribers.
type Watcher struct {
	logger   *log.Logger
	debounce time.Duration

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	subs    map[chan Event]struct{}
	timer   *time.Timer
	stopped bool
}

// New creates a watcher with the default debounce interval.
func New() *Watcher {
	return &Watcher{
		logger:   log.NewWithOptions(os.Stderr, log.Options{Prefix: "watcher"}),
		debounce: DefaultDebounce,
		subs:     make(map[chan Event]struct{}),
	}
}

// Start begins watching each status directory that exists. Directories
// that do not exist yet are skipped silently.
func (w *Watcher) Start(root string, statuses []string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.fsw = fsw
	w.mu.Unlock()

	for _, status := range statuses {
		dir := project.StatusDir(root, status)
		if err := fsw.Add(dir); err != nil {
			w.logger.Debug("skipping unwatchable directory", "dir", dir, "error", err)
			continue
		}
		w.logger.Debug("watching", "dir", dir)
	}

	go w.loop(fsw)
	return nil
}

func (w *Watcher) loop(fsw *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			w.schedule()
		case _, ok := <-fsw.Errors:
			if !ok {
				return
			}
			// Keep watching; a transient error is not fatal.
		}
	}
}

// schedule resets the debounce timer. Only the final firing after a
// quiet period triggers the broadcast, so a burst of N changes yields
// exactly one notification.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.broadcast)
}

// broadcast delivers a refresh event to every subscriber. Delivery is
// best-effort: a subscriber whose buffer is full is dropped rather than
// allowed to block or affect the others.
func (w *Watcher) broadcast() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}

	for ch := range w.subs {
		select {
		case ch <- Event{Type: EventRefresh}:
		default:
			delete(w.subs, ch)
			close(ch)
			w.logger.Debug("dropped slow subscriber")
		}
	}
}

// Subscribe returns a channel that receives a refresh event whenever a
// watched directory changes. The caller must Unsubscribe when done.
func (w *Watcher) Subscribe() chan Event {
	ch := make(chan Event, 16)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		close(ch)
		return ch
	}
	w.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes a subscriber channel. Safe to call for
// a channel that was already dropped.
func (w *Watcher) Unsubscribe(ch chan Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.subs[ch]; ok {
		delete(w.subs, ch)
		close(ch)
	}
}

// Stop closes the filesystem watches, cancels any pending broadcast,
// and closes every subscriber channel. Idempotent.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.stopped = true

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	if w.fsw != nil {
		w.fsw.Close()
		w.fsw = nil
	}
	for ch := range w.subs {
		delete(w.subs, ch)
		close(ch)
	}
}

// SetDebounce overrides the debounce interval. Used by tests.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}
