// Package spool watches the output directory of a bounded acquisition
// and reports persisted-frame progress. The acquisition engine's disk
// thread writes one file per frame; watching the directory is how
// callers track how much of a run has actually reached storage, as
// opposed to how much has left the sensor.
package spool

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sgctrl/go-pvcam/internal/log"
)

// ErrClosed is returned by waits cut short by Close.
var ErrClosed = errors.New("spool: watcher closed")

// ErrTimeout is returned by WaitForCount when the deadline passes
// first.
var ErrTimeout = errors.New("spool: wait timed out")

// FileEvent reports one newly persisted frame file.
type FileEvent struct {
	Path  string
	Count int // total frame files seen, this one included
}

// Watcher counts frame files appearing in one directory. Files already
// present when the watcher starts are counted too, so it can be
// attached after the acquisition has begun.
type Watcher struct {
	dir    string
	logger *slog.Logger

	fsw    *fsnotify.Watcher
	events chan FileEvent
	done   chan struct{}

	mu      sync.Mutex
	count   int
	seen    map[string]struct{}
	changed chan struct{}
	closed  bool
}

// NewWatcher starts watching dir. The directory must exist; pair with
// StartAcquisition, which creates it.
func NewWatcher(dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("spool: watcher: %w", err)
	}

	w := &Watcher{
		dir:     dir,
		logger:  log.Component("spool").With("dir", dir),
		fsw:     fsw,
		events:  make(chan FileEvent, 64),
		done:    make(chan struct{}),
		seen:    make(map[string]struct{}),
		changed: make(chan struct{}),
	}

	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("spool: watch %s: %w", dir, err)
	}
	go w.run()

	// Files written before the watch was registered produce no events;
	// sweep them up so the count starts correct.
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("spool: scan %s: %w", dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() && isFrameFile(e.Name()) {
			w.record(filepath.Join(dir, e.Name()))
		}
	}

	w.logger.Debug("watching", "preexisting", w.Count())
	return w, nil
}

// Count returns the number of frame files seen so far.
func (w *Watcher) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Events returns the file event stream. Events are advisory: slow
// consumers miss some, and Count stays authoritative. The channel is
// closed by Close.
func (w *Watcher) Events() <-chan FileEvent {
	return w.events
}

// WaitForCount blocks until at least n frame files have been seen, the
// timeout passes, or the watcher is closed.
func (w *Watcher) WaitForCount(n int, timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		w.mu.Lock()
		if w.count >= n {
			w.mu.Unlock()
			return nil
		}
		if w.closed {
			w.mu.Unlock()
			return ErrClosed
		}
		have := w.count
		ch := w.changed
		w.mu.Unlock()

		select {
		case <-ch:
		case <-deadline.C:
			return fmt.Errorf("%w: want %d files, have %d", ErrTimeout, n, have)
		}
	}
}

// Close stops watching and wakes any waiters. It is safe to call more
// than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.changed)
	w.mu.Unlock()

	err := w.fsw.Close()
	<-w.done
	close(w.events)
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !ev.Op.Has(fsnotify.Create) || !isFrameFile(ev.Name) {
				continue
			}
			w.record(ev.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// record counts a frame file once, deduplicating the initial sweep
// against create events for the same file.
func (w *Watcher) record(path string) {
	base := filepath.Base(path)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	if _, dup := w.seen[base]; dup {
		w.mu.Unlock()
		return
	}
	w.seen[base] = struct{}{}
	w.count++
	count := w.count
	close(w.changed)
	w.changed = make(chan struct{})
	w.mu.Unlock()

	select {
	case w.events <- FileEvent{Path: path, Count: count}:
	default:
	}
}

func isFrameFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tif", ".tiff":
		return true
	}
	return false
}
