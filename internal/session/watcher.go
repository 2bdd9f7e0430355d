package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"pulseadmin/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Change reports that the login state was altered outside this process.
type Change struct {
	Authenticated bool
}

// ErrNotWatchable is returned for sessions with no on-disk storage.
var ErrNotWatchable = errors.New("session storage has no file to watch")

// Watcher follows the session storage file and emits a Change whenever the
// token appears or disappears.
type Watcher struct {
	mu          sync.Mutex
	session     *Session
	watcher     *fsnotify.Watcher
	dir         string
	base        string
	debounceDur time.Duration
	lastEvent   time.Time
	pending     bool
	last        bool
	changes     chan Change
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewWatcher creates a watcher for s. The session must be file or sqlite backed.
func NewWatcher(s *Session) (*Watcher, error) {
	path := s.Path()
	if path == "" {
		return nil, ErrNotWatchable
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		session:     s,
		watcher:     fw,
		dir:         filepath.Dir(path),
		base:        filepath.Base(path),
		debounceDur: 150 * time.Millisecond,
		changes:     make(chan Change, 1),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Changes delivers login state changes. It is closed when the watcher stops.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Start begins watching. It is non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.last = w.session.Authenticated()
	w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		logging.SessionWarn("watcher: failed to create %s: %v", w.dir, err)
	}
	// Watch the directory: atomic rename replaces the file inode.
	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	logging.SessionDebug("watcher: watching %s for %s", w.dir, w.base)

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		_ = w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.SessionError("watcher: error closing: %v", err)
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer close(w.changes)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.SessionError("watcher error: %v", err)
		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// sqlite writes land in <db>-wal and <db>-journal as well.
	if !strings.HasPrefix(filepath.Base(event.Name), w.base) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.mu.Lock()
	w.pending = true
	w.lastEvent = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if !w.pending || time.Since(w.lastEvent) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.mu.Unlock()

	authed := w.session.Authenticated()

	w.mu.Lock()
	changed := authed != w.last
	w.last = authed
	w.mu.Unlock()

	if !changed {
		return
	}
	logging.Session("login state changed externally: authenticated=%v", authed)

	// Keep only the newest state if the consumer is behind.
	select {
	case <-w.changes:
	default:
	}
	w.changes <- Change{Authenticated: authed}
}
