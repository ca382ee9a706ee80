package analyzer

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Invalidator drops stale analysis results.
type Invalidator interface {
	Invalidate(path string)
}

// Watcher invalidates cache entries when their files change on disk. It
// watches the directory of every tracked file.
type Watcher struct {
	target   Invalidator
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  atomic.Bool
	stopOnce sync.Once

	mu      sync.Mutex
	dirs    map[string]struct{}
	tracked map[string]struct{}
}

// NewWatcher creates a watcher that invalidates entries in target.
func NewWatcher(target Invalidator) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		target:  target,
		watcher: watcher,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		dirs:    make(map[string]struct{}),
		tracked: make(map[string]struct{}),
	}, nil
}

// Track starts watching path.
func (w *Watcher) Track(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.tracked[abs] = struct{}{}
	if _, ok := w.dirs[dir]; ok {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.dirs[dir] = struct{}{}
	return nil
}

// Tracked reports whether path is being watched.
func (w *Watcher) Tracked(path string) bool {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.tracked[path]
	return ok
}

// Start begins watching for file changes.
func (w *Watcher) Start(ctx context.Context) {
	if w.started.CompareAndSwap(false, true) {
		go w.watch(ctx)
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		if w.started.Load() {
			<-w.doneCh
		}
		w.watcher.Close()
	})
}

// watch is the main event loop.
func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

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
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.invalidate(filepath.Clean(event.Name))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

func (w *Watcher) invalidate(path string) {
	w.mu.Lock()
	_, ok := w.tracked[path]
	w.mu.Unlock()

	if ok {
		w.target.Invalidate(path)
	}
}
