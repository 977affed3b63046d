package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"specforge/internal/logging"
)

// InstructionWatcher watches instruction files and reports when a change has
// settled. Editors save in bursts (write, truncate, rename), so events are
// debounced and the callback fires once per burst.
type InstructionWatcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	paths       map[string]bool // absolute file paths to react to
	debounceMap map[string]time.Time
	debounceDur time.Duration
	onChange    func(path string)
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewInstructionWatcher creates a watcher over the given files. onChange is
// called from the watcher goroutine with the absolute path of each settled
// change.
func NewInstructionWatcher(files []string, onChange func(path string)) (*InstructionWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	iw := &InstructionWatcher{
		watcher:     watcher,
		paths:       make(map[string]bool),
		debounceMap: make(map[string]time.Time),
		debounceDur: 500 * time.Millisecond, // Debounce rapid saves
		onChange:    onChange,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			watcher.Close()
			return nil, err
		}
		iw.paths[abs] = true
	}
	return iw, nil
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine
// until Stop or context cancellation.
func (iw *InstructionWatcher) Start(ctx context.Context) error {
	iw.mu.Lock()
	if iw.running {
		iw.mu.Unlock()
		return nil // Already running
	}
	iw.running = true
	iw.mu.Unlock()

	// Watch the parent directories, not the files: editors replace files on
	// save, and a watch on the old inode misses the rename.
	dirs := make(map[string]bool)
	for path := range iw.paths {
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := iw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	go iw.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (iw *InstructionWatcher) Stop() {
	iw.mu.Lock()
	if !iw.running {
		iw.mu.Unlock()
		return
	}
	iw.running = false
	iw.mu.Unlock()

	close(iw.stopCh)
	<-iw.doneCh

	if err := iw.watcher.Close(); err != nil {
		logging.CompilerError("watcher close: %v", err)
	}
}

// run is the main event loop for the watcher.
func (iw *InstructionWatcher) run(ctx context.Context) {
	defer close(iw.doneCh)

	debounceTicker := time.NewTicker(100 * time.Millisecond)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-iw.stopCh:
			return

		case event, ok := <-iw.watcher.Events:
			if !ok {
				return
			}
			iw.handleEvent(event)

		case err, ok := <-iw.watcher.Errors:
			if !ok {
				return
			}
			logging.CompilerError("watcher: %v", err)

		case <-debounceTicker.C:
			iw.processSettled()
		}
	}
}

// handleEvent records a relevant filesystem event for debounced processing.
func (iw *InstructionWatcher) handleEvent(event fsnotify.Event) {
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	if !iw.paths[abs] {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return // Ignore chmod, remove, etc.
	}

	logging.CompilerDebug("watcher: %s event for %s", event.Op, abs)

	iw.mu.Lock()
	iw.debounceMap[abs] = time.Now()
	iw.mu.Unlock()
}

// processSettled fires the callback for every change older than the
// debounce window.
func (iw *InstructionWatcher) processSettled() {
	iw.mu.Lock()
	now := time.Now()
	var settled []string
	for path, at := range iw.debounceMap {
		if now.Sub(at) >= iw.debounceDur {
			settled = append(settled, path)
			delete(iw.debounceMap, path)
		}
	}
	iw.mu.Unlock()

	sort.Strings(settled)
	for _, path := range settled {
		iw.onChange(path)
	}
}
