package server

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ExecutableWatcher reports when a binary on disk is replaced. A long-lived
// FastCGI child uses it to exit after a rebuild so its supervisor starts the
// new one on the next request.
type ExecutableWatcher struct {
	path    string
	watcher *fsnotify.Watcher
}

// WatchExecutable starts watching path. The watch is active when it returns.
func WatchExecutable(path string) (*ExecutableWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	// Watch the directory: editors and linkers replace the file by rename,
	// which drops a watch on the file itself.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &ExecutableWatcher{path: abs, watcher: w}, nil
}

// Run blocks until the executable changes or ctx is done, then closes the
// watcher. It calls onChange once, on the first change.
func (ew *ExecutableWatcher) Run(ctx context.Context, onChange func()) {
	defer ew.watcher.Close()

	const changed = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ew.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != ew.path || event.Op&changed == 0 {
				continue
			}
			log.Printf("Executable changed: %s (%s)", ew.path, event.Op)
			onChange()
			return
		case err, ok := <-ew.watcher.Errors:
			if !ok {
				return
			}
			log.Println("Watcher error:", err)
		}
	}
}
