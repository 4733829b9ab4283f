// Package watcher reruns YAML topology scripts when they change on disk.
package watcher

import (
	"context"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// IsScript reports whether name looks like a YAML topology script.
func IsScript(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return !strings.HasPrefix(filepath.Base(name), ".")
	}
	return false
}

// Watcher watches a directory of scripts for changes
type Watcher struct {
	dir      string
	onChange func(ctx context.Context, path string) error
	debounce time.Duration
}

// New creates a new script watcher. onChange runs on the watching goroutine,
// one script at a time; its errors are logged and do not stop the watch.
func New(dir string, onChange func(ctx context.Context, path string) error) *Watcher {
	return &Watcher{
		dir:      dir,
		onChange: onChange,
		debounce: 500 * time.Millisecond,
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Watch starts watching the directory for changes
// It blocks until the context is cancelled or an error occurs
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory rather than the files so scripts replaced by
	// editors (write to temp, rename) keep being seen
	if err := watcher.Add(w.dir); err != nil {
		return err
	}

	log.Printf("Watching %s for script changes", w.dir)

	fired := make(chan string)
	debounceTimers := make(map[string]*time.Timer)
	defer func() {
		for _, timer := range debounceTimers {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !IsScript(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			path := event.Name
			// Debounce rapid changes per script
			if timer, exists := debounceTimers[path]; exists {
				timer.Stop()
			}
			debounceTimers[path] = time.AfterFunc(w.debounce, func() {
				select {
				case fired <- path:
				case <-ctx.Done():
				}
			})

		case path := <-fired:
			delete(debounceTimers, path)
			log.Printf("Script changed: %s", path)
			if err := w.onChange(ctx, path); err != nil {
				log.Printf("Regenerating %s failed: %v", path, err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
