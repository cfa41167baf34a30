package config

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the settings file whenever it changes on disk and invokes
// onChange with the fresh config. Returns once the context ends.
func Watch(ctx context.Context, path string, onChange func(Config)) error {
	return WatchFile(ctx, path, func() {
		cfg, err := LoadFrom(path)
		if err != nil {
			log.Printf("config: reload failed, keeping previous settings: %v", err)
			return
		}
		onChange(cfg)
	})
}

// WatchFile invokes onChange after the given file changes on disk. Editors
// replace files rather than writing in place, so the parent directory is
// watched and events are debounced. Returns once the context ends.
func WatchFile(ctx context.Context, path string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	var debounce *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(200*time.Millisecond, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("config: watch error: %v", err)
		}
	}
}
