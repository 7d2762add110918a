package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDelay = 150 * time.Millisecond

// Watch reloads the config at path whenever it changes on disk and passes
// every valid result to onChange. Invalid files are logged and skipped. The
// parent directory is watched so editors that replace the file on save are
// still picked up. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	expandedPath := ExpandPath(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(expandedPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(expandedPath), err)
	}

	log.Printf("[CONFIG] Watching %s", expandedPath)

	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(expandedPath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Editors often emit several events per save; reload once they settle
			reload = time.After(reloadDelay)

		case <-reload:
			reload = nil
			cfg, err := LoadAndValidateConfig(expandedPath)
			if err != nil {
				log.Printf("[CONFIG] Ignoring invalid config change: %v", err)
				continue
			}
			log.Printf("[CONFIG] Reloaded %s (%d services)", expandedPath, len(cfg.Services))
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[CONFIG] Watcher error: %v", err)
		}
	}
}
