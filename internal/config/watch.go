package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

type logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

const reloadDelay = 100 * time.Millisecond

// Watch reloads path whenever it changes and passes the new configuration
// to onChange. Bursts of writes are coalesced into one reload. Files that
// fail to parse are logged and skipped. Watch returns once the watcher is
// set up; it stops when ctx is done.
func Watch(ctx context.Context, path string, onChange func(*Config), log logger) error {
	if path == "" {
		return fmt.Errorf("watch config: no path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch config: create watcher: %w", err)
	}
	// Watch the directory so editors that replace the file are seen too.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config: %w", err)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	reload := func() {
		cfg, err := Load(abs)
		if err != nil {
			if log != nil {
				log.Errorf("config", "reload %s: %v", abs, err)
			}
			return
		}
		if err := cfg.ApplyEnv(os.Getenv); err != nil && log != nil {
			log.Errorf("config", "env overrides: %v", err)
		}
		if log != nil {
			log.Infof("config", "reloaded %s", abs)
		}
		onChange(cfg)
	}

	go func() {
		defer watcher.Close()
		defer func() {
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if log != nil {
					log.Errorf("config", "watch: %v", err)
				}
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				mu.Lock()
				if timer == nil {
					timer = time.AfterFunc(reloadDelay, func() {
						mu.Lock()
						timer = nil
						mu.Unlock()
						if ctx.Err() == nil {
							reload()
						}
					})
				}
				mu.Unlock()
			}
		}
	}()
	return nil
}
