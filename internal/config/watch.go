package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lzkill/bsc-arbitrage-check/internal/logger"
)

// WatchEnabled watches the config file and invokes onChange whenever the
// app.enabled flag flips on disk. Editors replace files rather than write in
// place, so the watch is on the directory and events are debounced.
func WatchEnabled(ctx context.Context, path string, current bool, onChange func(enabled bool)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		last := current
		var debounce *time.Timer
		reload := func() {
			cfg, err := Load(abs)
			if err != nil {
				logger.Warnf("config watch: reload failed: %v", err)
				return
			}
			if cfg.App.Enabled != last {
				last = cfg.App.Enabled
				onChange(last)
			}
		}
		for {
			select {
			case <-ctx.Done():
				return
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
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(200*time.Millisecond, reload)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warnf("config watch: %v", err)
			}
		}
	}()
	return nil
}
