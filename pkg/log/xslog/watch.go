package xslog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/x-thooh/geotech/pkg/log"
)

const reloadDebounce = 100 * time.Millisecond

// Watch reloads the logging document at path into m whenever it changes,
// until ctx is done. A document that fails to load or build is reported
// through lg and the running configuration is kept.
func Watch(ctx context.Context, path string, m *Manager, lg log.Logger) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch logging config: %w", err)
	}
	defer w.Close()

	// editors replace files, so watch the directory
	if err = w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch logging config: %w", err)
	}

	var (
		timer *time.Timer
		fire  = make(chan struct{}, 1)
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(reloadDebounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(reloadDebounce)
			}
		case <-fire:
			reload(ctx, abs, m, lg)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			lg.Warn(ctx, "logging config watcher error", "err", err)
		}
	}
}

func reload(ctx context.Context, path string, m *Manager, lg log.Logger) {
	cfg, err := log.Load(path)
	if err == nil {
		err = m.Reconfigure(cfg)
	}
	if err != nil {
		lg.Error(ctx, "reload logging config failed, keeping the running one", "path", path, "err", err)
		return
	}
	lg.Info(ctx, "logging config reloaded", "path", path)
}
