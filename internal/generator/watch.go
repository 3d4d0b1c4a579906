package generator

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of writes dbt produces when it
// rewrites its artifacts.
const watchDebounce = 500 * time.Millisecond

// Watch monitors a dbt target directory and invokes regenerate whenever
// manifest.json or catalog.json change. It blocks until the context is
// cancelled. Regeneration errors are logged, not fatal; the watcher
// keeps running so a fixed artifact triggers a clean run.
func Watch(ctx context.Context, logger *slog.Logger, targetDir string, regenerate func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(targetDir); err != nil {
		return err
	}
	logger.Info("watching for artifact changes", "dir", targetDir)

	var timer *time.Timer
	trigger := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isArtifact(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)

		case <-trigger:
			logger.Info("artifacts changed, regenerating")
			if err := regenerate(); err != nil {
				logger.Error("regeneration failed", "error", err)
			}
		}
	}
}

func isArtifact(path string) bool {
	base := filepath.Base(path)
	return base == "manifest.json" || base == "catalog.json"
}
