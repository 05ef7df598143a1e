package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/stemma-io/stemma/internal/config"
	"github.com/stemma-io/stemma/pkg/stemma"
)

// watchDebounce coalesces bursts of filesystem events, such as an editor
// writing a temp file and renaming it, into one validation run.
const watchDebounce = 300 * time.Millisecond

// watchValidate validates once, then re-validates whenever the dataset
// changes on disk. It blocks until stop closes or an interrupt arrives; a
// nil stop installs the signal handler.
func watchValidate(cfg stemma.ValidateConfig, projectCfg *config.ProjectConfig, logger stemma.Logger, colored bool, stop <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchRecursive(watcher, cfg.DatasetPath); err != nil {
		return fmt.Errorf("failed to watch %s: %w", cfg.DatasetPath, err)
	}

	run := func() {
		report, ruleset, err := executeValidation(cfg, projectCfg, logger)
		if err != nil {
			logger.Error("validation failed: %v", err)
			return
		}
		renderReport(os.Stdout, report, ruleset, colored)
	}

	run()
	logger.Info("watching %s for changes, interrupt to stop", cfg.DatasetPath)

	if stop == nil {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		stopped := make(chan struct{})
		go func() {
			<-sigChan
			close(stopped)
		}()
		stop = stopped
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-stop:
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// New directories must be added to the watch set or changes
			// below them go unseen.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, run)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error: %v", err)
		}
	}
}

// addWatchRecursive adds the root and every directory below it to the watch
// set. Unreadable entries are skipped rather than failing the whole walk.
func addWatchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
}
