package core

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/huangsam/gazeplot/internal/contract"
)

// watchDebounce groups the burst of events an editor save produces into one rebuild.
const watchDebounce = 300 * time.Millisecond

// watchInputs runs build once, then again after every change to an input file.
// Directories are watched rather than files so that atomic replaces are seen.
// A failed rebuild is reported and the watch continues.
func watchInputs(ctx context.Context, cfg *contract.Config, build func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	inputs := make(map[string]struct{})
	dirs := make(map[string]struct{})
	for _, f := range cfg.InputFiles() {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		inputs[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	if err := build(ctx); err != nil {
		contract.LogWarn("Build failed", err)
	}
	contract.LogInfo("Watching %d input files for changes", len(inputs))

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isInputChange(event, inputs) {
				continue
			}
			timer.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			contract.LogWarn("File watcher error", err)
		case <-timer.C:
			contract.LogInfo("Input changed, rebuilding")
			if err := build(ctx); err != nil {
				contract.LogWarn("Rebuild failed", err)
			}
		}
	}
}

// isInputChange reports whether event touches one of the watched input files.
func isInputChange(event fsnotify.Event, inputs map[string]struct{}) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := inputs[abs]
	return ok
}
