package daemon

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/bctl/internal/logfields"
)

// debounceTime coalesces the burst of events editors emit per save.
const debounceTime = 2 * time.Second

// watchConfigFile is the per-round config watcher task. The in-process
// configuration stays immutable after load; an edit to the override file is
// answered with a re-init request, and the freshly loaded config takes
// effect when the owning process restarts its subsystems.
func (d *Daemon) watchConfigFile(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(d.configPath)
	if err != nil {
		return err
	}

	// Watching the directory is more reliable than watching the file
	// directly: editors replace files on save.
	configDir := filepath.Dir(absPath)
	if err := watcher.Add(configDir); err != nil {
		// No config directory means no override file to watch; that is a
		// normal all-defaults setup, not a reason to fail the round.
		slog.Debug("Config directory not watchable", logfields.Path(configDir), logfields.Error(err))
		<-ctx.Done()
		return nil
	}

	configFile := filepath.Base(absPath)
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != configFile {
				continue
			}
			switch {
			case event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				slog.Debug("Config file change detected", logfields.Path(event.Name))
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceTime, func() {
					slog.Info("Config file changed, requesting re-init", logfields.Path(absPath))
					d.TriggerReinit()
				})
			case event.Op&fsnotify.Remove != 0:
				slog.Warn("Config file removed", logfields.Path(event.Name))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Config watcher error", logfields.Error(err))
		}
	}
}
