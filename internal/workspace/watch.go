package workspace

import (
	"context"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watch re-indexes library files as they change on disk. It blocks until
// ctx is done, so callers run it in a goroutine.
func (w *Workspace) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("workspace: watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range w.LibraryDirs() {
		if err := watcher.Add(dir); err != nil {
			log.Debug().Err(err).Str("dir", dir).Msg("workspace: watch add failed")
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, watcher, ev)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("workspace: watch error")
		}
	}
}

func (w *Workspace) handleEvent(ctx context.Context, watcher *fsnotify.Watcher, ev fsnotify.Event) {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}

	if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		w.RemoveLibrary(ev.Name)
		return
	}

	if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
		if ev.Op&fsnotify.Create != 0 {
			if err := watcher.Add(ev.Name); err != nil {
				log.Debug().Err(err).Str("dir", ev.Name).Msg("workspace: watch add failed")
			}
		}
		return
	}

	if w.loadLibrary(ctx, ev.Name) {
		log.Debug().Str("path", ev.Name).Msg("workspace: library reindexed")
	}
}
