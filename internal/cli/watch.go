package cli

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// watchTests calls rerun after source files under dir change, until ctx is
// done.
//
// Events are debounced: rerun fires once the tree has been quiet for
// debounce. Only one goroutine calls rerun, so the engine behind it keeps
// a single writer. A change that arrives while rerun is running queues at
// most one further run.
func watchTests(ctx context.Context, dir, ext string, debounce time.Duration, log *slog.Logger, rerun func(context.Context)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start watcher", err)
	}
	defer w.Close()

	if err := addTree(w, dir); err != nil {
		return WrapExitError(ExitCommandError, "failed to watch directory", err)
	}
	log.Info("watching for changes", "dir", dir, "debounce", debounce)

	pending := make(chan struct{}, 1)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if ev.Has(fsnotify.Create) {
					if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
						if err := addTree(w, ev.Name); err != nil {
							log.Warn("cannot watch new directory", "dir", ev.Name, "error", err)
						}
						continue
					}
				}
				if relevant(ev, ext) {
					log.Debug("source changed", "file", ev.Name, "op", ev.Op.String())
					fire = time.After(debounce)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return nil
				}
				log.Warn("watcher error", "error", err)
			case <-fire:
				fire = nil
				select {
				case pending <- struct{}{}:
				default:
				}
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-pending:
				rerun(ctx)
			}
		}
	})

	return g.Wait()
}

func relevant(ev fsnotify.Event, ext string) bool {
	if filepath.Ext(ev.Name) != ext {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

// addTree watches dir and every directory below it.
func addTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
