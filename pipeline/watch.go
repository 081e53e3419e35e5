package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch re-runs the pipeline whenever the watched CSV file is written,
// delivering each result to fn. The parent directory is watched rather
// than the file itself because editors replace files on save. A write
// landing while a pass is running supersedes it: the stale result is
// discarded and the pass repeats with the newest content, so fn only
// ever sees the latest write.
func (p *Pipeline) Watch(ctx context.Context, path string, fn func(*Result)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	p.logger.Info("watching input", slog.String("path", abs))

	relevant := func(ev fsnotify.Event) bool {
		return ev.Name == abs && (ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create))
	}

	// drainPending consumes every queued event without blocking and
	// reports whether any of them touched the watched file.
	drainPending := func() bool {
		touched := false
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return touched
				}
				if relevant(ev) {
					touched = true
				}
			default:
				return touched
			}
		}
	}

	runLatest := func() {
		for {
			text, err := ReadInput(abs)
			if err != nil {
				p.logger.Warn("read failed, keeping previous result", slog.String("error", err.Error()))
				return
			}
			result := p.Run(text)
			if drainPending() {
				// Newer write arrived mid-pass; this result is stale.
				p.logger.Debug("discarding stale result", slog.String("run_id", result.RunID))
				continue
			}
			fn(result)
			return
		}
	}

	// Initial pass so the watcher is useful before the first edit.
	runLatest()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			// Editors emit several events per save; coalesce the burst.
			drainPending()
			runLatest()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}
