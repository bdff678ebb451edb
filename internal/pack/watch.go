package pack

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"

	grerrors "github.com/samhita-labs/grantha/internal/errors"
)

// Watcher observes the pack directory and re-verifies the install when
// assets are removed or renamed underneath a running session, so the
// enable flag never outlives its files.
type Watcher struct {
	fsw      *fsnotify.Watcher
	logger   *slog.Logger
	onChange func()
}

// NewWatcher watches dir and invokes onChange on destructive events.
func NewWatcher(dir string, logger *slog.Logger, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, grerrors.New(grerrors.ErrCodeInternal, "create pack watcher", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, grerrors.New(grerrors.ErrCodeInternal, "watch pack directory", err)
	}
	return &Watcher{fsw: fsw, logger: logger, onChange: onChange}, nil
}

// Run processes events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.logger.Warn("pack asset changed on disk",
					slog.String("path", ev.Name),
					slog.String("op", ev.Op.String()))
				w.onChange()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("pack watcher error", slog.String("error", err.Error()))
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
