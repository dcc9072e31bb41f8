package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/docwatcher/errors"
	"github.com/teranos/docwatcher/intake"
	"github.com/teranos/docwatcher/logger"
	"github.com/teranos/docwatcher/metrics"
)

// Handler processes one newly created file
type Handler interface {
	Process(ctx context.Context, path string, trigger intake.Trigger) intake.Result
}

// Watcher reports files created anywhere under a root folder to a Handler.
// Files present before Start are left alone.
type Watcher struct {
	root    string
	handler Handler
	metrics *metrics.Collector
	logger  *zap.SugaredLogger

	fs       *fsnotify.Watcher
	cancel   context.CancelFunc
	loopDone chan struct{}
	inFlight sync.WaitGroup
}

// New creates a watcher for root. collector may be nil.
func New(root string, handler Handler, collector *metrics.Collector) *Watcher {
	return &Watcher{
		root:    filepath.Clean(root),
		handler: handler,
		metrics: collector,
		logger:  logger.ComponentLogger("watcher"),
	}
}

// Start registers root and every directory below it and begins handling events
func (w *Watcher) Start(ctx context.Context) error {
	info, err := os.Stat(w.root)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "watch folder %s", w.root), errors.ErrNotFound)
	}
	if !info.IsDir() {
		return errors.Newf("watch folder %s is not a directory", w.root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	w.fs = fsw

	if err := w.addTree(w.root); err != nil {
		fsw.Close()
		return err
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.loopDone = make(chan struct{})
	go w.loop(ctx)

	w.logger.Infow("Started watching", logger.FieldFolder, w.root)
	return nil
}

// Stop closes the fsnotify watcher and waits for in-flight handlers.
// A copy already under way runs to completion.
func (w *Watcher) Stop() error {
	if w.fs == nil {
		return nil
	}
	w.cancel()
	err := w.fs.Close()
	<-w.loopDone
	w.inFlight.Wait()
	w.logger.Infow("Stopped watching", logger.FieldFolder, w.root)
	return err
}

// loop monitors file system events
func (w *Watcher) loop(ctx context.Context) {
	defer close(w.loopDone)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			w.handleCreate(ctx, event.Name)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			if w.metrics != nil {
				w.metrics.WatchErrors.Inc()
			}
			w.logger.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

func (w *Watcher) handleCreate(ctx context.Context, path string) {
	// A path gone before we could stat it still goes to the handler,
	// which reports it as vanished
	if info, err := os.Lstat(path); err == nil && info.IsDir() {
		if err := w.addTree(path); err != nil {
			w.logger.Warnw("Could not watch new directory", logger.FieldFolder, path, logger.FieldError, err)
		}
		return
	}

	w.inFlight.Add(1)
	go func() {
		defer w.inFlight.Done()
		w.handler.Process(ctx, path, intake.TriggerWatch)
	}()
}

// addTree watches dir and all directories beneath it
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return errors.Wrapf(err, "failed to walk %s", dir)
			}
			w.logger.Debugw("Skipping unreadable path", logger.FieldPath, path, logger.FieldError, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fs.Add(path); err != nil {
			if path == dir {
				return errors.Wrapf(err, "failed to watch %s", path)
			}
			w.logger.Warnw("Could not watch directory", logger.FieldFolder, path, logger.FieldError, err)
			return nil
		}
		w.logger.Debugw("Watching directory", logger.FieldFolder, path)
		return nil
	})
}
