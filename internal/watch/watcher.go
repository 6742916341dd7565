// Package watch monitors a replay folder and hands finished .rep files
// to a callback.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler receives the path of a newly finished replay file.
type Handler func(ctx context.Context, path string)

// Watcher debounces filesystem events on a replay folder. The game
// writes the replay over several moments, so each new file gets a
// settle delay before the handler runs, and each filename is handled at
// most once per watcher lifetime.
type Watcher struct {
	dir         string
	settleDelay time.Duration
	handler     Handler
	log         *slog.Logger

	mu        sync.Mutex
	processed map[string]bool
}

// New builds a watcher for dir.
func New(dir string, settleDelay time.Duration, handler Handler, log *slog.Logger) *Watcher {
	return &Watcher{
		dir:         dir,
		settleDelay: settleDelay,
		handler:     handler,
		log:         log,
		processed:   make(map[string]bool),
	}
}

// Run watches until the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return err
	}
	w.log.Info("watching replay folder", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !w.claim(event.Name) {
				continue
			}
			go w.settleAndHandle(ctx, event.Name)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

// claim decides whether a path is a fresh replay file and marks it
// processed. Marking happens before the settle delay so write bursts
// for the same file collapse into one handler call.
func (w *Watcher) claim(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), ".rep") {
		return false
	}
	name := filepath.Base(path)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.processed[name] {
		return false
	}
	w.processed[name] = true
	return true
}

func (w *Watcher) settleAndHandle(ctx context.Context, path string) {
	w.log.Info("new replay detected", "replay", filepath.Base(path), "settle", w.settleDelay)

	select {
	case <-ctx.Done():
		return
	case <-time.After(w.settleDelay):
	}

	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		w.log.Debug("replay not readable after settle, skipping", "replay", filepath.Base(path))
		w.forget(path)
		return
	}

	w.handler(ctx, path)
}

// forget releases a claim so a later rewrite of the file is retried.
func (w *Watcher) forget(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.processed, filepath.Base(path))
}
