// Package watch reloads a scene file into an editor whenever it changes on disk.
package watch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"scene-engine/internal/scene"
)

// DefaultDebounce coalesces the burst of events editors emit for one save.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads one scene file.
type Watcher struct {
	path     string
	ed       *scene.Editor
	log      *slog.Logger
	debounce time.Duration

	mu   sync.Mutex
	last []byte
	// OnReload, if set, is called after each successful reload.
	OnReload func(s scene.Scene)
}

// New returns a Watcher for path that replaces ed's scene on change.
func New(path string, ed *scene.Editor, log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{path: filepath.Clean(path), ed: ed, log: log, debounce: DefaultDebounce}
}

// Run watches until ctx is done. The parent directory is watched so that editors which
// save by renaming a temp file over the original are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", w.path, err)
	}
	if data, err := os.ReadFile(w.path); err == nil {
		w.mu.Lock()
		w.last = data
		w.mu.Unlock()
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, w.reload)
			} else {
				timer.Reset(w.debounce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("scene watch error", "path", w.path, "err", err)
		}
	}
}

// reload reads the file and, when its bytes changed, decodes it into the editor.
// Decode errors keep the current scene.
func (w *Watcher) reload() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.log.Warn("scene reload failed", "path", w.path, "err", err)
		return
	}
	w.mu.Lock()
	same := bytes.Equal(data, w.last)
	w.last = data
	w.mu.Unlock()
	if same {
		return
	}
	s, err := scene.Decode(bytes.NewReader(data), scene.FormatFor(w.path))
	if err != nil {
		w.log.Warn("scene reload failed", "path", w.path, "err", err)
		return
	}
	w.ed.Replace(s)
	w.log.Info("scene reloaded", "path", w.path, "objects", len(s.Objects))
	if w.OnReload != nil {
		w.OnReload(s)
	}
}
