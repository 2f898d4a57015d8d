// Package watch runs the rebuild loop: it observes the site's source
// directories for filesystem events, coalesces bursts through a debounce
// window, and triggers full rebuilds until cancelled.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the window during which further events fold into the
// already-pending rebuild.
const DefaultDebounce = 300 * time.Millisecond

// Watcher drives rebuilds for one site root. Build is invoked serially; at
// most one follow-up build is queued while one is in flight.
type Watcher struct {
	// Root is the site root; it is watched non-recursively so config file
	// edits trigger rebuilds.
	Root string
	// OutputDir is the output tree (absolute or root-relative); events under
	// it are ignored so builds do not retrigger themselves.
	OutputDir string
	// Build performs one full site build.
	Build func(ctx context.Context)
	// Debounce overrides DefaultDebounce when positive.
	Debounce time.Duration
	Log      *slog.Logger
}

// Run watches until ctx is cancelled. A failing build never stops the loop;
// cancellation lets an in-flight build finish before returning.
func (w *Watcher) Run(ctx context.Context) error {
	log := w.Log
	if log == nil {
		log = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := fw.Add(w.Root); err != nil {
		return fmt.Errorf("watch %s: %w", w.Root, err)
	}
	for _, dir := range []string{"content", "templates", "static"} {
		p := filepath.Join(w.Root, dir)
		if st, err := os.Stat(p); err != nil || !st.IsDir() {
			continue
		}
		if err := addDirsRecursive(fw, p, log); err != nil {
			return err
		}
	}

	rebuildReq := make(chan struct{}, 1)
	var timerMu sync.Mutex
	var timer *time.Timer
	trigger := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce(), func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}

	// The buffered request channel is the running/pending pair: a build in
	// flight leaves room for exactly one queued follow-up. It is never
	// closed; a debounce callback may still be sending on it during
	// shutdown, so the worker exits on ctx instead.
	workerDone := make(chan struct{})
	buildCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(workerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case <-rebuildReq:
				log.Info("change detected; rebuilding site")
				w.Build(buildCtx)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			timerMu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timerMu.Unlock()
			<-workerDone
			log.Info("watcher stopped")
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fw, ev, trigger, log)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) debounce() time.Duration {
	if w.Debounce > 0 {
		return w.Debounce
	}
	return DefaultDebounce
}

func (w *Watcher) handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event, trigger func(), log *slog.Logger) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	if w.shouldIgnore(ev.Name) {
		return
	}
	// New directories under a watched tree are not watched automatically.
	if ev.Has(fsnotify.Create) {
		if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
			_ = addDirsRecursive(fw, ev.Name, log)
		}
	}
	log.Debug("file change", "path", ev.Name, "op", ev.Op.String())
	trigger()
}

// shouldIgnore filters events that must not trigger rebuilds: anything in
// the output tree, hidden files, editor temp/swap files, and files directly
// in the site root other than the config file.
func (w *Watcher) shouldIgnore(path string) bool {
	if w.OutputDir != "" {
		out := w.OutputDir
		if !filepath.IsAbs(out) {
			out = filepath.Join(w.Root, out)
		}
		if path == out || strings.HasPrefix(path, out+string(filepath.Separator)) {
			return true
		}
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".swx") ||
		(strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#")) {
		return true
	}

	// Only the config file matters at the top level of the site root.
	if filepath.Dir(path) == filepath.Clean(w.Root) && !strings.HasPrefix(base, "config.") {
		return true
	}
	return false
}

func addDirsRecursive(fw *fsnotify.Watcher, root string, log *slog.Logger) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := fw.Add(path); err != nil {
				log.Warn("watch add failed", "dir", path, "error", err)
			}
		}
		return nil
	})
}
