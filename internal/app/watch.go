package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/recbatch/pkg/log"
)

// DefaultDebounce is how long a file must stay unchanged before it is processed.
const DefaultDebounce = 500 * time.Millisecond

// Watcher batches files as they appear in a directory. Files are processed
// one at a time in the order they settle.
//
// Each file is batched once. Writes to a file after it has been processed
// are logged and ignored, so producers must write a file whole, or write it
// under a dot name and rename it into place. A file created under a name
// that was already processed is treated as new.
type Watcher struct {
	dir      string
	pattern  string
	debounce time.Duration
	pipeline *Pipeline
	logger   log.Logger

	// OnProcessed, when set, is called after each file with its report.
	OnProcessed func(Report, error)

	mu     sync.Mutex
	timers map[string]*time.Timer
	done   map[string]bool
	ready  chan string
}

// NewWatcher creates a Watcher for files in dir matching pattern
// (filepath.Match syntax, "*" when empty). Dot files are ignored.
func NewWatcher(dir, pattern string, debounce time.Duration, p *Pipeline, logger log.Logger) *Watcher {
	if pattern == "" {
		pattern = "*"
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = log.Noop()
	}
	return &Watcher{
		dir:      dir,
		pattern:  pattern,
		debounce: debounce,
		pipeline: p,
		logger:   logger,
		timers:   make(map[string]*time.Timer),
		done:     make(map[string]bool),
		ready:    make(chan string, 64),
	}
}

// Run processes files already in the directory, then watches for new ones
// until ctx is done. A file that fails is logged and retried on its next
// change.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	defer w.stopTimers()

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("list %s: %w", w.dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			w.schedule(ctx, filepath.Join(w.dir, e.Name()))
		}
	}

	w.logger.Info("watching for input", log.String("dir", w.dir), log.String("pattern", w.pattern))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			// A created, removed or renamed name no longer refers to the
			// file that was processed.
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				delete(w.done, event.Name)
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", log.Err(err))

		case path := <-w.ready:
			w.processFile(ctx, path)
		}
	}
}

func (w *Watcher) matches(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	ok, err := filepath.Match(w.pattern, name)
	return err == nil && ok
}

// schedule (re)starts the debounce timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	if !w.matches(path) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		select {
		case w.ready <- path:
		case <-ctx.Done():
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

func (w *Watcher) processFile(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	if w.done[path] {
		// Reprocessing would send the file's earlier batches again.
		w.logger.Warn("input changed after it was processed, ignoring",
			log.String("source", path), log.Int64("bytes", info.Size()))
		return
	}

	rep, err := w.pipeline.ProcessFile(ctx, path)
	if err != nil {
		w.logger.Error("failed to process input", log.String("source", path), log.Err(err))
	} else {
		w.done[path] = true
	}
	if w.OnProcessed != nil {
		w.OnProcessed(rep, err)
	}
}
