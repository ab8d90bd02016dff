package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 250 * time.Millisecond

// ChangeFunc is called once per settled change to <slug>/<lang>.mdx.
type ChangeFunc func(slug, lang string)

// Watcher reports edits below a content root. fsnotify is not recursive,
// so the root and every post directory are watched, and post directories
// created later are added as they appear.
type Watcher struct {
	root     string
	debounce time.Duration
	onChange ChangeFunc
	logger   *zap.Logger
	fs       *fsnotify.Watcher

	mu     sync.Mutex
	timers map[string]*time.Timer
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// NewWatcher creates a watcher for root. A debounce of 0 uses
// DefaultDebounce.
func NewWatcher(root string, debounce time.Duration, onChange ChangeFunc, logger *zap.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("content: create watcher: %w", err)
	}
	return &Watcher{
		root:     filepath.Clean(root),
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		fs:       fsw,
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}, nil
}

// Start watches the root and its post directories and begins delivering
// changes in the background.
func (w *Watcher) Start() error {
	if err := w.fs.Add(w.root); err != nil {
		return fmt.Errorf("content: watch %s: %w", w.root, err)
	}
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return fmt.Errorf("content: list %s: %w", w.root, err)
	}
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			w.addDir(filepath.Join(w.root, e.Name()))
		}
	}
	w.wg.Add(1)
	go w.run()
	return nil
}

// Close stops watching and cancels pending notifications. Calls after
// the first are no-ops.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
		w.mu.Lock()
		for k, t := range w.timers {
			t.Stop()
			delete(w.timers, k)
		}
		w.mu.Unlock()
	})
	return err
}

func (w *Watcher) addDir(dir string) {
	if err := w.fs.Add(dir); err != nil {
		w.logger.Warn("content watch failed", zap.String("dir", dir), zap.Error(err))
		return
	}
	w.logger.Debug("watching content dir", zap.String("dir", dir))
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("content watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) && filepath.Dir(ev.Name) == w.root {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			w.addDir(ev.Name)
			return
		}
	}
	slug, lang, ok := w.split(ev.Name)
	if !ok || !(ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, exists := w.timers[ev.Name]; exists {
		t.Stop()
	}
	name := ev.Name
	w.timers[name] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, name)
		w.mu.Unlock()
		select {
		case <-w.done:
			return
		default:
		}
		w.logger.Debug("content changed", zap.String("slug", slug), zap.String("lang", lang))
		w.onChange(slug, lang)
	})
}

// split maps <root>/<slug>/<lang>.mdx to its slug and lang.
func (w *Watcher) split(path string) (slug, lang string, ok bool) {
	base := filepath.Base(path)
	if filepath.Ext(base) != Ext || strings.HasPrefix(base, ".") {
		return "", "", false
	}
	dir := filepath.Dir(path)
	if filepath.Dir(dir) != w.root {
		return "", "", false
	}
	return filepath.Base(dir), strings.TrimSuffix(base, Ext), true
}
