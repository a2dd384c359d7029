// Package watch signals when action module directories change on disk.
package watch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/keychord/internal/logging"
)

// DefaultDebounce coalesces bursts of writes from editors saving a file.
const DefaultDebounce = 150 * time.Millisecond

// Errors returned by Watcher.
var (
	ErrWatcherClosed = errors.New("watcher is closed")
	ErrNotDirectory  = errors.New("not a directory")
)

// Watcher emits one reload signal per burst of changes to module files.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	exts     []string
	log      *logging.Logger

	reloads chan struct{}
	errs    chan error

	mu      sync.Mutex
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a reload is signalled.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithExtensions sets which file extensions trigger reloads.
// The default is .lua and .toml.
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) {
		w.exts = exts
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		w.log = l
	}
}

// New creates a watcher with no directories.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		debounce: DefaultDebounce,
		exts:     []string{".lua", ".toml"},
		log:      logging.Default(),
		reloads:  make(chan struct{}, 1),
		errs:     make(chan error, 8),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.WithComponent("watch")

	w.wg.Add(1)
	go w.loop()

	return w, nil
}

// Add watches dir (not recursively).
func (w *Watcher) Add(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}

	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}
	return w.fsw.Add(dir)
}

// Reloads delivers a value after each settled burst of changes. Signals
// that arrive while one is pending are merged.
func (w *Watcher) Reloads() <-chan struct{} {
	return w.reloads
}

// Errors delivers fsnotify errors. Errors are dropped when nobody reads.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Close stops the watcher and closes its channels.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.wg.Wait()
	close(w.reloads)
	close(w.errs)
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug("%s %s", ev.Op, ev.Name)
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error: %v", err)
			select {
			case w.errs <- err:
			default:
			}

		case <-timer.C:
			select {
			case w.reloads <- struct{}{}:
			default:
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(ev.Name)
	if len(base) > 0 && base[0] == '.' {
		return false
	}
	return slices.Contains(w.exts, filepath.Ext(base))
}
