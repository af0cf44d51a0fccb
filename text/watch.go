package text

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// CatalogChangeFunc is called after the watcher has rescanned the font
// directory. changed is the font file that triggered the rescan.
type CatalogChangeFunc func(cat *Catalog, changed string)

// CatalogWatcher keeps a Catalog in sync with its font directory.
//
// Every create, write, remove or rename of a matching font file triggers a
// rescan. The new catalog replaces the old one atomically, so readers that
// hold the previous catalog keep a consistent view. Callers typically
// invalidate the Rasterizer for the changed path in the callback.
type CatalogWatcher struct {
	dir      string
	opts     []CatalogOption
	patterns []string
	onChange CatalogChangeFunc

	catalog atomic.Pointer[Catalog]
	fsw     *fsnotify.Watcher
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// WatchCatalog scans dir and starts watching it. onChange may be nil.
func WatchCatalog(dir string, onChange CatalogChangeFunc, opts ...CatalogOption) (*CatalogWatcher, error) {
	cat, err := ScanCatalog(dir, opts...)
	if err != nil {
		return nil, err
	}

	config := catalogConfig{patterns: DefaultFontPatterns}
	for _, opt := range opts {
		opt(&config)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("text: create font watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("text: watch font directory: %w", err)
	}

	w := &CatalogWatcher{
		dir:      dir,
		opts:     opts,
		patterns: config.patterns,
		onChange: onChange,
		fsw:      fsw,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	w.catalog.Store(cat)
	go w.watch()
	return w, nil
}

// Catalog returns the current catalog.
func (w *CatalogWatcher) Catalog() *Catalog {
	return w.catalog.Load()
}

// Close stops watching. It is safe to call more than once.
func (w *CatalogWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		if closeErr := w.fsw.Close(); closeErr != nil {
			err = fmt.Errorf("text: close font watcher: %w", closeErr)
		}
		<-w.stopped
	})
	return err
}

const fontChangeOps = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

func (w *CatalogWatcher) watch() {
	defer close(w.stopped)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&fontChangeOps == 0 || !matchesAny(w.patterns, filepath.Base(event.Name)) {
				continue
			}
			w.rescan(event.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slogger().Warn("text: font watcher error", "dir", w.dir, "err", err)
		}
	}
}

func (w *CatalogWatcher) rescan(changed string) {
	cat, err := ScanCatalog(w.dir, append(w.opts, WithCreateDir(false))...)
	if err != nil {
		slogger().Warn("text: font rescan failed", "dir", w.dir, "err", err)
		return
	}
	w.catalog.Store(cat)
	slogger().Debug("text: font directory changed", "file", changed, "fonts", cat.Len())
	if w.onChange != nil {
		w.onChange(cat, changed)
	}
}
