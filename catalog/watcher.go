package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"next_read/logger"
)

// Holder gives concurrent readers the current catalog while a watcher swaps it.
type Holder struct {
	current atomic.Pointer[Catalog]
}

// NewHolder 创建目录持有者
func NewHolder(c *Catalog) *Holder {
	h := &Holder{}
	h.current.Store(c)
	return h
}

// Get returns the current catalog.
func (h *Holder) Get() *Catalog {
	return h.current.Load()
}

// Set replaces the current catalog.
func (h *Holder) Set(c *Catalog) {
	h.current.Store(c)
}

// Watch reloads path into h whenever the file is written or replaced, until ctx is done.
// A catalog that fails validation is logged and ignored; the previous one stays active.
// The parent directory is watched so editors that write via rename are picked up.
func Watch(ctx context.Context, path string, h *Holder) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create catalog watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return fmt.Errorf("resolve catalog path: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return fmt.Errorf("watch catalog dir: %w", err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				reload(abs, h)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("catalog watcher error", "error", err)
			}
		}
	}()

	logger.Info("watching catalog file", "path", abs)
	return nil
}

func reload(path string, h *Holder) {
	c, err := Load(path)
	if err != nil {
		logger.Warn("catalog reload rejected, keeping previous catalog", "path", path, "error", err)
		return
	}
	h.Set(c)
	logger.Info("catalog reloaded", "path", path, "articles", c.Len())
}

// Describe delegates to the current catalog.
func (h *Holder) Describe(id string) (string, bool) {
	return h.Get().Describe(id)
}

// EligibleTitles delegates to the current catalog.
func (h *Holder) EligibleTitles(history []string) []string {
	return h.Get().EligibleTitles(history)
}
