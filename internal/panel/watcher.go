package panel

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/roteirods-byte/Saida-Posicional/internal/logger"
)

const defaultDebounce = 2 * time.Second

// FileWatcher reports edits of a single file. The parent directory is
// watched so editors that replace the file by rename are still seen.
type FileWatcher struct {
	path     string
	debounce time.Duration
	w        *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer
}

// NewFileWatcher starts watching path's directory immediately; events are
// delivered once Run is called.
func NewFileWatcher(path string, debounce time.Duration) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher failed: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s failed: %w", filepath.Dir(abs), err)
	}
	return &FileWatcher{path: abs, debounce: debounce, w: w}, nil
}

// Run calls onChange once per burst of edits until ctx is done.
func (f *FileWatcher) Run(ctx context.Context, onChange func()) error {
	defer f.w.Close()
	defer f.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-f.w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(evt.Name) != f.path {
				continue
			}
			if !evt.Op.Has(fsnotify.Write) && !evt.Op.Has(fsnotify.Create) && !evt.Op.Has(fsnotify.Rename) {
				continue
			}
			logger.Debugf("watcher: %s %s", evt.Op, filepath.Base(evt.Name))
			f.schedule(onChange)
		case err, ok := <-f.w.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("watcher: %s: %v", filepath.Base(f.path), err)
		}
	}
}

func (f *FileWatcher) schedule(onChange func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(f.debounce, func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("watcher: listener panic: %v", r)
			}
		}()
		logger.Infof("watcher: %s changed", filepath.Base(f.path))
		onChange()
	})
}

func (f *FileWatcher) stopTimer() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
	}
}
