package editor

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches the metadata CSV for external modification and pushes
// an ExternalChangeMsg into the running program through notify. The
// containing directory is watched rather than the file itself so atomic
// rename-into-place writes are seen.
type Watcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	timer   *time.Timer // pending debounce, if any
	done    chan struct{}
	log     *zap.Logger
}

// NewWatcher starts watching the CSV at csvPath. notify is called from
// the watcher goroutine after a debounce window.
func NewWatcher(csvPath string, log *zap.Logger, notify func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		watcher: fw,
		done:    make(chan struct{}),
		log:     log,
	}

	dir := filepath.Dir(csvPath)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	log.Info("watching metadata for external changes", zap.String("dir", dir))

	go w.watchLoop(fw, filepath.Base(csvPath), notify)

	return w, nil
}

// Stop stops the watcher and cancels any pending debounce, so no new
// notification fires after it returns. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watcher == nil {
		return
	}

	select {
	case <-w.done:
	default:
		close(w.done)
	}

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}

	w.watcher.Close()
	w.watcher = nil
	w.log.Info("metadata watcher stopped")
}

// watchLoop handles file system events for the metadata file.
func (w *Watcher) watchLoop(fw *fsnotify.Watcher, base string, notify func()) {
	// Debounce window so rapid successive writes fire one notification
	debounceDuration := 500 * time.Millisecond

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.resetDebounce(debounceDuration, base, notify)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.log.Error("metadata watcher error", zap.Error(err))

		case <-w.done:
			return
		}
	}
}

// resetDebounce restarts the shared debounce timer. The fired callback
// re-checks done so a timer racing Stop stays silent.
func (w *Watcher) resetDebounce(d time.Duration, base string, notify func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.done:
		return
	default:
	}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(d, func() {
		select {
		case <-w.done:
			return
		default:
		}
		w.log.Info("metadata file change detected", zap.String("file", base))
		notify()
	})
}
