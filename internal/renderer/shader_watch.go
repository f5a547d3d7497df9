package renderer

import (
	"fmt"
	"path/filepath"
	"sync"

	"RainyDay/internal/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ShaderWatcher reports shader files changed on disk. Names on Changes are
// relative to the watched directory. The render goroutine drains Changes
// with Pending at the start of a frame.
type ShaderWatcher struct {
	watcher *fsnotify.Watcher
	changes chan string
	done    chan struct{}
	wg      sync.WaitGroup
}

func NewShaderWatcher(dir string) (*ShaderWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("shader watch: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("shader watch %s: %w", dir, err)
	}
	sw := &ShaderWatcher{
		watcher: w,
		changes: make(chan string, 16),
		done:    make(chan struct{}),
	}
	sw.wg.Add(1)
	go sw.run()
	logger.Log.Info("Watching shaders", zap.String("dir", dir))
	return sw, nil
}

func (sw *ShaderWatcher) run() {
	defer sw.wg.Done()
	for {
		select {
		case <-sw.done:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			name := filepath.Base(event.Name)
			select {
			case sw.changes <- name:
			default:
				// dropped while the render loop is behind
			}
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Warn("Shader watcher error", zap.Error(err))
		}
	}
}

// Pending returns the distinct file names changed since the last call
// without blocking.
func (sw *ShaderWatcher) Pending() []string {
	var names []string
	seen := make(map[string]bool)
	for {
		select {
		case name := <-sw.changes:
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		default:
			return names
		}
	}
}

// Close stops the watcher and waits for its goroutine.
func (sw *ShaderWatcher) Close() error {
	close(sw.done)
	err := sw.watcher.Close()
	sw.wg.Wait()
	return err
}
