package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mattsolo1/tagfolder/pkg/models"
)

// DefaultThrottle is how long the watcher collects filesystem activity
// before emitting changes.
const DefaultThrottle = 100 * time.Millisecond

// Watch streams document changes under Root until ctx is cancelled. Callers
// should drain the returned channel; events are dropped when the consumer
// falls behind, since the next refresh picks the change up anyway. The
// channel is closed once ctx is done or the watcher fails.
func (d *Dir) Watch(ctx context.Context, throttleDelay time.Duration) (<-chan models.Change, error) {
	if throttleDelay <= 0 {
		throttleDelay = DefaultThrottle
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("source: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				d.log.WithError(err).Warn("Watcher close failed")
			}
		})
	}

	dirs, err := collectDirs(d.Root)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("source: enumerate directories: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("source: watch %s: %w", dir, err)
		}
	}

	changes := make(chan models.Change, 64)

	go func() {
		defer close(changes)
		defer closeWatcher()

		watched := make(map[string]struct{}, len(dirs))
		for _, dir := range dirs {
			watched[dir] = struct{}{}
		}

		send := func(c models.Change) {
			select {
			case changes <- c:
			default:
			}
		}

		throttle := newChangeThrottle(throttleDelay)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				d.log.WithError(err).Warn("Watcher error")
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}

				if evt.Has(fsnotify.Create) {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						dir := filepath.Clean(evt.Name)
						if _, found := watched[dir]; !found {
							if err := watcher.Add(dir); err != nil {
								d.log.WithError(err).WithField("dir", dir).Warn("Failed to watch directory")
							} else {
								watched[dir] = struct{}{}
							}
						}
						continue
					}
				}

				c, ok := d.classify(evt)
				if !ok {
					continue
				}
				throttle.Enqueue(c, send)
			}
		}
	}()

	return changes, nil
}

// classify maps a raw fsnotify event to a document change.
func (d *Dir) classify(evt fsnotify.Event) (models.Change, bool) {
	if !isMarkdown(evt.Name) {
		return models.Change{}, false
	}
	rel, err := filepath.Rel(d.Root, evt.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return models.Change{}, false
	}
	rel = filepath.ToSlash(rel)
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") {
			return models.Change{}, false
		}
	}

	switch {
	case evt.Has(fsnotify.Remove):
		return models.Change{Type: models.ChangeDeleted, Path: rel}, true
	case evt.Has(fsnotify.Rename):
		return models.Change{Type: models.ChangeRenamed, Path: rel}, true
	case evt.Has(fsnotify.Create), evt.Has(fsnotify.Write):
		return models.Change{Type: models.ChangeModified, Path: rel}, true
	default:
		return models.Change{}, false
	}
}

// collectDirs walks base and returns all non-hidden directories.
func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !entry.IsDir() || path == base {
			return nil
		}
		if strings.HasPrefix(entry.Name(), ".") {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}

// changeThrottle coalesces bursts of filesystem activity. Within one window
// only the latest change per path survives.
type changeThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]models.Change
	order   []string
	delay   time.Duration
}

func newChangeThrottle(delay time.Duration) *changeThrottle {
	return &changeThrottle{
		delay:   delay,
		pending: make(map[string]models.Change),
	}
}

func (t *changeThrottle) Enqueue(c models.Change, send func(models.Change)) {
	t.mu.Lock()
	if _, found := t.pending[c.Path]; !found {
		t.order = append(t.order, c.Path)
	}
	t.pending[c.Path] = c

	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *changeThrottle) flush(send func(models.Change)) {
	t.mu.Lock()
	pending, order := t.pending, t.order
	t.pending = make(map[string]models.Change)
	t.order = nil
	t.timer = nil
	t.mu.Unlock()

	for _, p := range order {
		send(pending[p])
	}
}

func (t *changeThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
