package monitor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tbunread/tbunread/internal/count"
)

// ErrWatchClosed is returned when the notifier stops delivering events.
var ErrWatchClosed = errors.New("watch event channel closed")

// Notifier delivers raw filesystem events for a directory tree.
type Notifier interface {
	Events() <-chan fsnotify.Event
	Errors() <-chan error
	// WatchTree adds dir and every directory below it.
	WatchTree(dir string) error
	Close() error
}

type fsNotifier struct {
	w *fsnotify.Watcher
}

// NewNotifier watches root and all of its subdirectories. fsnotify has no
// recursive mode, so every directory gets its own watch.
func NewNotifier(root string) (Notifier, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to start filesystem watcher: %w", err)
	}
	n := &fsNotifier{w: w}
	if err := n.WatchTree(root); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("unable to watch %s recursively: %w", root, err)
	}
	return n, nil
}

func (n *fsNotifier) Events() <-chan fsnotify.Event { return n.w.Events }
func (n *fsNotifier) Errors() <-chan error          { return n.w.Errors }
func (n *fsNotifier) Close() error                  { return n.w.Close() }

func (n *fsNotifier) WatchTree(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	// Linked directories are watched under their linked name so events carry
	// paths below the watch root.
	return count.Walk(dir, func(path string, d fs.DirEntry) error {
		if d.IsDir() {
			return n.w.Add(path)
		}
		return nil
	})
}

// watchFiles runs the filesystem-change loop. Qualifying events restart the
// debounce timer; a pass runs once the timer expires without further events.
// Any notifier failure ends the loop with an error.
func (m *Monitor) watchFiles(ctx context.Context, n Notifier) error {
	defer n.Close()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-n.Events():
			if !ok {
				return ErrWatchClosed
			}

			isNewDir := false
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := n.WatchTree(event.Name); err != nil && !errors.Is(err, fs.ErrNotExist) {
						return fmt.Errorf("unable to watch %s: %w", event.Name, err)
					}
					isNewDir = true
				}
			}

			if !isNewDir && !m.qualifies(event) {
				continue
			}
			m.logger.Debug("index change", "path", event.Name, "op", event.Op.String())

			if timer == nil {
				timer = time.NewTimer(m.debounce)
			} else {
				timer.Reset(m.debounce)
			}
			fire = timer.C

		case err, ok := <-n.Errors():
			if !ok {
				return ErrWatchClosed
			}
			return fmt.Errorf("watch event channel failed: %w", err)

		case <-fire:
			fire = nil
			if err := m.refresh("change"); err != nil {
				return err
			}
		}
	}
}

// qualifies reports whether event is a write or creation of an index file.
func (m *Monitor) qualifies(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	return strings.HasSuffix(event.Name, m.suffix)
}
