package webview

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pulseboard/pulseboard/internal/store"
	"github.com/pulseboard/pulseboard/schema"
	"go.uber.org/zap"
)

// reloadDelay lets a materialization run finish replacing the artifact
// before the snapshot is reloaded.
const reloadDelay = 200 * time.Millisecond

// Snapshot holds the currently served table. Readers get a consistent view
// even while a reload swaps the table underneath them.
type Snapshot struct {
	mu       sync.RWMutex
	table    schema.AggregatedTable
	loadedAt time.Time
	path     string
	log      *zap.Logger
}

// NewSnapshot loads the artifact once. The initial load must succeed; later
// reloads keep serving the previous table on failure.
func NewSnapshot(path string, log *zap.Logger) (*Snapshot, error) {
	s := &Snapshot{path: path, log: log}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Table returns the current table and when it was loaded.
func (s *Snapshot) Table() (schema.AggregatedTable, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table, s.loadedAt
}

func (s *Snapshot) reload() error {
	r, err := store.Open(s.path)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	table, err := r.LoadTable()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.table = table
	s.loadedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// Watch reloads the snapshot whenever the artifact file is rewritten. The
// materializer deletes and recreates the file, so the watch is on the parent
// directory rather than the file itself. Blocks until ctx is canceled.
func (s *Snapshot) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	target := filepath.Base(s.path)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	reloads := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			// Debounce: a rewrite is a burst of events.
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDelay, func() {
				select {
				case reloads <- struct{}{}:
				default:
				}
			})
		case <-reloads:
			if err := s.reload(); err != nil {
				s.log.Warn("artifact reload failed, keeping previous table",
					zap.String("path", s.path), zap.Error(err))
				continue
			}
			table, _ := s.Table()
			s.log.Info("artifact reloaded",
				zap.String("path", s.path), zap.Int("rows", len(table.Rows)))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("watcher error", zap.Error(err))
		}
	}
}
