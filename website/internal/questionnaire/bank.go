package questionnaire

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
)

const reloadDebounce = 250 * time.Millisecond

type snapshot struct {
	byID  map[string]*Questionnaire
	order []string
}

// Bank holds the questionnaires found in a directory. Reloads swap the
// whole set atomically, so readers always see a consistent bank.
type Bank struct {
	dir     string
	logger  infralogger.Logger
	current atomic.Pointer[snapshot]
}

// NewBank returns an empty bank reading from dir. Call Reload to populate it.
func NewBank(dir string, log infralogger.Logger) *Bank {
	b := &Bank{dir: dir, logger: log}
	b.current.Store(&snapshot{byID: map[string]*Questionnaire{}})
	return b
}

// Reload reads every *.json file in the directory. Invalid files are logged
// and skipped. If the directory cannot be read the previous bank stays.
func (b *Bank) Reload() error {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return fmt.Errorf("read questionnaire dir: %w", err)
	}

	next := &snapshot{byID: make(map[string]*Questionnaire)}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		path := filepath.Join(b.dir, entry.Name())

		q, loadErr := loadFile(path)
		if loadErr != nil {
			b.logger.Warn("Skipping invalid questionnaire",
				infralogger.String("file", path),
				infralogger.Error(loadErr),
			)
			continue
		}
		if _, dup := next.byID[q.ID]; dup {
			b.logger.Warn("Skipping duplicate questionnaire id",
				infralogger.String("file", path),
				infralogger.String("questionnaire_id", q.ID),
			)
			continue
		}
		next.byID[q.ID] = q
		next.order = append(next.order, q.ID)
	}
	slices.Sort(next.order)

	b.current.Store(next)
	b.logger.Info("Questionnaire bank loaded",
		infralogger.String("dir", b.dir),
		infralogger.Int("count", len(next.order)),
	)
	return nil
}

func loadFile(path string) (*Questionnaire, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var q Questionnaire
	if err = json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err = q.Validate(); err != nil {
		return nil, err
	}
	return &q, nil
}

// Get returns the questionnaire with id.
func (b *Bank) Get(id string) (*Questionnaire, error) {
	q, ok := b.current.Load().byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return q, nil
}

// List returns all questionnaires ordered by id.
func (b *Bank) List() []*Questionnaire {
	snap := b.current.Load()
	out := make([]*Questionnaire, 0, len(snap.order))
	for _, id := range snap.order {
		out = append(out, snap.byID[id])
	}
	return out
}

// Len is the number of loaded questionnaires.
func (b *Bank) Len() int {
	return len(b.current.Load().order)
}

// Watch reloads the bank when files in the directory change, until ctx is
// done. Bursts of events are collapsed into one reload.
func (b *Bank) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err = watcher.Add(b.dir); err != nil {
		return fmt.Errorf("watch %s: %w", b.dir, err)
	}

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			debounce = time.After(reloadDebounce)
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.logger.Warn("Questionnaire watcher error", infralogger.Error(watchErr))
		case <-debounce:
			debounce = nil
			if reloadErr := b.Reload(); reloadErr != nil {
				b.logger.Error("Questionnaire reload failed, keeping previous bank", infralogger.Error(reloadErr))
			}
		}
	}
}
