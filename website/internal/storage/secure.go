package storage

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
)

const (
	// SchemaVersion is written to every metadata sidecar.
	SchemaVersion = 1

	keySize       = 32
	readRetryWait = 50 * time.Millisecond
)

var (
	// ErrQuotaExceeded is returned when a collection cannot fit even after pruning.
	ErrQuotaExceeded = errors.New("storage: quota exceeded")
	errCorrupt       = errors.New("corrupt collection")
)

// Record is an entry of a Collection.
type Record interface {
	RecordID() string
	// RecordTime orders records for retention and pruning.
	RecordTime() time.Time
	// Finished records are pruned before unfinished ones.
	Finished() bool
}

// Meta is the sidecar stored next to each collection.
type Meta struct {
	Checksum  string    `json:"checksum"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
	Count     int       `json:"count"`
	Size      int       `json:"size"`
}

// Observer receives integrity and quota events.
type Observer interface {
	CollectionReset(collection, reason string)
	RecordsPruned(collection string, n int)
}

type nopObserver struct{}

func (nopObserver) CollectionReset(string, string) {}

func (nopObserver) RecordsPruned(string, int) {}

// SecureStore owns the obfuscation key shared by its collections.
type SecureStore struct {
	backend  Backend
	keyName  string
	logger   infralogger.Logger
	observer Observer
	now      func() time.Time

	keyMu sync.Mutex
	key   []byte
}

// Option configures a SecureStore.
type Option func(*SecureStore)

// WithObserver reports resets and prunes to o.
func WithObserver(o Observer) Option {
	return func(s *SecureStore) { s.observer = o }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *SecureStore) { s.now = now }
}

// NewSecureStore stores its key under "<prefix>_key".
func NewSecureStore(backend Backend, prefix string, log infralogger.Logger, opts ...Option) *SecureStore {
	s := &SecureStore{
		backend:  backend,
		keyName:  prefix + "_key",
		logger:   log,
		observer: nopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend returns the underlying backend.
func (s *SecureStore) Backend() Backend {
	return s.backend
}

func (s *SecureStore) loadKey(ctx context.Context) ([]byte, error) {
	s.keyMu.Lock()
	defer s.keyMu.Unlock()

	if s.key != nil {
		return s.key, nil
	}

	raw, err := s.backend.Get(ctx, s.keyName)
	switch {
	case err == nil:
		key, decodeErr := base64.StdEncoding.DecodeString(string(raw))
		if decodeErr == nil && len(key) == keySize {
			s.key = key
			return key, nil
		}
		s.logger.Warn("Stored obfuscation key unreadable, generating a new one",
			infralogger.String("key", s.keyName))
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("read key: %w", err)
	}

	key := make([]byte, keySize)
	if _, err = rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	if err = s.backend.Set(ctx, s.keyName, []byte(base64.StdEncoding.EncodeToString(key))); err != nil {
		return nil, fmt.Errorf("persist key: %w", err)
	}
	s.key = key
	return key, nil
}

// CollectionOptions bound a collection's size and age.
type CollectionOptions struct {
	// MaxBytes caps the encoded payload. Zero disables the quota.
	MaxBytes int
	// RetentionDays drops records older than this on save. Zero keeps everything.
	RetentionDays int
}

// Collection is a typed list of records stored under one key.
type Collection[T Record] struct {
	store *SecureStore
	name  string
	opts  CollectionOptions

	mu sync.Mutex
}

// NewCollection binds name to store.
func NewCollection[T Record](store *SecureStore, name string, opts CollectionOptions) *Collection[T] {
	return &Collection[T]{store: store, name: name, opts: opts}
}

// Name returns the backend key of the collection.
func (c *Collection[T]) Name() string {
	return c.name
}

func (c *Collection[T]) metaKey() string {
	return c.name + "_meta"
}

// Load returns every record. A missing or corrupt collection yields an
// empty slice; a corrupt one is deleted first.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// Save replaces the collection with items after retention and quota pruning.
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(ctx, items)
}

// Update runs fn on the current records and saves the result while holding
// the collection lock.
func (c *Collection[T]) Update(ctx context.Context, fn func([]T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	items, err = fn(items)
	if err != nil {
		return err
	}
	return c.save(ctx, items)
}

// Clear deletes the collection and its sidecar.
func (c *Collection[T]) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clear(ctx)
}

// Meta returns the sidecar, or nil when the collection has never been saved.
func (c *Collection[T]) Meta(ctx context.Context) (*Meta, error) {
	raw, err := c.read(ctx, c.metaKey())
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var meta Meta
	if err = json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.metaKey(), err)
	}
	return &meta, nil
}

func (c *Collection[T]) load(ctx context.Context) ([]T, error) {
	raw, err := c.read(ctx, c.name)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}

	key, err := c.store.loadKey(ctx)
	if err != nil {
		return nil, err
	}

	rawMeta, err := c.read(ctx, c.metaKey())
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	items, decodeErr := c.decode(raw, rawMeta, key)
	if decodeErr != nil {
		c.store.logger.Warn("Stored collection failed integrity check, resetting",
			infralogger.String("collection", c.name),
			infralogger.Error(decodeErr),
		)
		c.store.observer.CollectionReset(c.name, decodeErr.Error())
		if err = c.clear(ctx); err != nil {
			return nil, err
		}
		return []T{}, nil
	}
	return items, nil
}

func (c *Collection[T]) decode(raw, rawMeta, key []byte) ([]T, error) {
	if rawMeta == nil {
		return nil, fmt.Errorf("%w: missing metadata", errCorrupt)
	}
	var meta Meta
	if err := json.Unmarshal(rawMeta, &meta); err != nil {
		return nil, fmt.Errorf("%w: metadata: %w", errCorrupt, err)
	}
	if meta.Version != SchemaVersion {
		return nil, fmt.Errorf("%w: schema version %d", errCorrupt, meta.Version)
	}

	cipher, err := base64.StdEncoding.DecodeString(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %w", errCorrupt, err)
	}
	plain := xorBytes(cipher, key)
	if sum := Checksum(string(plain)); sum != meta.Checksum {
		return nil, fmt.Errorf("%w: checksum %s != %s", errCorrupt, sum, meta.Checksum)
	}

	var items []T
	if err = json.Unmarshal(plain, &items); err != nil {
		return nil, fmt.Errorf("%w: json: %w", errCorrupt, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *Collection[T]) save(ctx context.Context, items []T) error {
	key, err := c.store.loadKey(ctx)
	if err != nil {
		return err
	}

	items = c.applyRetention(items)

	payload, plain, err := c.encode(items, key)
	if err != nil {
		return err
	}
	if c.opts.MaxBytes > 0 && len(payload) > c.opts.MaxBytes {
		items, payload, plain, err = c.prune(items, key)
		if err != nil {
			return err
		}
	}

	meta := Meta{
		Checksum:  Checksum(string(plain)),
		Version:   SchemaVersion,
		UpdatedAt: c.store.now().UTC(),
		Count:     len(items),
		Size:      len(payload),
	}
	rawMeta, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	if err = c.store.backend.Set(ctx, c.name, payload); err != nil {
		return fmt.Errorf("write %s: %w", c.name, err)
	}
	if err = c.store.backend.Set(ctx, c.metaKey(), rawMeta); err != nil {
		return fmt.Errorf("write %s: %w", c.metaKey(), err)
	}
	return nil
}

func (c *Collection[T]) encode(items []T, key []byte) (payload, plain []byte, err error) {
	if items == nil {
		items = []T{}
	}
	plain, err = json.Marshal(items)
	if err != nil {
		return nil, nil, fmt.Errorf("encode %s: %w", c.name, err)
	}
	payload = []byte(base64.StdEncoding.EncodeToString(xorBytes(plain, key)))
	return payload, plain, nil
}

func (c *Collection[T]) applyRetention(items []T) []T {
	if c.opts.RetentionDays <= 0 {
		return items
	}
	cutoff := c.store.now().AddDate(0, 0, -c.opts.RetentionDays)
	kept := items[:0:0]
	for _, item := range items {
		if !item.RecordTime().Before(cutoff) {
			kept = append(kept, item)
		}
	}
	if dropped := len(items) - len(kept); dropped > 0 {
		c.store.logger.Info("Dropped records past retention",
			infralogger.String("collection", c.name),
			infralogger.Int("count", dropped),
		)
	}
	return kept
}

// prune removes finished records oldest first, then any record oldest
// first, until the encoded payload fits MaxBytes.
func (c *Collection[T]) prune(items []T, key []byte) ([]T, []byte, []byte, error) {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		fa, fb := items[a].Finished(), items[b].Finished()
		if fa != fb {
			if fa {
				return -1
			}
			return 1
		}
		return items[a].RecordTime().Compare(items[b].RecordTime())
	})

	removed := make(map[int]bool, len(items))
	for _, idx := range order {
		removed[idx] = true

		kept := make([]T, 0, len(items)-len(removed))
		for i, item := range items {
			if !removed[i] {
				kept = append(kept, item)
			}
		}

		payload, plain, err := c.encode(kept, key)
		if err != nil {
			return nil, nil, nil, err
		}
		if len(payload) <= c.opts.MaxBytes {
			c.store.logger.Warn("Collection over quota, pruned records",
				infralogger.String("collection", c.name),
				infralogger.Int("pruned", len(removed)),
				infralogger.Int("max_bytes", c.opts.MaxBytes),
			)
			c.store.observer.RecordsPruned(c.name, len(removed))
			return kept, payload, plain, nil
		}
	}
	return nil, nil, nil, fmt.Errorf("%w: %s needs more than %d bytes", ErrQuotaExceeded, c.name, c.opts.MaxBytes)
}

func (c *Collection[T]) clear(ctx context.Context) error {
	if err := c.store.backend.Delete(ctx, c.name); err != nil {
		return fmt.Errorf("delete %s: %w", c.name, err)
	}
	if err := c.store.backend.Delete(ctx, c.metaKey()); err != nil {
		return fmt.Errorf("delete %s: %w", c.metaKey(), err)
	}
	return nil
}

// read retries a failed backend read once. ErrNotFound is returned as is.
func (c *Collection[T]) read(ctx context.Context, key string) ([]byte, error) {
	raw, err := c.store.backend.Get(ctx, key)
	if err == nil || errors.Is(err, ErrNotFound) {
		return raw, err
	}

	c.store.logger.Debug("Storage read failed, retrying",
		infralogger.String("key", key),
		infralogger.Error(err),
	)

	timer := time.NewTimer(readRetryWait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	raw, err = c.store.backend.Get(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return raw, err
}
