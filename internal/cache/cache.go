// Package cache is the field metadata registry. It keeps the shared-scope
// metadata entries in memory, refreshes them from the store at most once per
// interval, and discovers fields it has never seen.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"telemetry-hub/internal/db"
	"telemetry-hub/internal/metrics"
)

var (
	ErrStore    = errors.New("metadata store failed")
	ErrNotFound = errors.New("metadata not found")
)

const (
	DefaultRefreshInterval = 10 * time.Second
	DefaultInferTimeout    = 20 * time.Second

	PlaceholderDescription = "analyzing..."
)

type metadataStore interface {
	ListMetadata(ctx context.Context, scope string) ([]db.MetadataEntry, error)
	GetMetadata(ctx context.Context, key, scope string) (db.MetadataEntry, error)
	UpsertMetadata(ctx context.Context, entry db.MetadataEntry) error
}

// Inferrer produces descriptive metadata for a field from one sample value.
type Inferrer interface {
	InferMetadata(ctx context.Context, key string, sample any) (db.MetadataEntry, error)
}

type Config struct {
	Store           metadataStore
	Inferrer        Inferrer
	RefreshInterval time.Duration
	InferTimeout    time.Duration
	Now             func() time.Time
	Metrics         *metrics.Metrics
}

type MetadataCache struct {
	store        metadataStore
	inferrer     Inferrer
	interval     time.Duration
	inferTimeout time.Duration
	now          func() time.Time
	metrics      *metrics.Metrics

	// writeMu orders store writes against refreshes, so a swap never
	// discards an entry Set while the list was being read.
	writeMu sync.Mutex

	mu          sync.RWMutex
	entries     map[string]db.MetadataEntry
	lastRefresh time.Time
	stale       bool
	inflight    map[string]struct{}

	tasks sync.WaitGroup
}

func New(cfg Config) *MetadataCache {
	c := &MetadataCache{
		store:        cfg.Store,
		inferrer:     cfg.Inferrer,
		interval:     cfg.RefreshInterval,
		inferTimeout: cfg.InferTimeout,
		now:          cfg.Now,
		metrics:      cfg.Metrics,
		entries:      make(map[string]db.MetadataEntry),
		inflight:     make(map[string]struct{}),
	}
	if c.interval <= 0 {
		c.interval = DefaultRefreshInterval
	}
	if c.inferTimeout <= 0 {
		c.inferTimeout = DefaultInferTimeout
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.metrics == nil {
		c.metrics = metrics.NewNop()
	}
	return c
}

// Has is a cache-only membership test. It never refreshes, so it may lag
// the store by up to one refresh interval.
func (c *MetadataCache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[key]
	return ok
}

// Get refreshes the cache if it is stale, then looks key up. A failed refresh
// is logged and the previous contents are served.
func (c *MetadataCache) Get(ctx context.Context, key string) (db.MetadataEntry, bool) {
	if c.needsRefresh() {
		if err := c.Refresh(ctx); err != nil {
			slog.ErrorContext(ctx, "Metadata refresh failed, serving cached entries", "error", err)
		}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

// Set upserts entry for key in the shared scope and marks the cache stale so
// the next Get reloads from the store.
func (c *MetadataCache) Set(ctx context.Context, key string, entry db.MetadataEntry) error {
	const fn = "MetadataCache:Set"

	entry.OriginalKey = key
	entry.UserID = db.SystemScope

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.store.UpsertMetadata(ctx, entry); err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrStore, err)
	}

	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		entry.ID = existing.ID
		entry.CreatedAt = existing.CreatedAt
	} else {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
	c.entries[key] = entry
	c.stale = true
	return nil
}

// Refresh reloads every shared-scope entry and swaps the map in one step.
func (c *MetadataCache) Refresh(ctx context.Context) error {
	const fn = "MetadataCache:Refresh"

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	entries, err := c.store.ListMetadata(ctx, db.SystemScope)
	if err != nil {
		return fmt.Errorf("%s:%w:%w", fn, ErrStore, err)
	}
	fresh := make(map[string]db.MetadataEntry, len(entries))
	for _, e := range entries {
		fresh[e.OriginalKey] = e
	}

	c.mu.Lock()
	c.entries = fresh
	c.lastRefresh = c.now()
	c.stale = false
	c.mu.Unlock()
	return nil
}

// Hydrate performs the initial load at startup.
func (c *MetadataCache) Hydrate(ctx context.Context) error {
	slog.InfoContext(ctx, "Starting metadata cache hydration...")
	if err := c.Refresh(ctx); err != nil {
		return err
	}
	c.mu.RLock()
	count := len(c.entries)
	c.mu.RUnlock()
	slog.InfoContext(ctx, "Metadata cache hydration complete", "entries", count)
	return nil
}

func (c *MetadataCache) Dump() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for key, entry := range c.entries {
		slog.Info("Cache Dump", "key", key, "label", entry.Label, "category", entry.Category)
	}
}

// Effective returns the entry a user sees for key: their own scoped override
// if one exists, otherwise the shared entry.
func (c *MetadataCache) Effective(ctx context.Context, userID, key string) (db.MetadataEntry, error) {
	const fn = "MetadataCache:Effective"

	if userID != "" && userID != db.SystemScope {
		entry, err := c.store.GetMetadata(ctx, key, userID)
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, db.ErrNotFound) {
			return db.MetadataEntry{}, fmt.Errorf("%s:%w:%w", fn, ErrStore, err)
		}
	}
	entry, ok := c.Get(ctx, key)
	if !ok {
		return db.MetadataEntry{}, fmt.Errorf("%s:%w", fn, ErrNotFound)
	}
	return entry, nil
}

// Discover registers a placeholder for a key the cache does not know and
// starts a detached inference task for it. The task outlives ctx's
// cancellation and writes its result back through Set.
func (c *MetadataCache) Discover(ctx context.Context, key string, sample any) error {
	const fn = "MetadataCache:Discover"

	c.mu.Lock()
	_, known := c.entries[key]
	_, running := c.inflight[key]
	if known || running {
		c.mu.Unlock()
		return nil
	}
	c.inflight[key] = struct{}{}
	c.mu.Unlock()

	slog.InfoContext(ctx, "New field discovered, registering placeholder", "key", key)
	err := c.Set(ctx, key, db.MetadataEntry{
		Label:       key,
		Description: PlaceholderDescription,
		Category:    db.CategoryOther,
	})
	if err != nil || c.inferrer == nil {
		c.done(key)
		if err != nil {
			return fmt.Errorf("%s:%w", fn, err)
		}
		return nil
	}

	c.tasks.Add(1)
	go c.infer(context.WithoutCancel(ctx), key, sample)
	return nil
}

func (c *MetadataCache) infer(ctx context.Context, key string, sample any) {
	defer c.tasks.Done()
	defer c.done(key)

	ctx, cancel := context.WithTimeout(ctx, c.inferTimeout)
	defer cancel()

	entry, err := c.inferrer.InferMetadata(ctx, key, sample)
	if err != nil {
		c.metrics.InferenceRequests.WithLabelValues("failed").Inc()
		slog.WarnContext(ctx, "Metadata inference failed, keeping placeholder", "key", key, "error", err)
		return
	}
	if err := c.Set(ctx, key, entry); err != nil {
		c.metrics.InferenceRequests.WithLabelValues("failed").Inc()
		slog.ErrorContext(ctx, "Error storing inferred metadata", "key", key, "error", err)
		return
	}
	c.metrics.InferenceRequests.WithLabelValues("succeeded").Inc()
	slog.InfoContext(ctx, "Metadata inferred", "key", key, "label", entry.Label, "category", entry.Category)
}

func (c *MetadataCache) done(key string) {
	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
}

// Wait blocks until every running inference task has finished.
func (c *MetadataCache) Wait() {
	c.tasks.Wait()
}

func (c *MetadataCache) needsRefresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stale || c.lastRefresh.IsZero() || c.now().Sub(c.lastRefresh) >= c.interval
}
