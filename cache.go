package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kabeer11000/cache/observability"
)

var (
	// ErrNotFound is returned when a key maps to no servable entry.
	// Absence is an expected outcome, so read-style operations report
	// it via their ok result instead.
	ErrNotFound = errors.New("cache: key not found")
)

// NoExpiration is the TTL sentinel reported for entries that never expire.
const NoExpiration time.Duration = -1

// Cache is an in-process key-value store with TTL, LRU eviction,
// single-flight loading and background reaping. All methods are safe
// for concurrent use. Mutating methods return the Cache for chaining.
//
// Using a Cache after Close is undefined.
type Cache struct {
	mu    sync.Mutex
	cfg   Config
	items map[string]*entry

	// in-flight loader registry, keyed by cache key; entries are
	// forgotten as soon as the flight settles
	flight singleflight.Group

	observers map[EventKind][]Observer

	stopCh chan struct{}
	wake   chan struct{}
	wg     sync.WaitGroup
	closed bool

	logger  *observability.Logger
	metrics *observability.Metrics
}

// New creates a Cache and, when ReapInterval is set, starts its reaper.
func New(cfg Config) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = observability.Nop()
	}

	c := &Cache{
		cfg:       cfg,
		items:     make(map[string]*entry),
		observers: make(map[EventKind][]Observer),
		stopCh:    make(chan struct{}),
		wake:      make(chan struct{}, 1),
		logger:    logger,
		metrics:   cfg.Metrics,
	}

	if cfg.ReapInterval > 0 {
		c.wg.Add(1)
		go c.reap()
	}

	return c, nil
}

// MustNew creates a Cache or panics on invalid configuration.
func MustNew(cfg Config) *Cache {
	c, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

// Set stores key with the configured DefaultTTL.
func (c *Cache) Set(key string, value any) *Cache {
	return c.SetWithTTL(key, value, c.cfg.DefaultTTL)
}

// SetWithTTL stores key with an explicit TTL. ttl <= 0 means the entry
// never expires. Replacing an existing key is a value update: it keeps
// the entry's access accounting and fires no dispose hook. Inserting a
// new key past MaxEntries evicts exactly one victim.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) *Cache {
	now := time.Now()
	if c.cfg.CloneOnAccess && c.cfg.Clone != nil {
		value = c.cfg.Clone(value)
	}

	var victimKey string
	var victimValue any
	var evicted bool

	c.mu.Lock()
	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = expiryFrom(now, ttl)
		c.mu.Unlock()
		return c
	}

	c.items[key] = &entry{
		value:     value,
		expiresAt: expiryFrom(now, ttl),
		lastTouch: now,
	}
	if c.cfg.MaxEntries > 0 && len(c.items) > c.cfg.MaxEntries {
		victimKey, victimValue, evicted = c.evictLocked()
	}
	size := len(c.items)
	c.mu.Unlock()

	c.wakeReaper()
	c.metrics.RecordEntries(context.Background(), int64(size))

	if evicted {
		c.metrics.RecordEviction(context.Background())
		c.logger.Debug("evicted entry", "key", victimKey, "reason", ReasonLRU)
		c.dispose(victimKey, victimValue, ReasonLRU)
		c.emit(EventEvict, Event{Key: victimKey, Value: victimValue, Reason: ReasonLRU})
	}

	return c
}

// Get returns the value for key if it is alive or stale-servable,
// updating its recency. Dead entries report a miss but are left in
// place; reclaiming them is the reaper's and eviction's job.
func (c *Cache) Get(key string) (any, bool) {
	return c.lookup(key, true)
}

// Peek is Get without the recency update. It never changes eviction
// order, which makes it suitable for diagnostics.
func (c *Cache) Peek(key string) (any, bool) {
	return c.lookup(key, false)
}

func (c *Cache) lookup(key string, touch bool) (any, bool) {
	now := time.Now()

	c.mu.Lock()
	e, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		c.metrics.RecordMiss(context.Background())
		return nil, false
	}

	state := c.classify(e, now, false)
	if state == stateDead {
		c.mu.Unlock()
		c.metrics.RecordMiss(context.Background())
		return nil, false
	}

	if touch {
		e.lastTouch = now
		e.accessCount++
	}
	value := e.value
	c.mu.Unlock()

	if state == stateStale {
		c.metrics.RecordStaleServe(context.Background())
	} else {
		c.metrics.RecordHit(context.Background())
	}

	if c.cfg.CloneOnAccess && c.cfg.Clone != nil {
		value = c.cfg.Clone(value)
	}
	return value, true
}

// Has reports whether key maps to an alive or stale-servable entry.
// Dead and absent keys report false.
func (c *Cache) Has(key string) bool {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	return ok && c.classify(e, now, false) != stateDead
}

// Delete removes key if present, firing the dispose hook with reason
// delete. Deleting an absent key is a no-op.
func (c *Cache) Delete(key string) *Cache {
	c.mu.Lock()
	e, ok := c.items[key]
	if ok {
		delete(c.items, key)
	}
	c.mu.Unlock()

	if ok {
		c.dispose(key, e.value, ReasonDelete)
	}
	return c
}

// Clear removes every entry, firing the dispose hook with reason clear
// for each. Clearing an empty cache is a no-op.
func (c *Cache) Clear() *Cache {
	c.mu.Lock()
	removed := c.items
	c.items = make(map[string]*entry)
	c.mu.Unlock()

	for key, e := range removed {
		c.dispose(key, e.value, ReasonClear)
	}
	return c
}

// TTL returns the remaining lifetime of key. Never-expiring entries
// report NoExpiration. Stale-servable entries report their (negative)
// remaining duration; absent and dead keys report ErrNotFound.
func (c *Cache) TTL(key string) (time.Duration, error) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok || c.classify(e, now, false) == stateDead {
		return 0, ErrNotFound
	}
	if e.expiresAt.IsZero() {
		return NoExpiration, nil
	}
	return e.expiresAt.Sub(now), nil
}

// SetTTL re-anchors key's expiry at now. ttl <= 0 makes the entry
// never expire. Absent keys are a no-op.
func (c *Cache) SetTTL(key string, ttl time.Duration) *Cache {
	now := time.Now()

	c.mu.Lock()
	if e, ok := c.items[key]; ok {
		e.expiresAt = expiryFrom(now, ttl)
	}
	c.mu.Unlock()
	return c
}

// Len returns the resident entry count, including expired entries the
// reaper has not swept yet.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Close stops the reaper and releases all entries and observers.
// Close is idempotent; any other use of the Cache afterwards is
// undefined.
func (c *Cache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.items = make(map[string]*entry)
	c.observers = make(map[EventKind][]Observer)
	c.mu.Unlock()

	close(c.stopCh)
	c.wg.Wait()
	return nil
}

// dispose invokes the OnDispose collaborator, isolating panics so a
// failing hook cannot corrupt the mutation that triggered it.
func (c *Cache) dispose(key string, value any, reason Reason) {
	if c.cfg.OnDispose == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("dispose hook panicked", "key", key, "reason", reason, "panic", r)
		}
	}()
	c.cfg.OnDispose(key, value, reason)
}
