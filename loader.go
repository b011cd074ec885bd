package cache

import (
	"context"
	"time"
)

// Loader computes a value for a missing key. It may block; the engine
// runs it to completion with no cancellation or timeout of its own.
type Loader func(ctx context.Context) (any, error)

// GetOrLoad returns the cached value for key, or runs loader to
// compute and store it with the configured DefaultTTL.
func (c *Cache) GetOrLoad(ctx context.Context, key string, loader Loader) (any, error) {
	return c.GetOrLoadTTL(ctx, key, loader, c.cfg.DefaultTTL)
}

// GetOrLoadTTL is GetOrLoad with an explicit TTL for the loaded value.
//
// Concurrent callers for the same key are coalesced: while a flight is
// in progress the loader runs at most once and every caller observes
// the same resolved value or the same failure. The flight is forgotten
// the moment it settles, so a later wave of callers re-checks the
// store and, on a miss, starts a fresh loader invocation.
//
// On loader failure, if StaleIfError is configured and an entry for
// key is still resident within the window, all coalesced callers get
// that stale value instead of the error.
//
// The loader runs with the context of the caller that started the
// flight; once started it always runs to completion and a successful
// result is written even if every caller has lost interest.
func (c *Cache) GetOrLoadTTL(ctx context.Context, key string, loader Loader, ttl time.Duration) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, shared := c.flight.Do(key, func() (any, error) {
		c.metrics.RecordLoaderCall(ctx)
		v, err := loader(ctx)
		if err != nil {
			c.metrics.RecordLoaderError(ctx)
			if stale, ok := c.staleForError(key); ok {
				c.metrics.RecordStaleServe(ctx)
				c.logger.Debug("loader failed, serving stale", "key", key, "error", err)
				return stale, nil
			}
			return nil, err
		}
		c.SetWithTTL(key, v, ttl)
		return v, nil
	})
	if shared {
		c.metrics.RecordLoaderDedup(ctx)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Wrap returns a function that performs GetOrLoad for key on every
// invocation, using the configured DefaultTTL. The loader is not
// pre-invoked.
func (c *Cache) Wrap(key string, loader Loader) func(context.Context) (any, error) {
	return c.WrapTTL(key, loader, c.cfg.DefaultTTL)
}

// WrapTTL is Wrap with an explicit TTL.
func (c *Cache) WrapTTL(key string, loader Loader, ttl time.Duration) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		return c.GetOrLoadTTL(ctx, key, loader, ttl)
	}
}

// staleForError looks up a rescue value for a failed load: the entry
// must still be resident and within the StaleIfError window past its
// expiry. Entries that never expire cannot be stale.
func (c *Cache) staleForError(key string) (any, bool) {
	window := c.cfg.StaleIfError
	if window <= 0 {
		return nil, false
	}
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok || e.expiresAt.IsZero() {
		return nil, false
	}
	if now.Sub(e.expiresAt) < window {
		return e.value, true
	}
	return nil, false
}
