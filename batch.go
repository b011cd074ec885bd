package cache

import "time"

// Batch and iteration helpers. These are thin loops over the core
// operations; each key is handled independently and observes the same
// policies as the single-key call.

// GetMany returns the servable values for keys. Missing and dead keys
// are simply absent from the result.
func (c *Cache) GetMany(keys ...string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		if v, ok := c.Get(key); ok {
			out[key] = v
		}
	}
	return out
}

// SetMany stores every pair with the configured DefaultTTL.
func (c *Cache) SetMany(values map[string]any) *Cache {
	return c.SetManyTTL(values, c.cfg.DefaultTTL)
}

// SetManyTTL stores every pair with an explicit TTL.
func (c *Cache) SetManyTTL(values map[string]any, ttl time.Duration) *Cache {
	for key, value := range values {
		c.SetWithTTL(key, value, ttl)
	}
	return c
}

// DeleteMany removes every listed key that is present.
func (c *Cache) DeleteMany(keys ...string) *Cache {
	for _, key := range keys {
		c.Delete(key)
	}
	return c
}

// Keys returns a snapshot of the keys that are currently servable
// (alive or stale-servable), in no particular order.
func (c *Cache) Keys() []string {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.items))
	for key, e := range c.items {
		if c.classify(e, now, false) != stateDead {
			keys = append(keys, key)
		}
	}
	return keys
}

// Items returns a snapshot map of the servable entries without
// touching their recency. Values are cloned when cloning is
// configured.
func (c *Cache) Items() map[string]any {
	now := time.Now()

	c.mu.Lock()
	out := make(map[string]any, len(c.items))
	for key, e := range c.items {
		if c.classify(e, now, false) != stateDead {
			out[key] = e.value
		}
	}
	c.mu.Unlock()

	if c.cfg.CloneOnAccess && c.cfg.Clone != nil {
		for key, value := range out {
			out[key] = c.cfg.Clone(value)
		}
	}
	return out
}
