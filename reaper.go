package cache

import (
	"context"
	"time"
)

// reap is the background sweep loop. It runs only when ReapInterval is
// positive and stops when the cache is closed. After a tick that finds
// the store empty it parks until the next write wakes it, so an idle
// cache does not keep a timer firing.
func (c *Cache) reap() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			if remaining := c.sweep(); remaining == 0 {
				select {
				case <-c.stopCh:
					return
				case <-c.wake:
				}
			}
		}
	}
}

// sweep removes every entry past strict expiry, firing dispose hooks
// with reason expire and emitting expire events. It returns the number
// of entries still resident afterwards.
//
// The sweep deliberately ignores the allow-stale and SWR relaxations:
// its job is to eventually reclaim memory even for entries reads could
// still serve stale.
func (c *Cache) sweep() int {
	now := time.Now()

	type reaped struct {
		key   string
		value any
	}
	var dead []reaped

	c.mu.Lock()
	for key, e := range c.items {
		if c.classify(e, now, true) == stateDead {
			delete(c.items, key)
			dead = append(dead, reaped{key, e.value})
		}
	}
	remaining := len(c.items)
	c.mu.Unlock()

	for _, d := range dead {
		c.dispose(d.key, d.value, ReasonExpire)
		c.emit(EventExpire, Event{Key: d.key, Value: d.value, Reason: ReasonExpire})
	}

	if len(dead) > 0 {
		c.metrics.RecordExpirations(context.Background(), int64(len(dead)))
		c.metrics.RecordEntries(context.Background(), int64(remaining))
		c.logger.Debug("reaper sweep", "reaped", len(dead), "remaining", remaining)
	}

	return remaining
}

// wakeReaper unparks an idle reaper after a write. Non-blocking; a
// pending wake signal is enough.
func (c *Cache) wakeReaper() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}
