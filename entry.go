package cache

import "time"

// entry is the unit of storage. A zero expiresAt means "never expires".
type entry struct {
	value       any
	expiresAt   time.Time
	lastTouch   time.Time
	accessCount int64
}

// expired reports whether the entry's expiry time has passed.
func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !e.expiresAt.After(now)
}

// entryState is the outcome of expiration classification.
type entryState int

const (
	stateAlive entryState = iota
	stateStale
	stateDead
)

// classify is the single expiration decision function. Reads, Has, TTL
// and the reaper all route through it so read-time and sweep-time
// behavior cannot drift.
//
// strict disables the stale relaxations: the reaper reclaims any entry
// past its expiry even while reads could still serve it stale.
func (c *Cache) classify(e *entry, now time.Time, strict bool) entryState {
	if !e.expired(now) {
		return stateAlive
	}
	if strict {
		return stateDead
	}
	if c.cfg.AllowStale {
		return stateStale
	}
	if w := c.cfg.StaleWhileRevalidate; w > 0 && now.Sub(e.expiresAt) < w {
		return stateStale
	}
	return stateDead
}

// expiryFrom anchors a TTL at now. ttl <= 0 means never expires.
func expiryFrom(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}
