package cache

// scoreQuantum makes recency dominate the eviction ordering. With
// millisecond touch resolution, accessCount only breaks ties between
// entries last touched in the same millisecond, so a high-frequency
// reader is not starved out by many touches landing in one tick.
const scoreQuantum = 1_000_000

func evictionScore(e *entry) int64 {
	return e.lastTouch.UnixMilli()*scoreQuantum - e.accessCount
}

// evictLocked scans all entries and removes the one with the lowest
// score: least recently touched first, fewest accesses among entries
// touched in the same quantum. Caller must hold c.mu.
func (c *Cache) evictLocked() (string, any, bool) {
	var victimKey string
	var victim *entry
	for key, e := range c.items {
		if victim == nil || evictionScore(e) < evictionScore(victim) {
			victimKey, victim = key, e
		}
	}
	if victim == nil {
		return "", nil, false
	}
	delete(c.items, victimKey)
	return victimKey, victim.value, true
}
