package cache

import "time"

// Stats is a point-in-time snapshot of the store.
type Stats struct {
	// Size is the resident entry count, including not-yet-swept
	// expired entries.
	Size int
	// Expired counts resident entries past strict expiry.
	Expired int
	// Bytes is the best-effort footprint estimate from the SizeOf
	// collaborator; zero when none is configured.
	Bytes int
}

// Stats scans the store once and returns a consistent snapshot.
func (c *Cache) Stats() Stats {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{Size: len(c.items)}
	for key, e := range c.items {
		if e.expired(now) {
			s.Expired++
		}
		if c.cfg.SizeOf != nil {
			s.Bytes += c.cfg.SizeOf(key, e.value)
		}
	}
	return s
}
