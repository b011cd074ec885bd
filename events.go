package cache

import "reflect"

// EventKind selects which state transitions an observer receives.
type EventKind int

const (
	// EventExpire fires once per entry removed by the reaper.
	EventExpire EventKind = iota
	// EventEvict fires once per entry removed by LRU eviction.
	EventEvict
)

// Event carries the removed entry to observers.
type Event struct {
	Key    string
	Value  any
	Reason Reason
}

// Observer receives events for the kind it was registered under.
type Observer func(Event)

// On registers an observer for kind. The same function may be
// registered multiple times and will be invoked once per registration.
func (c *Cache) On(kind EventKind, fn Observer) *Cache {
	if fn == nil {
		return c
	}
	c.mu.Lock()
	c.observers[kind] = append(c.observers[kind], fn)
	c.mu.Unlock()
	return c
}

// Off deregisters fn from kind by function identity, removing every
// registration of it. Func values are not comparable in Go, so
// identity is the function's code pointer.
func (c *Cache) Off(kind EventKind, fn Observer) *Cache {
	if fn == nil {
		return c
	}
	ptr := reflect.ValueOf(fn).Pointer()

	c.mu.Lock()
	kept := c.observers[kind][:0]
	for _, obs := range c.observers[kind] {
		if reflect.ValueOf(obs).Pointer() != ptr {
			kept = append(kept, obs)
		}
	}
	c.observers[kind] = kept
	c.mu.Unlock()
	return c
}

// emit dispatches an event to every observer of kind. Dispatch is
// best-effort by policy: a panicking observer is isolated and never
// blocks later observers or the store mutation that triggered it.
func (c *Cache) emit(kind EventKind, ev Event) {
	c.mu.Lock()
	registered := c.observers[kind]
	observers := make([]Observer, len(registered))
	copy(observers, registered)
	c.mu.Unlock()

	for _, fn := range observers {
		c.notify(fn, ev)
	}
}

func (c *Cache) notify(fn Observer, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("observer panicked", "key", ev.Key, "reason", ev.Reason, "panic", r)
		}
	}()
	fn(ev)
}
