package cache

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestGetMissOnUnknownKey(t *testing.T) {
	c := MustNew(Config{})
	defer c.Close()

	if _, ok := c.Get("nope"); ok {
		t.Error("Get on never-written key should miss")
	}
	if _, ok := c.Peek("nope"); ok {
		t.Error("Peek on never-written key should miss")
	}
	if c.Has("nope") {
		t.Error("Has on never-written key should be false")
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	c := MustNew(Config{})
	defer c.Close()

	c.Set("greeting", "hello")

	v, ok := c.Get("greeting")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if v != "hello" {
		t.Errorf("expected %q, got %v", "hello", v)
	}
	if c.Len() != 1 {
		t.Errorf("expected size 1, got %d", c.Len())
	}
}

func TestTTLExpiry(t *testing.T) {
	c := MustNew(Config{})
	defer c.Close()

	c.SetWithTTL("k", 42, 50*time.Millisecond)

	if _, ok := c.Get("k"); !ok {
		t.Fatal("value should be present before TTL elapses")
	}

	time.Sleep(80 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("value should be gone after TTL elapses")
	}
	if c.Has("k") {
		t.Error("Has should report false for a dead entry")
	}

	// Dead entries are not removed on the read path; sweeping is the
	// reaper's job.
	if c.Len() != 1 {
		t.Errorf("dead entry should remain resident, size = %d", c.Len())
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c := MustNew(Config{})
	defer c.Close()

	c.SetWithTTL("k", "v", 0)

	ttl, err := c.TTL("k")
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl != NoExpiration {
		t.Errorf("expected NoExpiration, got %v", ttl)
	}
}

func TestStaleWhileRevalidateWindow(t *testing.T) {
	c := MustNew(Config{StaleWhileRevalidate: 200 * time.Millisecond})
	defer c.Close()

	c.SetWithTTL("k", "stale-ok", 50*time.Millisecond)

	time.Sleep(100 * time.Millisecond)

	// Expired but inside the SWR window: still served.
	v, ok := c.Get("k")
	if !ok {
		t.Fatal("expected stale value inside SWR window")
	}
	if v != "stale-ok" {
		t.Errorf("expected %q, got %v", "stale-ok", v)
	}
	if !c.Has("k") {
		t.Error("Has should be true for a stale-servable entry")
	}

	time.Sleep(200 * time.Millisecond)

	// Past expiresAt + window: dead.
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after SWR window elapsed")
	}

	t.Log("✓ SWR serves stale inside the window only")
}

func TestAllowStaleServesUnconditionally(t *testing.T) {
	c := MustNew(Config{AllowStale: true})
	defer c.Close()

	c.SetWithTTL("k", "v", 20*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	if _, ok := c.Get("k"); !ok {
		t.Error("AllowStale should serve expired values")
	}
	if !c.Has("k") {
		t.Error("Has should be true under AllowStale")
	}
}

func TestTTLReporting(t *testing.T) {
	c := MustNew(Config{StaleWhileRevalidate: 500 * time.Millisecond})
	defer c.Close()

	if _, err := c.TTL("absent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for absent key, got %v", err)
	}

	c.SetWithTTL("k", "v", time.Minute)
	ttl, err := c.TTL("k")
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= 50*time.Second || ttl > time.Minute {
		t.Errorf("expected remaining TTL near a minute, got %v", ttl)
	}

	// Stale-servable entries report negative remaining time.
	c.SetWithTTL("stale", "v", 20*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	ttl, err = c.TTL("stale")
	if err != nil {
		t.Fatalf("TTL on stale-servable entry failed: %v", err)
	}
	if ttl >= 0 {
		t.Errorf("expected negative remaining TTL, got %v", ttl)
	}
}

func TestSetTTLReanchors(t *testing.T) {
	c := MustNew(Config{})
	defer c.Close()

	c.SetWithTTL("k", "v", 30*time.Millisecond)
	c.SetTTL("k", time.Minute)

	time.Sleep(60 * time.Millisecond)

	if _, ok := c.Get("k"); !ok {
		t.Error("SetTTL should have extended the entry's life")
	}

	// ttl <= 0 switches to never-expire.
	c.SetTTL("k", 0)
	ttl, err := c.TTL("k")
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl != NoExpiration {
		t.Errorf("expected NoExpiration after SetTTL(0), got %v", ttl)
	}

	// Absent key is a no-op, not an error.
	c.SetTTL("absent", time.Minute)
	if c.Has("absent") {
		t.Error("SetTTL must not create entries")
	}
}

func TestReplaceKeepsAccessAccounting(t *testing.T) {
	disposed := 0
	c := MustNew(Config{
		OnDispose: func(string, any, Reason) { disposed++ },
	})
	defer c.Close()

	c.Set("k", "v1")
	c.Get("k")
	c.Get("k")

	c.Set("k", "v2")

	c.mu.Lock()
	e := c.items["k"]
	c.mu.Unlock()

	if e.accessCount != 2 {
		t.Errorf("replacement must keep accessCount, got %d", e.accessCount)
	}
	if v, _ := c.Get("k"); v != "v2" {
		t.Errorf("expected replaced value, got %v", v)
	}
	if disposed != 0 {
		t.Errorf("replacement is a value update, not a delete; dispose fired %d times", disposed)
	}
}

func TestDeleteAndClear(t *testing.T) {
	var mu sync.Mutex
	disposals := make(map[string]Reason)

	c := MustNew(Config{
		OnDispose: func(key string, _ any, reason Reason) {
			mu.Lock()
			disposals[key] = reason
			mu.Unlock()
		},
	})
	defer c.Close()

	c.Set("a", 1).Set("b", 2)

	c.Delete("a")
	if c.Has("a") {
		t.Error("a should be gone after Delete")
	}

	// Idempotence: absent delete and empty clear are no-ops.
	c.Delete("a")
	c.Delete("never-written")

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d entries", c.Len())
	}
	c.Clear()

	mu.Lock()
	defer mu.Unlock()
	if disposals["a"] != ReasonDelete {
		t.Errorf("expected delete reason for a, got %q", disposals["a"])
	}
	if disposals["b"] != ReasonClear {
		t.Errorf("expected clear reason for b, got %q", disposals["b"])
	}
}

func TestCloneOnAccessIndependence(t *testing.T) {
	cloneMap := func(v any) any {
		in, ok := v.(map[string]int)
		if !ok {
			return v
		}
		out := make(map[string]int, len(in))
		for k, n := range in {
			out[k] = n
		}
		return out
	}

	c := MustNew(Config{CloneOnAccess: true, Clone: cloneMap})
	defer c.Close()

	original := map[string]int{"n": 1}
	c.Set("m", original)

	// Caller-side mutation after write must not leak into the store.
	original["n"] = 99

	v, ok := c.Get("m")
	if !ok {
		t.Fatal("expected hit")
	}
	got := v.(map[string]int)
	if got["n"] != 1 {
		t.Errorf("stored value was not copy-independent: got n=%d", got["n"])
	}

	// Reader-side mutation must not leak either.
	got["n"] = 7
	v2, _ := c.Get("m")
	if v2.(map[string]int)["n"] != 1 {
		t.Error("read values must be independent copies")
	}

	t.Log("✓ clone collaborator gives copy independence both ways")
}

func TestDefaultTTLApplied(t *testing.T) {
	c := MustNew(Config{DefaultTTL: 40 * time.Millisecond})
	defer c.Close()

	c.Set("k", "v")
	time.Sleep(80 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("Set should inherit DefaultTTL")
	}
}

func TestStatsSnapshot(t *testing.T) {
	c := MustNew(Config{
		SizeOf: func(key string, value any) int {
			return len(key) + len(value.(string))
		},
	})
	defer c.Close()

	c.Set("ab", "xyz")
	c.SetWithTTL("dead", "d", 10*time.Millisecond)
	time.Sleep(40 * time.Millisecond)

	s := c.Stats()
	if s.Size != 2 {
		t.Errorf("expected size 2, got %d", s.Size)
	}
	if s.Expired != 1 {
		t.Errorf("expected 1 expired resident entry, got %d", s.Expired)
	}
	if want := len("ab") + len("xyz") + len("dead") + len("d"); s.Bytes != want {
		t.Errorf("expected %d estimated bytes, got %d", want, s.Bytes)
	}
}

func TestValidateRejectsNegatives(t *testing.T) {
	bad := []Config{
		{DefaultTTL: -time.Second},
		{MaxEntries: -1},
		{ReapInterval: -time.Second},
		{StaleWhileRevalidate: -time.Second},
		{StaleIfError: -time.Second},
	}
	for i, cfg := range bad {
		if _, err := New(cfg); err == nil {
			t.Errorf("config %d: expected validation error", i)
		}
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	c := MustNew(Config{ReapInterval: 10 * time.Millisecond})
	c.Set("k", "v")

	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if c.Len() != 0 {
		t.Error("Close should release all entries")
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := MustNew(Config{MaxEntries: 64})
	defer c.Close()

	var wg sync.WaitGroup
	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := string(rune('a' + (id+j)%26))
				c.SetWithTTL(key, j, 50*time.Millisecond)
				c.Get(key)
				c.Has(key)
				if j%10 == 0 {
					c.Delete(key)
				}
			}
		}(i)
	}

	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("concurrent access timed out - possible deadlock")
	}
}
