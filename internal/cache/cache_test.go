package cache

import (
	"testing"
	"time"
)

// fakeClock lets tests move time explicitly.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)}
}

func (fc *fakeClock) now() time.Time          { return fc.t }
func (fc *fakeClock) advance(d time.Duration) { fc.t = fc.t.Add(d) }

func newTestCache(ttl time.Duration) (*Cache, *fakeClock) {
	c := New(ttl)
	fc := newFakeClock()
	c.SetNowFunc(fc.now)
	return c, fc
}

func TestCache_GetMissOnEmpty(t *testing.T) {
	c, _ := newTestCache(10 * time.Minute)
	if _, ok := c.Get(1); ok {
		t.Fatal("Get on empty cache should miss")
	}
}

func TestCache_PutThenGet(t *testing.T) {
	c, _ := newTestCache(10 * time.Minute)
	c.Put(1, "artifact-1")

	got, ok := c.Get(1)
	if !ok || got != "artifact-1" {
		t.Fatalf("Get(1) = %v, %v; want artifact-1, true", got, ok)
	}
}

func TestCache_TTLBoundary(t *testing.T) {
	// Fresh just under the TTL, stale at and beyond it.
	ttl := 10 * time.Minute
	c, clock := newTestCache(ttl)
	c.Put(1, "artifact-1")

	clock.advance(ttl - time.Second)
	if _, ok := c.Get(1); !ok {
		t.Fatal("entry should be a hit just before TTL")
	}

	clock.advance(2 * time.Second)
	if _, ok := c.Get(1); ok {
		t.Fatal("entry should be a miss just after TTL")
	}

	// Stale-but-unswept entries are still physically present.
	if c.Len() != 1 {
		t.Fatalf("Len() = %d; stale entry should remain until swept", c.Len())
	}
}

func TestCache_PutOverwriteRefreshes(t *testing.T) {
	ttl := 10 * time.Minute
	c, clock := newTestCache(ttl)
	c.Put(1, "old")

	clock.advance(9 * time.Minute)
	c.Put(1, "new")

	// 11 minutes after the first insert, 2 after the second: still fresh.
	clock.advance(2 * time.Minute)
	got, ok := c.Get(1)
	if !ok || got != "new" {
		t.Fatalf("Get(1) = %v, %v; overwrite should refresh the timestamp", got, ok)
	}
}

func TestCache_Sweep(t *testing.T) {
	ttl := 10 * time.Minute
	c, clock := newTestCache(ttl)
	c.Put(1, "a")
	c.Put(2, "b")

	clock.advance(5 * time.Minute)
	c.Put(3, "c")

	clock.advance(6 * time.Minute) // 1 and 2 are now stale, 3 is fresh
	if removed := c.Sweep(); removed != 2 {
		t.Fatalf("Sweep() removed %d, want 2", removed)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d after sweep, want 1", c.Len())
	}
	if !c.Contains(3) {
		t.Fatal("fresh entry should survive the sweep")
	}
}

func TestCache_Clear(t *testing.T) {
	c, _ := newTestCache(10 * time.Minute)
	c.Put(1, "a")
	c.Put(2, "b")

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("Len() = %d after Clear, want 0", c.Len())
	}
	if _, ok := c.Get(1); ok {
		t.Fatal("Get after Clear should miss")
	}
}

func TestCache_Counters(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	c.Put(1, "a")

	c.Get(1) // hit
	c.Get(2) // miss
	clock.advance(2 * time.Minute)
	c.Get(1) // stale, counts as miss

	hits, misses := c.Counters()
	if hits != 1 || misses != 2 {
		t.Fatalf("Counters() = %d, %d; want 1, 2", hits, misses)
	}
}

func TestCache_ContainsDoesNotCount(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.Put(1, "a")

	c.Contains(1)
	c.Contains(2)

	hits, misses := c.Counters()
	if hits != 0 || misses != 0 {
		t.Fatalf("Contains must not touch counters, got %d, %d", hits, misses)
	}
}
