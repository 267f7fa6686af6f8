package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newClockedCache(ttl time.Duration) (*MemoryCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(ttl)
	c.now = clock.now
	return c, clock
}

func TestMemoryCache_GetSet(t *testing.T) {
	c := NewMemoryCache(0)

	if _, ok := c.Get("html:abc:ukrainian"); ok {
		t.Error("Expected miss on empty cache")
	}
	if err := c.Set("html:abc:ukrainian", "<p>Привіт</p>"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, ok := c.Get("html:abc:ukrainian")
	if !ok || v != "<p>Привіт</p>" {
		t.Errorf("Expected hit with <p>Привіт</p>, got %q (ok=%v)", v, ok)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c, clock := newClockedCache(time.Minute)
	_ = c.Set("k", "v")

	clock.advance(30 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Error("Entry should still be live")
	}

	clock.advance(31 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("Entry should have expired")
	}
	if c.Len() != 0 {
		t.Errorf("Expired entry should be evicted on read, len=%d", c.Len())
	}
}

func TestMemoryCache_NoTTL(t *testing.T) {
	c, clock := newClockedCache(0)
	_ = c.Set("k", "v")
	clock.advance(24 * 365 * time.Hour)

	if _, ok := c.Get("k"); !ok {
		t.Error("Entries without TTL must not expire")
	}
	if c.Prune() != 0 {
		t.Error("Prune must be a no-op without TTL")
	}
}

func TestMemoryCache_Prune(t *testing.T) {
	c, clock := newClockedCache(time.Minute)
	_ = c.Set("old", "1")
	clock.advance(2 * time.Minute)
	_ = c.Set("new", "2")

	if n := c.Prune(); n != 1 {
		t.Errorf("Expected 1 pruned entry, got %d", n)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 entry left, got %d", c.Len())
	}
}

func TestMemoryCache_EntriesSkipExpired(t *testing.T) {
	c, clock := newClockedCache(time.Minute)
	_ = c.Set("old", "1")
	clock.advance(2 * time.Minute)
	_ = c.Set("new", "2")

	entries, err := c.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 1 || entries["new"] != "2" {
		t.Errorf("Unexpected entries: %v", entries)
	}
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	c := NewMemoryCache(0)
	_ = c.Set("a", "1")
	_ = c.Set("b", "2")

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("Deleted key should miss")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Expected empty cache after Clear, got %d", c.Len())
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("html:%d:uk", n%10)
			_ = c.Set(key, "v")
			c.Get(key)
		}(i)
	}
	wg.Wait()

	if c.Len() != 10 {
		t.Errorf("Expected 10 entries, got %d", c.Len())
	}
}
