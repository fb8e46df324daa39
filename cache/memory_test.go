package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func newClockedCache(ttlSeconds int) (*InMemoryCache, *time.Time) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewInMemoryCache(ttlSeconds)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestInMemoryCache_GetSet(t *testing.T) {
	c := NewInMemoryCache(3600)

	if err := c.Set("key1", "value1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, ok := c.Get("key1")
	if !ok || val != "value1" {
		t.Errorf("Get returned %q (ok=%v), want value1", val, ok)
	}

	val, ok = c.Get("nonexistent")
	if ok || val != "" {
		t.Errorf("Get should miss for unknown key, got %q (ok=%v)", val, ok)
	}
}

func TestInMemoryCache_TTL(t *testing.T) {
	c, now := newClockedCache(60)

	c.Set("key1", "value1")
	if _, ok := c.Get("key1"); !ok {
		t.Error("Value should be available immediately after set")
	}

	*now = now.Add(61 * time.Second)

	if val, ok := c.Get("key1"); ok || val != "" {
		t.Errorf("Value should be expired after TTL, got %q", val)
	}
	if c.Len() != 0 {
		t.Error("expired entry should be removed on read")
	}
}

func TestInMemoryCache_NoTTL(t *testing.T) {
	c, now := newClockedCache(0)

	c.Set("key1", "value1")
	*now = now.Add(24 * 365 * time.Hour)

	if val, ok := c.Get("key1"); !ok || val != "value1" {
		t.Error("Value should never expire without TTL")
	}
}

func TestInMemoryCache_Overwrite(t *testing.T) {
	c := NewInMemoryCache(3600)

	c.Set("key1", "value1")
	c.Set("key1", "value2")

	if val, _ := c.Get("key1"); val != "value2" {
		t.Errorf("Expected overwritten value, got %q", val)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", c.Len())
	}
}

func TestInMemoryCache_Clear(t *testing.T) {
	c := NewInMemoryCache(3600)
	c.Set("key1", "value1")
	c.Set("key2", "value2")

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Expected empty cache after Clear, got %d", c.Len())
	}
}

func TestInMemoryCache_EntriesSkipExpired(t *testing.T) {
	c, now := newClockedCache(60)

	c.Set("old", "1")
	*now = now.Add(50 * time.Second)
	c.Set("new", "2")
	*now = now.Add(20 * time.Second)

	entries := c.Entries()
	if len(entries) != 1 || entries[0].Key != "new" {
		t.Errorf("Expected only the fresh entry, got %+v", entries)
	}
}

func TestInMemoryCache_Concurrent(t *testing.T) {
	c := NewInMemoryCache(3600)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key%d", n)
			c.Set(key, "value")
			c.Get(key)
		}(i)
	}
	wg.Wait()

	if c.Len() != 100 {
		t.Errorf("Expected 100 entries, got %d", c.Len())
	}
}
