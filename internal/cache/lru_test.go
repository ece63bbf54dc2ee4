// Wisata - Tourist Destination Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wisata

package cache

import (
	"sync"
	"testing"
	"time"
)

func TestLRU_BasicOperations(t *testing.T) {
	c := NewLRU[string, int](3, time.Minute)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	for key, want := range map[string]int{"a": 1, "b": 2, "c": 3} {
		got, found := c.Get(key)
		if !found {
			t.Errorf("Expected to find key %q", key)
			continue
		}
		if got != want {
			t.Errorf("Get(%q) = %d, want %d", key, got, want)
		}
	}

	if c.Len() != 3 {
		t.Errorf("Expected len 3, got %d", c.Len())
	}
}

func TestLRU_Eviction(t *testing.T) {
	c := NewLRU[string, int](3, time.Minute)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	// Access 'a' to make it most recently used
	c.Get("a")

	// Should evict 'b' (least recently used)
	c.Add("d", 4)

	if _, found := c.Get("b"); found {
		t.Error("Expected 'b' to be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, found := c.Get(key); !found {
			t.Errorf("Expected %q to be present", key)
		}
	}
}

func TestLRU_UpdateExisting(t *testing.T) {
	c := NewLRU[string, int](2, time.Minute)

	c.Add("a", 1)
	c.Add("a", 10)

	if c.Len() != 1 {
		t.Errorf("Expected len 1 after update, got %d", c.Len())
	}
	if got, _ := c.Get("a"); got != 10 {
		t.Errorf("Get(a) = %d, want 10", got)
	}
}

func TestLRU_TTLExpiration(t *testing.T) {
	c := NewLRU[string, int](10, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Add("a", 1)
	c.Add("b", 2)

	now = now.Add(30 * time.Second)
	if _, found := c.Get("a"); !found {
		t.Error("Expected 'a' to be present before TTL")
	}

	now = now.Add(2 * time.Minute)
	if _, found := c.Get("a"); found {
		t.Error("Expected 'a' to be expired after TTL")
	}

	if removed := c.CleanupExpired(); removed != 1 {
		t.Errorf("CleanupExpired() = %d, want 1", removed)
	}
	if c.Len() != 0 {
		t.Errorf("Expected empty cache, got %d", c.Len())
	}
}

func TestLRU_RemoveAndClear(t *testing.T) {
	c := NewLRU[int, string](5, time.Minute)
	c.Add(1, "one")
	c.Add(2, "two")

	if !c.Remove(1) {
		t.Error("Remove(1) = false, want true")
	}
	if c.Remove(1) {
		t.Error("Remove(1) twice = true, want false")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Expected len 0 after Clear, got %d", c.Len())
	}

	// Cache remains usable after Clear
	c.Add(3, "three")
	if got, ok := c.Get(3); !ok || got != "three" {
		t.Errorf("Get(3) = %q, %v after Clear", got, ok)
	}
}

func TestLRU_Stats(t *testing.T) {
	c := NewLRU[string, int](5, time.Minute)
	c.Add("a", 1)
	c.Get("a")
	c.Get("missing")

	hits, misses, size := c.Stats()
	if hits != 1 || misses != 1 || size != 1 {
		t.Errorf("Stats() = (%d, %d, %d), want (1, 1, 1)", hits, misses, size)
	}
}

func TestLRU_Defaults(t *testing.T) {
	c := NewLRU[string, int](0, 0)
	if c.capacity != 10000 {
		t.Errorf("default capacity = %d, want 10000", c.capacity)
	}
	if c.ttl != 5*time.Minute {
		t.Errorf("default ttl = %v, want 5m", c.ttl)
	}
}

func TestLRU_Concurrent(t *testing.T) {
	c := NewLRU[int, int](100, time.Minute)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				c.Add(base*1000+i, i)
				c.Get(base*1000 + i/2)
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 100 {
		t.Errorf("Len() = %d exceeds capacity", c.Len())
	}
}
