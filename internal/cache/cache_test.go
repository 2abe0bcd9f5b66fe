package cache

import (
	"testing"
	"time"
)

func TestLRUGetSet(t *testing.T) {
	c := NewLRU[string](10, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache returned a value")
	}

	c.Set("a", "1")
	got, ok := c.Get("a")
	if !ok || got != "1" {
		t.Errorf("Get(a) = (%q, %v), want (1, true)", got, ok)
	}

	c.Set("a", "2")
	got, _ = c.Get("a")
	if got != "2" {
		t.Errorf("Get(a) after update = %q, want 2", got)
	}
	if c.Size() != 1 {
		t.Errorf("Size = %d, want 1", c.Size())
	}
}

func TestLRUEviction(t *testing.T) {
	c := NewLRU[int](3, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// Touch "a" so "b" becomes the eviction candidate.
	c.Get("a")
	c.Set("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry survived eviction")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("entry %q evicted unexpectedly", key)
		}
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRU[string](10, 20*time.Millisecond)
	c.Set("a", "1")

	time.Sleep(40 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expired entry still returned")
	}
}

func TestLRUDelete(t *testing.T) {
	c := NewLRU[string](10, time.Minute)
	c.Set("a", "1")
	c.Delete("a")
	c.Delete("a") // second delete is a no-op

	if _, ok := c.Get("a"); ok {
		t.Error("deleted entry still returned")
	}
}

func TestCleanExpired(t *testing.T) {
	c := NewLRU[string](10, 20*time.Millisecond)
	c.Set("a", "1")
	c.Set("b", "2")

	time.Sleep(40 * time.Millisecond)
	c.Set("c", "3")

	if removed := c.CleanExpired(); removed != 2 {
		t.Errorf("CleanExpired removed %d, want 2", removed)
	}
	if c.Size() != 1 {
		t.Errorf("Size = %d after cleanup, want 1", c.Size())
	}
}
