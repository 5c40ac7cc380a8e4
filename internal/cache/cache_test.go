package cache

import (
	"testing"
	"time"
)

func TestLRU_SetGetEvict(t *testing.T) {
	c := NewLRU[string, int](4, time.Minute)

	if _, ok := c.Get("a"); ok {
		t.Fatal("empty cache must miss")
	}
	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("got %d %v, want 1 true", v, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1", c.Len())
	}
	c.Evict("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("evicted key must miss")
	}
}

func TestLRU_CapacityBound(t *testing.T) {
	c := NewLRU[int, int](2, time.Minute)
	c.Set(1, 1)
	c.Set(2, 2)
	c.Set(3, 3)
	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}
	if _, ok := c.Get(1); ok {
		t.Fatal("oldest entry should have been evicted")
	}
}

func TestLRU_Expiry(t *testing.T) {
	c := NewLRU[string, int](4, 20*time.Millisecond)
	c.Set("a", 1)
	time.Sleep(60 * time.Millisecond)
	if _, ok := c.Get("a"); ok {
		t.Fatal("entry should have expired")
	}
}

func TestLRU_NilSafe(t *testing.T) {
	var c *LRU[string, int]
	c.Set("a", 1)
	c.Evict("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("nil cache must miss")
	}
	if c.Len() != 0 {
		t.Fatal("nil cache must report zero length")
	}
}
