package jsonld

import "testing"

func TestLRUCacheEvictsOldest(t *testing.T) {
	c := newLRUCache(2)
	c.set("a", 1)
	c.set("b", 2)
	c.set("c", 3) // evicts "a"

	if _, ok := c.get("a"); ok {
		t.Fatal("expected \"a\" to have been evicted")
	}
	if v, ok := c.get("b"); !ok || v != 2 {
		t.Fatalf("get(b) = %v, %v, want 2, true", v, ok)
	}
	if v, ok := c.get("c"); !ok || v != 3 {
		t.Fatalf("get(c) = %v, %v, want 3, true", v, ok)
	}
}

func TestLRUCacheGetRefreshesRecency(t *testing.T) {
	c := newLRUCache(2)
	c.set("a", 1)
	c.set("b", 2)
	c.get("a")       // "a" is now most recently used
	c.set("c", 3)     // should evict "b", not "a"

	if _, ok := c.get("b"); ok {
		t.Fatal("expected \"b\" to have been evicted after \"a\" was refreshed")
	}
	if _, ok := c.get("a"); !ok {
		t.Fatal("expected \"a\" to survive eviction")
	}
}

func TestLRUCacheSetOverwritesExistingKey(t *testing.T) {
	c := newLRUCache(2)
	c.set("a", 1)
	c.set("a", 2)
	if v, ok := c.get("a"); !ok || v != 2 {
		t.Fatalf("get(a) = %v, %v, want 2, true", v, ok)
	}
}
