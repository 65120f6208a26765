package trait_inference

import (
	"strconv"
	"testing"

	"github.com/turtacn/PhytoTrait-Intelligence/pkg/types/svo"
)

func TestCacheKeyDistinguishesContext(t *testing.T) {
	tuple := svo.Tuple{Subject: "orchid", Verb: "displays", Object: "labellum"}
	a := CacheKey(tuple, "first context")
	b := CacheKey(tuple, "second context")
	if a == b {
		t.Error("different contexts must produce different keys")
	}
	if a != CacheKey(tuple, "first context") {
		t.Error("key derivation must be deterministic")
	}
}

func TestFIFOCacheEvictsOldestFirst(t *testing.T) {
	cache := NewFIFOCache(2)

	cache.Put("k1", &EnhancedSVO{Subject: "one"})
	cache.Put("k2", &EnhancedSVO{Subject: "two"})
	cache.Put("k3", &EnhancedSVO{Subject: "three"})

	if _, ok := cache.Get("k1"); ok {
		t.Error("oldest entry must be evicted at capacity")
	}
	if _, ok := cache.Get("k2"); !ok {
		t.Error("second entry must survive")
	}
	if _, ok := cache.Get("k3"); !ok {
		t.Error("newest entry must survive")
	}
	if cache.Len() != 2 {
		t.Errorf("len = %d, want 2", cache.Len())
	}
}

func TestFIFOCacheGetDoesNotRefresh(t *testing.T) {
	cache := NewFIFOCache(2)
	cache.Put("k1", &EnhancedSVO{Subject: "one"})
	cache.Put("k2", &EnhancedSVO{Subject: "two"})

	// A hit on k1 must not promote it; insertion order decides eviction.
	if _, ok := cache.Get("k1"); !ok {
		t.Fatal("k1 should be present")
	}
	cache.Put("k3", &EnhancedSVO{Subject: "three"})

	if _, ok := cache.Get("k1"); ok {
		t.Error("k1 must still be the eviction victim after a Get")
	}
}

func TestFIFOCacheOverwriteKeepsPosition(t *testing.T) {
	cache := NewFIFOCache(2)
	cache.Put("k1", &EnhancedSVO{Subject: "one"})
	cache.Put("k2", &EnhancedSVO{Subject: "two"})
	cache.Put("k1", &EnhancedSVO{Subject: "updated"})

	if cache.Len() != 2 {
		t.Fatalf("len = %d, want 2 after overwrite", cache.Len())
	}
	got, ok := cache.Get("k1")
	if !ok || got.Subject != "updated" {
		t.Errorf("overwrite not visible: %v", got)
	}

	// k1 keeps its original insertion slot, so it is evicted before k2.
	cache.Put("k3", &EnhancedSVO{Subject: "three"})
	if _, ok := cache.Get("k1"); ok {
		t.Error("overwritten k1 must retain original eviction order")
	}
}

func TestFIFOCacheDefaultSize(t *testing.T) {
	cache := NewFIFOCache(0)
	for i := 0; i < DefaultCacheSize+10; i++ {
		cache.Put("k"+strconv.Itoa(i), &EnhancedSVO{})
	}
	if cache.Len() != DefaultCacheSize {
		t.Errorf("len = %d, want %d", cache.Len(), DefaultCacheSize)
	}
}
