package trait_inference

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/turtacn/PhytoTrait-Intelligence/pkg/types/svo"
)

// DefaultCacheSize bounds the in-memory enhancement cache.
const DefaultCacheSize = 1000

// CacheKey derives the cache key for a tuple and its context.  The tuple
// elements are embedded directly; the context collapses to a short hash so
// long paragraphs do not bloat the key.
func CacheKey(tuple svo.Tuple, contextText string) string {
	sum := sha256.Sum256([]byte(contextText))
	return strings.Join([]string{
		tuple.Subject,
		tuple.Verb,
		tuple.Object,
		hex.EncodeToString(sum[:8]),
	}, "|")
}

// EnhancementCache stores finished enhancements keyed by CacheKey.  A cache
// is an optimization only; disabling it must not change any output.
type EnhancementCache interface {
	Get(key string) (*EnhancedSVO, bool)
	Put(key string, value *EnhancedSVO)
	Len() int
}

// fifoCache evicts strictly in insertion order once full.  This is
// deliberate: least-recently-used reordering on Get would keep hot entries
// alive past the bound the eviction contract promises.
type fifoCache struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List
	entries map[string]*list.Element
}

type fifoEntry struct {
	key   string
	value *EnhancedSVO
}

// NewFIFOCache builds a bounded in-memory cache.  Non-positive maxSize
// falls back to DefaultCacheSize.
func NewFIFOCache(maxSize int) EnhancementCache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &fifoCache{
		maxSize: maxSize,
		order:   list.New(),
		entries: make(map[string]*list.Element, maxSize),
	}
}

func (c *fifoCache) Get(key string) (*EnhancedSVO, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return elem.Value.(*fifoEntry).value, true
}

func (c *fifoCache) Put(key string, value *EnhancedSVO) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[key]; ok {
		// Overwrite in place; insertion position is unchanged.
		elem.Value.(*fifoEntry).value = value
		return
	}
	if c.order.Len() >= c.maxSize {
		oldest := c.order.Front()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*fifoEntry).key)
		}
	}
	c.entries[key] = c.order.PushBack(&fifoEntry{key: key, value: value})
}

func (c *fifoCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
