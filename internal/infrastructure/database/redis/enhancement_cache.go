package redis

import (
	"context"
	"time"

	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/intelligence/trait_inference"
)

// EnhancementCache adapts the generic Cache to the inference engine's
// cache contract, letting multiple workers share one result store.  Errors
// degrade to misses: the cache is an optimization, never a correctness
// dependency.
type EnhancementCache struct {
	cache  Cache
	ttl    time.Duration
	logger logging.Logger
}

// NewEnhancementCache wraps cache for injection into the engine.
func NewEnhancementCache(cache Cache, ttl time.Duration, log logging.Logger) *EnhancementCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &EnhancementCache{cache: cache, ttl: ttl, logger: log}
}

func (e *EnhancementCache) Get(key string) (*trait_inference.EnhancedSVO, bool) {
	var result trait_inference.EnhancedSVO
	err := e.cache.Get(context.Background(), "enhance:"+key, &result)
	if err == ErrCacheMiss {
		return nil, false
	}
	if err != nil {
		e.logger.Warn("enhancement cache read failed", logging.Err(err))
		return nil, false
	}
	return &result, true
}

func (e *EnhancementCache) Put(key string, value *trait_inference.EnhancedSVO) {
	if err := e.cache.Set(context.Background(), "enhance:"+key, value, e.ttl); err != nil {
		e.logger.Warn("enhancement cache write failed", logging.Err(err))
	}
}

// Len is not tracked against Redis; the server enforces expiry instead of a
// bounded entry count.
func (e *EnhancementCache) Len() int {
	return 0
}
