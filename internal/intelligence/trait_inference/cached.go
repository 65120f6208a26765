package trait_inference

import (
	"context"
	"strconv"

	"github.com/turtacn/PhytoTrait-Intelligence/pkg/errors"
	"github.com/turtacn/PhytoTrait-Intelligence/pkg/types/svo"
)

// cachedEngine wraps an Engine with a read-through EnhancementCache.
// Results are immutable once built, so hits are returned without copying.
type cachedEngine struct {
	inner Engine
	cache EnhancementCache
}

// NewCachedEngine decorates inner with cache.  A nil cache returns inner
// unchanged.
func NewCachedEngine(inner Engine, cache EnhancementCache) Engine {
	if cache == nil {
		return inner
	}
	return &cachedEngine{inner: inner, cache: cache}
}

func (c *cachedEngine) Enhance(ctx context.Context, tuple svo.Tuple, contextText string) (*EnhancedSVO, error) {
	if err := tuple.Validate(); err != nil {
		return nil, err
	}
	key := CacheKey(tuple, contextText)
	if hit, ok := c.cache.Get(key); ok {
		return hit, nil
	}
	result, err := c.inner.Enhance(ctx, tuple, contextText)
	if err != nil {
		return nil, err
	}
	c.cache.Put(key, result)
	return result, nil
}

func (c *cachedEngine) EnhanceBatch(ctx context.Context, tuples []svo.Tuple, contexts []string) ([]*EnhancedSVO, error) {
	if len(tuples) == 0 {
		return nil, errors.New(errors.ErrCodeSVOEmptyBatch, "batch contains no tuples")
	}
	if len(contexts) > len(tuples) {
		return nil, errors.New(errors.ErrCodeSVOContextCount, "more contexts than tuples")
	}
	results := make([]*EnhancedSVO, 0, len(tuples))
	for i, tuple := range tuples {
		contextText := ""
		if i < len(contexts) {
			contextText = contexts[i]
		}
		result, err := c.Enhance(ctx, tuple, contextText)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeBatchAborted, "batch aborted").
				WithDetail("tuple index " + strconv.Itoa(i))
		}
		results = append(results, result)
	}
	return results, nil
}
