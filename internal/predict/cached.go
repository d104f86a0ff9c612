package predict

import (
	"context"
	"time"

	"github.com/ppiankov/foldswitch/internal/cache"
)

// Cached serves repeated sequences from a cache before asking the wrapped
// provider
type Cached struct {
	inner Provider
	cache cache.Cache
	ttl   time.Duration
}

// NewCached wraps inner; ttl 0 uses the cache default
func NewCached(inner Provider, c cache.Cache, ttl time.Duration) *Cached {
	return &Cached{inner: inner, cache: c, ttl: ttl}
}

// Name is the wrapped provider's name
func (c *Cached) Name() string {
	return c.inner.Name()
}

// Predict returns a cached prediction or delegates and stores the result
func (c *Cached) Predict(ctx context.Context, req Request) (*Prediction, error) {
	key := cache.PredictionKey(c.inner.Name(), req.Sequence)
	if labels, ok := c.cache.Get(key); ok {
		return &Prediction{
			Accession: req.Accession,
			Labels:    string(labels),
			Source:    "cache",
		}, nil
	}

	pred, err := c.inner.Predict(ctx, req)
	if err != nil {
		return nil, err
	}
	// A failed write only costs a resubmission next time.
	_ = c.cache.Set(key, []byte(pred.Labels), c.ttl)
	return pred, nil
}
