package annotator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/fmuoria/resume-matcher/internal/models"
)

// DefaultCacheSize is the number of annotated documents kept per annotator
const DefaultCacheSize = 256

// Cached wraps an Annotator with an LRU cache keyed by model and text.
// Failed calls are not cached.
type Cached struct {
	inner Annotator
	cache *lru.Cache[string, []models.EntityCandidate]
}

// NewCached creates a cached annotator; size <= 0 selects DefaultCacheSize
func NewCached(inner Annotator, size int) *Cached {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []models.EntityCandidate](size)
	if err != nil {
		// only returned for a non-positive size, excluded above
		panic(err)
	}
	return &Cached{
		inner: inner,
		cache: cache,
	}
}

// ModelName returns the wrapped model's name
func (c *Cached) ModelName() string {
	return c.inner.ModelName()
}

// Len returns the number of cached documents
func (c *Cached) Len() int {
	return c.cache.Len()
}

func (c *Cached) cacheKey(text string) string {
	hash := sha256.Sum256([]byte(c.inner.ModelName() + "\x00" + text))
	return hex.EncodeToString(hash[:])
}

// Extract returns a copy of the cached result, annotating on a miss
func (c *Cached) Extract(ctx context.Context, text string) ([]models.EntityCandidate, error) {
	key := c.cacheKey(text)
	if cached, ok := c.cache.Get(key); ok {
		return cloneCandidates(cached), nil
	}

	candidates, err := c.inner.Extract(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Add(key, cloneCandidates(candidates))
	return candidates, nil
}

func cloneCandidates(in []models.EntityCandidate) []models.EntityCandidate {
	out := make([]models.EntityCandidate, len(in))
	copy(out, in)
	return out
}

type timeoutAnnotator struct {
	inner   Annotator
	timeout time.Duration
}

// WithTimeout bounds every Extract call of inner by timeout.
// A non-positive timeout returns inner unchanged.
func WithTimeout(inner Annotator, timeout time.Duration) Annotator {
	if timeout <= 0 {
		return inner
	}
	return &timeoutAnnotator{inner: inner, timeout: timeout}
}

func (t *timeoutAnnotator) ModelName() string {
	return t.inner.ModelName()
}

func (t *timeoutAnnotator) Extract(ctx context.Context, text string) ([]models.EntityCandidate, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Extract(ctx, text)
}
