package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/dgraph-io/ristretto"
)

// Cached wraps a Provider with an in-process, content-hash keyed cache.
//
// Embedding the same text twice is common: the facade embeds item content on
// insert and query text on every semantic search. The cache keeps repeated
// provider calls off the wire. Entries are keyed by the SHA-256 of the input
// text and costed by vector length.
type Cached struct {
	provider Provider
	cache    *ristretto.Cache
}

// CacheConfig controls the size of the embedding cache.
type CacheConfig struct {
	// MaxEntries is the approximate maximum number of cached vectors.
	// Defaults to 4096.
	MaxEntries int64
}

// NewCached creates a caching decorator around the given provider.
func NewCached(provider Provider, cfg *CacheConfig) (*Cached, error) {
	maxEntries := int64(4096)
	if cfg != nil && cfg.MaxEntries > 0 {
		maxEntries = cfg.MaxEntries
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries * int64(provider.Dimensions()),
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &Cached{provider: provider, cache: cache}, nil
}

// Embed returns the embedding for text, consulting the cache first.
func (c *Cached) Embed(ctx context.Context, text string) ([]float64, error) {
	key := contentHash(text)

	if v, ok := c.cache.Get(key); ok {
		if vec, ok := v.([]float64); ok {
			return vec, nil
		}
	}

	vec, err := c.provider.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, vec, int64(len(vec)))
	return vec, nil
}

// EmbedBatch embeds texts, serving cached entries and batching the rest.
func (c *Cached) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	var missing []string
	var missingIdx []int

	for i, text := range texts {
		if v, ok := c.cache.Get(contentHash(text)); ok {
			if vec, ok := v.([]float64); ok {
				out[i] = vec
				continue
			}
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) > 0 {
		vecs, err := c.provider.EmbedBatch(ctx, missing)
		if err != nil {
			return nil, err
		}
		for j, vec := range vecs {
			i := missingIdx[j]
			out[i] = vec
			c.cache.Set(contentHash(texts[i]), vec, int64(len(vec)))
		}
	}

	return out, nil
}

// Dimensions returns the wrapped provider's dimension.
func (c *Cached) Dimensions() int {
	return c.provider.Dimensions()
}

// Close releases the cache and closes the wrapped provider.
func (c *Cached) Close() error {
	c.cache.Close()
	return c.provider.Close()
}

// Wait blocks until pending cache writes are visible. Intended for tests.
func (c *Cached) Wait() {
	c.cache.Wait()
}

func contentHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
