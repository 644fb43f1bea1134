package embedder_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auxo-ai/knowbase-go/pkg/embedder"
	"github.com/auxo-ai/knowbase-go/pkg/embedder/mock"
)

// countingEmbedder counts provider calls so cache hits are observable.
type countingEmbedder struct {
	*mock.Embedder
	embedCalls int
	batchCalls int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	c.embedCalls++
	return c.Embedder.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	c.batchCalls++
	return c.Embedder.EmbedBatch(ctx, texts)
}

func TestCachedEmbedServesRepeatsFromCache(t *testing.T) {
	counting := &countingEmbedder{Embedder: mock.NewWithDimensions(16)}
	cached, err := embedder.NewCached(counting, nil)
	require.NoError(t, err)
	defer cached.Close()
	ctx := context.Background()

	first, err := cached.Embed(ctx, "hello")
	require.NoError(t, err)
	cached.Wait()

	second, err := cached.Embed(ctx, "hello")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, counting.embedCalls, "second call is a cache hit")

	_, err = cached.Embed(ctx, "different")
	require.NoError(t, err)
	assert.Equal(t, 2, counting.embedCalls)
}

func TestCachedEmbedBatchOnlyFetchesMisses(t *testing.T) {
	counting := &countingEmbedder{Embedder: mock.NewWithDimensions(16)}
	cached, err := embedder.NewCached(counting, &embedder.CacheConfig{MaxEntries: 128})
	require.NoError(t, err)
	defer cached.Close()
	ctx := context.Background()

	warm, err := cached.Embed(ctx, "warm")
	require.NoError(t, err)
	cached.Wait()

	vectors, err := cached.EmbedBatch(ctx, []string{"warm", "cold"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)

	assert.Equal(t, warm, vectors[0], "cached entry survives in batch position")
	assert.Len(t, vectors[1], 16)
	assert.Equal(t, 1, counting.batchCalls)
	assert.Equal(t, 1, counting.embedCalls, "the warm text never reaches the provider again")
}

func TestCachedDimensions(t *testing.T) {
	cached, err := embedder.NewCached(mock.NewWithDimensions(32), nil)
	require.NoError(t, err)
	defer cached.Close()

	assert.Equal(t, 32, cached.Dimensions())
}

func TestMockEmbedderDeterminism(t *testing.T) {
	m := mock.New()
	ctx := context.Background()

	a, err := m.Embed(ctx, "stable text")
	require.NoError(t, err)
	b, err := m.Embed(ctx, "stable text")
	require.NoError(t, err)
	assert.Equal(t, a, b, "identical input embeds identically")

	c, err := m.Embed(ctx, "other text")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	var norm float64
	for _, v := range a {
		norm += v * v
	}
	assert.InDelta(t, 1.0, norm, 1e-9, "mock vectors are unit length")
	assert.Len(t, a, embedder.DefaultDimensions)
}
