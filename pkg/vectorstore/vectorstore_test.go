package vectorstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auxo-ai/knowbase-go/pkg/vectorstore"
)

func TestCreateCollection(t *testing.T) {
	store := vectorstore.New()

	id, err := store.CreateCollection("facts", 3, "")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	collection, ok := store.Collection(id)
	require.True(t, ok)
	assert.Equal(t, "facts", collection.Name)
	assert.Equal(t, 3, collection.Dimension)
	assert.Equal(t, "flat", collection.IndexKind, "index kind should default to flat")
	assert.False(t, collection.CreatedAt.IsZero())
}

func TestCreateCollectionInvalidDimension(t *testing.T) {
	store := vectorstore.New()

	_, err := store.CreateCollection("bad", 0, "")
	assert.ErrorIs(t, err, vectorstore.ErrInvalidDimension)

	_, err = store.CreateCollection("bad", -1, "")
	assert.ErrorIs(t, err, vectorstore.ErrInvalidDimension)
}

func TestAddVector(t *testing.T) {
	store := vectorstore.New()
	collectionID, err := store.CreateCollection("facts", 3, "")
	require.NoError(t, err)

	entryID, err := store.AddVector(collectionID, []float64{1, 0, 0}, "item-1", map[string]any{"source": "doc"})
	require.NoError(t, err)

	entry, ok := store.Entry(collectionID, entryID)
	require.True(t, ok)
	assert.Equal(t, "item-1", entry.ItemID)
	assert.Equal(t, []float64{1, 0, 0}, entry.Vector)
	assert.Equal(t, "doc", entry.Metadata["source"])

	locations := store.ItemVectors("item-1")
	require.Len(t, locations, 1, "reverse index should record the entry")
	assert.Equal(t, collectionID, locations[0][0])
	assert.Equal(t, entryID, locations[0][1])
}

func TestAddVectorDimensionMismatch(t *testing.T) {
	store := vectorstore.New()
	collectionID, err := store.CreateCollection("facts", 3, "")
	require.NoError(t, err)

	_, err = store.AddVector(collectionID, []float64{1, 0}, "item-1", nil)
	assert.ErrorIs(t, err, vectorstore.ErrDimensionMismatch)

	// A rejected vector must leave the store unchanged.
	stats := store.Stats()
	assert.Equal(t, 0, stats.Entries)
	assert.Empty(t, store.ItemVectors("item-1"))
}

func TestAddVectorUnknownCollection(t *testing.T) {
	store := vectorstore.New()

	_, err := store.AddVector("missing", []float64{1, 0, 0}, "item-1", nil)
	assert.ErrorIs(t, err, vectorstore.ErrCollectionNotFound)
}

func TestCosineSimilarity(t *testing.T) {
	v := []float64{0.3, -0.2, 0.9}
	neg := []float64{-0.3, 0.2, -0.9}

	assert.InDelta(t, 1.0, vectorstore.CosineSimilarity(v, v), 1e-9, "identical vectors score 1")
	assert.InDelta(t, -1.0, vectorstore.CosineSimilarity(v, neg), 1e-9, "opposite vectors score -1")
	assert.Equal(t, 0.0, vectorstore.CosineSimilarity(v, []float64{0, 0, 0}), "zero magnitude scores 0")
	assert.Equal(t, 0.0, vectorstore.CosineSimilarity(v, []float64{1, 0}), "length mismatch scores 0")
	assert.Equal(t, 0.0, vectorstore.CosineSimilarity(nil, nil))
}

func TestSearchVectorsOrdering(t *testing.T) {
	store := vectorstore.New()
	collectionID, err := store.CreateCollection("facts", 3, "")
	require.NoError(t, err)

	// Query aligns exactly with A and is orthogonal to B.
	_, err = store.AddVector(collectionID, []float64{1, 0, 0}, "A", nil)
	require.NoError(t, err)
	_, err = store.AddVector(collectionID, []float64{0, 1, 0}, "B", nil)
	require.NoError(t, err)

	matches, err := store.SearchVectors(collectionID, []float64{1, 0, 0}, nil)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "A", matches[0].ItemID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
	assert.Equal(t, "B", matches[1].ItemID)
	assert.InDelta(t, 0.0, matches[1].Score, 1e-9)
}

func TestSearchVectorsTopKAndThreshold(t *testing.T) {
	store := vectorstore.New()
	collectionID, err := store.CreateCollection("facts", 2, "")
	require.NoError(t, err)

	_, err = store.AddVector(collectionID, []float64{1, 0}, "exact", nil)
	require.NoError(t, err)
	_, err = store.AddVector(collectionID, []float64{1, 1}, "close", nil)
	require.NoError(t, err)
	_, err = store.AddVector(collectionID, []float64{0, 1}, "orthogonal", nil)
	require.NoError(t, err)

	matches, err := store.SearchVectors(collectionID, []float64{1, 0}, &vectorstore.SearchOptions{TopK: 2})
	require.NoError(t, err)
	require.Len(t, matches, 2, "top-k should truncate results")
	assert.Equal(t, "exact", matches[0].ItemID)
	assert.Equal(t, "close", matches[1].ItemID)

	matches, err = store.SearchVectors(collectionID, []float64{1, 0}, &vectorstore.SearchOptions{TopK: 10, Threshold: 0.5})
	require.NoError(t, err)
	require.Len(t, matches, 2, "threshold should drop orthogonal match")
	for _, m := range matches {
		assert.GreaterOrEqual(t, m.Score, 0.5)
	}
}

func TestSearchVectorsTieBreakInsertionOrder(t *testing.T) {
	store := vectorstore.New()
	collectionID, err := store.CreateCollection("facts", 2, "")
	require.NoError(t, err)

	// Both entries score identically against the query.
	_, err = store.AddVector(collectionID, []float64{1, 1}, "first", nil)
	require.NoError(t, err)
	_, err = store.AddVector(collectionID, []float64{2, 2}, "second", nil)
	require.NoError(t, err)

	matches, err := store.SearchVectors(collectionID, []float64{1, 0}, nil)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "first", matches[0].ItemID, "ties resolve by insertion order")
	assert.Equal(t, "second", matches[1].ItemID)
}

func TestSearchVectorsMetadataFilter(t *testing.T) {
	store := vectorstore.New()
	collectionID, err := store.CreateCollection("facts", 2, "")
	require.NoError(t, err)

	_, err = store.AddVector(collectionID, []float64{1, 0}, "wiki", map[string]any{"source": "wiki"})
	require.NoError(t, err)
	_, err = store.AddVector(collectionID, []float64{1, 0}, "news", map[string]any{"source": "news"})
	require.NoError(t, err)

	matches, err := store.SearchVectors(collectionID, []float64{1, 0}, &vectorstore.SearchOptions{
		MetadataFilter: map[string]any{"source": "wiki"},
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "wiki", matches[0].ItemID)
}

func TestSearchVectorsQueryDimensionMismatch(t *testing.T) {
	store := vectorstore.New()
	collectionID, err := store.CreateCollection("facts", 3, "")
	require.NoError(t, err)

	_, err = store.SearchVectors(collectionID, []float64{1, 0}, nil)
	assert.ErrorIs(t, err, vectorstore.ErrDimensionMismatch)
}

func TestSearchItemsDeduplicates(t *testing.T) {
	store := vectorstore.New()
	collectionID, err := store.CreateCollection("facts", 2, "")
	require.NoError(t, err)

	// Two chunks of the same item: best chunk score represents the item.
	_, err = store.AddVector(collectionID, []float64{1, 0}, "item-1", nil)
	require.NoError(t, err)
	_, err = store.AddVector(collectionID, []float64{1, 1}, "item-1", nil)
	require.NoError(t, err)
	_, err = store.AddVector(collectionID, []float64{0, 1}, "item-2", nil)
	require.NoError(t, err)

	matches, err := store.SearchItems(collectionID, []float64{1, 0}, nil)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "item-1", matches[0].ItemID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9, "item score is its best entry score")
	assert.Equal(t, "item-2", matches[1].ItemID)
}

func TestDeleteVector(t *testing.T) {
	store := vectorstore.New()
	collectionID, err := store.CreateCollection("facts", 2, "")
	require.NoError(t, err)
	entryID, err := store.AddVector(collectionID, []float64{1, 0}, "item-1", nil)
	require.NoError(t, err)

	assert.True(t, store.DeleteVector(collectionID, entryID))
	assert.False(t, store.DeleteVector(collectionID, entryID), "second delete reports absence")

	_, ok := store.Entry(collectionID, entryID)
	assert.False(t, ok)
	assert.Empty(t, store.ItemVectors("item-1"), "reverse index must not keep dangling refs")
}

func TestDeleteItemVectorsAcrossCollections(t *testing.T) {
	store := vectorstore.New()
	first, err := store.CreateCollection("facts", 2, "")
	require.NoError(t, err)
	second, err := store.CreateCollection("summaries", 2, "")
	require.NoError(t, err)

	_, err = store.AddVector(first, []float64{1, 0}, "item-1", nil)
	require.NoError(t, err)
	_, err = store.AddVector(second, []float64{0, 1}, "item-1", nil)
	require.NoError(t, err)
	_, err = store.AddVector(first, []float64{1, 1}, "item-2", nil)
	require.NoError(t, err)

	deleted := store.DeleteItemVectors("item-1")
	assert.Equal(t, 2, deleted)
	assert.Empty(t, store.ItemVectors("item-1"))

	assert.Equal(t, 0, store.DeleteItemVectors("item-1"), "repeat delete removes nothing")
	assert.Equal(t, 0, store.DeleteItemVectors("missing"))

	stats := store.Stats()
	assert.Equal(t, 1, stats.Entries, "unrelated item survives")
	assert.Equal(t, 1, stats.Items)
}

func TestDeleteCollection(t *testing.T) {
	store := vectorstore.New()
	collectionID, err := store.CreateCollection("facts", 2, "")
	require.NoError(t, err)
	_, err = store.AddVector(collectionID, []float64{1, 0}, "item-1", nil)
	require.NoError(t, err)

	assert.True(t, store.DeleteCollection(collectionID))
	assert.False(t, store.DeleteCollection(collectionID))

	_, ok := store.Collection(collectionID)
	assert.False(t, ok)
	assert.Empty(t, store.ItemVectors("item-1"))

	_, err = store.SearchVectors(collectionID, []float64{1, 0}, nil)
	assert.ErrorIs(t, err, vectorstore.ErrCollectionNotFound)
}

func TestStats(t *testing.T) {
	store := vectorstore.New()
	assert.Equal(t, vectorstore.Stats{}, store.Stats())

	collectionID, err := store.CreateCollection("facts", 2, "")
	require.NoError(t, err)
	_, err = store.AddVector(collectionID, []float64{1, 0}, "item-1", nil)
	require.NoError(t, err)
	_, err = store.AddVector(collectionID, []float64{0, 1}, "item-1", nil)
	require.NoError(t, err)

	stats := store.Stats()
	assert.Equal(t, 1, stats.Collections)
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 1, stats.Items, "items counts distinct item IDs")
}
