package vectorstore

import (
	"fmt"
	"math"
	"sort"
)

// SearchOptions contains options for search operations.
type SearchOptions struct {
	// TopK is the maximum number of results to return. Defaults to 5.
	TopK int

	// Threshold is the minimum similarity score a result must reach.
	Threshold float64

	// MetadataFilter excludes entries whose metadata does not contain
	// every listed key with an equal value.
	MetadataFilter map[string]any
}

func (o *SearchOptions) normalize() SearchOptions {
	opts := SearchOptions{TopK: 5}
	if o != nil {
		opts = *o
		if opts.TopK <= 0 {
			opts.TopK = 5
		}
	}
	return opts
}

// SearchVectors finds the entries most similar to the query vector.
//
// Entries are filtered by metadata equality, then by similarity >= threshold,
// sorted descending by score with ties broken by insertion order, and
// truncated to TopK. Fails with ErrCollectionNotFound or, when the query
// vector length differs from the collection dimension, ErrDimensionMismatch.
func (s *Store) SearchVectors(collectionID string, query []float64, opts *SearchOptions) ([]Match, error) {
	o := opts.normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.collections[collectionID]
	if !ok {
		return nil, fmt.Errorf("search vectors: %w: %s", ErrCollectionNotFound, collectionID)
	}
	if len(query) != state.collection.Dimension {
		return nil, fmt.Errorf("search vectors: %w: expected %d, got %d",
			ErrDimensionMismatch, state.collection.Dimension, len(query))
	}

	var matches []Match
	for _, entryID := range state.order {
		entry := state.entries[entryID]
		if !matchesMetadata(entry.Metadata, o.MetadataFilter) {
			continue
		}
		score := CosineSimilarity(query, entry.Vector)
		if score >= o.Threshold {
			matches = append(matches, Match{EntryID: entry.ID, ItemID: entry.ItemID, Score: score})
		}
	}

	// Stable sort over the insertion-ordered scan keeps ties deterministic.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > o.TopK {
		matches = matches[:o.TopK]
	}
	return matches, nil
}

// SearchItems finds the items most similar to the query vector.
//
// It wraps SearchVectors and deduplicates entries that map to the same item:
// the first occurrence wins, which is the item's highest score since the
// input is already sorted.
func (s *Store) SearchItems(collectionID string, query []float64, opts *SearchOptions) ([]Match, error) {
	matches, err := s.SearchVectors(collectionID, query, opts)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(matches))
	items := matches[:0]
	for _, m := range matches {
		if _, ok := seen[m.ItemID]; ok {
			continue
		}
		seen[m.ItemID] = struct{}{}
		items = append(items, m)
	}
	return items, nil
}

// CosineSimilarity returns dot(a,b)/(‖a‖·‖b‖), or 0.0 when either vector
// has zero magnitude or the lengths differ.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func matchesMetadata(metadata, filter map[string]any) bool {
	for key, want := range filter {
		got, ok := metadata[key]
		if !ok || got != want {
			return false
		}
	}
	return true
}
