// Package retrieval turns knowledge queries into ranked, scored responses
// against a catalog of knowledge items, using semantic, keyword, hybrid, or
// exact matching.
package retrieval

import "time"

// QueryType selects the search strategy for a query.
type QueryType string

const (
	// QuerySemantic searches by embedding similarity.
	QuerySemantic QueryType = "semantic"

	// QueryKeyword searches by token overlap.
	QueryKeyword QueryType = "keyword"

	// QueryHybrid combines semantic and keyword scores.
	QueryHybrid QueryType = "hybrid"

	// QueryExact searches by case-insensitive substring containment.
	QueryExact QueryType = "exact"
)

// Hybrid weighting is a fixed policy, not user-tunable.
const (
	hybridSemanticWeight = 0.7
	hybridKeywordWeight  = 0.3
)

// Item is a single knowledge item. Items are owned by the knowledge
// facade's catalog; the engine only reads them.
type Item struct {
	// ID is the unique identifier of the item.
	ID string

	// Content is the text content of the item.
	Content string

	// Source names where the knowledge came from.
	Source string

	// Confidence is the confidence in the knowledge, in [0,1].
	Confidence float64

	// Metadata contains additional structured information.
	Metadata map[string]any

	// CreatedAt is when the item was created.
	CreatedAt time.Time
}

// Query is a single knowledge query.
type Query struct {
	// ID is the unique identifier of the query.
	ID string

	// Text is the query text.
	Text string

	// Type selects the search strategy. Unknown types fall back to
	// semantic search.
	Type QueryType

	// Filters restricts which items are eligible.
	Filters *Filters

	// TopK is the maximum number of results. Defaults to 5.
	TopK int

	// Threshold is the minimum score a result must reach.
	Threshold float64
}

// ResponseMetadata describes how a response was produced.
type ResponseMetadata struct {
	// QueryType is the strategy that produced the response.
	QueryType QueryType

	// Timestamp is when the query was processed.
	Timestamp time.Time

	// ResultCount is the number of returned items.
	ResultCount int

	// Duration is how long processing took.
	Duration time.Duration
}

// Response carries the resolved items of a query plus per-item scores.
//
// Scores are in [0,1] except for exact matches, which are fixed at 1.0.
type Response struct {
	// QueryID references the query this response answers.
	QueryID string

	// Items holds the matched items in rank order.
	Items []*Item

	// Scores maps item ID to its score.
	Scores map[string]float64

	// Metadata describes the processing.
	Metadata ResponseMetadata
}

// scored pairs an item ID with its score during ranking.
type scored struct {
	itemID string
	score  float64
}
