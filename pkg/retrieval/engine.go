package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/auxo-ai/knowbase-go/pkg/embedder"
	"github.com/auxo-ai/knowbase-go/pkg/logging"
	"github.com/auxo-ai/knowbase-go/pkg/vectorstore"
)

// Engine executes knowledge queries against an item catalog.
//
// The engine is stateless apart from its default collection: each query is a
// single dispatch on the query type with no transitions.
type Engine struct {
	store     *vectorstore.Store
	embedder  embedder.Provider
	tokenizer Tokenizer
	logger    logging.Logger

	defaultCollectionID string
}

// Option configures an Engine.
type Option func(*Engine)

// WithTokenizer sets the tokenizer used for keyword scoring. Defaults to
// whitespace tokenization.
func WithTokenizer(t Tokenizer) Option {
	return func(e *Engine) {
		e.tokenizer = t
	}
}

// WithLogger sets the logger used by the engine. Defaults to a no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates a retrieval engine over the given vector store and
// embedding provider.
func NewEngine(store *vectorstore.Store, provider embedder.Provider, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		embedder:  provider,
		tokenizer: WhitespaceTokenizer{},
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetDefaultCollection sets the vector collection used by semantic search.
func (e *Engine) SetDefaultCollection(collectionID string) {
	e.defaultCollectionID = collectionID
}

// ProcessQuery executes a query against the catalog and returns a ranked,
// scored response. Unknown query types fall back to semantic search.
func (e *Engine) ProcessQuery(ctx context.Context, query *Query, catalog map[string]*Item) (*Response, error) {
	start := time.Now()
	if query.TopK <= 0 {
		query.TopK = 5
	}

	var (
		results []scored
		err     error
	)
	switch query.Type {
	case QueryKeyword:
		results = e.keywordSearch(query, catalog)
	case QueryHybrid:
		results, err = e.hybridSearch(ctx, query, catalog)
	case QueryExact:
		results = e.exactSearch(query, catalog)
	default:
		results, err = e.semanticSearch(ctx, query, catalog)
	}
	if err != nil {
		return nil, err
	}

	response := &Response{
		QueryID: query.ID,
		Items:   make([]*Item, 0, len(results)),
		Scores:  make(map[string]float64, len(results)),
		Metadata: ResponseMetadata{
			QueryType:   query.Type,
			Timestamp:   time.Now(),
			ResultCount: len(results),
			Duration:    time.Since(start),
		},
	}
	for _, r := range results {
		response.Items = append(response.Items, catalog[r.itemID])
		response.Scores[r.itemID] = r.score
	}

	e.logger.Debug("query processed", "type", string(query.Type), "results", len(results))
	return response, nil
}

// semanticSearch embeds the query and delegates to the vector store's
// item-level search on the default collection. A missing default collection
// is a caller error, not a fatal one: it yields an empty result.
func (e *Engine) semanticSearch(ctx context.Context, query *Query, catalog map[string]*Item) ([]scored, error) {
	if e.defaultCollectionID == "" {
		e.logger.Warn("no default collection set for semantic search")
		return nil, nil
	}

	queryVector, err := e.embedder.Embed(ctx, query.Text)
	if err != nil {
		return nil, fmt.Errorf("semantic search: embed query: %w", err)
	}

	matches, err := e.store.SearchItems(e.defaultCollectionID, queryVector, &vectorstore.SearchOptions{
		TopK:      query.TopK,
		Threshold: query.Threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}

	// Keep only catalog items that pass the shared filter predicate, so
	// semantic and keyword results rank over the same universe.
	var results []scored
	for _, m := range matches {
		item, ok := catalog[m.ItemID]
		if !ok || !query.Filters.Matches(item) {
			continue
		}
		results = append(results, scored{itemID: m.ItemID, score: m.Score})
	}
	return results, nil
}

// keywordSearch scores items by token-set overlap with the query:
// |intersection| / |query tokens|, zero when either set is empty.
func (e *Engine) keywordSearch(query *Query, catalog map[string]*Item) []scored {
	queryTokens := tokenSet(e.tokenizer, query.Text)

	var results []scored
	for itemID, item := range catalog {
		if !query.Filters.Matches(item) {
			continue
		}

		itemTokens := tokenSet(e.tokenizer, item.Content)
		score := 0.0
		if len(queryTokens) > 0 && len(itemTokens) > 0 {
			overlap := 0
			for token := range queryTokens {
				if _, ok := itemTokens[token]; ok {
					overlap++
				}
			}
			score = float64(overlap) / float64(len(queryTokens))
		}

		if score >= query.Threshold {
			results = append(results, scored{itemID: itemID, score: score})
		}
	}

	sortByScore(results)
	return truncate(results, query.TopK)
}

// hybridSearch combines semantic and keyword scores for the union of their
// matches as 0.7*semantic + 0.3*keyword, a missing side counting as zero.
func (e *Engine) hybridSearch(ctx context.Context, query *Query, catalog map[string]*Item) ([]scored, error) {
	// Both sides run over the full candidate budget; the threshold is
	// applied to the combined score only.
	side := *query
	side.Threshold = 0.0
	side.TopK = len(catalog)
	if side.TopK < query.TopK {
		side.TopK = query.TopK
	}

	semantic, err := e.semanticSearch(ctx, &side, catalog)
	if err != nil {
		return nil, err
	}
	keyword := e.keywordSearch(&side, catalog)

	semanticScores := make(map[string]float64, len(semantic))
	for _, r := range semantic {
		semanticScores[r.itemID] = r.score
	}
	keywordScores := make(map[string]float64, len(keyword))
	for _, r := range keyword {
		keywordScores[r.itemID] = r.score
	}

	union := make(map[string]struct{}, len(semanticScores)+len(keywordScores))
	for id := range semanticScores {
		union[id] = struct{}{}
	}
	for id := range keywordScores {
		union[id] = struct{}{}
	}

	var results []scored
	for itemID := range union {
		combined := semanticScores[itemID]*hybridSemanticWeight + keywordScores[itemID]*hybridKeywordWeight
		if combined >= query.Threshold {
			results = append(results, scored{itemID: itemID, score: combined})
		}
	}

	sortByScore(results)
	return truncate(results, query.TopK), nil
}

// exactSearch matches by case-insensitive substring containment. Scores are
// fixed at 1.0 and results are ordered by item ID: a deterministic, not
// relevance-based, ordering for reproducibility.
func (e *Engine) exactSearch(query *Query, catalog map[string]*Item) []scored {
	needle := strings.ToLower(query.Text)

	var results []scored
	for itemID, item := range catalog {
		if !query.Filters.Matches(item) {
			continue
		}
		if strings.Contains(strings.ToLower(item.Content), needle) {
			results = append(results, scored{itemID: itemID, score: 1.0})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].itemID < results[j].itemID
	})
	return truncate(results, query.TopK)
}

// ComputeRelevance returns the cosine similarity of the embedded query and
// item content. It is a pure function of its inputs with no side effects.
func (e *Engine) ComputeRelevance(ctx context.Context, query string, item *Item) (float64, error) {
	vectors, err := e.embedder.EmbedBatch(ctx, []string{query, item.Content})
	if err != nil {
		return 0, fmt.Errorf("compute relevance: %w", err)
	}
	return vectorstore.CosineSimilarity(vectors[0], vectors[1]), nil
}

// RankResults sorts items by relevance to the query, most relevant first.
// The input slice is not modified.
func (e *Engine) RankResults(ctx context.Context, items []*Item, query string) ([]*Item, error) {
	type rankedItem struct {
		item  *Item
		score float64
	}

	ranked := make([]rankedItem, 0, len(items))
	for _, item := range items {
		score, err := e.ComputeRelevance(ctx, query, item)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, rankedItem{item: item, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	out := make([]*Item, len(ranked))
	for i, r := range ranked {
		out[i] = r.item
	}
	return out, nil
}

// sortByScore sorts descending by score with item ID as the tie-break, so
// map-iteration order never leaks into results.
func sortByScore(results []scored) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].itemID < results[j].itemID
	})
}

func truncate(results []scored, topK int) []scored {
	if len(results) > topK {
		return results[:topK]
	}
	return results
}
