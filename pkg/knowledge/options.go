package knowledge

import (
	"github.com/auxo-ai/knowbase-go/pkg/llm"
	"github.com/auxo-ai/knowbase-go/pkg/logging"
	"github.com/auxo-ai/knowbase-go/pkg/memory"
	"github.com/auxo-ai/knowbase-go/pkg/retrieval"
)

// Option configures a Module at construction time.
type Option func(*Module)

// WithReasoner sets the reasoning provider used by the verification hooks
// (ValidateKnowledge, FactCheck, CheckConsistency). Without one the hooks
// return optimistic fixed results.
func WithReasoner(provider llm.Provider) Option {
	return func(m *Module) {
		m.reasoner = provider
	}
}

// WithLogger sets the logger used by the module and its components.
// Defaults to a no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(m *Module) {
		m.logger = l
	}
}

// WithEstimator sets the token estimator used for context windows.
func WithEstimator(e memory.Estimator) Option {
	return func(m *Module) {
		m.estimator = e
	}
}

// WithTokenizer sets the tokenizer used for keyword scoring.
func WithTokenizer(t retrieval.Tokenizer) Option {
	return func(m *Module) {
		m.tokenizer = t
	}
}

// WithCollectionName overrides the default vector collection name.
func WithCollectionName(name string) Option {
	return func(m *Module) {
		m.collectionName = name
	}
}

// AddOption is a function type for configuring AddKnowledgeItem.
type AddOption func(*AddOptions)

// AddOptions contains configuration options for AddKnowledgeItem.
type AddOptions struct {
	// Confidence is the confidence in the knowledge, in [0,1].
	// Defaults to 0.8.
	Confidence float64

	// Metadata contains additional metadata for the item.
	Metadata map[string]any
}

// WithConfidence sets the confidence for an added item.
//
// Example:
//
//	id, _ := kb.AddKnowledgeItem(ctx, "water boils at 100C", "physics",
//	    knowledge.WithConfidence(0.95))
func WithConfidence(confidence float64) AddOption {
	return func(opts *AddOptions) {
		opts.Confidence = confidence
	}
}

// WithMetadata sets metadata for an added item.
func WithMetadata(metadata map[string]any) AddOption {
	return func(opts *AddOptions) {
		opts.Metadata = metadata
	}
}

func applyAddOptions(opts []AddOption) *AddOptions {
	options := &AddOptions{Confidence: 0.8}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// QueryOption is a function type for configuring QueryKnowledge.
type QueryOption func(*QueryOptions)

// QueryOptions contains configuration options for QueryKnowledge.
type QueryOptions struct {
	// Type selects the search strategy. Defaults to semantic.
	Type QueryType

	// Filters restricts eligible items.
	Filters *Filters

	// TopK is the maximum number of results. Defaults to 5.
	TopK int

	// Threshold is the minimum score a result must reach.
	Threshold float64
}

// WithQueryType sets the search strategy.
//
// Example:
//
//	resp, _ := kb.QueryKnowledge(ctx, "red car", knowledge.WithQueryType(knowledge.QueryHybrid))
func WithQueryType(queryType QueryType) QueryOption {
	return func(opts *QueryOptions) {
		opts.Type = queryType
	}
}

// WithFilters sets the query filters.
func WithFilters(filters *Filters) QueryOption {
	return func(opts *QueryOptions) {
		opts.Filters = filters
	}
}

// WithTopK sets the maximum number of results.
func WithTopK(topK int) QueryOption {
	return func(opts *QueryOptions) {
		opts.TopK = topK
	}
}

// WithThreshold sets the minimum result score.
func WithThreshold(threshold float64) QueryOption {
	return func(opts *QueryOptions) {
		opts.Threshold = threshold
	}
}

func applyQueryOptions(opts []QueryOption) *QueryOptions {
	options := &QueryOptions{Type: QuerySemantic, TopK: 5}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WindowOption is a function type for configuring CreateContextWindow.
type WindowOption func(*WindowOptions)

// WindowOptions contains configuration options for context-window builds.
type WindowOptions struct {
	// MaxTokens is the token budget. Defaults to 4000.
	MaxTokens int

	// Strategy is the selection order. Defaults to importance_recency.
	Strategy memory.Strategy
}

// WithMaxTokens sets the window token budget.
func WithMaxTokens(maxTokens int) WindowOption {
	return func(opts *WindowOptions) {
		opts.MaxTokens = maxTokens
	}
}

// WithStrategy sets the window selection strategy.
func WithStrategy(strategy memory.Strategy) WindowOption {
	return func(opts *WindowOptions) {
		opts.Strategy = strategy
	}
}

func applyWindowOptions(opts []WindowOption) *WindowOptions {
	options := &WindowOptions{
		MaxTokens: 4000,
		Strategy:  memory.StrategyImportanceRecency,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
