package memory

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Strategy names the ordering used to select context-window items.
type Strategy string

const (
	// StrategyImportanceRecency orders by 0.7*importance + 0.3*recency.
	StrategyImportanceRecency Strategy = "importance_recency"

	// StrategyImportance orders by importance only.
	StrategyImportance Strategy = "importance"

	// StrategyRecency orders by recency only.
	StrategyRecency Strategy = "recency"
)

// ContextItem is one entry of an assembled context window.
type ContextItem struct {
	// ItemID references the memory item the entry was built from.
	ItemID string

	// Content is the item's text content.
	Content string

	// Importance is the item's importance score in [0,1].
	Importance float64

	// Recency is the decayed recency score in [0,1].
	Recency float64

	// TokenCount is the estimated token footprint of Content.
	TokenCount int

	// Source names where the entry came from ("memory").
	Source string

	// Metadata carries the item's metadata.
	Metadata map[string]any
}

// ContextWindow is a token-budget-constrained, ranked subset of short-term
// memory assembled for downstream prompting.
//
// Invariant: the sum of item token counts equals CurrentTokens, which never
// exceeds MaxTokens.
type ContextWindow struct {
	// ID is the unique identifier of the window.
	ID string

	// Items holds the selected entries in strategy order.
	Items []ContextItem

	// MaxTokens is the token budget the window was built under.
	MaxTokens int

	// CurrentTokens is the total token footprint of Items.
	CurrentTokens int

	// Strategy is the ordering strategy the window was built with.
	Strategy Strategy

	// CreatedAt is when the window was assembled.
	CreatedAt time.Time
}

// RecencyScore converts a last-accessed timestamp into a decayed score in
// [0,1]: 1.0 now, 0.5 after one hour, 0.25 after two hours.
func RecencyScore(lastAccessed time.Time) float64 {
	elapsed := time.Since(lastAccessed).Seconds()
	recency := math.Exp2(-elapsed / 3600.0)
	return math.Max(0.0, math.Min(1.0, recency))
}

func sortKey(item ContextItem, strategy Strategy) float64 {
	switch strategy {
	case StrategyImportance:
		return item.Importance
	case StrategyRecency:
		return item.Recency
	default:
		return item.Importance*0.7 + item.Recency*0.3
	}
}

// CreateContextWindow assembles a context window from every short-term item.
//
// Items are ordered by the strategy's sort key and accepted greedily while
// the budget holds; the first item that would overflow maxTokens stops the
// selection. This is a greedy knapsack, not an optimal one: no backtracking
// or repacking happens.
func (m *Manager) CreateContextWindow(maxTokens int, strategy Strategy) *ContextWindow {
	m.mu.RLock()
	defer m.mu.RUnlock()

	candidates := make([]ContextItem, 0, len(m.shortTerm.items))
	for _, id := range m.shortTerm.order {
		item := m.shortTerm.items[id]
		candidates = append(candidates, ContextItem{
			ItemID:     item.ID,
			Content:    item.Content,
			Importance: item.Importance,
			Recency:    RecencyScore(item.LastAccessed),
			TokenCount: m.estimator.EstimateTokens(item.Content),
			Source:     "memory",
			Metadata:   item.Metadata,
		})
	}

	// Stable sort over insertion order keeps equal keys deterministic.
	sort.SliceStable(candidates, func(i, j int) bool {
		return sortKey(candidates[i], strategy) > sortKey(candidates[j], strategy)
	})

	var selected []ContextItem
	currentTokens := 0
	for _, candidate := range candidates {
		if currentTokens+candidate.TokenCount > maxTokens {
			break
		}
		selected = append(selected, candidate)
		currentTokens += candidate.TokenCount
	}

	return &ContextWindow{
		ID:            uuid.NewString(),
		Items:         selected,
		MaxTokens:     maxTokens,
		CurrentTokens: currentTokens,
		Strategy:      strategy,
		CreatedAt:     time.Now(),
	}
}
