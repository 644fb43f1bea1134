package memory_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auxo-ai/knowbase-go/pkg/memory"
)

// wordEstimator counts whitespace-separated words, making token budgets in
// tests easy to reason about.
type wordEstimator struct{}

func (wordEstimator) EstimateTokens(text string) int {
	return len(strings.Fields(text))
}

func TestCreateContextWindowBudget(t *testing.T) {
	manager := memory.NewManager(memory.WithEstimator(wordEstimator{}))

	manager.StoreItem(&memory.Item{Content: "one two three", Importance: 0.9})
	manager.StoreItem(&memory.Item{Content: "four five six", Importance: 0.8})
	manager.StoreItem(&memory.Item{Content: "seven eight nine", Importance: 0.7})

	window := manager.CreateContextWindow(6, memory.StrategyImportance)

	require.Len(t, window.Items, 2, "third item would overflow the budget")
	assert.Equal(t, 6, window.CurrentTokens)
	assert.Equal(t, 6, window.MaxTokens)
	assert.LessOrEqual(t, window.CurrentTokens, window.MaxTokens)
	assert.Equal(t, memory.StrategyImportance, window.Strategy)
	assert.NotEmpty(t, window.ID)
	assert.False(t, window.CreatedAt.IsZero())

	total := 0
	for _, item := range window.Items {
		total += item.TokenCount
	}
	assert.Equal(t, window.CurrentTokens, total, "current tokens equals the sum of item counts")
}

func TestCreateContextWindowGreedyStopsAtFirstOverflow(t *testing.T) {
	manager := memory.NewManager(memory.WithEstimator(wordEstimator{}))

	// The five-word item overflows a budget of 4; the later two-word item
	// would fit but greedy selection stops at the first overflow.
	manager.StoreItem(&memory.Item{Content: "a b c", Importance: 0.9})
	manager.StoreItem(&memory.Item{Content: "d e f g h", Importance: 0.8})
	manager.StoreItem(&memory.Item{Content: "i j", Importance: 0.7})

	window := manager.CreateContextWindow(4, memory.StrategyImportance)

	require.Len(t, window.Items, 1)
	assert.Equal(t, "a b c", window.Items[0].Content)
	assert.Equal(t, 3, window.CurrentTokens)
}

func TestCreateContextWindowImportanceOrder(t *testing.T) {
	manager := memory.NewManager(memory.WithEstimator(wordEstimator{}))

	manager.StoreItem(&memory.Item{Content: "low", Importance: 0.1})
	manager.StoreItem(&memory.Item{Content: "high", Importance: 0.9})
	manager.StoreItem(&memory.Item{Content: "mid", Importance: 0.5})

	window := manager.CreateContextWindow(100, memory.StrategyImportance)

	require.Len(t, window.Items, 3)
	assert.Equal(t, "high", window.Items[0].Content)
	assert.Equal(t, "mid", window.Items[1].Content)
	assert.Equal(t, "low", window.Items[2].Content)
}

func TestCreateContextWindowRecencyOrder(t *testing.T) {
	manager := memory.NewManager(memory.WithEstimator(wordEstimator{}))

	stale := manager.StoreItem(&memory.Item{
		Content:      "stale",
		LastAccessed: time.Now().Add(-2 * time.Hour),
	})
	fresh := manager.StoreItem(&memory.Item{Content: "fresh"})

	window := manager.CreateContextWindow(100, memory.StrategyRecency)

	require.Len(t, window.Items, 2)
	assert.Equal(t, fresh, window.Items[0].ItemID)
	assert.Equal(t, stale, window.Items[1].ItemID)
}

func TestCreateContextWindowUsesShortTermOnly(t *testing.T) {
	manager := memory.NewManager(memory.WithEstimator(wordEstimator{}))

	manager.StoreItem(&memory.Item{Content: "working set"})
	manager.StoreItem(&memory.Item{Content: "archived", Tier: memory.TierLongTerm})

	window := manager.CreateContextWindow(100, memory.StrategyImportanceRecency)

	require.Len(t, window.Items, 1)
	assert.Equal(t, "working set", window.Items[0].Content)
	assert.Equal(t, "memory", window.Items[0].Source)
}

func TestCreateContextWindowEmpty(t *testing.T) {
	manager := memory.NewManager()

	window := manager.CreateContextWindow(100, memory.StrategyImportanceRecency)

	assert.Empty(t, window.Items)
	assert.Zero(t, window.CurrentTokens)
}

func TestHeuristicEstimator(t *testing.T) {
	estimator := memory.HeuristicEstimator{}

	assert.Equal(t, 1, estimator.EstimateTokens(""))
	assert.Equal(t, 2, estimator.EstimateTokens("hello"))
	assert.Equal(t, 4, estimator.EstimateTokens("hello world!"))

	// Monotonic: longer text never estimates fewer tokens.
	short := estimator.EstimateTokens("abc")
	long := estimator.EstimateTokens("abcdefghij")
	assert.GreaterOrEqual(t, long, short)
}
