package memory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auxo-ai/knowbase-go/pkg/memory"
)

func TestStoreItemDefaults(t *testing.T) {
	manager := memory.NewManager()

	id := manager.StoreItem(&memory.Item{Content: "remember this"})
	require.NotEmpty(t, id, "missing ID should be generated")

	item, ok := manager.RetrieveItem(id)
	require.True(t, ok)
	assert.Equal(t, memory.TierShortTerm, item.Tier, "unset tier defaults to short-term")
	assert.False(t, item.CreatedAt.IsZero())
	assert.False(t, item.LastAccessed.IsZero())
}

func TestStoreItemLongTerm(t *testing.T) {
	manager := memory.NewManager()

	id := manager.StoreItem(&memory.Item{Content: "archive", Tier: memory.TierLongTerm})

	item, ok := manager.RetrieveItem(id)
	require.True(t, ok)
	assert.Equal(t, memory.TierLongTerm, item.Tier)

	stats := manager.Stats()
	assert.Equal(t, 0, stats.ShortTermCount)
	assert.Equal(t, 1, stats.LongTermCount)
}

func TestRetrieveItemBumpsAccess(t *testing.T) {
	manager := memory.NewManager()
	id := manager.StoreItem(&memory.Item{Content: "tracked"})

	first, ok := manager.RetrieveItem(id)
	require.True(t, ok)
	second, ok := manager.RetrieveItem(id)
	require.True(t, ok)

	assert.Equal(t, 1, first.AccessCount)
	assert.Equal(t, 2, second.AccessCount)
	assert.False(t, second.LastAccessed.Before(first.LastAccessed))

	_, ok = manager.RetrieveItem("missing")
	assert.False(t, ok)
}

func TestUpdateItemPreservesTierAndCreation(t *testing.T) {
	manager := memory.NewManager()
	id := manager.StoreItem(&memory.Item{Content: "v1", Importance: 0.2})

	original, ok := manager.RetrieveItem(id)
	require.True(t, ok)

	updated := original
	updated.Content = "v2"
	updated.Importance = 0.9
	updated.Tier = memory.TierLongTerm // must be ignored
	require.True(t, manager.UpdateItem(updated))

	item, ok := manager.RetrieveItem(id)
	require.True(t, ok)
	assert.Equal(t, "v2", item.Content)
	assert.Equal(t, 0.9, item.Importance)
	assert.Equal(t, memory.TierShortTerm, item.Tier, "updates never move items between tiers")
	assert.Equal(t, original.CreatedAt, item.CreatedAt)

	assert.False(t, manager.UpdateItem(memory.Item{ID: "missing"}))
}

func TestDeleteItem(t *testing.T) {
	manager := memory.NewManager()
	id := manager.StoreItem(&memory.Item{Content: "ephemeral"})
	categoryID := manager.CreateCategory("notes", "", "")
	require.True(t, manager.AddItemToCategory(id, categoryID))

	assert.True(t, manager.DeleteItem(id))
	assert.False(t, manager.DeleteItem(id), "second delete reports absence")

	_, ok := manager.RetrieveItem(id)
	assert.False(t, ok)

	category, ok := manager.Category(categoryID)
	require.True(t, ok)
	assert.Empty(t, category.ItemIDs(), "deletion purges category references")
}

func TestTierMovesAreExclusive(t *testing.T) {
	manager := memory.NewManager()
	id := manager.StoreItem(&memory.Item{Content: "mover"})

	require.True(t, manager.MoveToLongTerm(id))
	item, ok := manager.RetrieveItem(id)
	require.True(t, ok)
	assert.Equal(t, memory.TierLongTerm, item.Tier)

	stats := manager.Stats()
	assert.Equal(t, 0, stats.ShortTermCount)
	assert.Equal(t, 1, stats.LongTermCount)
	assert.Equal(t, 1, stats.TotalItems, "a move never duplicates the item")

	assert.False(t, manager.MoveToLongTerm(id), "item is no longer in short-term")

	require.True(t, manager.MoveToShortTerm(id))
	item, ok = manager.RetrieveItem(id)
	require.True(t, ok)
	assert.Equal(t, memory.TierShortTerm, item.Tier)
	assert.False(t, manager.MoveToShortTerm(id))
}

func TestMoveMissingItem(t *testing.T) {
	manager := memory.NewManager()

	assert.False(t, manager.MoveToLongTerm("missing"))
	assert.False(t, manager.MoveToShortTerm("missing"))
}

func TestOptimizeMemory(t *testing.T) {
	manager := memory.NewManager()

	cold := manager.StoreItem(&memory.Item{Content: "cold", Importance: 0.1})
	important := manager.StoreItem(&memory.Item{Content: "important", Importance: 0.8})
	accessed := manager.StoreItem(&memory.Item{Content: "accessed", Importance: 0.1})
	for i := 0; i < 3; i++ {
		_, ok := manager.RetrieveItem(accessed)
		require.True(t, ok)
	}

	result := manager.OptimizeMemory()

	assert.Equal(t, 1, result.ItemsMoved)
	assert.Equal(t, []string{cold}, result.MovedIDs)
	assert.Equal(t, 3, result.ShortTermBefore)
	assert.Equal(t, 2, result.ShortTermAfter)

	item, ok := manager.RetrieveItem(cold)
	require.True(t, ok)
	assert.Equal(t, memory.TierLongTerm, item.Tier)

	for _, id := range []string{important, accessed} {
		item, ok := manager.RetrieveItem(id)
		require.True(t, ok)
		assert.Equal(t, memory.TierShortTerm, item.Tier)
	}
}

func TestOptimizeMemoryBoundaries(t *testing.T) {
	manager := memory.NewManager()

	// Importance exactly 0.3 stays: the rule is strict less-than.
	boundary := manager.StoreItem(&memory.Item{Content: "boundary", Importance: 0.3})

	result := manager.OptimizeMemory()
	assert.Zero(t, result.ItemsMoved)

	item, ok := manager.RetrieveItem(boundary)
	require.True(t, ok)
	assert.Equal(t, memory.TierShortTerm, item.Tier)
}

func TestOptimizeMemoryDeterministicOrder(t *testing.T) {
	manager := memory.NewManager()

	first := manager.StoreItem(&memory.Item{Content: "first", Importance: 0.1})
	second := manager.StoreItem(&memory.Item{Content: "second", Importance: 0.1})
	third := manager.StoreItem(&memory.Item{Content: "third", Importance: 0.1})

	result := manager.OptimizeMemory()
	assert.Equal(t, []string{first, second, third}, result.MovedIDs, "sweep visits insertion order")
}

func TestCategories(t *testing.T) {
	manager := memory.NewManager()
	id := manager.StoreItem(&memory.Item{Content: "note"})

	parentID := manager.CreateCategory("root", "top level", "")
	childID := manager.CreateCategory("child", "", parentID)

	child, ok := manager.Category(childID)
	require.True(t, ok)
	assert.Equal(t, "child", child.Name)
	assert.Equal(t, parentID, child.ParentID)

	require.True(t, manager.AddItemToCategory(id, childID))
	require.True(t, manager.AddItemToCategory(id, childID), "re-adding a member is a no-op")

	child, ok = manager.Category(childID)
	require.True(t, ok)
	assert.Equal(t, []string{id}, child.ItemIDs())

	assert.False(t, manager.AddItemToCategory("missing", childID))
	assert.False(t, manager.AddItemToCategory(id, "missing"))

	items := manager.ItemsByCategory(childID)
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].ID)
	assert.Equal(t, 1, items[0].AccessCount, "membership reads count as accesses")

	assert.Nil(t, manager.ItemsByCategory("missing"))
}

func TestRecencyScoreDecay(t *testing.T) {
	now := time.Now()

	assert.InDelta(t, 1.0, memory.RecencyScore(now), 0.01)
	assert.InDelta(t, 0.5, memory.RecencyScore(now.Add(-time.Hour)), 0.01, "halves every hour")
	assert.InDelta(t, 0.25, memory.RecencyScore(now.Add(-2*time.Hour)), 0.01)
	assert.InDelta(t, 0.0, memory.RecencyScore(now.Add(-100*time.Hour)), 0.001)
}
