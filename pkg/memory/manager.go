// Package memory provides tiered storage for memory items, categorization,
// and token-budgeted context-window construction.
//
// Items live in exactly one of two tiers (short-term, long-term) at a time;
// a tier transition is a move, never a copy. The manager is independent of
// the vector store: embeddings are carried opaquely on items.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/auxo-ai/knowbase-go/pkg/logging"
)

// Tier identifies a memory partition.
type Tier string

const (
	// TierShortTerm holds items eligible for context-window assembly.
	TierShortTerm Tier = "short_term"

	// TierLongTerm holds long-lived items outside the working set.
	TierLongTerm Tier = "long_term"
)

// Item is a single memory item.
type Item struct {
	// ID is the unique identifier of the item.
	ID string

	// Content is the text content of the item.
	Content string

	// Tier is the partition the item currently lives in.
	Tier Tier

	// Embedding is the vector representation of the content, carried
	// opaquely for callers that index memories elsewhere.
	Embedding []float64

	// Metadata contains additional structured information.
	Metadata map[string]any

	// Importance is the item's importance score in [0,1].
	Importance float64

	// AccessCount is the number of times the item has been retrieved.
	AccessCount int

	// LastAccessed is when the item was last retrieved (or stored).
	LastAccessed time.Time

	// CreatedAt is when the item was stored.
	CreatedAt time.Time
}

// OptimizeResult reports the outcome of an OptimizeMemory sweep.
type OptimizeResult struct {
	// ItemsMoved is the number of items migrated to long-term memory.
	ItemsMoved int

	// MovedIDs lists the migrated item IDs in sweep order.
	MovedIDs []string

	// ShortTermBefore and ShortTermAfter are the short-term tier sizes
	// around the sweep.
	ShortTermBefore int
	ShortTermAfter  int

	// Duration is how long the sweep took.
	Duration time.Duration
}

// Stats summarizes manager contents.
type Stats struct {
	// ShortTermCount is the number of items in short-term memory.
	ShortTermCount int

	// LongTermCount is the number of items in long-term memory.
	LongTermCount int

	// CategoryCount is the number of categories.
	CategoryCount int

	// TotalItems is the total number of items across both tiers.
	TotalItems int
}

// tierState pairs a tier map with its insertion order so sweeps and window
// construction are deterministic.
type tierState struct {
	items map[string]*Item
	order []string
}

func newTierState() *tierState {
	return &tierState{items: make(map[string]*Item)}
}

func (t *tierState) insert(item *Item) {
	t.items[item.ID] = item
	t.order = append(t.order, item.ID)
}

func (t *tierState) remove(id string) (*Item, bool) {
	item, ok := t.items[id]
	if !ok {
		return nil, false
	}
	delete(t.items, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return item, true
}

// Manager oversees both memory tiers, categories, and context-window
// synthesis. All methods are safe for concurrent use under a single
// manager-wide mutex.
type Manager struct {
	mu         sync.RWMutex
	shortTerm  *tierState
	longTerm   *tierState
	categories map[string]*Category
	estimator  Estimator
	logger     logging.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithEstimator sets the token estimator used for context windows.
// Defaults to the character heuristic.
func WithEstimator(e Estimator) Option {
	return func(m *Manager) {
		m.estimator = e
	}
}

// WithLogger sets the logger used by the manager. Defaults to a no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// NewManager creates an empty memory manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		shortTerm:  newTierState(),
		longTerm:   newTierState(),
		categories: make(map[string]*Category),
		estimator:  HeuristicEstimator{},
		logger:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StoreItem stores an item in the tier named by item.Tier (short-term when
// unset). A missing ID, CreatedAt, or LastAccessed is filled in.
//
// Returns the item's ID.
func (m *Manager) StoreItem(item *Item) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.LastAccessed.IsZero() {
		item.LastAccessed = now
	}

	stored := *item
	if stored.Tier == TierLongTerm {
		m.longTerm.insert(&stored)
	} else {
		stored.Tier = TierShortTerm
		m.shortTerm.insert(&stored)
	}

	m.logger.Debug("stored memory item", "id", stored.ID, "tier", string(stored.Tier))
	return stored.ID
}

// RetrieveItem returns a copy of the item and, as an observable side effect,
// bumps its access count and last-accessed timestamp (both feed future
// recency scoring).
func (m *Manager) RetrieveItem(id string) (Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.retrieveLocked(id)
}

func (m *Manager) retrieveLocked(id string) (Item, bool) {
	for _, tier := range []*tierState{m.shortTerm, m.longTerm} {
		if item, ok := tier.items[id]; ok {
			item.LastAccessed = time.Now()
			item.AccessCount++
			return *item, true
		}
	}
	return Item{}, false
}

// UpdateItem replaces an existing item's content, embedding, metadata, and
// importance. The item's tier placement is preserved; tiers change only via
// the explicit move operations.
//
// Returns false if the item does not exist in either tier.
func (m *Manager) UpdateItem(item Item) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for tierName, tier := range map[Tier]*tierState{TierShortTerm: m.shortTerm, TierLongTerm: m.longTerm} {
		if existing, ok := tier.items[item.ID]; ok {
			updated := item
			updated.Tier = tierName
			updated.CreatedAt = existing.CreatedAt
			tier.items[item.ID] = &updated
			return true
		}
	}
	return false
}

// DeleteItem removes an item from its tier and purges it from every
// category that references it.
//
// Returns false if the item does not exist.
func (m *Manager) DeleteItem(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, okShort := m.shortTerm.remove(id)
	var okLong bool
	if !okShort {
		_, okLong = m.longTerm.remove(id)
	}
	if !okShort && !okLong {
		return false
	}

	for _, category := range m.categories {
		category.removeItem(id)
	}

	m.logger.Debug("deleted memory item", "id", id)
	return true
}

// MoveToLongTerm moves an item from short-term to long-term memory.
//
// The move is atomic: at no observable point is the item in both tiers or
// neither. Returns false, mutating nothing, if the item is not in
// short-term memory.
func (m *Manager) MoveToLongTerm(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.moveToLongTermLocked(id)
}

func (m *Manager) moveToLongTermLocked(id string) bool {
	item, ok := m.shortTerm.remove(id)
	if !ok {
		return false
	}
	item.Tier = TierLongTerm
	m.longTerm.insert(item)
	return true
}

// MoveToShortTerm moves an item from long-term to short-term memory.
//
// Returns false, mutating nothing, if the item is not in long-term memory.
func (m *Manager) MoveToShortTerm(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.longTerm.remove(id)
	if !ok {
		return false
	}
	item.Tier = TierShortTerm
	m.shortTerm.insert(item)
	return true
}

// OptimizeMemory sweeps short-term memory and migrates every item with
// importance < 0.3 and access count < 3 to long-term memory.
//
// The sweep is deterministic given tier contents: items are visited in
// insertion order and there is no randomness.
func (m *Manager) OptimizeMemory() OptimizeResult {
	start := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	before := len(m.shortTerm.items)

	var toMove []string
	for _, id := range m.shortTerm.order {
		item := m.shortTerm.items[id]
		if item.Importance < 0.3 && item.AccessCount < 3 {
			toMove = append(toMove, id)
		}
	}
	for _, id := range toMove {
		m.moveToLongTermLocked(id)
	}

	result := OptimizeResult{
		ItemsMoved:      len(toMove),
		MovedIDs:        toMove,
		ShortTermBefore: before,
		ShortTermAfter:  len(m.shortTerm.items),
		Duration:        time.Since(start),
	}

	m.logger.Info("memory optimization complete", "moved", result.ItemsMoved)
	return result
}

// Stats returns tier and category counts.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Stats{
		ShortTermCount: len(m.shortTerm.items),
		LongTermCount:  len(m.longTerm.items),
		CategoryCount:  len(m.categories),
		TotalItems:     len(m.shortTerm.items) + len(m.longTerm.items),
	}
}
