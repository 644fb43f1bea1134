package knowledge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"

	"github.com/auxo-ai/knowbase-go/pkg/embedder"
	"github.com/auxo-ai/knowbase-go/pkg/llm"
	"github.com/auxo-ai/knowbase-go/pkg/logging"
	"github.com/auxo-ai/knowbase-go/pkg/memory"
	"github.com/auxo-ai/knowbase-go/pkg/retrieval"
	"github.com/auxo-ai/knowbase-go/pkg/vectorstore"
)

// DefaultCollectionName is the name of the vector collection the facade
// creates for its catalog.
const DefaultCollectionName = "default_knowledge"

// Module is the single entry point the agent loop and planning layers use.
//
// It owns the knowledge-item catalog, per-session state, and the event log,
// and coordinates the vector store, retrieval engine, and memory manager.
// All methods are safe for concurrent use under a module-wide mutex; the
// embedding and reasoning providers are the only blocking dependencies.
//
// Example usage:
//
//	kb, _ := knowledge.New(mock.New())
//	defer kb.Close()
//
//	id, _ := kb.AddKnowledgeItem(ctx, "the sky is blue", "observation")
//	resp, _ := kb.QueryKnowledge(ctx, "sky color")
type Module struct {
	mu sync.RWMutex

	embedder embedder.Provider
	reasoner llm.Provider

	store  *vectorstore.Store
	memory *memory.Manager
	engine *retrieval.Engine

	items    map[string]*Item
	sessions map[string]*State
	events   []Event

	node   *snowflake.Node
	logger logging.Logger

	// construction-time settings
	estimator      memory.Estimator
	tokenizer      retrieval.Tokenizer
	collectionName string

	defaultCollectionID string
}

// New creates a knowledge module around the given embedding provider.
//
// The module creates its default vector collection with the provider's
// dimension (768 when the provider does not report one) and wires the
// vector store, retrieval engine, and memory manager together.
func New(provider embedder.Provider, opts ...Option) (*Module, error) {
	m := &Module{
		embedder:       provider,
		items:          make(map[string]*Item),
		sessions:       make(map[string]*State),
		logger:         logging.Nop(),
		estimator:      memory.HeuristicEstimator{},
		tokenizer:      retrieval.WhitespaceTokenizer{},
		collectionName: DefaultCollectionName,
	}
	for _, opt := range opts {
		opt(m)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, NewError("New", err)
	}
	m.node = node

	m.store = vectorstore.New(vectorstore.WithLogger(m.logger))
	m.memory = memory.NewManager(
		memory.WithEstimator(m.estimator),
		memory.WithLogger(m.logger),
	)
	m.engine = retrieval.NewEngine(m.store, provider,
		retrieval.WithTokenizer(m.tokenizer),
		retrieval.WithLogger(m.logger),
	)

	dimension := provider.Dimensions()
	if dimension <= 0 {
		dimension = embedder.DefaultDimensions
	}
	collectionID, err := m.store.CreateCollection(m.collectionName, dimension, "flat")
	if err != nil {
		return nil, NewError("New", err)
	}
	m.defaultCollectionID = collectionID
	m.engine.SetDefaultCollection(collectionID)

	m.logger.Info("knowledge module initialized", "collection", collectionID, "dimension", dimension)
	return m, nil
}

// AddKnowledgeItem adds a knowledge item to the catalog.
//
// The operation fans out three ways: the item is persisted in the catalog,
// its content is embedded and indexed in the default vector collection, and
// a corresponding long-lived memory item is stored. The fan-out is
// all-or-nothing: if embedding or indexing fails, the catalog insert is
// rolled back and the item is absent.
//
// Returns the ID of the added item.
func (m *Module) AddKnowledgeItem(ctx context.Context, content, source string, opts ...AddOption) (string, error) {
	const op = "AddKnowledgeItem"

	if content == "" {
		return "", NewError(op, fmt.Errorf("%w: empty content", ErrValidation))
	}
	addOpts := applyAddOptions(opts)
	if addOpts.Confidence < 0 || addOpts.Confidence > 1 {
		return "", NewError(op, fmt.Errorf("%w: confidence %v outside [0,1]", ErrValidation, addOpts.Confidence))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	itemID := uuid.NewString()
	item := &Item{
		ID:         itemID,
		Content:    content,
		Source:     source,
		Confidence: addOpts.Confidence,
		Metadata:   addOpts.Metadata,
		CreatedAt:  time.Now(),
	}
	if item.Metadata == nil {
		item.Metadata = make(map[string]any)
	}
	m.items[itemID] = item

	embedding, err := m.embedder.Embed(ctx, content)
	if err != nil {
		delete(m.items, itemID)
		return "", NewError(op, fmt.Errorf("%w: %w", ErrProvider, err))
	}

	if _, err := m.store.AddVector(m.defaultCollectionID, embedding, itemID, item.Metadata); err != nil {
		delete(m.items, itemID)
		return "", NewError(op, err)
	}

	memMetadata := map[string]any{
		"source":     source,
		"confidence": addOpts.Confidence,
	}
	for k, v := range addOpts.Metadata {
		memMetadata[k] = v
	}
	m.memory.StoreItem(&memory.Item{
		ID:         itemID,
		Content:    content,
		Tier:       memory.TierLongTerm,
		Embedding:  embedding,
		Metadata:   memMetadata,
		Importance: addOpts.Confidence,
	})

	m.appendEventLocked(EventItemAdded, map[string]any{
		"item_id":         itemID,
		"source":          source,
		"content_preview": contentPreview(content),
	})

	m.logger.Info("added knowledge item", "id", itemID, "source", source)
	return itemID, nil
}

// QueryKnowledge executes a query against the catalog.
//
// Defaults: semantic search, top 5, threshold 0. Every execution is
// recorded in the event log.
func (m *Module) QueryKnowledge(ctx context.Context, text string, opts ...QueryOption) (*Response, error) {
	const op = "QueryKnowledge"

	if text == "" {
		return nil, NewError(op, fmt.Errorf("%w: empty query text", ErrValidation))
	}
	queryOpts := applyQueryOptions(opts)

	m.mu.Lock()
	defer m.mu.Unlock()

	query := &Query{
		ID:        uuid.NewString(),
		Text:      text,
		Type:      queryOpts.Type,
		Filters:   queryOpts.Filters,
		TopK:      queryOpts.TopK,
		Threshold: queryOpts.Threshold,
	}

	response, err := m.engine.ProcessQuery(ctx, query, m.items)
	if err != nil {
		return nil, NewError(op, err)
	}

	m.appendEventLocked(EventQueryExecuted, map[string]any{
		"query_id":     query.ID,
		"query_text":   text,
		"query_type":   string(query.Type),
		"result_count": len(response.Items),
	})

	return response, nil
}

// CreateContextWindow builds a context window from short-term memory and
// attaches it to the session, creating the session state if needed.
func (m *Module) CreateContextWindow(sessionID string, opts ...WindowOption) *memory.ContextWindow {
	windowOpts := applyWindowOptions(opts)
	window := m.memory.CreateContextWindow(windowOpts.MaxTokens, windowOpts.Strategy)

	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.sessionLocked(sessionID)
	state.ContextWindow = window

	m.appendEventLocked(EventContextUpdated, map[string]any{
		"session_id":   sessionID,
		"context_size": window.CurrentTokens,
		"item_count":   len(window.Items),
	})

	return window
}

// UpdateContext runs a semantic query for the session, records it in the
// session's recent queries and results, and rebuilds the session's context
// window.
func (m *Module) UpdateContext(ctx context.Context, sessionID, queryText string, opts ...WindowOption) (*memory.ContextWindow, error) {
	response, err := m.QueryKnowledge(ctx, queryText)
	if err != nil {
		return nil, NewError("UpdateContext", err)
	}

	m.mu.Lock()
	state := m.sessionLocked(sessionID)
	state.RecentQueries = append(state.RecentQueries, &Query{
		ID:   response.QueryID,
		Text: queryText,
		Type: QuerySemantic,
		TopK: 5,
	})
	if len(state.RecentQueries) > maxRecentQueries {
		state.RecentQueries = state.RecentQueries[len(state.RecentQueries)-maxRecentQueries:]
	}
	state.RecentResults[response.QueryID] = response
	m.mu.Unlock()

	return m.CreateContextWindow(sessionID, opts...), nil
}

// DeleteKnowledgeItem removes an item from the catalog, deletes every
// vector stored for it, and purges its memory item along with any category
// references.
//
// Returns false if the item does not exist; deleting an absent item is not
// an error.
func (m *Module) DeleteKnowledgeItem(itemID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[itemID]; !ok {
		return false
	}

	delete(m.items, itemID)
	m.store.DeleteItemVectors(itemID)
	m.memory.DeleteItem(itemID)

	m.appendEventLocked(EventItemRemoved, map[string]any{"item_id": itemID})

	m.logger.Info("deleted knowledge item", "id", itemID)
	return true
}

// GetKnowledgeItem returns an item by ID, or false if it does not exist.
func (m *Module) GetKnowledgeItem(itemID string) (*Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[itemID]
	return item, ok
}

// GetSessionState returns a session's state, or false if the session has
// no state yet.
func (m *Module) GetSessionState(sessionID string) (*State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[sessionID]
	return state, ok
}

// GetRecentEvents returns the most recent events, oldest first. A
// non-positive limit defaults to 10.
func (m *Module) GetRecentEvents(limit int) []Event {
	if limit <= 0 {
		limit = 10
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.events) < limit {
		limit = len(m.events)
	}
	out := make([]Event, limit)
	copy(out, m.events[len(m.events)-limit:])
	return out
}

// Memory exposes the memory manager for maintenance hooks such as
// OptimizeMemory and the tier-move operations.
func (m *Module) Memory() *memory.Manager {
	return m.memory
}

// VectorStore exposes the underlying vector store.
func (m *Module) VectorStore() *vectorstore.Store {
	return m.store
}

// Engine exposes the retrieval engine for the pure auxiliary operations
// (ComputeRelevance, RankResults).
func (m *Module) Engine() *retrieval.Engine {
	return m.engine
}

// DefaultCollectionID returns the ID of the facade's vector collection.
func (m *Module) DefaultCollectionID() string {
	return m.defaultCollectionID
}

// Close closes the embedding and reasoning providers.
func (m *Module) Close() error {
	var errs []error
	if m.embedder != nil {
		if err := m.embedder.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if m.reasoner != nil {
		if err := m.reasoner.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// sessionLocked returns the session state, creating it if absent. The
// caller must hold m.mu.
func (m *Module) sessionLocked(sessionID string) *State {
	state, ok := m.sessions[sessionID]
	if !ok {
		state = &State{
			SessionID:     sessionID,
			RecentResults: make(map[string]*Response),
		}
		m.sessions[sessionID] = state
	}
	return state
}

// appendEventLocked appends an audit event, dropping the oldest entries
// once the cap is exceeded. The caller must hold m.mu.
func (m *Module) appendEventLocked(eventType EventType, details map[string]any) {
	m.events = append(m.events, Event{
		ID:        m.node.Generate().Int64(),
		Type:      eventType,
		Details:   details,
		Timestamp: time.Now(),
	})
	if len(m.events) > maxEvents {
		m.events = m.events[len(m.events)-maxEvents:]
	}
}

func contentPreview(content string) string {
	const max = 100
	if len(content) <= max {
		return content
	}
	return content[:max] + "..."
}
