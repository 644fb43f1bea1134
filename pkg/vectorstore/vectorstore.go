// Package vectorstore provides in-memory storage and brute-force similarity
// search over fixed-dimension embeddings grouped into named collections.
//
// Search cost is O(n) over a collection's entries. That is a deliberate
// contract, not an oversight: the ranking order (score descending, insertion
// order on ties) is the stable interface, and an approximate index may be
// substituted as long as that contract holds for small n.
package vectorstore

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/auxo-ai/knowbase-go/pkg/logging"
)

// Predefined errors for common failure scenarios.
var (
	// ErrCollectionNotFound indicates that the requested collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrDimensionMismatch indicates that a vector's length violates the
	// collection's fixed dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidDimension indicates a collection was requested with a
	// non-positive dimension.
	ErrInvalidDimension = errors.New("collection dimension must be positive")
)

// Collection is a named, fixed-dimension bucket of vector entries. The
// dimension is fixed for the collection's lifetime.
type Collection struct {
	// ID is the unique identifier of the collection.
	ID string

	// Name is the human-readable collection name.
	Name string

	// Dimension is the required length of every vector in the collection.
	Dimension int

	// IndexKind names the index backing the collection ("flat" for the
	// built-in brute-force scan).
	IndexKind string

	// CreatedAt is when the collection was created.
	CreatedAt time.Time
}

// Entry is a single stored vector. An entry belongs to exactly one
// collection and references the knowledge item it embeds.
type Entry struct {
	// ID is the unique identifier of the entry.
	ID string

	// Vector is the stored embedding.
	Vector []float64

	// ItemID references the knowledge item this vector belongs to. An item
	// may have several entries (for example one per content chunk).
	ItemID string

	// Metadata carries entry-level attributes used by metadata filters.
	Metadata map[string]any
}

// Match is a single search result.
type Match struct {
	// EntryID identifies the matched entry. For item-level searches it is
	// the entry that produced the item's best score.
	EntryID string

	// ItemID identifies the knowledge item the entry belongs to.
	ItemID string

	// Score is the cosine similarity to the query vector.
	Score float64
}

// Stats summarizes store contents.
type Stats struct {
	// Collections is the number of live collections.
	Collections int

	// Entries is the total number of stored vectors across collections.
	Entries int

	// Items is the number of distinct item IDs with at least one vector.
	Items int
}

// entryRef locates one entry for the reverse item index.
type entryRef struct {
	collectionID string
	entryID      string
}

// collectionState pairs a collection with its entries. The order slice
// preserves insertion order so tie-breaks during search are deterministic.
type collectionState struct {
	collection Collection
	entries    map[string]*Entry
	order      []string
}

// Store is an in-memory vector store.
//
// All methods are safe for concurrent use; a single store-wide mutex guards
// mutation and iteration, which matches the coarse-grained locking the data
// model requires (mutation and search must not interleave).
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collectionState
	itemIndex   map[string][]entryRef
	logger      logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used by the store. Defaults to a no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates an empty vector store.
func New(opts ...Option) *Store {
	s := &Store{
		collections: make(map[string]*collectionState),
		itemIndex:   make(map[string][]entryRef),
		logger:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCollection creates a new collection with a fixed dimension.
//
// Returns the ID of the created collection. IndexKind defaults to "flat"
// when empty.
func (s *Store) CreateCollection(name string, dimension int, indexKind string) (string, error) {
	if dimension < 1 {
		return "", fmt.Errorf("create collection %q: %w", name, ErrInvalidDimension)
	}
	if indexKind == "" {
		indexKind = "flat"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.collections[id] = &collectionState{
		collection: Collection{
			ID:        id,
			Name:      name,
			Dimension: dimension,
			IndexKind: indexKind,
			CreatedAt: time.Now(),
		},
		entries: make(map[string]*Entry),
	}

	s.logger.Info("created vector collection", "name", name, "id", id, "dimension", dimension)
	return id, nil
}

// AddVector adds a vector to a collection and records it in the reverse
// item index.
//
// Returns the ID of the created entry. Fails with ErrCollectionNotFound if
// the collection does not exist and ErrDimensionMismatch if the vector
// length differs from the collection dimension; in both cases the store is
// unchanged.
func (s *Store) AddVector(collectionID string, vector []float64, itemID string, metadata map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.collections[collectionID]
	if !ok {
		return "", fmt.Errorf("add vector: %w: %s", ErrCollectionNotFound, collectionID)
	}
	if len(vector) != state.collection.Dimension {
		return "", fmt.Errorf("add vector: %w: expected %d, got %d",
			ErrDimensionMismatch, state.collection.Dimension, len(vector))
	}

	entryID := uuid.NewString()
	if metadata == nil {
		metadata = make(map[string]any)
	}
	state.entries[entryID] = &Entry{
		ID:       entryID,
		Vector:   vector,
		ItemID:   itemID,
		Metadata: metadata,
	}
	state.order = append(state.order, entryID)
	s.itemIndex[itemID] = append(s.itemIndex[itemID], entryRef{collectionID: collectionID, entryID: entryID})

	s.logger.Debug("added vector", "collection", collectionID, "entry", entryID, "item", itemID)
	return entryID, nil
}

// DeleteVector removes a single entry from a collection.
//
// Returns true if the entry existed. Deleting an absent collection or entry
// is not an error.
func (s *Store) DeleteVector(collectionID, entryID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteVectorLocked(collectionID, entryID)
}

func (s *Store) deleteVectorLocked(collectionID, entryID string) bool {
	state, ok := s.collections[collectionID]
	if !ok {
		return false
	}
	entry, ok := state.entries[entryID]
	if !ok {
		return false
	}

	delete(state.entries, entryID)
	for i, id := range state.order {
		if id == entryID {
			state.order = append(state.order[:i], state.order[i+1:]...)
			break
		}
	}
	s.unindexLocked(entry.ItemID, func(ref entryRef) bool {
		return ref.collectionID == collectionID && ref.entryID == entryID
	})

	s.logger.Debug("deleted vector", "collection", collectionID, "entry", entryID)
	return true
}

// DeleteItemVectors removes every vector associated with an item across all
// collections.
//
// Returns the number of vectors deleted; zero when the item has none.
func (s *Store) DeleteItemVectors(itemID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	refs, ok := s.itemIndex[itemID]
	if !ok {
		return 0
	}

	count := 0
	for _, ref := range append([]entryRef(nil), refs...) {
		if s.deleteVectorLocked(ref.collectionID, ref.entryID) {
			count++
		}
	}
	return count
}

// DeleteCollection removes a collection, its entries, and their reverse
// index references.
//
// Returns true if the collection existed.
func (s *Store) DeleteCollection(collectionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.collections[collectionID]
	if !ok {
		return false
	}

	for _, entry := range state.entries {
		s.unindexLocked(entry.ItemID, func(ref entryRef) bool {
			return ref.collectionID == collectionID
		})
	}
	delete(s.collections, collectionID)

	s.logger.Info("deleted collection", "id", collectionID)
	return true
}

// unindexLocked drops matching refs for an item and removes the item key
// once its ref list is empty, keeping the reverse-index invariant.
func (s *Store) unindexLocked(itemID string, drop func(entryRef) bool) {
	refs := s.itemIndex[itemID]
	kept := refs[:0]
	for _, ref := range refs {
		if !drop(ref) {
			kept = append(kept, ref)
		}
	}
	if len(kept) == 0 {
		delete(s.itemIndex, itemID)
		return
	}
	s.itemIndex[itemID] = kept
}

// Collection returns a collection by ID, or false if it does not exist.
func (s *Store) Collection(collectionID string) (Collection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.collections[collectionID]
	if !ok {
		return Collection{}, false
	}
	return state.collection, true
}

// Entry returns a vector entry by ID, or false if it does not exist.
func (s *Store) Entry(collectionID, entryID string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.collections[collectionID]
	if !ok {
		return Entry{}, false
	}
	entry, ok := state.entries[entryID]
	if !ok {
		return Entry{}, false
	}
	return *entry, true
}

// ItemVectors returns the (collectionID, entryID) locations of every vector
// stored for an item, in insertion order.
func (s *Store) ItemVectors(itemID string) [][2]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs := s.itemIndex[itemID]
	out := make([][2]string, len(refs))
	for i, ref := range refs {
		out[i] = [2]string{ref.collectionID, ref.entryID}
	}
	return out
}

// ListCollections returns all collections.
func (s *Store) ListCollections() []Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Collection, 0, len(s.collections))
	for _, state := range s.collections {
		out = append(out, state.collection)
	}
	return out
}

// Stats returns collection, entry, and distinct-item counts.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := 0
	for _, state := range s.collections {
		entries += len(state.entries)
	}
	return Stats{
		Collections: len(s.collections),
		Entries:     entries,
		Items:       len(s.itemIndex),
	}
}
