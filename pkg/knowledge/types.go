// Package knowledge provides the facade of the knowledge subsystem: a
// catalog of knowledge items backed by a vector store, a retrieval engine,
// and a tiered memory manager, with per-session state and an append-only
// event log.
package knowledge

import (
	"time"

	"github.com/auxo-ai/knowbase-go/pkg/memory"
	"github.com/auxo-ai/knowbase-go/pkg/retrieval"
)

// The facade exposes the retrieval types under its own name so callers of
// the agent-facing API need only this package.
type (
	// Item is a single knowledge item in the catalog.
	Item = retrieval.Item

	// Query is a knowledge query.
	Query = retrieval.Query

	// Response is a ranked, scored query response.
	Response = retrieval.Response

	// QueryType selects the search strategy.
	QueryType = retrieval.QueryType

	// Filters restricts which items a query may return.
	Filters = retrieval.Filters
)

// Re-exported query types.
const (
	QuerySemantic = retrieval.QuerySemantic
	QueryKeyword  = retrieval.QueryKeyword
	QueryHybrid   = retrieval.QueryHybrid
	QueryExact    = retrieval.QueryExact
)

// EventType identifies a kind of knowledge event.
type EventType string

const (
	// EventItemAdded records a knowledge item insertion.
	EventItemAdded EventType = "item_added"

	// EventItemRemoved records a knowledge item deletion.
	EventItemRemoved EventType = "item_removed"

	// EventQueryExecuted records an executed knowledge query.
	EventQueryExecuted EventType = "query_executed"

	// EventContextUpdated records a context-window build or refresh.
	EventContextUpdated EventType = "context_updated"
)

// Event is a single append-only audit record. The log is capped; the
// oldest events are dropped once the cap is exceeded.
type Event struct {
	// ID is a monotonically increasing identifier, so the log order is
	// recoverable from IDs alone.
	ID int64

	// Type is the kind of event.
	Type EventType

	// Details carries event-specific attributes.
	Details map[string]any

	// Timestamp is when the event was recorded.
	Timestamp time.Time
}

// State is the per-session knowledge state.
type State struct {
	// SessionID identifies the session.
	SessionID string

	// ContextWindow is the session's most recently built window, nil
	// before the first build.
	ContextWindow *memory.ContextWindow

	// RecentQueries holds the most recent queries, oldest first, capped
	// at ten.
	RecentQueries []*Query

	// RecentResults maps query ID to its response.
	RecentResults map[string]*Response
}

// ValidationResult is the outcome of validating a knowledge item.
type ValidationResult struct {
	// ItemID references the validated item.
	ItemID string

	// IsValid reports whether the item passed validation.
	IsValid bool

	// Confidence is the verifier's confidence in the verdict, in [0,1].
	Confidence float64

	// Issues lists problems found with the item, empty when valid.
	Issues []string

	// Explanation is the verifier's reasoning.
	Explanation string
}

// FactCheckResult is the outcome of fact-checking a statement.
type FactCheckResult struct {
	// Statement is the checked statement.
	Statement string

	// IsFactual reports whether the statement appears factual.
	IsFactual bool

	// Confidence is the verifier's confidence in the verdict, in [0,1].
	Confidence float64

	// Sources lists the sources of the knowledge consulted.
	Sources []string

	// Explanation is the verifier's reasoning.
	Explanation string
}

// ConsistencyResult is the outcome of checking statements against each
// other.
type ConsistencyResult struct {
	// IsConsistent reports whether the statements agree.
	IsConsistent bool

	// Conflicts describes each detected conflict, empty when consistent.
	Conflicts []string

	// Confidence is the verifier's confidence in the verdict, in [0,1].
	Confidence float64

	// Explanation is the verifier's reasoning.
	Explanation string
}

// Caps on facade-owned state.
const (
	maxRecentQueries = 10
	maxEvents        = 1000
)
