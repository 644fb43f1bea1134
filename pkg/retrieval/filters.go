package retrieval

import "time"

// Filters is the closed set of recognized query filters. A nil *Filters
// matches everything; any condition an item fails excludes it.
type Filters struct {
	// Source keeps only items with exactly this source. Empty = unset.
	Source string

	// MinConfidence keeps only items with confidence >= the value.
	MinConfidence *float64

	// MaxAgeDays keeps only items whose age in days is <= the value.
	MaxAgeDays *float64

	// Metadata keeps only items whose metadata contains every listed key
	// with an equal value.
	Metadata map[string]any
}

// Matches reports whether an item passes every filter condition.
func (f *Filters) Matches(item *Item) bool {
	if f == nil {
		return true
	}
	if f.Source != "" && item.Source != f.Source {
		return false
	}
	if f.MinConfidence != nil && item.Confidence < *f.MinConfidence {
		return false
	}
	if f.MaxAgeDays != nil && !item.CreatedAt.IsZero() {
		ageDays := time.Since(item.CreatedAt).Seconds() / 86400.0
		if ageDays > *f.MaxAgeDays {
			return false
		}
	}
	for key, want := range f.Metadata {
		got, ok := item.Metadata[key]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// MinConfidence builds a Filters value keeping items at or above the given
// confidence. Convenience for the common single-condition case.
func MinConfidence(v float64) *Filters {
	return &Filters{MinConfidence: &v}
}

// MaxAgeDays builds a Filters value keeping items no older than the given
// number of days.
func MaxAgeDays(v float64) *Filters {
	return &Filters{MaxAgeDays: &v}
}
