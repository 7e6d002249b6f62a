// Package memory provides an in-memory vector index using brute-force
// L2 distance. Exact rather than approximate, suitable for tests and
// small corpora.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an in-memory implementation of driven.VectorIndex.
type Index struct {
	mu      sync.RWMutex
	entries map[string]driven.VectorEntry
}

// NewIndex creates a new in-memory vector index.
func NewIndex() *Index {
	return &Index{
		entries: make(map[string]driven.VectorEntry),
	}
}

// Upsert inserts or replaces entries by ID.
func (x *Index) Upsert(_ context.Context, entries []driven.VectorEntry) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, e := range entries {
		x.entries[e.ID] = e
	}
	return nil
}

// Query returns up to k nearest entries matching the filter, ordered by
// ascending L2 distance with ties broken by entry ID ascending.
func (x *Index) Query(_ context.Context, vector []float32, k int, filter driven.Filter) ([]driven.VectorHit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(x.entries))
	for _, e := range x.entries {
		if !filter.Matches(e.Attributes) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ID:         e.ID,
			Score:      squaredL2(vector, e.Vector),
			Text:       e.Text,
			Attributes: e.Attributes,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score < hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})

	if k >= 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Delete removes all entries matching the filter.
func (x *Index) Delete(_ context.Context, filter driven.Filter) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for id, e := range x.entries {
		if filter.Matches(e.Attributes) {
			delete(x.entries, id)
		}
	}
	return nil
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

// Len returns the number of stored entries. Useful for tests.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// squaredL2 computes the squared Euclidean distance between two vectors.
// Monotonic in true L2, so the square root is skipped.
func squaredL2(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
