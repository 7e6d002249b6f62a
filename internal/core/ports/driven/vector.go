package driven

import "context"

// VectorIndex provides similarity search over embedded chunks.
// The backend cannot perform relational joins, so every entry carries a
// copy of its filterable attributes.
type VectorIndex interface {
	// Upsert inserts or replaces entries by ID. Idempotent.
	Upsert(ctx context.Context, entries []VectorEntry) error

	// Query returns up to k nearest entries matching the filter, ordered
	// by ascending distance with ties broken by entry ID ascending.
	// Fewer than k (or none) qualify is not an error.
	Query(ctx context.Context, vector []float32, k int, filter Filter) ([]VectorHit, error)

	// Delete removes all entries matching the filter. No-op if none match.
	Delete(ctx context.Context, filter Filter) error

	// Close releases resources.
	Close() error
}

// VectorEntry is one embedded chunk stored in the index.
type VectorEntry struct {
	// ID is the chunk ID, the join key with the metadata store.
	ID string

	// Vector is the embedding.
	Vector []float32

	// Text is the raw chunk text.
	Text string

	// Attributes are the filterable metadata copies.
	Attributes Attributes
}

// Attributes are the filterable fields duplicated onto each entry.
type Attributes struct {
	// DocumentID is the owning document.
	DocumentID string

	// GroupID is the owning group.
	GroupID int64

	// ChunkIndex is the chunk's position in its document.
	ChunkIndex int
}

// Filter selects entries by attribute equality. Zero-valued fields are
// unconstrained; set fields must all match.
type Filter struct {
	// GroupID filters by owning group when non-zero.
	GroupID int64

	// DocumentID filters by owning document when non-empty.
	DocumentID string
}

// Matches reports whether the attributes satisfy every set predicate.
func (f Filter) Matches(attrs Attributes) bool {
	if f.GroupID != 0 && attrs.GroupID != f.GroupID {
		return false
	}
	if f.DocumentID != "" && attrs.DocumentID != f.DocumentID {
		return false
	}
	return true
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ID is the matched chunk ID.
	ID string

	// Score is the distance to the query vector. Lower is better.
	// Scores are not comparable across backends.
	Score float64

	// Text is the stored chunk text.
	Text string

	// Attributes are the entry's metadata copies.
	Attributes Attributes
}
