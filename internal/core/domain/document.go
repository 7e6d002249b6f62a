package domain

import (
	"fmt"
	"time"
)

// Document statuses. A document is provisional until its chunks have
// been written to both stores.
const (
	// DocumentStatusPending marks a document whose chunks are still being written.
	DocumentStatusPending = "pending"

	// DocumentStatusReady marks a fully indexed document.
	DocumentStatusReady = "ready"
)

// Document represents an ingested source file.
// It belongs to exactly one Group.
type Document struct {
	// ID is the unique identifier, allocated fresh per ingestion.
	ID string

	// Filename is the original name of the uploaded file.
	Filename string

	// StorageRef is an opaque reference to the stored source bytes.
	StorageRef string

	// GroupID is the owning group. Immutable after creation.
	GroupID int64

	// Status is pending until ingestion commits, then ready.
	Status string

	// UploadedAt is when ingestion started.
	UploadedAt time.Time
}

// ChunkRecord is the metadata-side record of one emitted chunk.
// ChunkID is the join key with the vector index.
type ChunkRecord struct {
	// ChunkID is globally unique, derived from the document ID and ordinal index.
	ChunkID string

	// DocumentID is the owning document.
	DocumentID string

	// GroupID mirrors the owning document's group. Immutable.
	GroupID int64

	// ChunkIndex is the 0-based position in the document's reading order.
	ChunkIndex int

	// CreatedAt is when the record was written.
	CreatedAt time.Time
}

// ChunkID derives the deterministic chunk identifier for a document
// and ordinal index. Document IDs are unique per ingestion, so the
// result is unique across the whole corpus and can serve as the
// vector index primary key.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("doc_%s_chunk_%d", documentID, index)
}
