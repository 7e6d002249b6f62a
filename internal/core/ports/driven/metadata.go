package driven

import (
	"context"

	"github.com/custodia-labs/corpora/internal/core/domain"
)

// GroupStore persists document groups.
// Backed by SQLite for metadata storage.
type GroupStore interface {
	// SaveGroup stores a new group and assigns its ID.
	// Returns domain.ErrAlreadyExists if the name is taken.
	SaveGroup(ctx context.Context, group *domain.Group) error

	// GetGroup retrieves a group by ID.
	GetGroup(ctx context.Context, id int64) (*domain.Group, error)

	// ListGroups returns all groups.
	ListGroups(ctx context.Context) ([]domain.Group, error)

	// DeleteGroup removes a group. Documents and chunk records owned by
	// the group are removed by the store's cascade.
	DeleteGroup(ctx context.Context, id int64) error
}

// DocumentStore persists document metadata.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all documents in a group.
	ListDocuments(ctx context.Context, groupID int64) ([]domain.Document, error)

	// DeleteDocument removes a document row.
	DeleteDocument(ctx context.Context, id string) error
}

// ChunkStore persists chunk-index records, the metadata side of the
// chunk join key shared with the vector index.
type ChunkStore interface {
	// SaveChunks stores records for a document in a single batch.
	SaveChunks(ctx context.Context, records []domain.ChunkRecord) error

	// GetChunks retrieves all records for a document, ordered by chunk index.
	GetChunks(ctx context.Context, documentID string) ([]domain.ChunkRecord, error)

	// DeleteChunks removes all records for a document.
	DeleteChunks(ctx context.Context, documentID string) error
}
