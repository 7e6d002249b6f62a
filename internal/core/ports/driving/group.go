package driving

import (
	"context"

	"github.com/custodia-labs/corpora/internal/core/domain"
)

// GroupService manages document groups.
type GroupService interface {
	// CreateGroup creates a group with a unique name and a routing description.
	CreateGroup(ctx context.Context, name, description string) (*domain.Group, error)

	// GetGroup retrieves a group by ID.
	GetGroup(ctx context.Context, id int64) (*domain.Group, error)

	// ListGroups returns all groups.
	ListGroups(ctx context.Context) ([]domain.Group, error)

	// DeleteGroup removes a group, cascading to its documents, chunk
	// records and vectors.
	DeleteGroup(ctx context.Context, id int64) error

	// ListDocuments returns all documents in a group.
	ListDocuments(ctx context.Context, groupID int64) ([]domain.Document, error)
}
