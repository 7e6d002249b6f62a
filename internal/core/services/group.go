package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
	"github.com/custodia-labs/corpora/internal/core/ports/driving"
	"github.com/custodia-labs/corpora/internal/logger"
)

// Ensure GroupService implements the interface.
var _ driving.GroupService = (*GroupService)(nil)

// GroupService manages document groups, the unit of retrieval scoping.
type GroupService struct {
	groupStore  driven.GroupStore
	docStore    driven.DocumentStore
	vectorIndex driven.VectorIndex
}

// NewGroupService creates a new group service.
// The vectorIndex parameter is optional (can be nil); without it, group
// deletion removes metadata only.
func NewGroupService(
	groupStore driven.GroupStore,
	docStore driven.DocumentStore,
	vectorIndex driven.VectorIndex,
) *GroupService {
	return &GroupService{
		groupStore:  groupStore,
		docStore:    docStore,
		vectorIndex: vectorIndex,
	}
}

// CreateGroup creates a group with a unique name and a routing description.
// The description matters: the router classifies queries against it, so
// a vague description degrades routing for every query.
func (s *GroupService) CreateGroup(ctx context.Context, name, description string) (*domain.Group, error) {
	group := &domain.Group{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
	}
	if err := group.Validate(); err != nil {
		return nil, err
	}

	if err := s.groupStore.SaveGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}

	logger.Info("Created group %d (%s)", group.ID, group.Name)
	return group, nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, id int64) (*domain.Group, error) {
	return s.groupStore.GetGroup(ctx, id)
}

// ListGroups returns all groups.
func (s *GroupService) ListGroups(ctx context.Context) ([]domain.Group, error) {
	return s.groupStore.ListGroups(ctx)
}

// DeleteGroup removes a group, cascading to its documents, chunk records
// and vectors. Vectors are purged first so a metadata failure leaves
// orphaned vectors unreachable rather than metadata pointing at nothing.
func (s *GroupService) DeleteGroup(ctx context.Context, id int64) error {
	// Verify the group exists before touching the vector index.
	if _, err := s.groupStore.GetGroup(ctx, id); err != nil {
		return err
	}

	if s.vectorIndex != nil {
		if err := s.vectorIndex.Delete(ctx, driven.Filter{GroupID: id}); err != nil {
			return fmt.Errorf("delete group vectors: %w", err)
		}
	}

	if err := s.groupStore.DeleteGroup(ctx, id); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}

	logger.Info("Deleted group %d", id)
	return nil
}

// ListDocuments returns all documents in a group.
// Returns domain.ErrNotFound if the group does not exist.
func (s *GroupService) ListDocuments(ctx context.Context, groupID int64) ([]domain.Document, error) {
	if _, err := s.groupStore.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.docStore.ListDocuments(ctx, groupID)
}
