package driving

import (
	"context"

	"github.com/custodia-labs/corpora/internal/core/domain"
)

// RetrievalService answers natural-language questions from indexed chunks.
type RetrievalService interface {
	// Answer resolves the target group (explicitly or via the router),
	// runs a scoped similarity search and synthesises an answer from the
	// retrieved chunks. groupID nil means "route it"; a non-nil groupID
	// that does not exist is caller misuse and returns domain.ErrNotFound.
	Answer(ctx context.Context, query string, groupID *int64, k int) (*domain.Answer, error)

	// SearchInGroup runs the scoped similarity search only, returning
	// ranked chunks with scores and no synthesis.
	SearchInGroup(ctx context.Context, groupID int64, query string, k int) ([]domain.ChunkMatch, error)

	// Summarise produces a summary of an indexed document's text in at
	// most maxWords words.
	Summarise(ctx context.Context, documentID string, maxWords int) (string, error)
}

// GroupResolver maps a free-form query to a group, best effort.
type GroupResolver interface {
	// ResolveGroup classifies the query against the candidate groups'
	// descriptions. ok is false when no suitable group was identified;
	// the output is advisory, never guaranteed correct.
	ResolveGroup(ctx context.Context, query string, candidates []domain.Group) (groupID int64, ok bool, err error)
}
