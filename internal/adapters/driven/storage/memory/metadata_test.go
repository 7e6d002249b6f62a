package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpora/internal/core/domain"
)

func TestMetadataStore_Groups(t *testing.T) {
	ctx := context.Background()
	store := NewMetadataStore()

	t.Run("save assigns id", func(t *testing.T) {
		g := &domain.Group{Name: "hr", Description: "HR policies and leave entitlements."}
		require.NoError(t, store.SaveGroup(ctx, g))
		assert.Equal(t, int64(1), g.ID)
	})

	t.Run("duplicate name rejected", func(t *testing.T) {
		g := &domain.Group{Name: "hr", Description: "something else"}
		assert.ErrorIs(t, store.SaveGroup(ctx, g), domain.ErrAlreadyExists)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := store.GetGroup(ctx, 999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("list ordered by id", func(t *testing.T) {
		require.NoError(t, store.SaveGroup(ctx, &domain.Group{Name: "it", Description: "IT support."}))
		groups, err := store.ListGroups(ctx)
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, "hr", groups[0].Name)
		assert.Equal(t, "it", groups[1].Name)
	})
}

func TestMetadataStore_DeleteGroupCascades(t *testing.T) {
	ctx := context.Background()
	store := NewMetadataStore()

	g := &domain.Group{Name: "hr", Description: "HR policies."}
	require.NoError(t, store.SaveGroup(ctx, g))

	doc := &domain.Document{ID: "d1", Filename: "handbook.txt", GroupID: g.ID, Status: domain.DocumentStatusReady, UploadedAt: time.Now()}
	require.NoError(t, store.SaveDocument(ctx, doc))
	require.NoError(t, store.SaveChunks(ctx, []domain.ChunkRecord{
		{ChunkID: domain.ChunkID("d1", 0), DocumentID: "d1", GroupID: g.ID, ChunkIndex: 0},
	}))

	require.NoError(t, store.DeleteGroup(ctx, g.ID))

	_, err := store.GetDocument(ctx, "d1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	records, err := store.GetChunks(ctx, "d1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMetadataStore_Chunks(t *testing.T) {
	ctx := context.Background()
	store := NewMetadataStore()

	records := []domain.ChunkRecord{
		{ChunkID: domain.ChunkID("d1", 1), DocumentID: "d1", GroupID: 1, ChunkIndex: 1},
		{ChunkID: domain.ChunkID("d1", 0), DocumentID: "d1", GroupID: 1, ChunkIndex: 0},
	}
	require.NoError(t, store.SaveChunks(ctx, records))

	got, err := store.GetChunks(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].ChunkIndex)
	assert.Equal(t, 1, got[1].ChunkIndex)

	require.NoError(t, store.DeleteChunks(ctx, "d1"))
	got, err = store.GetChunks(ctx, "d1")
	require.NoError(t, err)
	assert.Empty(t, got)
}
