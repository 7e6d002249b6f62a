package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func seed(t *testing.T, idx *Index) {
	t.Helper()
	require.NoError(t, idx.Upsert(context.Background(), []driven.VectorEntry{
		{ID: "doc_d1_chunk_0", Vector: []float32{1, 0}, Text: "leave policy",
			Attributes: driven.Attributes{DocumentID: "d1", GroupID: 1, ChunkIndex: 0}},
		{ID: "doc_d1_chunk_1", Vector: []float32{0, 1}, Text: "remote work",
			Attributes: driven.Attributes{DocumentID: "d1", GroupID: 1, ChunkIndex: 1}},
		{ID: "doc_d2_chunk_0", Vector: []float32{1, 0}, Text: "health cover",
			Attributes: driven.Attributes{DocumentID: "d2", GroupID: 2, ChunkIndex: 0}},
	}))
}

func TestIndex_RoundTrip(t *testing.T) {
	idx := newTestIndex(t)
	seed(t, idx)

	hits, err := idx.Query(context.Background(), []float32{1, 0}, 5, driven.Filter{GroupID: 1})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "doc_d1_chunk_0", hits[0].ID)
	assert.Equal(t, "leave policy", hits[0].Text)
	assert.Equal(t, "d1", hits[0].Attributes.DocumentID)
	assert.Equal(t, 0, hits[0].Attributes.ChunkIndex)
	assert.Less(t, hits[0].Score, hits[1].Score)
}

func TestIndex_GroupScoping(t *testing.T) {
	idx := newTestIndex(t)
	seed(t, idx)

	hits, err := idx.Query(context.Background(), []float32{1, 0}, 10, driven.Filter{GroupID: 2})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc_d2_chunk_0", hits[0].ID)
}

func TestIndex_UpsertReplaces(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	e := driven.VectorEntry{ID: "c", Vector: []float32{1, 1}, Text: "v1",
		Attributes: driven.Attributes{DocumentID: "d", GroupID: 1}}
	require.NoError(t, idx.Upsert(ctx, []driven.VectorEntry{e}))
	e.Text = "v2"
	require.NoError(t, idx.Upsert(ctx, []driven.VectorEntry{e}))

	hits, err := idx.Query(ctx, []float32{1, 1}, 10, driven.Filter{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "v2", hits[0].Text)
}

func TestIndex_DeleteByDocument(t *testing.T) {
	idx := newTestIndex(t)
	seed(t, idx)
	ctx := context.Background()

	require.NoError(t, idx.Delete(ctx, driven.Filter{DocumentID: "d1"}))

	hits, err := idx.Query(ctx, []float32{1, 0}, 10, driven.Filter{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "d2", hits[0].Attributes.DocumentID)

	// Repeating the delete is a harmless no-op.
	require.NoError(t, idx.Delete(ctx, driven.Filter{DocumentID: "d1"}))
}

func TestIndex_EmptyResult(t *testing.T) {
	idx := newTestIndex(t)

	hits, err := idx.Query(context.Background(), []float32{1, 0}, 5, driven.Filter{GroupID: 9})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestFloat32BlobRoundTrip(t *testing.T) {
	in := []float32{0.25, -1.5, 3.125, 0}
	out := bytesToFloat32Slice(float32SliceToBytes(in))
	assert.Equal(t, in, out)

	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
