package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storagemem "github.com/custodia-labs/corpora/internal/adapters/driven/storage/memory"
	vectormem "github.com/custodia-labs/corpora/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/splitter"
)

// ingestFixture bundles the stores and service for ingestion tests.
type ingestFixture struct {
	meta    *storagemem.MetadataStore
	vectors *vectormem.Index
	embed   *mockEmbedder
	svc     *IngestionService
	groupID int64
}

func newIngestFixture(t *testing.T) *ingestFixture {
	t.Helper()

	meta := storagemem.NewMetadataStore()
	vectors := vectormem.NewIndex()
	embed := newMockEmbedder()

	group := &domain.Group{Name: "hr", Description: "HR policies"}
	require.NoError(t, meta.SaveGroup(context.Background(), group))

	split := splitter.New(splitter.WithChunkSize(5), splitter.WithOverlap(1))
	svc := NewIngestionService(meta, meta, meta, vectors, embed, &mockExtractor{}, split)

	return &ingestFixture{
		meta:    meta,
		vectors: vectors,
		embed:   embed,
		svc:     svc,
		groupID: group.ID,
	}
}

func TestIngest_Success(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	content := []byte("Employees get 20 days of paid leave per year in this company policy document")

	result, err := f.svc.Ingest(ctx, content, "leave-policy.txt", f.groupID)
	require.NoError(t, err)
	assert.NotEmpty(t, result.DocumentID)
	assert.Greater(t, result.ChunkCount, 1)

	// Document is committed as ready.
	doc, err := f.meta.GetDocument(ctx, result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusReady, doc.Status)
	assert.Equal(t, "leave-policy.txt", doc.Filename)
	assert.Equal(t, f.groupID, doc.GroupID)

	// Chunk records exist, ordered, with derived IDs.
	records, err := f.meta.GetChunks(ctx, result.DocumentID)
	require.NoError(t, err)
	require.Len(t, records, result.ChunkCount)
	for i, rec := range records {
		assert.Equal(t, domain.ChunkID(result.DocumentID, i), rec.ChunkID)
		assert.Equal(t, i, rec.ChunkIndex)
		assert.Equal(t, f.groupID, rec.GroupID)
	}

	// One vector per chunk record.
	assert.Equal(t, result.ChunkCount, f.vectors.Len())
}

func TestIngest_GroupNotFound(t *testing.T) {
	f := newIngestFixture(t)

	_, err := f.svc.Ingest(context.Background(), []byte("text"), "a.txt", 9999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestIngest_EmptyDocument(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	result, err := f.svc.Ingest(ctx, []byte("   \n\t  "), "empty.txt", f.groupID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ChunkCount)

	doc, err := f.meta.GetDocument(ctx, result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusReady, doc.Status)
	assert.Equal(t, 0, f.vectors.Len())
}

func TestIngest_EmbedFailureRollsBack(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	f.embed.embedErr = errors.New("backend down")

	_, err := f.svc.Ingest(ctx, []byte("some document text that will be chunked"), "a.txt", f.groupID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIngestion))

	// Nothing survives the rollback.
	docs, err := f.meta.ListDocuments(ctx, f.groupID)
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Equal(t, 0, f.vectors.Len())
}

func TestIngest_MidBatchEmbedFailureRollsBack(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	// 10 words, chunk size 5, overlap 1: chunk 0 = words 1-5,
	// chunk 1 starts at word 5. Failing on the second chunk exercises
	// the partial-progress path.
	content := []byte("one two three four five six seven eight nine ten")
	f.embed.failAtText = "five six seven eight nine"

	_, err := f.svc.Ingest(ctx, content, "a.txt", f.groupID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIngestion))

	docs, err := f.meta.ListDocuments(ctx, f.groupID)
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Equal(t, 0, f.vectors.Len())
}

func TestIngest_VectorUpsertFailureRollsBack(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	failing := &failingVectorIndex{VectorIndex: f.vectors, upsertErr: errors.New("index unavailable")}
	split := splitter.New(splitter.WithChunkSize(5), splitter.WithOverlap(1))
	svc := NewIngestionService(f.meta, f.meta, f.meta, failing, f.embed, &mockExtractor{}, split)

	_, err := svc.Ingest(ctx, []byte("text that produces at least one chunk"), "a.txt", f.groupID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIngestion))

	docs, err := f.meta.ListDocuments(ctx, f.groupID)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestIngest_ChunkSaveFailureRollsBack(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	failing := &failingChunkStore{ChunkStore: f.meta, saveErr: errors.New("disk full")}
	split := splitter.New(splitter.WithChunkSize(5), splitter.WithOverlap(1))
	svc := NewIngestionService(f.meta, f.meta, failing, f.vectors, f.embed, &mockExtractor{}, split)

	_, err := svc.Ingest(ctx, []byte("text that produces at least one chunk"), "a.txt", f.groupID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIngestion))

	// Vectors written before the chunk failure must be rolled back too.
	assert.Equal(t, 0, f.vectors.Len())
	docs, err := f.meta.ListDocuments(ctx, f.groupID)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestIngest_ExtractionErrorsPassThrough(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	svc := NewIngestionService(f.meta, f.meta, f.meta, f.vectors, f.embed,
		&mockExtractor{extractErr: domain.ErrUnsupportedFormat}, nil)

	_, err := svc.Ingest(ctx, []byte("data"), "file.bin", f.groupID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFormat))
	assert.False(t, errors.Is(err, domain.ErrIngestion))

	// Nothing was written.
	docs, err := f.meta.ListDocuments(ctx, f.groupID)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestIngest_NoEmbedderConfigured(t *testing.T) {
	f := newIngestFixture(t)

	svc := NewIngestionService(f.meta, f.meta, f.meta, f.vectors, nil, &mockExtractor{}, nil)

	_, err := svc.Ingest(context.Background(), []byte("text"), "a.txt", f.groupID)
	assert.True(t, errors.Is(err, domain.ErrEmbeddingUnavailable))
}

func TestDeleteDocument_RemovesEverything(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	result, err := f.svc.Ingest(ctx, []byte("one two three four five six seven eight"), "a.txt", f.groupID)
	require.NoError(t, err)
	require.Greater(t, result.ChunkCount, 0)

	require.NoError(t, f.svc.DeleteDocument(ctx, result.DocumentID))

	_, err = f.meta.GetDocument(ctx, result.DocumentID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	records, err := f.meta.GetChunks(ctx, result.DocumentID)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 0, f.vectors.Len())
}

func TestDeleteDocument_OnlyTargetRemoved(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	first, err := f.svc.Ingest(ctx, []byte("alpha beta gamma delta epsilon zeta eta"), "a.txt", f.groupID)
	require.NoError(t, err)
	second, err := f.svc.Ingest(ctx, []byte("uno dos tres cuatro cinco seis siete"), "b.txt", f.groupID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteDocument(ctx, first.DocumentID))

	// The sibling document is untouched.
	doc, err := f.meta.GetDocument(ctx, second.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusReady, doc.Status)
	assert.Equal(t, second.ChunkCount, f.vectors.Len())
}

func TestDeleteDocument_NotFound(t *testing.T) {
	f := newIngestFixture(t)

	err := f.svc.DeleteDocument(context.Background(), "missing-doc")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
