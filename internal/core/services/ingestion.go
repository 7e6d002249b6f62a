package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
	"github.com/custodia-labs/corpora/internal/core/ports/driving"
	"github.com/custodia-labs/corpora/internal/logger"
	"github.com/custodia-labs/corpora/internal/splitter"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// IngestionService turns uploaded files into indexed chunks.
//
// The write order is fixed: document row (pending), vectors, chunk
// records, document row (ready). Any failure after the document row is
// created triggers a rollback of everything written so far, so a
// document is either fully searchable or absent.
type IngestionService struct {
	groupStore  driven.GroupStore
	docStore    driven.DocumentStore
	chunkStore  driven.ChunkStore
	vectorIndex driven.VectorIndex
	embedder    driven.EmbeddingService
	extractor   driven.TextExtractor
	splitter    *splitter.Splitter
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(
	groupStore driven.GroupStore,
	docStore driven.DocumentStore,
	chunkStore driven.ChunkStore,
	vectorIndex driven.VectorIndex,
	embedder driven.EmbeddingService,
	extractor driven.TextExtractor,
	split *splitter.Splitter,
) *IngestionService {
	if split == nil {
		split = splitter.New()
	}
	return &IngestionService{
		groupStore:  groupStore,
		docStore:    docStore,
		chunkStore:  chunkStore,
		vectorIndex: vectorIndex,
		embedder:    embedder,
		extractor:   extractor,
		splitter:    split,
	}
}

// Ingest extracts, chunks, embeds and dual-writes a document into the
// given group.
func (s *IngestionService) Ingest(
	ctx context.Context, content []byte, filename string, groupID int64,
) (*driving.IngestResult, error) {
	logger.Section("Document Ingestion")
	logger.Debug("File: %s, group: %d, %d bytes", filename, groupID, len(content))

	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.vectorIndex == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	// The group must exist before anything is written.
	if _, err := s.groupStore.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}

	// Extraction and chunking failures happen before any write, so no
	// rollback is needed for them.
	text, err := s.extractor.Extract(ctx, content, filename)
	if err != nil {
		return nil, err
	}

	chunks, err := s.splitter.Split(text)
	if err != nil {
		return nil, err
	}
	logger.Debug("Split into %d chunks", len(chunks))

	doc := &domain.Document{
		ID:         uuid.NewString(),
		Filename:   filename,
		GroupID:    groupID,
		Status:     domain.DocumentStatusPending,
		UploadedAt: time.Now().UTC(),
	}
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("%w: save document: %v", domain.ErrIngestion, err)
	}

	// Empty documents commit with zero chunks.
	if len(chunks) == 0 {
		doc.Status = domain.DocumentStatusReady
		if err := s.docStore.SaveDocument(ctx, doc); err != nil {
			s.rollback(ctx, doc.ID)
			return nil, fmt.Errorf("%w: mark document ready: %v", domain.ErrIngestion, err)
		}
		logger.Info("Ingested %s as %s (0 chunks)", filename, doc.ID)
		return &driving.IngestResult{DocumentID: doc.ID, ChunkCount: 0}, nil
	}

	vectors, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		s.rollback(ctx, doc.ID)
		return nil, fmt.Errorf("%w: embed chunks: %v", domain.ErrIngestion, err)
	}
	if len(vectors) != len(chunks) {
		s.rollback(ctx, doc.ID)
		return nil, fmt.Errorf("%w: embedder returned %d vectors for %d chunks",
			domain.ErrIngestion, len(vectors), len(chunks))
	}

	// Vectors before chunk records: the metadata row is the commit
	// point, so orphaned vectors from a mid-flight crash are invisible
	// to reads and cleaned up by the next delete.
	entries := make([]driven.VectorEntry, len(chunks))
	records := make([]domain.ChunkRecord, len(chunks))
	now := time.Now().UTC()
	for i, chunk := range chunks {
		chunkID := domain.ChunkID(doc.ID, i)
		entries[i] = driven.VectorEntry{
			ID:     chunkID,
			Vector: vectors[i],
			Text:   chunk,
			Attributes: driven.Attributes{
				DocumentID: doc.ID,
				GroupID:    groupID,
				ChunkIndex: i,
			},
		}
		records[i] = domain.ChunkRecord{
			ChunkID:    chunkID,
			DocumentID: doc.ID,
			GroupID:    groupID,
			ChunkIndex: i,
			CreatedAt:  now,
		}
	}

	if err := s.vectorIndex.Upsert(ctx, entries); err != nil {
		s.rollback(ctx, doc.ID)
		return nil, fmt.Errorf("%w: upsert vectors: %v", domain.ErrIngestion, err)
	}

	if err := s.chunkStore.SaveChunks(ctx, records); err != nil {
		s.rollback(ctx, doc.ID)
		return nil, fmt.Errorf("%w: save chunk records: %v", domain.ErrIngestion, err)
	}

	doc.Status = domain.DocumentStatusReady
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		s.rollback(ctx, doc.ID)
		return nil, fmt.Errorf("%w: mark document ready: %v", domain.ErrIngestion, err)
	}

	logger.Info("Ingested %s as %s (%d chunks)", filename, doc.ID, len(chunks))
	return &driving.IngestResult{DocumentID: doc.ID, ChunkCount: len(chunks)}, nil
}

// DeleteDocument removes a document, its chunk records and its vectors.
// Vectors go first: if a later step fails, leftover vectors are
// unreachable through metadata, whereas leftover metadata would point
// at vectors that no longer exist.
func (s *IngestionService) DeleteDocument(ctx context.Context, documentID string) error {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return err
	}

	if s.vectorIndex != nil {
		if err := s.vectorIndex.Delete(ctx, driven.Filter{DocumentID: documentID}); err != nil {
			return fmt.Errorf("delete vectors: %w", err)
		}
	}

	if err := s.chunkStore.DeleteChunks(ctx, documentID); err != nil {
		return fmt.Errorf("delete chunk records: %w", err)
	}

	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	logger.Info("Deleted document %s", documentID)
	return nil
}

// rollback undoes a failed ingestion: vectors, chunk records, then the
// document row. Best effort; rollback errors are logged, not returned,
// because the caller already has the original failure.
func (s *IngestionService) rollback(ctx context.Context, documentID string) {
	logger.Warn("Rolling back ingestion of document %s", documentID)

	if s.vectorIndex != nil {
		if err := s.vectorIndex.Delete(ctx, driven.Filter{DocumentID: documentID}); err != nil {
			logger.Warn("Rollback: delete vectors for %s: %v", documentID, err)
		}
	}
	if err := s.chunkStore.DeleteChunks(ctx, documentID); err != nil {
		logger.Warn("Rollback: delete chunk records for %s: %v", documentID, err)
	}
	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		logger.Warn("Rollback: delete document %s: %v", documentID, err)
	}
}
