package driving

import "context"

// IngestionService turns raw documents into indexed, searchable chunks
// consistent across the metadata store and the vector index.
type IngestionService interface {
	// Ingest extracts, chunks, embeds and dual-writes a document into the
	// given group. On any failure after the document row is created, the
	// partial writes are rolled back before the error is returned.
	Ingest(ctx context.Context, content []byte, filename string, groupID int64) (*IngestResult, error)

	// DeleteDocument removes a document, its chunk records and its vectors.
	DeleteDocument(ctx context.Context, documentID string) error
}

// IngestResult reports a committed ingestion.
type IngestResult struct {
	// DocumentID is the newly created document.
	DocumentID string

	// ChunkCount is the number of chunks indexed. Zero is a valid
	// outcome for an empty document.
	ChunkCount int
}
