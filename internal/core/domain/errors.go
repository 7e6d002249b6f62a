package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidChunking indicates invalid chunking parameters.
	// Overlap must be strictly less than chunk size or splitting never advances.
	ErrInvalidChunking = errors.New("invalid chunking parameters")

	// ErrUnsupportedFormat indicates no extractor accepts the document format.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrExtraction indicates text extraction failed on a malformed document.
	ErrExtraction = errors.New("text extraction failed")

	// ErrIngestion wraps any failure during embed or dual-store writes.
	// By the time it surfaces, partial writes have been rolled back.
	ErrIngestion = errors.New("ingestion failed")

	// ErrRouting indicates the group classifier call itself failed.
	// Distinct from the classifier answering "no suitable group".
	ErrRouting = errors.New("group routing failed")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Answer synthesis and group routing are disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Ingestion and similarity search are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
)
