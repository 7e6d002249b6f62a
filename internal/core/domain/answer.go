package domain

// Answer is the result of a retrieval query, synthesised or not.
type Answer struct {
	// Query is the original user question.
	Query string

	// Answer is the synthesised text, or a short explanation when
	// no group or no documents matched.
	Answer string

	// GroupUsed is the name of the group the search was scoped to.
	// Empty when no group could be resolved.
	GroupUsed string

	// ChunksFound is the number of chunks retrieved as grounding context.
	ChunksFound int
}

// ChunkMatch is a single ranked hit from a scoped similarity search.
type ChunkMatch struct {
	// ChunkID identifies the matched chunk in both stores.
	ChunkID string

	// DocumentID is the owning document.
	DocumentID string

	// ChunkIndex is the chunk's position in its document.
	ChunkIndex int

	// Content is the chunk text.
	Content string

	// Score is the distance to the query vector. Lower is better.
	// Raw scores are not comparable across index backends; only the
	// ordering within one query is meaningful.
	Score float64
}
