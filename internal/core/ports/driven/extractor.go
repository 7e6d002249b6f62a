package driven

import "context"

// TextExtractor turns raw document bytes into plain text.
// It is an external collaborator of the pipeline: the core never parses
// source formats itself.
type TextExtractor interface {
	// Extract returns the plain text of the document.
	// Returns domain.ErrUnsupportedFormat when no handler accepts the
	// filename's format, and domain.ErrExtraction on malformed input.
	Extract(ctx context.Context, content []byte, filename string) (string, error)
}
