// Package splitter provides deterministic word-window text segmentation.
package splitter

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/corpora/internal/core/domain"
)

// DefaultChunkSize is the default number of words per chunk.
const DefaultChunkSize = 500

// DefaultOverlap is the default number of overlapping words.
const DefaultOverlap = 50

// Splitter splits text into overlapping word windows.
// The same input and parameters always produce the same sequence.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the window size in words.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between windows in words.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a splitter with the given options.
// Invalid combinations are reported by Split, not here, so a
// misconfigured splitter fails loudly instead of silently rechunking.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Split segments text into windows of up to chunkSize words with overlap
// words repeated between consecutive windows. Words are whitespace
// delimited. Output order is the document's reading order and defines
// the 0-based chunk index. The final window may be shorter.
//
// Returns domain.ErrInvalidChunking unless 0 <= overlap < chunkSize.
func (s *Splitter) Split(text string) ([]string, error) {
	if s.chunkSize <= 0 || s.overlap < 0 || s.overlap >= s.chunkSize {
		return nil, fmt.Errorf("%w: chunk size %d, overlap %d",
			domain.ErrInvalidChunking, s.chunkSize, s.overlap)
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}

	step := s.chunkSize - s.overlap
	chunks := make([]string, 0, len(words)/step+1)

	for start := 0; start < len(words); start += step {
		end := start + s.chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}

	return chunks, nil
}

// ChunkSize returns the configured window size in words.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the configured overlap in words.
func (s *Splitter) Overlap() int {
	return s.overlap
}
