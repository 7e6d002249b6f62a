// Package extractor provides text extraction from uploaded files.
// Each extractor knows how to pull plain text out of a set of file
// extensions; the Registry dispatches to the right one per upload.
package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.TextExtractor = (*Registry)(nil)

// FormatExtractor extracts text for a specific set of file extensions.
type FormatExtractor interface {
	driven.TextExtractor

	// SupportedExtensions returns lowercase extensions including the
	// leading dot, e.g. ".txt".
	SupportedExtensions() []string
}

// Registry routes extraction requests to the extractor registered for
// the file's extension.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]FormatExtractor
}

// NewRegistry creates a registry with the default extractors registered.
func NewRegistry() *Registry {
	r := &Registry{
		extractors: make(map[string]FormatExtractor),
	}
	r.Register(NewPlaintext())
	r.Register(NewMarkdown())
	r.Register(NewHTML())
	r.Register(NewDOCX())
	return r
}

// Register adds an extractor for all extensions it supports.
// Later registrations win on extension conflicts.
func (r *Registry) Register(e FormatExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range e.SupportedExtensions() {
		r.extractors[strings.ToLower(ext)] = e
	}
}

// Extract pulls text from content, dispatching on the filename's
// extension. Returns domain.ErrUnsupportedFormat for extensions with
// no registered extractor.
func (r *Registry) Extract(ctx context.Context, content []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	r.mu.RLock()
	e, ok := r.extractors[ext]
	r.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, ext)
	}
	return e.Extract(ctx, content, filename)
}

// SupportedExtensions returns all registered extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
