package extractor

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/corpora/internal/core/domain"
)

// Ensure Plaintext implements the interface.
var _ FormatExtractor = (*Plaintext)(nil)

// Plaintext handles files that are already text.
type Plaintext struct{}

// NewPlaintext creates a new plain text extractor.
func NewPlaintext() *Plaintext {
	return &Plaintext{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (p *Plaintext) SupportedExtensions() []string {
	return []string{".txt", ".csv", ".log"}
}

// Extract returns the content as a string after validating it is UTF-8.
// Binary content smuggled under a text extension is rejected with
// domain.ErrExtraction rather than poisoning the index.
func (p *Plaintext) Extract(_ context.Context, content []byte, filename string) (string, error) {
	if !utf8.Valid(content) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrExtraction, filename)
	}

	text := string(content)
	// Strip a UTF-8 BOM if present.
	text = strings.TrimPrefix(text, "\uFEFF")
	return text, nil
}
