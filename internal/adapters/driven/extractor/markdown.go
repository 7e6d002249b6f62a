package extractor

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/corpora/internal/core/domain"
)

// Ensure Markdown implements the interface.
var _ FormatExtractor = (*Markdown)(nil)

// Markdown strips formatting from markdown files so only prose reaches
// the splitter and the embedder.
type Markdown struct{}

// NewMarkdown creates a new markdown extractor.
func NewMarkdown() *Markdown {
	return &Markdown{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (m *Markdown) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

func (m *Markdown) Extract(_ context.Context, content []byte, filename string) (string, error) {
	if !utf8.Valid(content) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrExtraction, filename)
	}
	return stripMarkdown(string(content)), nil
}

var (
	mdCodeBlock    = regexp.MustCompile("(?s)```[^`]*```")
	mdInlineCode   = regexp.MustCompile("`[^`]+`")
	mdImages       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	mdLinks        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	mdHeadings     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdBlockquote   = regexp.MustCompile(`(?m)^>\s*`)
	mdRules        = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	mdListMarkers  = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	mdNumberedList = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	mdNewlines     = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown removes common markdown formatting. A simplified
// implementation that handles common cases; links keep their text,
// code blocks are dropped entirely.
func stripMarkdown(content string) string {
	content = mdCodeBlock.ReplaceAllString(content, "")
	content = mdInlineCode.ReplaceAllString(content, "")
	content = mdImages.ReplaceAllString(content, "")
	content = mdLinks.ReplaceAllString(content, "$1")
	content = mdHeadings.ReplaceAllString(content, "")

	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")
	content = strings.ReplaceAll(content, "*", "")
	content = strings.ReplaceAll(content, "_", " ")

	content = mdBlockquote.ReplaceAllString(content, "")
	content = mdRules.ReplaceAllString(content, "")
	content = mdListMarkers.ReplaceAllString(content, "")
	content = mdNumberedList.ReplaceAllString(content, "")
	content = mdNewlines.ReplaceAllString(content, "\n\n")

	return strings.TrimSpace(content)
}
