package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/corpora/internal/core/domain"
)

// Ensure DOCX implements the interface.
var _ FormatExtractor = (*DOCX)(nil)

// DOCX extracts paragraph text from Word documents. A .docx file is a
// ZIP archive; the text lives in word/document.xml.
type DOCX struct{}

// NewDOCX creates a new DOCX extractor.
func NewDOCX() *DOCX {
	return &DOCX{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (d *DOCX) SupportedExtensions() []string {
	return []string{".docx"}
}

func (d *DOCX) Extract(_ context.Context, content []byte, filename string) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: %s is not a valid docx archive", domain.ErrExtraction, filename)
	}

	text, err := extractDocumentText(reader)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", domain.ErrExtraction, filename, err)
	}
	return text, nil
}

// extractDocumentText extracts text from word/document.xml.
// A docx with no document part yields empty text, not an error.
func extractDocumentText(reader *zip.Reader) (string, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", err
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}

		return parseDocumentXML(content), nil
	}
	return "", nil
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML extracts text content from the document XML.
func parseDocumentXML(content []byte) string {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return ""
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, r := range para.Runs {
			for _, text := range r.Text {
				result.WriteString(text.Content)
			}
		}
	}

	return strings.TrimSpace(result.String())
}
