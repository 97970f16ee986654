// Package extract provides the built-in extraction and translation
// back-ends: plain-text document reading and JSON structured decoding.
// Model-backed implementations plug in behind the same pipeline contracts.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/auditkit/invaudit/pkg/invoice"
	"github.com/auditkit/invaudit/pkg/pipeline"
)

// textExtensions are document types read as UTF-8 text. Binary formats
// (scans, PDFs) need an OCR-backed extractor and yield no content here.
var textExtensions = map[string]bool{
	".json": true,
	".txt":  true,
}

// FileTextExtractor reads document content from disk.
type FileTextExtractor struct{}

// Extract returns the document text. Binary document types produce empty
// text, which the pipeline treats as "no content", not as an error.
func (FileTextExtractor) Extract(ctx context.Context, path string) (string, error) {
	if !textExtensions[strings.ToLower(filepath.Ext(path))] {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}
	return string(data), nil
}

// JSONExtractor decodes structured invoice fields from JSON document text.
type JSONExtractor struct{}

// ExtractStructured parses the text as an invoice JSON document.
func (JSONExtractor) ExtractStructured(ctx context.Context, text, filename string) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(&inv); err != nil {
		return nil, fmt.Errorf("decoding invoice %s: %w", filepath.Base(filename), err)
	}
	inv.OriginalFilename = filename
	return &inv, nil
}

// IdentityTranslator passes text through unchanged with a fixed
// confidence. It stands in when no translation back-end is configured;
// validation then runs on the source-language text.
type IdentityTranslator struct {
	Confidence float64
}

func (t IdentityTranslator) Translate(ctx context.Context, text string) (pipeline.Translation, error) {
	conf := t.Confidence
	return pipeline.Translation{Text: text, Confidence: &conf}, nil
}
