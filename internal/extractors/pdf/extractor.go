// Package pdf extracts embedded text from PDF files.
//
// Scanned PDFs without a text layer yield empty text; OCR is a separate
// capability and is not attempted here.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	ledongthuc "github.com/ledongthuc/pdf"

	"github.com/acervo-ai/acervo-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles PDF documents.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string { return "pdf" }

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50 // Format-specific extractor
}

// Available always succeeds: parsing is pure Go.
func (e *Extractor) Available() error { return nil }

// Extract pulls the text layer out of the PDF. A malformed file is
// reported as an error so the registry can fall through; a well-formed
// PDF with no text layer produces an empty result.
func (e *Extractor) Extract(_ context.Context, raw *driven.RawFile) (*driven.ExtractResult, error) {
	reader, err := ledongthuc.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}

	return &driven.ExtractResult{
		Text:     buf.String(),
		FileType: "pdf",
		Metadata: map[string]any{
			"page_count": reader.NumPage(),
		},
	}, nil
}
