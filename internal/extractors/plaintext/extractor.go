// Package plaintext handles plain text, markdown and source code files.
package plaintext

import (
	"context"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/acervo-ai/acervo-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// codeExtensions classifies source files separately from prose so the
// file type survives into retrieval attributions.
var codeExtensions = map[string]bool{
	".py": true, ".js": true, ".ts": true, ".java": true, ".cpp": true,
	".c": true, ".h": true, ".hpp": true, ".cs": true, ".php": true,
	".rb": true, ".go": true, ".rs": true, ".swift": true, ".kt": true,
	".scala": true, ".r": true, ".pl": true, ".sh": true, ".sql": true,
	".html": true, ".css": true, ".xml": true, ".json": true,
	".yaml": true, ".yml": true,
}

// Extractor handles files that are already text.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string { return "plaintext" }

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"text/html",
		"text/csv",
		"text/xml",
		"text/x-go",
		"text/x-python",
		"text/x-java",
		"text/x-c",
		"text/x-shellscript",
		"text/javascript",
		"application/json",
		"application/xml",
		"application/x-yaml",
	}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 5 // Fallback extractor
}

// Available always succeeds: plain text needs nothing from the host.
func (e *Extractor) Available() error { return nil }

// Extract passes the bytes through as text. Binary-looking content
// (invalid UTF-8) yields empty text so garbage never reaches chunking.
func (e *Extractor) Extract(_ context.Context, raw *driven.RawFile) (*driven.ExtractResult, error) {
	text := string(raw.Content)
	if !utf8.ValidString(text) {
		return &driven.ExtractResult{FileType: fileType(raw.Path)}, nil
	}

	return &driven.ExtractResult{
		Text:     text,
		FileType: fileType(raw.Path),
		Metadata: map[string]any{
			"extension": strings.ToLower(filepath.Ext(raw.Path)),
		},
	}, nil
}

// fileType classifies by extension: source code keeps its own type.
func fileType(path string) string {
	if codeExtensions[strings.ToLower(filepath.Ext(path))] {
		return "code"
	}
	return "text"
}
