package driven

import "context"

// RawFile is a file's opaque bytes before extraction.
type RawFile struct {
	// Path is the original location.
	Path string

	// MIMEType is the detected content type.
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// ExtractResult is the output of text extraction.
type ExtractResult struct {
	// Text is the extracted plain text. Empty text for an unsupported
	// or corrupt file is not an error; the pipeline treats it as a
	// validation failure for that document only.
	Text string

	// FileType is the extractor's classification ("text", "pdf", ...).
	FileType string

	// Metadata carries extractor-specific values; flattened at the
	// store boundary.
	Metadata map[string]any
}

// Extractor converts raw file bytes into plain text.
// Each extractor handles specific MIME types.
type Extractor interface {
	// Name identifies the extractor for logging and availability checks.
	Name() string

	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific extractors should return 50-89.
	// Fallback extractors should return 1-9.
	Priority() int

	// Available reports whether the extractor can run in this process.
	// Unavailable extractors are skipped at registry build time and
	// logged once, rather than failing per call.
	Available() error

	// Extract converts the raw file to text.
	Extract(ctx context.Context, raw *RawFile) (*ExtractResult, error)
}

// ExtractorRegistry selects the best extractor for a file.
// Selection is by MIME type, then priority.
type ExtractorRegistry interface {
	// Extract dispatches to the best matching available extractor.
	// Files no extractor supports return an empty-text result, never
	// an error, so one odd file cannot abort a batch.
	Extract(ctx context.Context, raw *RawFile) (*ExtractResult, error)

	// Register adds an extractor. Extractors whose Available check
	// fails are recorded as unavailable and never dispatched to.
	Register(e Extractor)

	// SupportedMIMETypes returns all MIME types that can be extracted.
	SupportedMIMETypes() []string
}
