package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Document represents a single ingested source file.
// It is the canonical representation after extraction and normalisation.
type Document struct {
	// ID is the hex-encoded SHA-256 of the raw file bytes.
	// Re-ingesting identical content yields the same ID, so storage
	// entries are overwritten rather than duplicated.
	ID string

	// Path is the original file location.
	Path string

	// FileType is the detected type (e.g., "pdf", "text", "code").
	FileType string

	// Content is the full text after extraction and normalisation.
	Content string

	// Language is the detected or configured content language.
	Language string

	// SizeBytes is the raw file size.
	SizeBytes int64

	// WordCount and CharCount are content statistics.
	WordCount int
	CharCount int

	// IngestedAt is when the document was processed.
	IngestedAt time.Time
}

// DocumentID derives the deterministic document ID from raw file bytes.
func DocumentID(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Chunk is a contiguous slice of a document's normalised text.
// It is the unit of embedding and retrieval.
type Chunk struct {
	// ID is deterministic: "{documentID}_chunk_{index}".
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Index is the ordinal position within the document.
	Index int

	// Text is the chunk content.
	Text string

	// Start and End are character offsets into the document content.
	Start int
	End   int

	// Embedding is the vector representation. It is owned by the chunk
	// and recomputed whenever the text changes.
	Embedding []float32
}

// ChunkID builds the deterministic chunk identifier.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}
