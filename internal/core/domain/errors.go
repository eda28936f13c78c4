package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoExtractableContent indicates extraction produced no usable text.
	// The document is skipped and reported in the run summary.
	ErrNoExtractableContent = errors.New("no extractable content")

	// ErrUnsupportedType indicates no extractor handles the file type.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrStoreUnavailable indicates the primary vector store failed to
	// initialise. The system runs on the fallback store instead.
	ErrStoreUnavailable = errors.New("primary store unavailable")

	// ErrCorruptPersistedState indicates the fallback store's companion
	// files disagree. The store starts empty rather than loading
	// misaligned index and metadata.
	ErrCorruptPersistedState = errors.New("corrupt persisted store state")

	// ErrDimensionMismatch indicates a vector does not match the store's
	// configured embedding dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable indicates the generation service is not
	// configured. Answers fall back to a templated response.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrRunCancelled indicates a batch ingestion run was cancelled
	// between documents.
	ErrRunCancelled = errors.New("ingestion run cancelled")
)
