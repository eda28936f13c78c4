package driven

import (
	"context"

	"github.com/acervo-ai/acervo-cli/internal/core/domain"
)

// Backend identifies which vector store implementation is active.
type Backend string

const (
	// BackendPrimary is the persistent SQLite-backed collection.
	BackendPrimary Backend = "primary"

	// BackendFallback is the in-process flat index used when the
	// primary store fails to initialise.
	BackendFallback Backend = "fallback"
)

// Entry is the stored representation of a chunk: one-to-one with a
// Chunk, many-to-one with a Document via the document_id metadata field.
type Entry struct {
	// ID is the chunk ID. Upserting an existing ID overwrites it.
	ID string

	// Vector is the embedding, fixed dimension per store.
	Vector []float32

	// Text is the chunk content.
	Text string

	// Metadata is the flat string-valued metadata.
	Metadata domain.EntryMetadata
}

// Match is a similarity search hit.
type Match struct {
	// ID is the matched entry.
	ID string

	// Similarity is the cosine similarity, normalised to [-1, 1].
	Similarity float64

	// Text is the stored chunk content.
	Text string

	// Metadata is the stored metadata snapshot.
	Metadata domain.EntryMetadata
}

// VectorStore persists (id, vector, text, metadata) tuples and answers
// nearest-neighbour queries. Both backends implement the same contract.
type VectorStore interface {
	// Upsert inserts or overwrites a single entry.
	Upsert(ctx context.Context, entry Entry) error

	// UpsertBatch inserts or overwrites entries. A malformed entry does
	// not abort the rest; the count of rejected entries is returned.
	UpsertBatch(ctx context.Context, entries []Entry) (failed int, err error)

	// Search returns up to topK matches ranked descending by similarity.
	// Exact ties rank earlier-inserted entries first.
	Search(ctx context.Context, query []float32, topK int) ([]Match, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Clear removes all entries. Idempotent.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}
