package driving

import (
	"context"

	"github.com/acervo-ai/acervo-cli/internal/core/domain"
)

// IngestionService drives the document-to-chunk-to-vector write path.
type IngestionService interface {
	// Ingest processes a single file to completion: extract, chunk,
	// embed, store. The result reports partial chunk failures; a set
	// Err means the document was not stored at all.
	Ingest(ctx context.Context, path string) domain.IngestResult

	// IngestDir walks a directory and ingests every supported file,
	// running up to the configured number of workers. Per-file failures
	// are aggregated into the run summary, never aborting the batch.
	// Cancelling the context stops the run between documents.
	IngestDir(ctx context.Context, dir string) (*domain.IngestionRun, error)
}

// RetrievalService drives the ranked query path.
type RetrievalService interface {
	// Query embeds the text, searches the vector store, filters by the
	// similarity threshold and ranks the survivors. A query with no
	// relevant content returns an empty response with confidence 0,
	// never an error.
	Query(ctx context.Context, text string, topK int) (*domain.RankedResponse, error)
}

// AskService combines retrieval with answer generation.
type AskService interface {
	// Ask retrieves relevant chunks and synthesises an attributed
	// answer. Generation failure degrades to a templated answer built
	// from the retrieved text.
	Ask(ctx context.Context, question string) (*domain.Answer, error)
}

// StoreAdmin exposes store maintenance to the CLI.
type StoreAdmin interface {
	// Status reports the active backend and entry count.
	Status(ctx context.Context) (backend string, entries int, err error)

	// Clear removes every stored entry.
	Clear(ctx context.Context) error
}
