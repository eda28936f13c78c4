// Package vectorstore selects and constructs the backing store for
// chunk embeddings. The SQLite store is preferred; when it cannot be
// opened the flat-file store takes over so ingestion and retrieval
// keep working on a degraded but durable backend.
package vectorstore

import (
	"fmt"

	"github.com/acervo-ai/acervo-cli/internal/adapters/driven/vectorstore/flatfile"
	"github.com/acervo-ai/acervo-cli/internal/adapters/driven/vectorstore/sqlite"
	"github.com/acervo-ai/acervo-cli/internal/core/ports/driven"
	"github.com/acervo-ai/acervo-cli/internal/logger"
)

// Options configures store construction.
type Options struct {
	// DataDir is the directory holding the database file or, for the
	// fallback store, the index and metadata files.
	DataDir string

	// Collection namespaces entries in the SQLite store. Empty means
	// sqlite.DefaultCollection.
	Collection string

	// Dimension is the embedding vector length. Required.
	Dimension int
}

// Open builds the primary store, falling back to the flat-file store
// if the primary cannot be opened. The returned Backend reports which
// one is active so callers can surface degraded mode to the user.
// Fallback selection happens once, at construction; the choice does
// not change for the lifetime of the store.
func Open(opts Options) (driven.VectorStore, driven.Backend, error) {
	if opts.Dimension <= 0 {
		return nil, "", fmt.Errorf("vectorstore: dimension must be positive, got %d", opts.Dimension)
	}

	primary, err := sqlite.NewStore(opts.DataDir, opts.Collection, opts.Dimension)
	if err == nil {
		return primary, driven.BackendPrimary, nil
	}
	logger.Warn("primary vector store unavailable, switching to fallback: %v", err)

	fallback, ferr := flatfile.New(opts.DataDir, opts.Dimension)
	if ferr != nil {
		return nil, "", fmt.Errorf("vectorstore: primary failed (%v), fallback failed: %w", err, ferr)
	}
	return fallback, driven.BackendFallback, nil
}
