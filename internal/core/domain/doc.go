// Package domain defines the core business entities for Acervo.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested source file with extracted text
//   - Chunk: The unit of embedding and retrieval
//   - EntryMetadata: Flat metadata stored with each vector entry
//   - RetrievedChunk / RankedResponse: Ephemeral query results
//   - IngestionRun: Per-run ingestion summary
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
