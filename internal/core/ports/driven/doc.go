// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Extractor: Converts raw file bytes into plain text
//   - ExtractorRegistry: Selects the appropriate extractor per file
//   - VectorStore: Persists embeddings and answers similarity queries.
//     Two backends exist; the factory selects one at startup and the
//     process never fails over mid-run.
//   - EmbeddingService: Generates vector embeddings
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - GenerationService: Language model answer synthesis. Without it,
//     answers fall back to a template built from retrieved chunks.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
