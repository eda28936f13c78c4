package domain

import "time"

// IngestResult reports the outcome of ingesting a single document.
type IngestResult struct {
	// Path is the source file.
	Path string

	// DocumentID is set when extraction succeeded.
	DocumentID string

	// ChunksStored is the number of chunks upserted into the store.
	ChunksStored int

	// ChunksFailed is the number of chunks the store rejected.
	ChunksFailed int

	// ChunksDegraded is the number of chunks stored with a zero vector
	// because embedding failed. They remain retrievable by ID but rank
	// last in similarity search.
	ChunksDegraded int

	// Err is the per-document failure, if any. A set Err means the
	// document was not stored.
	Err error
}

// Success reports whether the document made it into the store.
func (r IngestResult) Success() bool {
	return r.Err == nil
}

// FailedPath pairs a file path with the reason it was skipped.
type FailedPath struct {
	Path   string
	Reason string
}

// IngestionRun is the summary of one batch ingestion. It replaces
// process-wide counters so independent runs can execute concurrently
// and be inspected after the fact.
type IngestionRun struct {
	// ID uniquely identifies the run.
	ID string

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time

	// DocumentsProcessed is the count of successfully ingested files.
	DocumentsProcessed int

	// DocumentsFailed is the count of files that produced no stored
	// document.
	DocumentsFailed int

	// ChunksStored is the total across all documents.
	ChunksStored int

	// ChunksDegraded is the total of zero-vector chunks across the run.
	ChunksDegraded int

	// Failed lists skipped files with reasons.
	Failed []FailedPath

	// Cancelled reports whether the run stopped early.
	Cancelled bool
}
