package domain

// PreviewLength bounds the chunk text carried in a source attribution.
const PreviewLength = 200

// RetrievedChunk is a single ranked retrieval hit. Ephemeral: created
// per query and discarded after the caller consumes it.
type RetrievedChunk struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the owning document.
	DocumentID string

	// Text is the full chunk text.
	Text string

	// Similarity is the normalised cosine similarity in [-1, 1].
	Similarity float64

	// Metadata is the stored metadata snapshot.
	Metadata EntryMetadata
}

// SourceAttribution describes where an answer came from. The preview is
// bounded so responses stay small regardless of chunk size.
type SourceAttribution struct {
	SourcePath string
	FileType   string
	Similarity float64
	Preview    string
}

// Attribution builds the bounded attribution for a retrieved chunk.
func (r RetrievedChunk) Attribution() SourceAttribution {
	preview := r.Text
	if len(preview) > PreviewLength {
		preview = preview[:PreviewLength] + "..."
	}
	return SourceAttribution{
		SourcePath: r.Metadata.SourcePath,
		FileType:   r.Metadata.FileType,
		Similarity: r.Similarity,
		Preview:    preview,
	}
}

// RankedResponse is the output of the retrieval engine.
type RankedResponse struct {
	// Results are the surviving hits, ranked descending by similarity.
	Results []RetrievedChunk

	// Confidence is the arithmetic mean of surviving similarities,
	// clamped to [0, 1]. Zero when no result passed the threshold.
	Confidence float64
}

// Empty reports whether no chunk passed the similarity threshold.
// This is a valid state, not an error.
func (r RankedResponse) Empty() bool {
	return len(r.Results) == 0
}

// Answer is the orchestrator's final attributed response.
type Answer struct {
	Question   string
	Text       string
	Confidence float64
	Sources    []SourceAttribution

	// Templated reports that generation was unavailable and the answer
	// was assembled directly from retrieved chunk text.
	Templated bool
}
