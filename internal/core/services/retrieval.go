package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/acervo-ai/acervo-cli/internal/core/domain"
	"github.com/acervo-ai/acervo-cli/internal/core/ports/driven"
	"github.com/acervo-ai/acervo-cli/internal/core/ports/driving"
	"github.com/acervo-ai/acervo-cli/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// Default retrieval parameters.
const (
	// DefaultTopK is the number of candidates fetched per query.
	DefaultTopK = 5

	// DefaultSimilarityThreshold filters candidates whose cosine
	// similarity falls below it. Results under the threshold are
	// dropped rather than returned with low confidence.
	DefaultSimilarityThreshold = 0.15
)

// RetrievalService embeds queries and ranks vector store hits.
type RetrievalService struct {
	embedder  driven.EmbeddingService
	store     driven.VectorStore
	threshold float64
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(embedder driven.EmbeddingService, store driven.VectorStore) *RetrievalService {
	return &RetrievalService{
		embedder:  embedder,
		store:     store,
		threshold: DefaultSimilarityThreshold,
	}
}

// SetThreshold overrides the similarity threshold.
func (s *RetrievalService) SetThreshold(t float64) {
	s.threshold = t
}

// Query embeds the text, searches the store and ranks survivors.
// An empty or unanswerable query returns an empty response with
// confidence 0, never an error.
func (s *RetrievalService) Query(ctx context.Context, text string, topK int) (*domain.RankedResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		logger.Debug("Empty query, returning no results")
		return &domain.RankedResponse{}, nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	logger.Section("Retrieval")
	logger.Debug("Query: %q, topK: %d", text, topK)

	query, err := s.embedder.Embed(ctx, text)
	if err != nil {
		// A failed query embedding cannot match anything. Degrade to a
		// zero vector, which yields similarity 0 everywhere and filters
		// to an empty response.
		logger.Warn("Query embedding failed: %v", err)
		query = make([]float32, s.embedder.Dimensions())
	}

	matches, err := s.store.Search(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Store returned %d candidates", len(matches))

	results := make([]domain.RetrievedChunk, 0, len(matches))
	var sum float64
	for _, m := range matches {
		if m.Similarity < s.threshold {
			continue
		}
		results = append(results, domain.RetrievedChunk{
			ChunkID:    m.ID,
			DocumentID: m.Metadata.DocumentID,
			Text:       m.Text,
			Similarity: m.Similarity,
			Metadata:   m.Metadata,
		})
		sum += m.Similarity
	}

	resp := &domain.RankedResponse{Results: results}
	if len(results) > 0 {
		resp.Confidence = clamp01(sum / float64(len(results)))
	}

	logger.Info("Retrieved %d results, confidence %.2f", len(results), resp.Confidence)
	return resp, nil
}

// clamp01 bounds a value to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
