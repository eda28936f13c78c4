package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acervo-ai/acervo-cli/internal/core/ports/driven"
)

func TestQuery_RanksAndScores(t *testing.T) {
	store := &mockVectorStore{matches: []driven.Match{
		match("docA_chunk_0", "most relevant", 0.9),
		match("docA_chunk_1", "somewhat relevant", 0.5),
		match("docB_chunk_0", "barely relevant", 0.2),
	}}
	svc := NewRetrievalService(&mockEmbeddingService{}, store)

	resp, err := svc.Query(context.Background(), "what is relevant?", 5)
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)

	assert.Equal(t, "docA_chunk_0", resp.Results[0].ChunkID)
	assert.Equal(t, "docA", resp.Results[0].DocumentID)
	assert.Equal(t, "most relevant", resp.Results[0].Text)

	// Confidence is the mean of surviving similarities.
	assert.InDelta(t, (0.9+0.5+0.2)/3, resp.Confidence, 1e-9)
}

func TestQuery_FiltersBelowThreshold(t *testing.T) {
	store := &mockVectorStore{matches: []driven.Match{
		match("docA_chunk_0", "good", 0.8),
		match("docB_chunk_0", "noise", 0.05),
	}}
	svc := NewRetrievalService(&mockEmbeddingService{}, store)

	resp, err := svc.Query(context.Background(), "question", 5)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "docA_chunk_0", resp.Results[0].ChunkID)
	assert.InDelta(t, 0.8, resp.Confidence, 1e-9)
}

func TestQuery_NothingRelevant(t *testing.T) {
	store := &mockVectorStore{matches: []driven.Match{
		match("docA_chunk_0", "noise", 0.01),
	}}
	svc := NewRetrievalService(&mockEmbeddingService{}, store)

	resp, err := svc.Query(context.Background(), "unanswerable", 5)
	require.NoError(t, err)
	assert.True(t, resp.Empty())
	assert.Zero(t, resp.Confidence)
}

func TestQuery_EmptyText(t *testing.T) {
	store := &mockVectorStore{searchErr: errors.New("should not be called")}
	svc := NewRetrievalService(&mockEmbeddingService{}, store)

	resp, err := svc.Query(context.Background(), "   ", 5)
	require.NoError(t, err)
	assert.True(t, resp.Empty())
}

func TestQuery_EmbeddingFailureDegrades(t *testing.T) {
	// With a failed query embedding the service searches with a zero
	// vector; everything scores 0 and filters out.
	store := &mockVectorStore{matches: []driven.Match{
		match("docA_chunk_0", "text", 0.0),
	}}
	svc := NewRetrievalService(&mockEmbeddingService{embedErr: errors.New("down")}, store)

	resp, err := svc.Query(context.Background(), "question", 5)
	require.NoError(t, err)
	assert.True(t, resp.Empty())
	assert.Zero(t, resp.Confidence)
}

func TestQuery_SearchError(t *testing.T) {
	store := &mockVectorStore{searchErr: errors.New("store broken")}
	svc := NewRetrievalService(&mockEmbeddingService{}, store)

	_, err := svc.Query(context.Background(), "question", 5)
	require.Error(t, err)
}

func TestQuery_DefaultTopK(t *testing.T) {
	matches := make([]driven.Match, 8)
	for i := range matches {
		matches[i] = match("doc_chunk_0", "text", 0.9)
	}
	store := &mockVectorStore{matches: matches}
	svc := NewRetrievalService(&mockEmbeddingService{}, store)

	resp, err := svc.Query(context.Background(), "question", 0)
	require.NoError(t, err)
	assert.Len(t, resp.Results, DefaultTopK)
}

func TestQuery_ConfidenceClamped(t *testing.T) {
	// Similarities above 1 can appear with denormalised vectors; the
	// confidence still stays within [0, 1].
	store := &mockVectorStore{matches: []driven.Match{
		match("docA_chunk_0", "text", 1.4),
	}}
	svc := NewRetrievalService(&mockEmbeddingService{}, store)

	resp, err := svc.Query(context.Background(), "question", 5)
	require.NoError(t, err)
	assert.Equal(t, 1.0, resp.Confidence)
}

func TestSetThreshold(t *testing.T) {
	store := &mockVectorStore{matches: []driven.Match{
		match("docA_chunk_0", "text", 0.5),
	}}
	svc := NewRetrievalService(&mockEmbeddingService{}, store)
	svc.SetThreshold(0.6)

	resp, err := svc.Query(context.Background(), "question", 5)
	require.NoError(t, err)
	assert.True(t, resp.Empty())
}
