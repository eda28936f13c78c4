package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/acervo-ai/acervo-cli/internal/core/domain"
	"github.com/acervo-ai/acervo-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Embeddings are derived from text length so distinct inputs produce
// distinct but deterministic vectors.
type mockEmbeddingService struct {
	dims      int
	embedErr  error
	batchErr  error
	failTexts map[string]bool // per-text Embed failures
}

func (m *mockEmbeddingService) dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return 3
}

func (m *mockEmbeddingService) vectorFor(text string) []float32 {
	v := make([]float32, m.dimensions())
	v[len(text)%len(v)] = 1
	return v
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.failTexts[text] {
		return nil, fmt.Errorf("mock embed failure for %q", text)
	}
	return m.vectorFor(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	result := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int { return m.dimensions() }

func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error { return nil }

// mockVectorStore implements driven.VectorStore for testing. Entries
// are recorded in upsert order; Search returns canned matches.
type mockVectorStore struct {
	mu        sync.Mutex
	entries   []driven.Entry
	matches   []driven.Match
	upsertErr error
	searchErr error
	countErr  error
	clearErr  error
	failIDs   map[string]bool // entries rejected by UpsertBatch
}

func (m *mockVectorStore) Upsert(ctx context.Context, entry driven.Entry) error {
	_, err := m.UpsertBatch(ctx, []driven.Entry{entry})
	return err
}

func (m *mockVectorStore) UpsertBatch(_ context.Context, entries []driven.Entry) (int, error) {
	if m.upsertErr != nil {
		return 0, m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	failed := 0
	for _, e := range entries {
		if m.failIDs[e.ID] {
			failed++
			continue
		}
		m.entries = append(m.entries, e)
	}
	return failed, nil
}

func (m *mockVectorStore) Search(_ context.Context, _ []float32, topK int) ([]driven.Match, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if topK > 0 && topK < len(m.matches) {
		return m.matches[:topK], nil
	}
	return m.matches, nil
}

func (m *mockVectorStore) Count(_ context.Context) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), nil
}

func (m *mockVectorStore) Clear(_ context.Context) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

func (m *mockVectorStore) Close() error { return nil }

func (m *mockVectorStore) stored() []driven.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]driven.Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// mockRegistry implements driven.ExtractorRegistry for testing. It
// passes file bytes through as text, mimicking plaintext extraction.
type mockRegistry struct {
	extractErr error
	empty      bool
}

func (m *mockRegistry) Extract(_ context.Context, raw *driven.RawFile) (*driven.ExtractResult, error) {
	if m.extractErr != nil {
		return nil, m.extractErr
	}
	if m.empty {
		return &driven.ExtractResult{}, nil
	}
	return &driven.ExtractResult{
		Text:     string(raw.Content),
		FileType: "text",
	}, nil
}

func (m *mockRegistry) Register(_ driven.Extractor) {}

func (m *mockRegistry) SupportedMIMETypes() []string { return []string{"text/plain"} }

// mockGenerator implements driven.GenerationService for testing.
type mockGenerator struct {
	response string
	genErr   error
	prompts  []string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.genErr != nil {
		return "", m.genErr
	}
	return m.response, nil
}

func (m *mockGenerator) ModelName() string { return "mock-llm" }

func (m *mockGenerator) Ping(_ context.Context) error { return nil }

func (m *mockGenerator) Close() error { return nil }

// match builds a driven.Match with the given similarity.
func match(id, text string, similarity float64) driven.Match {
	return driven.Match{
		ID:         id,
		Similarity: similarity,
		Text:       text,
		Metadata: domain.EntryMetadata{
			DocumentID: strings.SplitN(id, "_chunk_", 2)[0],
			SourcePath: "/docs/" + id + ".md",
			FileType:   "text",
		},
	}
}
