package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acervo-ai/acervo-cli/internal/core/domain"
	"github.com/acervo-ai/acervo-cli/internal/core/ports/driven"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), "test_collection", 3)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func entry(id string, vec []float32, text string) driven.Entry {
	return driven.Entry{
		ID:     id,
		Vector: vec,
		Text:   text,
		Metadata: domain.EntryMetadata{
			DocumentID: "docA",
			SourcePath: "/docs/a.md",
			FileType:   "text",
		},
	}
}

func TestNewStore_InvalidDimension(t *testing.T) {
	_, err := NewStore(t.TempDir(), "c", 0)
	require.Error(t, err)
}

func TestNewStore_DefaultCollection(t *testing.T) {
	s, err := NewStore(t.TempDir(), "", 3)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, DefaultCollection, s.Collection())
}

func TestUpsertBatch_SearchRanking(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	failed, err := s.UpsertBatch(ctx, []driven.Entry{
		entry("docA_chunk_0", []float32{1, 0, 0}, "alpha"),
		entry("docA_chunk_1", []float32{0, 1, 0}, "beta"),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, failed)

	matches, err := s.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "docA_chunk_0", matches[0].ID)
	assert.InDelta(t, 1.0, matches[0].Similarity, 1e-6)
	assert.Equal(t, "docA_chunk_1", matches[1].ID)
	assert.InDelta(t, 0.0, matches[1].Similarity, 1e-6)
}

func TestUpsert_OverwriteKeepsInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, entry("first", []float32{1, 1, 0}, "a")))
	require.NoError(t, s.Upsert(ctx, entry("second", []float32{1, 1, 0}, "b")))

	// Overwriting "first" must not move it behind "second" in
	// tie-break order.
	require.NoError(t, s.Upsert(ctx, entry("first", []float32{1, 1, 0}, "a2")))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	matches, err := s.Search(ctx, []float32{1, 1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "first", matches[0].ID)
	assert.Equal(t, "a2", matches[0].Text)
	assert.Equal(t, "second", matches[1].ID)
}

func TestUpsertBatch_CountsMalformedEntries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	failed, err := s.UpsertBatch(ctx, []driven.Entry{
		entry("good", []float32{1, 0, 0}, "kept"),
		entry("wrong-dim", []float32{1}, "skipped"),
		entry("", []float32{1, 0, 0}, "skipped"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, failed)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSearch_DimensionMismatch(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Search(context.Background(), []float32{1, 0, 0, 0}, 5)
	require.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestSearch_MetadataRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := entry("id1", []float32{0, 0, 1}, "text")
	e.Metadata.ChunkIndex = 4
	e.Metadata.SiblingCount = 9
	require.NoError(t, s.Upsert(ctx, e))

	matches, err := s.Search(ctx, []float32{0, 0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "/docs/a.md", matches[0].Metadata.SourcePath)
	assert.Equal(t, 4, matches[0].Metadata.ChunkIndex)
	assert.Equal(t, 9, matches[0].Metadata.SiblingCount)
}

func TestPersistence_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewStore(dir, "c", 3)
	require.NoError(t, err)
	_, err = s.UpsertBatch(ctx, []driven.Entry{
		entry("id1", []float32{1, 0, 0}, "x"),
		entry("id2", []float32{0, 1, 0}, "y"),
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewStore(dir, "c", 3)
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	matches, err := reopened.Search(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "id1", matches[0].ID)
}

func TestCollections_AreIsolated(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	a, err := NewStore(dir, "collection_a", 3)
	require.NoError(t, err)
	defer a.Close()
	b, err := NewStore(dir, "collection_b", 3)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Upsert(ctx, entry("only-in-a", []float32{1, 0, 0}, "x")))

	n, err := b.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, b.Clear(ctx))
	n, err = a.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "clearing one collection must not touch another")
}

func TestClear_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, entry("id1", []float32{1, 0, 0}, "x")))
	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
