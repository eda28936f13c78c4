package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentID_Deterministic(t *testing.T) {
	a := DocumentID([]byte("same content"))
	b := DocumentID([]byte("same content"))
	assert.Equal(t, a, b)

	c := DocumentID([]byte("different content"))
	assert.NotEqual(t, a, c)
}

func TestDocumentID_HexEncoded(t *testing.T) {
	id := DocumentID([]byte("content"))
	assert.Len(t, id, 64)
	assert.Regexp(t, "^[0-9a-f]+$", id)
}

func TestDocumentID_EmptyInput(t *testing.T) {
	// Empty bytes still hash to a stable ID; content validation happens
	// upstream in the ingestion pipeline.
	assert.NotEmpty(t, DocumentID(nil))
	assert.Equal(t, DocumentID(nil), DocumentID([]byte{}))
}

func TestChunkID_Format(t *testing.T) {
	assert.Equal(t, "abc123_chunk_0", ChunkID("abc123", 0))
	assert.Equal(t, "abc123_chunk_42", ChunkID("abc123", 42))
}

func TestChunkID_Deterministic(t *testing.T) {
	doc := DocumentID([]byte("doc"))
	assert.Equal(t, ChunkID(doc, 3), ChunkID(doc, 3))
}
