package domain

import (
	"fmt"
	"sort"
	"strconv"
)

// EntryMetadata is the flat, string-valued metadata stored alongside a
// vector entry. The primary backend rejects nested values, so the schema
// is a closed set of primitive fields flattened at the store boundary.
type EntryMetadata struct {
	DocumentID   string
	SourcePath   string
	FileType     string
	Language     string
	ChunkIndex   int
	ChunkSize    int
	SiblingCount int
	WordCount    int
	CharCount    int
	IngestedAt   string
}

// Map returns the metadata as a flat string map for storage.
func (m EntryMetadata) Map() map[string]string {
	return map[string]string{
		"document_id":   m.DocumentID,
		"source_path":   m.SourcePath,
		"file_type":     m.FileType,
		"language":      m.Language,
		"chunk_index":   strconv.Itoa(m.ChunkIndex),
		"chunk_size":    strconv.Itoa(m.ChunkSize),
		"sibling_count": strconv.Itoa(m.SiblingCount),
		"word_count":    strconv.Itoa(m.WordCount),
		"char_count":    strconv.Itoa(m.CharCount),
		"ingested_at":   m.IngestedAt,
	}
}

// MetadataFromMap reconstructs EntryMetadata from a stored flat map.
// Unknown keys are ignored; missing numeric fields default to zero.
func MetadataFromMap(m map[string]string) EntryMetadata {
	atoi := func(k string) int {
		n, _ := strconv.Atoi(m[k])
		return n
	}
	return EntryMetadata{
		DocumentID:   m["document_id"],
		SourcePath:   m["source_path"],
		FileType:     m["file_type"],
		Language:     m["language"],
		ChunkIndex:   atoi("chunk_index"),
		ChunkSize:    atoi("chunk_size"),
		SiblingCount: atoi("sibling_count"),
		WordCount:    atoi("word_count"),
		CharCount:    atoi("char_count"),
		IngestedAt:   m["ingested_at"],
	}
}

// FlattenMetadata converts an arbitrary metadata map into flat string
// values. Nested maps and slices cannot be represented by the primary
// backend; they are dropped and their keys returned so the caller can
// log the loss instead of silently discarding fields.
func FlattenMetadata(in map[string]any) (flat map[string]string, dropped []string) {
	flat = make(map[string]string, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case string:
			flat[k] = val
		case bool:
			flat[k] = strconv.FormatBool(val)
		case int:
			flat[k] = strconv.Itoa(val)
		case int64:
			flat[k] = strconv.FormatInt(val, 10)
		case float64:
			flat[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case float32:
			flat[k] = strconv.FormatFloat(float64(val), 'f', -1, 32)
		case fmt.Stringer:
			flat[k] = val.String()
		default:
			dropped = append(dropped, k)
		}
	}
	sort.Strings(dropped)
	return flat, dropped
}
