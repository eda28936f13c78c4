// Package flatfile provides the degraded-mode vector store: an
// in-process flat index searched by brute force, serialised to a pair
// of companion files after every batch write.
//
// It exists only as the fallback when the primary store cannot
// initialise; O(n) search is acceptable on that path.
package flatfile

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/acervo-ai/acervo-cli/internal/core/domain"
	"github.com/acervo-ai/acervo-cli/internal/core/ports/driven"
	"github.com/acervo-ai/acervo-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Companion file names. Both are written together; on load they must
// agree on entry count or the store starts empty.
const (
	IndexFile    = "index.bin"
	MetadataFile = "metadata.json"
)

// indexMagic guards against loading a foreign or truncated blob.
const indexMagic = uint32(0x41435256) // "ACRV"

// Store holds parallel slices of vectors and metadata plus an
// id-to-position index. Writers take the write lock; searches share the
// read lock so a search never observes the slices mid-update.
type Store struct {
	mu        sync.RWMutex
	dir       string
	dimension int

	ids     []string
	vectors [][]float32
	texts   []string
	metas   []domain.EntryMetadata
	byID    map[string]int
}

// metadataBlob is the on-disk metadata layout, positionally aligned
// with the vector blob.
type metadataBlob struct {
	IDs      []string            `json:"ids"`
	Texts    []string            `json:"texts"`
	Metadata []map[string]string `json:"metadata"`
}

// New creates a flat store rooted at dir, reloading previously
// persisted state. Inconsistent companion files are treated as an empty
// store (fail closed) and reported with a startup warning.
func New(dir string, dimension int) (*Store, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("flatfile: %w: dimension %d", domain.ErrInvalidInput, dimension)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("flatfile: create store dir: %w", err)
	}

	s := &Store{
		dir:       dir,
		dimension: dimension,
		byID:      make(map[string]int),
	}

	if err := s.load(); err != nil {
		logger.Warn("Flat store state discarded: %v", err)
		s.reset()
	}

	return s, nil
}

// Upsert inserts or overwrites a single entry and persists.
func (s *Store) Upsert(ctx context.Context, entry driven.Entry) error {
	failed, err := s.UpsertBatch(ctx, []driven.Entry{entry})
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("flatfile: upsert %s: %w", entry.ID, domain.ErrDimensionMismatch)
	}
	return nil
}

// UpsertBatch inserts or overwrites entries under one write lock, then
// serialises both companion files. A malformed entry is counted and
// skipped, not fatal. Overwrites keep the entry's original position, so
// insertion order (the tie-break order) is stable across re-ingestion.
func (s *Store) UpsertBatch(_ context.Context, entries []driven.Entry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	failed := 0
	for _, e := range entries {
		if e.ID == "" || len(e.Vector) != s.dimension {
			failed++
			continue
		}
		vec := append([]float32(nil), e.Vector...)
		if pos, ok := s.byID[e.ID]; ok {
			s.vectors[pos] = vec
			s.texts[pos] = e.Text
			s.metas[pos] = e.Metadata
			continue
		}
		s.byID[e.ID] = len(s.ids)
		s.ids = append(s.ids, e.ID)
		s.vectors = append(s.vectors, vec)
		s.texts = append(s.texts, e.Text)
		s.metas = append(s.metas, e.Metadata)
	}

	if err := s.persistLocked(); err != nil {
		return failed, fmt.Errorf("flatfile: persist: %w", err)
	}
	return failed, nil
}

// Search computes cosine similarity against every stored vector and
// returns up to topK matches, descending, ties broken by insertion
// order. Zero vectors (degraded embeddings) score 0 and sort last.
func (s *Store) Search(_ context.Context, query []float32, topK int) ([]driven.Match, error) {
	if len(query) != s.dimension {
		return nil, fmt.Errorf("flatfile: query: %w (got %d want %d)",
			domain.ErrDimensionMismatch, len(query), s.dimension)
	}
	if topK <= 0 {
		topK = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		pos int
		sim float64
	}
	candidates := make([]scored, len(s.vectors))
	qn := norm(query)
	for i, v := range s.vectors {
		candidates[i] = scored{pos: i, sim: cosine(query, qn, v)}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].sim > candidates[j].sim
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}
	matches := make([]driven.Match, 0, topK)
	for _, c := range candidates[:topK] {
		matches = append(matches, driven.Match{
			ID:         s.ids[c.pos],
			Similarity: c.sim,
			Text:       s.texts[c.pos],
			Metadata:   s.metas[c.pos],
		})
	}
	return matches, nil
}

// Count returns the number of stored entries.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids), nil
}

// Clear removes all entries and persists the empty state. Idempotent.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	if err := s.persistLocked(); err != nil {
		return fmt.Errorf("flatfile: persist after clear: %w", err)
	}
	return nil
}

// Close releases nothing; state is already on disk after every write.
func (s *Store) Close() error { return nil }

func (s *Store) reset() {
	s.ids = nil
	s.vectors = nil
	s.texts = nil
	s.metas = nil
	s.byID = make(map[string]int)
}

// persistLocked writes both companion files. Caller holds the write lock.
func (s *Store) persistLocked() error {
	if err := s.writeIndex(); err != nil {
		return err
	}
	return s.writeMetadata()
}

// writeIndex serialises the vector blob: magic, count, dimension, then
// count*dimension little-endian float32 values.
func (s *Store) writeIndex() error {
	buf := make([]byte, 12+len(s.vectors)*s.dimension*4)
	binary.LittleEndian.PutUint32(buf[0:], indexMagic)
	binary.LittleEndian.PutUint32(buf[4:], uint32(len(s.vectors)))
	binary.LittleEndian.PutUint32(buf[8:], uint32(s.dimension))
	off := 12
	for _, vec := range s.vectors {
		for _, f := range vec {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
			off += 4
		}
	}
	return os.WriteFile(filepath.Join(s.dir, IndexFile), buf, 0o600)
}

// writeMetadata serialises the positionally aligned metadata blob.
func (s *Store) writeMetadata() error {
	blob := metadataBlob{
		IDs:      s.ids,
		Texts:    s.texts,
		Metadata: make([]map[string]string, len(s.metas)),
	}
	for i, m := range s.metas {
		blob.Metadata[i] = m.Map()
	}
	data, err := json.Marshal(blob)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, MetadataFile), data, 0o600)
}

// load reconstructs state from the companion files. Missing both files
// is a fresh store; anything inconsistent fails closed with
// ErrCorruptPersistedState so index and metadata can never misalign.
func (s *Store) load() error {
	indexPath := filepath.Join(s.dir, IndexFile)
	metaPath := filepath.Join(s.dir, MetadataFile)

	indexData, indexErr := os.ReadFile(indexPath)
	metaData, metaErr := os.ReadFile(metaPath)

	if os.IsNotExist(indexErr) && os.IsNotExist(metaErr) {
		return nil // Fresh store
	}
	if indexErr != nil || metaErr != nil {
		return fmt.Errorf("%w: index=%v metadata=%v",
			domain.ErrCorruptPersistedState, indexErr, metaErr)
	}

	vectors, err := decodeIndex(indexData, s.dimension)
	if err != nil {
		return err
	}

	var blob metadataBlob
	if err := json.Unmarshal(metaData, &blob); err != nil {
		return fmt.Errorf("%w: metadata: %v", domain.ErrCorruptPersistedState, err)
	}

	n := len(vectors)
	if len(blob.IDs) != n || len(blob.Texts) != n || len(blob.Metadata) != n {
		return fmt.Errorf("%w: index has %d entries, metadata has %d",
			domain.ErrCorruptPersistedState, n, len(blob.IDs))
	}

	s.ids = blob.IDs
	s.vectors = vectors
	s.texts = blob.Texts
	s.metas = make([]domain.EntryMetadata, n)
	for i, m := range blob.Metadata {
		s.metas[i] = domain.MetadataFromMap(m)
	}
	s.byID = make(map[string]int, n)
	for i, id := range s.ids {
		s.byID[id] = i
	}

	logger.Info("Flat store loaded: %d entries", n)
	return nil
}

// decodeIndex parses the vector blob written by writeIndex.
func decodeIndex(data []byte, dimension int) ([][]float32, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("%w: index blob truncated", domain.ErrCorruptPersistedState)
	}
	if binary.LittleEndian.Uint32(data[0:]) != indexMagic {
		return nil, fmt.Errorf("%w: index blob has wrong magic", domain.ErrCorruptPersistedState)
	}
	count := int(binary.LittleEndian.Uint32(data[4:]))
	dim := int(binary.LittleEndian.Uint32(data[8:]))
	if dim != dimension {
		return nil, fmt.Errorf("%w: stored dimension %d, configured %d",
			domain.ErrCorruptPersistedState, dim, dimension)
	}
	if len(data) != 12+count*dim*4 {
		return nil, fmt.Errorf("%w: index blob size mismatch", domain.ErrCorruptPersistedState)
	}

	vectors := make([][]float32, count)
	off := 12
	for i := range vectors {
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// cosine computes the cosine similarity between the query (with
// precomputed norm) and a stored vector. Either side having zero norm
// yields 0, so degraded zero-vector chunks rank last.
func cosine(query []float32, queryNorm float64, v []float32) float64 {
	vn := norm(v)
	if queryNorm == 0 || vn == 0 {
		return 0
	}
	var dot float64
	for i := range v {
		dot += float64(query[i]) * float64(v[i])
	}
	return dot / (queryNorm * vn)
}

func norm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}
