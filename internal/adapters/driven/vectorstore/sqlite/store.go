// Package sqlite provides the primary vector store: a persistent,
// namespaced collection backed by SQLite with cosine-similarity search.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/acervo-ai/acervo-cli/internal/adapters/driven/vectorstore/sqlite/migrations"
	"github.com/acervo-ai/acervo-cli/internal/core/domain"
	"github.com/acervo-ai/acervo-cli/internal/core/ports/driven"
	"github.com/acervo-ai/acervo-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// DefaultCollection names the collection used when none is configured.
const DefaultCollection = "documents"

// Store is a SQLite-backed vector store. One database file can hold
// several collections; a Store is bound to one of them.
type Store struct {
	db         *sql.DB
	path       string
	collection string
	dimension  int
}

// NewStore opens (or creates) the vector database under dataDir and
// binds to the named collection.
func NewStore(dataDir, collection string, dimension int) (*Store, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("sqlite: %w: dimension %d", domain.ErrInvalidInput, dimension)
	}
	if collection == "" {
		collection = DefaultCollection
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vectors.db")

	// WAL mode for better concurrency between searching readers and
	// the ingesting writer.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:         db,
		path:       dbPath,
		collection: collection,
		dimension:  dimension,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Collection returns the bound collection name.
func (s *Store) Collection() string {
	return s.collection
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Upsert inserts or overwrites a single entry.
func (s *Store) Upsert(ctx context.Context, entry driven.Entry) error {
	failed, err := s.UpsertBatch(ctx, []driven.Entry{entry})
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("sqlite: upsert %s: %w", entry.ID, domain.ErrDimensionMismatch)
	}
	return nil
}

// UpsertBatch writes entries in one transaction. Entries whose vector
// does not match the configured dimension are counted and skipped so a
// single malformed chunk cannot block a large batch. Overwrites keep
// the original seq, preserving insertion order for tie-breaks.
func (s *Store) UpsertBatch(ctx context.Context, entries []driven.Entry) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (id, collection, vector, content, metadata)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			vector = excluded.vector,
			content = excluded.content,
			metadata = excluded.metadata
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	failed := 0
	for _, e := range entries {
		if e.ID == "" || len(e.Vector) != s.dimension {
			failed++
			continue
		}

		metadataJSON, err := json.Marshal(e.Metadata.Map())
		if err != nil {
			failed++
			continue
		}

		if _, err := stmt.ExecContext(ctx, e.ID, s.collection,
			float32SliceToBytes(e.Vector), e.Text, string(metadataJSON)); err != nil {
			logger.Debug("Upsert failed for %s: %v", e.ID, err)
			failed++
			continue
		}
	}

	if err := tx.Commit(); err != nil {
		return failed, fmt.Errorf("committing transaction: %w", err)
	}
	return failed, nil
}

// Search scans the collection in insertion order, scores every entry by
// cosine similarity and returns the topK best. The stable sort keeps
// earlier-inserted entries first among exact ties.
func (s *Store) Search(ctx context.Context, query []float32, topK int) ([]driven.Match, error) {
	if len(query) != s.dimension {
		return nil, fmt.Errorf("sqlite: query: %w (got %d want %d)",
			domain.ErrDimensionMismatch, len(query), s.dimension)
	}
	if topK <= 0 {
		topK = 5
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, vector, content, metadata
		FROM entries WHERE collection = ? ORDER BY seq
	`, s.collection)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	qn := norm(query)
	var matches []driven.Match
	for rows.Next() {
		var (
			id           string
			vectorBlob   []byte
			content      string
			metadataJSON string
		)
		if err := rows.Scan(&id, &vectorBlob, &content, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		vec := bytesToFloat32Slice(vectorBlob)
		if len(vec) != s.dimension {
			logger.Warn("Entry %s has stored dimension %d, expected %d; skipping", id, len(vec), s.dimension)
			continue
		}

		var flat map[string]string
		if err := json.Unmarshal([]byte(metadataJSON), &flat); err != nil {
			flat = map[string]string{}
		}

		matches = append(matches, driven.Match{
			ID:         id,
			Similarity: cosine(query, qn, vec),
			Text:       content,
			Metadata:   domain.MetadataFromMap(flat),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if topK < len(matches) {
		matches = matches[:topK]
	}
	return matches, nil
}

// Count returns the number of entries in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	row := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM entries WHERE collection = ?", s.collection)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

// Clear removes all entries in the collection. Idempotent.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM entries WHERE collection = ?", s.collection); err != nil {
		return fmt.Errorf("clearing collection: %w", err)
	}
	return nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// cosine computes cosine similarity; zero-norm vectors score 0.
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
