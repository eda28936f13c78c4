package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/acervo-ai/acervo-cli/internal/chunker"
	"github.com/acervo-ai/acervo-cli/internal/core/domain"
	"github.com/acervo-ai/acervo-cli/internal/core/ports/driven"
	"github.com/acervo-ai/acervo-cli/internal/core/ports/driving"
	"github.com/acervo-ai/acervo-cli/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// DefaultMaxWorkers bounds concurrent document processing during batch
// ingestion.
const DefaultMaxWorkers = 4

// IngestionService drives the extract-chunk-embed-store write path.
type IngestionService struct {
	extractors driven.ExtractorRegistry
	embedder   driven.EmbeddingService
	store      driven.VectorStore
	splitter   *chunker.Splitter
	maxWorkers int
	language   string
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(
	extractors driven.ExtractorRegistry,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	splitter *chunker.Splitter,
) *IngestionService {
	return &IngestionService{
		extractors: extractors,
		embedder:   embedder,
		store:      store,
		splitter:   splitter,
		maxWorkers: DefaultMaxWorkers,
		language:   "en",
	}
}

// SetMaxWorkers overrides the batch ingestion concurrency.
func (s *IngestionService) SetMaxWorkers(n int) {
	if n > 0 {
		s.maxWorkers = n
	}
}

// SetLanguage sets the language recorded in chunk metadata.
func (s *IngestionService) SetLanguage(lang string) {
	if lang != "" {
		s.language = lang
	}
}

// Ingest processes a single file to completion. A returned result with
// Err set means nothing was stored for this document; chunk-level
// failures are reported in the counters instead.
func (s *IngestionService) Ingest(ctx context.Context, path string) domain.IngestResult {
	result := domain.IngestResult{Path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		result.Err = fmt.Errorf("read file: %w", err)
		return result
	}

	doc, err := s.extract(ctx, path, raw)
	if err != nil {
		result.Err = err
		return result
	}
	result.DocumentID = doc.ID

	spans := s.splitter.Split(doc.Content)
	if len(spans) == 0 {
		result.Err = domain.ErrNoExtractableContent
		return result
	}
	logger.Debug("Chunked %s: %d chunks", path, len(spans))

	vectors, degraded := s.embedSpans(ctx, spans)
	result.ChunksDegraded = degraded

	entries := make([]driven.Entry, len(spans))
	for i, sp := range spans {
		entries[i] = driven.Entry{
			ID:     domain.ChunkID(doc.ID, i),
			Vector: vectors[i],
			Text:   sp.Text,
			Metadata: domain.EntryMetadata{
				DocumentID:   doc.ID,
				SourcePath:   doc.Path,
				FileType:     doc.FileType,
				Language:     doc.Language,
				ChunkIndex:   i,
				ChunkSize:    len(sp.Text),
				SiblingCount: len(spans),
				WordCount:    doc.WordCount,
				CharCount:    doc.CharCount,
				IngestedAt:   doc.IngestedAt.Format(time.RFC3339),
			},
		}
	}

	failed, err := s.store.UpsertBatch(ctx, entries)
	if err != nil {
		result.Err = fmt.Errorf("store chunks: %w", err)
		return result
	}
	result.ChunksFailed = failed
	result.ChunksStored = len(entries) - failed

	if degraded > 0 {
		logger.Warn("Ingested %s with %d/%d chunks degraded to zero vectors",
			path, degraded, len(entries))
	} else {
		logger.Info("Ingested %s: %d chunks", path, result.ChunksStored)
	}

	return result
}

// IngestDir walks a directory tree and ingests every regular file using
// a bounded worker pool. Per-file failures are collected in the run
// summary and never abort the batch. Cancellation stops the run between
// documents; in-flight documents finish.
func (s *IngestionService) IngestDir(ctx context.Context, dir string) (*domain.IngestionRun, error) {
	paths, err := collectFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scan directory: %w", err)
	}

	run := &domain.IngestionRun{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	logger.Section("Batch Ingestion")
	logger.Info("Run %s: %d files, %d workers", run.ID, len(paths), s.maxWorkers)

	pathCh := make(chan string)
	resultCh := make(chan domain.IngestResult)

	var wg sync.WaitGroup
	for w := 0; w < s.maxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range pathCh {
				resultCh <- s.Ingest(ctx, path)
			}
		}()
	}

	go func() {
		defer close(pathCh)
		for _, path := range paths {
			select {
			case <-ctx.Done():
				return
			case pathCh <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	for res := range resultCh {
		if res.Success() {
			run.DocumentsProcessed++
			run.ChunksStored += res.ChunksStored
			run.ChunksDegraded += res.ChunksDegraded
		} else {
			run.DocumentsFailed++
			run.Failed = append(run.Failed, domain.FailedPath{
				Path:   res.Path,
				Reason: res.Err.Error(),
			})
		}
	}

	run.FinishedAt = time.Now().UTC()
	run.Cancelled = ctx.Err() != nil

	logger.Info("Run %s finished: %d ok, %d failed, %d chunks stored",
		run.ID, run.DocumentsProcessed, run.DocumentsFailed, run.ChunksStored)

	return run, nil
}

// extract reads the document out of raw bytes: extraction, whitespace
// normalisation and content validation.
func (s *IngestionService) extract(ctx context.Context, path string, raw []byte) (*domain.Document, error) {
	extracted, err := s.extractors.Extract(ctx, &driven.RawFile{
		Path:    path,
		Content: raw,
	})
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	content := normaliseWhitespace(extracted.Text)
	if content == "" {
		return nil, domain.ErrNoExtractableContent
	}

	if _, dropped := domain.FlattenMetadata(extracted.Metadata); len(dropped) > 0 {
		logger.Debug("Dropped nested metadata for %s: %v", path, dropped)
	}

	return &domain.Document{
		ID:         domain.DocumentID(raw),
		Path:       path,
		FileType:   extracted.FileType,
		Content:    content,
		Language:   s.language,
		SizeBytes:  int64(len(raw)),
		WordCount:  len(strings.Fields(content)),
		CharCount:  len(content),
		IngestedAt: time.Now().UTC(),
	}, nil
}

// embedSpans embeds all chunk texts, degrading per-chunk failures to
// zero vectors. A zero vector has cosine similarity 0 against every
// query, so degraded chunks rank last but remain stored and countable.
func (s *IngestionService) embedSpans(ctx context.Context, spans []chunker.Span) (vectors [][]float32, degraded int) {
	texts := make([]string, len(spans))
	for i, sp := range spans {
		texts[i] = sp.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err == nil && len(vectors) == len(spans) {
		return vectors, 0
	}
	if err != nil {
		logger.Warn("Batch embedding failed, retrying per chunk: %v", err)
	}

	vectors = make([][]float32, len(spans))
	dims := s.embedder.Dimensions()
	for i, text := range texts {
		v, embedErr := s.embedder.Embed(ctx, text)
		if embedErr != nil {
			logger.Debug("Embedding chunk %d failed: %v", i, embedErr)
			v = make([]float32, dims)
			degraded++
		}
		vectors[i] = v
	}
	return vectors, degraded
}

// normaliseWhitespace collapses Windows line endings and trims the
// document. Interior newlines are kept: the chunker prefers them as
// split boundaries.
func normaliseWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}

// collectFiles gathers regular files under dir, skipping hidden entries.
func collectFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
