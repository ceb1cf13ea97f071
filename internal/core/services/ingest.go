package services

import (
	"context"
	"fmt"

	"github.com/beck40/insight/internal/core/domain"
	"github.com/beck40/insight/internal/core/ports/driven"
	"github.com/beck40/insight/internal/core/ports/driving"
	"github.com/beck40/insight/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultEmbedBatchSize is the number of segments embedded per call.
const DefaultEmbedBatchSize = 32

// ProgressFunc reports ingestion progress: done of total segments
// embedded so far.
type ProgressFunc func(done, total int)

// IngestService rebuilds the persisted index from a source document:
// extract pages, split into segments, embed, persist. Any failure
// aborts the run before the index writer is invoked, so an existing
// valid index is never partially overwritten.
type IngestService struct {
	extractor driven.PageExtractor
	chunker   driven.Chunker
	embedder  driven.EmbeddingService
	writer    driven.IndexWriter
	batchSize int
	progress  ProgressFunc
}

// IngestOption configures the ingest service.
type IngestOption func(*IngestService)

// WithEmbedBatchSize sets the number of segments per embedding call.
func WithEmbedBatchSize(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithProgress registers a progress callback invoked after each
// embedding batch.
func WithProgress(fn ProgressFunc) IngestOption {
	return func(s *IngestService) {
		s.progress = fn
	}
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	extractor driven.PageExtractor,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	writer driven.IndexWriter,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		writer:    writer,
		batchSize: DefaultEmbedBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rebuild runs the full ingestion pipeline for the document at path
// and atomically replaces the index with the result.
func (s *IngestService) Rebuild(ctx context.Context, path string) (domain.IndexStats, error) {
	logger.Section("Ingestion")
	logger.Debug("document: %s", path)

	pages, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("extract %s: %w", path, err)
	}
	logger.Info("extracted %d pages", len(pages))

	segments, err := s.chunker.Split(pages)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("split %s: %w", path, err)
	}
	if len(segments) == 0 {
		return domain.IndexStats{}, fmt.Errorf("%w: %s produced no segments", domain.ErrEmptyDocument, path)
	}
	logger.Info("split into %d segments", len(segments))

	indexed, err := s.embedAll(ctx, segments)
	if err != nil {
		return domain.IndexStats{}, err
	}

	model := s.embedder.ModelName()
	if err := s.writer.Rebuild(ctx, model, len(pages), indexed); err != nil {
		return domain.IndexStats{}, fmt.Errorf("rebuild index: %w", err)
	}

	return domain.IndexStats{
		Segments: len(segments),
		Pages:    len(pages),
		Model:    model,
	}, nil
}

// embedAll embeds every segment in batches. Segment embedding is a
// pure function of the text, so batch boundaries do not change the
// result.
func (s *IngestService) embedAll(ctx context.Context, segments []domain.Segment) ([]driven.IndexedSegment, error) {
	indexed := make([]driven.IndexedSegment, 0, len(segments))

	for start := 0; start < len(segments); start += s.batchSize {
		end := start + s.batchSize
		if end > len(segments) {
			end = len(segments)
		}

		texts := make([]string, 0, end-start)
		for _, seg := range segments[start:end] {
			texts = append(texts, seg.Text)
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed segments %d-%d of %d: %w", start+1, end, len(segments), err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("%w: got %d vectors for %d segments", domain.ErrEmbedding, len(vectors), len(texts))
		}

		for i, vec := range vectors {
			indexed = append(indexed, driven.IndexedSegment{
				Segment:   segments[start+i],
				Embedding: vec,
			})
		}

		if s.progress != nil {
			s.progress(end, len(segments))
		}
	}

	return indexed, nil
}
