package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/beck40/insight/internal/core/domain"
	"github.com/beck40/insight/internal/core/ports/driven"
	"github.com/beck40/insight/internal/core/ports/driving"
	"github.com/beck40/insight/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// DefaultTopK is the default number of segments retrieved per query.
const DefaultTopK = 7

// contextSeparator joins retrieved segment texts into the synthesizer
// context.
const contextSeparator = "\n\n"

// QueryService answers questions against a built index. The query is
// embedded with the same model the index was built with; a model
// mismatch fails the query fast instead of silently degrading
// rankings.
type QueryService struct {
	index    driven.VectorIndex
	embedder driven.EmbeddingService
	synth    driven.Synthesizer
	topK     int
}

// QueryOption configures the query service.
type QueryOption func(*QueryService)

// WithTopK sets the default number of segments retrieved per query.
func WithTopK(k int) QueryOption {
	return func(s *QueryService) {
		if k > 0 {
			s.topK = k
		}
	}
}

// NewQueryService creates a new query service. The synthesizer may be
// nil when only Retrieve is used.
func NewQueryService(
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	synth driven.Synthesizer,
	opts ...QueryOption,
) *QueryService {
	s := &QueryService{
		index:    index,
		embedder: embedder,
		synth:    synth,
		topK:     DefaultTopK,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Retrieve embeds the query and returns the top-k most similar
// segments, most similar first. k <= 0 selects the configured default.
func (s *QueryService) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedSegment, error) {
	if k <= 0 {
		k = s.topK
	}

	if err := s.checkModel(ctx); err != nil {
		return nil, err
	}

	logger.Section("Retrieval")
	logger.Debug("query: %q, k=%d", query, k)

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := s.index.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	logger.Debug("retrieved %d segments", len(results))
	return results, nil
}

// Answer retrieves grounding context for the question, delegates to
// the synthesizer and returns the answer with deduplicated citations.
// The synthesizer's answer text is passed through unaltered.
func (s *QueryService) Answer(ctx context.Context, question string) (domain.Answer, error) {
	if s.synth == nil {
		return domain.Answer{}, fmt.Errorf("%w: no synthesizer configured", domain.ErrSynthesizer)
	}

	results, err := s.Retrieve(ctx, question, 0)
	if err != nil {
		return domain.Answer{}, err
	}

	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Segment.Text)
	}

	text, err := s.synth.Synthesize(ctx, strings.Join(texts, contextSeparator), question)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("synthesize answer: %w", err)
	}

	return domain.Answer{
		Text:      text,
		Citations: domain.ReconcileCitations(results),
		Segments:  results,
	}, nil
}

// Stats reports the opened index's contents.
func (s *QueryService) Stats(ctx context.Context) (domain.IndexStats, error) {
	return s.index.Stats(ctx)
}

// checkModel verifies the query-time embedding model matches the one
// the index was built with.
func (s *QueryService) checkModel(ctx context.Context) error {
	stats, err := s.index.Stats(ctx)
	if err != nil {
		return fmt.Errorf("read index metadata: %w", err)
	}
	if stats.Model != s.embedder.ModelName() {
		return fmt.Errorf("%w: index built with %q, query uses %q",
			domain.ErrModelMismatch, stats.Model, s.embedder.ModelName())
	}
	return nil
}
