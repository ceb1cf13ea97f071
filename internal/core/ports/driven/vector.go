package driven

import (
	"context"

	"github.com/beck40/insight/internal/core/domain"
)

// IndexedSegment pairs a segment with its embedding vector. One exists
// per segment, created at index-build time and owned by the index
// until the next full rebuild.
type IndexedSegment struct {
	// Segment is the indexed segment.
	Segment domain.Segment

	// Embedding is the segment's vector representation.
	Embedding []float32
}

// IndexWriter persists a full set of indexed segments.
//
// Rebuild replaces any prior contents atomically from the reader's
// point of view: a concurrent or subsequent open sees either the old
// complete index or the new complete index, never a half-written one.
// There is no incremental update; re-ingesting document A after
// document B discards B's segments.
type IndexWriter interface {
	// Rebuild persists the segments along with the embedding model
	// identifier and page count they were built with.
	Rebuild(ctx context.Context, model string, pages int, segments []IndexedSegment) error
}

// VectorIndex provides nearest-neighbour search over a persisted index.
// The index is a set, not a sequence; segment insertion order carries
// no meaning.
type VectorIndex interface {
	// Search returns up to k segments nearest to the query vector by
	// cosine similarity, most similar first. Fewer than k are returned
	// when the index holds fewer vectors; an empty index yields an
	// empty result, not an error.
	Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedSegment, error)

	// Stats reports the segment count and the embedding model the
	// index was built with.
	Stats(ctx context.Context) (domain.IndexStats, error)

	// Close releases resources.
	Close() error
}
