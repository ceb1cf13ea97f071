// Package memory provides an in-memory vector index. It backs tests
// and throwaway sessions where persistence is not wanted; semantics
// mirror the SQLite adapter.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/beck40/insight/internal/core/domain"
	"github.com/beck40/insight/internal/core/ports/driven"
)

// Ensure the adapter implements the ports.
var (
	_ driven.VectorIndex = (*Index)(nil)
	_ driven.IndexWriter = (*Index)(nil)
)

// Index is an in-memory vector index guarded by a read-write lock:
// one rebuild at a time, concurrent searches.
type Index struct {
	mu       sync.RWMutex
	model    string
	pages    int
	segments []driven.IndexedSegment
	built    bool
}

// New creates an empty, unbuilt index.
func New() *Index {
	return &Index{}
}

// Rebuild replaces the held segment set.
func (ix *Index) Rebuild(_ context.Context, model string, pages int, segments []driven.IndexedSegment) error {
	if model == "" {
		return fmt.Errorf("%w: embedding model identifier is required", domain.ErrConfig)
	}

	copied := make([]driven.IndexedSegment, len(segments))
	copy(copied, segments)

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.model = model
	ix.pages = pages
	ix.segments = copied
	ix.built = true
	return nil
}

// Search returns up to k segments by cosine similarity, most similar
// first, ties broken by segment position.
func (ix *Index) Search(_ context.Context, query []float32, k int) ([]domain.RetrievedSegment, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if !ix.built {
		return nil, domain.ErrIndexNotFound
	}
	if k <= 0 {
		return []domain.RetrievedSegment{}, nil
	}

	results := make([]domain.RetrievedSegment, 0, len(ix.segments))
	for _, s := range ix.segments {
		results = append(results, domain.RetrievedSegment{
			Segment: s.Segment,
			Score:   cosineSimilarity(query, s.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Segment.Position < results[j].Segment.Position
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Stats reports the held segment set.
func (ix *Index) Stats(_ context.Context) (domain.IndexStats, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if !ix.built {
		return domain.IndexStats{}, domain.ErrIndexNotFound
	}
	return domain.IndexStats{
		Segments: len(ix.segments),
		Pages:    ix.pages,
		Model:    ix.model,
	}, nil
}

// ModelName returns the embedding model the index was built with.
func (ix *Index) ModelName(_ context.Context) (string, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if !ix.built {
		return "", domain.ErrIndexNotFound
	}
	return ix.model, nil
}

// Close releases resources.
func (ix *Index) Close() error {
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
