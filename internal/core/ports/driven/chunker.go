package driven

import "github.com/beck40/insight/internal/core/domain"

// Chunker splits page-level text into overlapping fixed-size segments,
// preserving page provenance across splits. Splitting is pure; the
// chunk-size and overlap policy is fixed at construction.
type Chunker interface {
	// Split produces segments from the document's pages, in document
	// order. It never emits an empty segment and never drops trailing
	// text.
	Split(pages []domain.Page) ([]domain.Segment, error)
}
