// Package chunker splits page-level text into overlapping fixed-size
// segments, preserving page provenance across splits.
package chunker

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/beck40/insight/internal/core/domain"
	"github.com/beck40/insight/internal/core/ports/driven"
)

// Ensure Chunker implements the port.
var _ driven.Chunker = (*Chunker)(nil)

// DefaultChunkSize is the default number of characters per segment.
const DefaultChunkSize = 1500

// DefaultChunkOverlap is the default number of overlapping characters
// between consecutive segments.
const DefaultChunkOverlap = 400

// Chunker splits a document's pages into fixed-size segments with
// overlap. Segments may span page boundaries; each segment is
// attributed to the page containing its first character.
type Chunker struct {
	size    int
	overlap int
}

// New creates a chunker. It returns domain.ErrConfig unless
// 0 <= overlap < size.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrConfig, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap must not be negative, got %d", domain.ErrConfig, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d", domain.ErrConfig, overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split concatenates the page texts in order and repeatedly emits a
// window of up to the configured size, advancing the window start by
// size-overlap until the text is exhausted. The final partial window
// is emitted even when shorter; trailing text shorter than the overlap
// is never dropped. Empty input produces no segments.
func (c *Chunker) Split(pages []domain.Page) ([]domain.Segment, error) {
	// Windowing is per character, not per byte, so a boundary never
	// splits a multi-byte rune.
	var text []rune
	starts := make([]int, len(pages))
	lengths := make([]int, len(pages))
	for i, p := range pages {
		runes := []rune(p.Text)
		starts[i] = len(text)
		lengths[i] = len(runes)
		text = append(text, runes...)
	}

	if len(text) == 0 {
		return nil, nil
	}

	step := c.size - c.overlap
	segments := make([]domain.Segment, 0, len(text)/step+1)

	position := 0
	for start := 0; start < len(text); start += step {
		end := start + c.size
		if end > len(text) {
			end = len(text)
		}

		page := pageAt(pages, starts, lengths, start)
		segments = append(segments, domain.Segment{
			ID:       uuid.New().String(),
			Text:     string(text[start:end]),
			Source:   page.Source,
			Page:     page.Number,
			Position: position,
		})
		position++

		// A window reaching the end of the text exhausts it; a further
		// window would sit entirely inside this one.
		if end == len(text) {
			break
		}
	}

	return segments, nil
}

// pageAt returns the page whose text contains the given character
// offset into the concatenated document. Empty pages occupy no
// offsets and are skipped over.
func pageAt(pages []domain.Page, starts, lengths []int, offset int) domain.Page {
	for i := len(pages) - 1; i >= 0; i-- {
		if starts[i] <= offset && offset < starts[i]+lengths[i] {
			return pages[i]
		}
	}
	return pages[0]
}
