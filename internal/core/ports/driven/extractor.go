package driven

import (
	"context"

	"github.com/beck40/insight/internal/core/domain"
)

// PageExtractor opens a paginated document and yields one text unit
// per page with page provenance.
//
// The page sequence is finite and eagerly materialised: downstream
// chunking needs the whole document to manage cross-page overlap.
// Page numbering is 0-based.
//
// Errors: domain.ErrNotFound when the path does not exist,
// domain.ErrCorruptDocument when the document cannot be opened or
// parsed, domain.ErrEmptyDocument when it parses but no page carries
// any content.
type PageExtractor interface {
	// Extract reads the document at path and returns its pages.
	Extract(ctx context.Context, path string) ([]domain.Page, error)
}
