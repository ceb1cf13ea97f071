package driving

import (
	"context"

	"github.com/beck40/insight/internal/core/domain"
)

// IngestService rebuilds the persisted index from a source document.
type IngestService interface {
	// Rebuild extracts, chunks and embeds the document at path, then
	// replaces the index with the result. It fails fast: when any
	// stage errors, an existing valid index is left untouched.
	Rebuild(ctx context.Context, path string) (domain.IndexStats, error)
}
