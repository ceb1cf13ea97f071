package driving

import (
	"context"

	"github.com/beck40/insight/internal/core/domain"
)

// QueryService answers questions against the persisted index.
// Query-time errors abort only the current query; the index and the
// service remain usable for the next one.
type QueryService interface {
	// Retrieve embeds the query and returns the top-k most similar
	// segments. k <= 0 selects the configured default.
	Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedSegment, error)

	// Answer retrieves context for the question, delegates to the
	// answer synthesizer and returns the answer text together with
	// deduplicated source citations.
	Answer(ctx context.Context, question string) (domain.Answer, error)

	// Stats reports the opened index's contents.
	Stats(ctx context.Context) (domain.IndexStats, error)
}
