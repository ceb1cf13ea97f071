package driven

import "context"

// Synthesizer produces a free-form answer to a question grounded in
// the supplied context text. The core assembles the context from
// retrieved segments and passes the answer through without inspecting
// or altering it.
//
// Failures surface as errors wrapping domain.ErrSynthesizer; timeouts
// follow whatever policy the caller configured on ctx or the adapter.
type Synthesizer interface {
	// Synthesize answers question using contextText as grounding.
	Synthesize(ctx context.Context, contextText, question string) (string, error)

	// ModelName returns the name of the underlying language model.
	ModelName() string
}
