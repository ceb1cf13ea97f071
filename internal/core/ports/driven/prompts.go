package driven

// Prompt names known to the prompt store.
const (
	// PromptAnalyst is the system prompt framing the synthesizer as a
	// document analyst that cites figures and admits gaps.
	PromptAnalyst = "analyst"
)

// PromptStore provides prompt templates for the synthesizer.
// Implementations may load user-editable files with embedded defaults.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)
}
