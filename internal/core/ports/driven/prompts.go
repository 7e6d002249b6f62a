package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible
	// default or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptSynthesis grounds an answer in retrieved context.
	// The template expects %s (context) and %s (question) placeholders.
	PromptSynthesis = "synthesis"

	// PromptGroupRouting classifies a query against candidate group
	// descriptions. The template expects %s (candidate list) and
	// %s (question) placeholders and instructs the model to return a
	// bare group id, or 0 when no group fits.
	PromptGroupRouting = "group_routing"

	// PromptSummarise condenses document content. The template expects
	// %d (maximum words) and %s (content) placeholders.
	PromptSummarise = "summarise"
)
