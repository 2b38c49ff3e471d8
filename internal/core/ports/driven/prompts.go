package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptSummaryELI5 explains the document to a child.
	// The template expects %d (max characters) and %s (document) placeholders.
	PromptSummaryELI5 = "summary_eli5"

	// PromptSummaryPlain rewrites the document in everyday language.
	// The template expects %d (max characters) and %s (document) placeholders.
	PromptSummaryPlain = "summary_plain"

	// PromptSummaryDetailed produces a comprehensive summary.
	// The template expects %d (max characters) and %s (document) placeholders.
	PromptSummaryDetailed = "summary_detailed"

	// PromptChatSystem is the system prompt for grounded document chat.
	// This prompt has no format placeholders.
	PromptChatSystem = "chat_system"

	// PromptChatContext wraps the selected clauses.
	// The template expects a single %s placeholder for the clause block.
	PromptChatContext = "chat_context"
)
