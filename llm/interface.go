package llm

import "context"

// LLM is the interface for the text-completion collaborator.
// This is the single fixed invocation contract: components that need a
// completion call one of these two methods and nothing else.
type LLM interface {
	// Complete generates a completion for a given prompt.
	Complete(ctx context.Context, prompt string) (string, error)
	// Chat generates a response for a list of chat messages.
	Chat(ctx context.Context, messages []ChatMessage) (string, error)
}

// LLMWithMetadata extends LLM with metadata capabilities.
type LLMWithMetadata interface {
	LLM
	// Metadata returns information about the model's capabilities.
	Metadata() LLMMetadata
}
