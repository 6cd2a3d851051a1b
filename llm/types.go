package llm

// MessageRole represents the role of a message sender.
type MessageRole string

const (
	// MessageRoleSystem is for system instructions.
	MessageRoleSystem MessageRole = "system"
	// MessageRoleUser is for user messages.
	MessageRoleUser MessageRole = "user"
	// MessageRoleAssistant is for assistant responses.
	MessageRoleAssistant MessageRole = "assistant"
)

// ChatMessage represents a message in a chat conversation.
type ChatMessage struct {
	// Role is the role of the message sender.
	Role MessageRole `json:"role"`
	// Content is the text content of the message.
	Content string `json:"content"`
}

// NewChatMessage creates a new chat message.
func NewChatMessage(role MessageRole, content string) ChatMessage {
	return ChatMessage{
		Role:    role,
		Content: content,
	}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) ChatMessage {
	return NewChatMessage(MessageRoleSystem, content)
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) ChatMessage {
	return NewChatMessage(MessageRoleUser, content)
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) ChatMessage {
	return NewChatMessage(MessageRoleAssistant, content)
}

// LLMMetadata contains metadata about an LLM model's capabilities.
type LLMMetadata struct {
	// ModelName is the name/identifier of the model.
	ModelName string `json:"model_name"`
	// ContextWindow is the maximum number of tokens the model can process.
	ContextWindow int `json:"context_window"`
	// NumOutputTokens is the maximum number of tokens the model can generate.
	NumOutputTokens int `json:"num_output_tokens"`
	// IsChat indicates if the model supports chat-style interactions.
	IsChat bool `json:"is_chat"`
}

// DefaultLLMMetadata returns default metadata for unknown models.
func DefaultLLMMetadata(modelName string) LLMMetadata {
	return LLMMetadata{
		ModelName:       modelName,
		ContextWindow:   8192,
		NumOutputTokens: 1024,
		IsChat:          true,
	}
}
