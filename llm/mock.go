package llm

import "context"

// MockLLM is a mock implementation of the LLM interface.
// It can be configured to return specific responses or errors, and records
// the messages it was called with so tests can assert on prompts.
type MockLLM struct {
	// Response is the text response to return.
	Response string
	// Err is the error to return (if any).
	Err error
	// Prompts records the prompts passed to Complete.
	Prompts []string
	// Messages records the message lists passed to Chat.
	Messages [][]ChatMessage
}

// NewMockLLM creates a new MockLLM with a simple response.
func NewMockLLM(response string) *MockLLM {
	return &MockLLM{Response: response}
}

// NewMockLLMWithError creates a new MockLLM that returns an error.
func NewMockLLMWithError(err error) *MockLLM {
	return &MockLLM{Err: err}
}

func (m *MockLLM) Complete(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	return m.Response, m.Err
}

func (m *MockLLM) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	m.Messages = append(m.Messages, messages)
	return m.Response, m.Err
}

// Metadata returns the mock model metadata.
func (m *MockLLM) Metadata() LLMMetadata {
	return DefaultLLMMetadata("mock-model")
}

// Ensure MockLLM implements the interfaces.
var _ LLM = (*MockLLM)(nil)
var _ LLMWithMetadata = (*MockLLM)(nil)
