// Package tools provides the tool abstraction and the agent's concrete
// tools: per-dataset question tools and the web knowledge tool.
package tools

import "context"

// ToolMetadata contains metadata about a tool.
type ToolMetadata struct {
	// Name is the unique name of the tool.
	Name string `json:"name"`
	// Description describes what the tool does.
	Description string `json:"description"`
}

// NewToolMetadata creates a new ToolMetadata with the given name and description.
func NewToolMetadata(name, description string) *ToolMetadata {
	return &ToolMetadata{
		Name:        name,
		Description: description,
	}
}

// GetName returns the tool name.
func (m *ToolMetadata) GetName() string {
	return m.Name
}

// ToolOutput represents the output of a tool execution. Errors are folded
// into the output: Content always carries displayable text, and IsError
// plus Error preserve the underlying failure for callers that care.
type ToolOutput struct {
	// Content is the text content of the output.
	Content string `json:"content"`
	// ToolName is the name of the tool that produced this output.
	ToolName string `json:"tool_name"`
	// Question is the question that was passed to the tool.
	Question string `json:"question,omitempty"`
	// IsError indicates if this output represents an error.
	IsError bool `json:"is_error,omitempty"`
	// Error holds the error if IsError is true.
	Error error `json:"-"`
}

// NewToolOutput creates a new ToolOutput.
func NewToolOutput(toolName, question, content string) *ToolOutput {
	return &ToolOutput{
		Content:  content,
		ToolName: toolName,
		Question: question,
	}
}

// NewErrorToolOutput creates a ToolOutput representing an error. The
// message is the user-facing text; err is the typed cause.
func NewErrorToolOutput(toolName, question, message string, err error) *ToolOutput {
	return &ToolOutput{
		Content:  message,
		ToolName: toolName,
		Question: question,
		IsError:  true,
		Error:    err,
	}
}

// String returns the content of the tool output.
func (o *ToolOutput) String() string {
	return o.Content
}

// Tool is the interface that all tools must implement. Call never returns
// an error: every stage failure is converted into a user-facing message in
// the output, with the typed error preserved on the output itself.
type Tool interface {
	// Metadata returns the tool's metadata.
	Metadata() *ToolMetadata
	// Call answers the question and returns the formatted response.
	Call(ctx context.Context, question string) *ToolOutput
}

// BaseTool provides a base implementation for tools.
type BaseTool struct {
	metadata *ToolMetadata
}

// NewBaseTool creates a new BaseTool with the given metadata.
func NewBaseTool(metadata *ToolMetadata) *BaseTool {
	return &BaseTool{
		metadata: metadata,
	}
}

// Metadata returns the tool's metadata.
func (t *BaseTool) Metadata() *ToolMetadata {
	return t.metadata
}
