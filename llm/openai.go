package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is the default OpenAI model to use.
const DefaultOpenAIModel = openai.GPT4oMini

// OpenAILLM implements the LLM interface for OpenAI's API.
type OpenAILLM struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *slog.Logger
}

// OpenAIOption configures an OpenAILLM.
type OpenAIOption func(*OpenAILLM)

// WithOpenAIModel sets the model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(o *OpenAILLM) {
		o.model = model
	}
}

// WithOpenAITemperature sets the sampling temperature.
func WithOpenAITemperature(temperature float32) OpenAIOption {
	return func(o *OpenAILLM) {
		o.temperature = temperature
	}
}

// WithOpenAIClient sets a custom client (for testing).
func WithOpenAIClient(client *openai.Client) OpenAIOption {
	return func(o *OpenAILLM) {
		o.client = client
	}
}

// WithOpenAILogger sets the logger.
func WithOpenAILogger(logger *slog.Logger) OpenAIOption {
	return func(o *OpenAILLM) {
		o.logger = logger
	}
}

// NewOpenAILLM creates a new OpenAI LLM client with an explicit API key.
func NewOpenAILLM(apiKey string, opts ...OpenAIOption) *OpenAILLM {
	o := &OpenAILLM{
		client: openai.NewClient(apiKey),
		model:  DefaultOpenAIModel,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Complete generates a completion for a given prompt.
func (o *OpenAILLM) Complete(ctx context.Context, prompt string) (string, error) {
	o.logger.Info("Complete called", "model", o.model, "prompt_len", len(prompt))

	return o.chat(ctx, []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		},
	})
}

// Chat generates a response for a list of chat messages.
func (o *OpenAILLM) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	o.logger.Info("Chat called", "model", o.model, "message_count", len(messages))

	return o.chat(ctx, convertToOpenAIMessages(messages))
}

func (o *OpenAILLM) chat(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := o.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       o.model,
			Messages:    messages,
			Temperature: o.temperature,
		},
	)

	if err != nil {
		o.logger.Error("OpenAI completion failed", "error", err)
		return "", NewInvocationError("openai", err)
	}

	if len(resp.Choices) == 0 {
		return "", NewInvocationError("openai", fmt.Errorf("no choices returned"))
	}

	return resp.Choices[0].Message.Content, nil
}

// Metadata returns information about the model's capabilities.
func (o *OpenAILLM) Metadata() LLMMetadata {
	return DefaultLLMMetadata(o.model)
}

// convertToOpenAIMessages converts chat messages to the go-openai format.
func convertToOpenAIMessages(messages []ChatMessage) []openai.ChatCompletionMessage {
	converted := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		converted = append(converted, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return converted
}

// Ensure OpenAILLM implements the interfaces.
var _ LLM = (*OpenAILLM)(nil)
var _ LLMWithMetadata = (*OpenAILLM)(nil)
