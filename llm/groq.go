package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// GroqAPIURL is the default Groq API endpoint (OpenAI-compatible).
	GroqAPIURL = "https://api.groq.com/openai/v1"
	// DefaultGroqModel is the default model to use.
	DefaultGroqModel = "llama-3.3-70b-versatile"
)

// Groq model constants.
const (
	GroqLlama31_8B  = "llama-3.1-8b-instant"
	GroqLlama33_70B = "llama-3.3-70b-versatile"
	GroqMixtral8x7B = "mixtral-8x7b-32768"
	GroqGemma2_9B   = "gemma2-9b-it"
)

// groqModelContextWindows maps model names to their context window sizes.
var groqModelContextWindows = map[string]int{
	GroqLlama31_8B:  128000,
	GroqLlama33_70B: 128000,
	GroqMixtral8x7B: 32768,
	GroqGemma2_9B:   8192,
}

// GroqLLM implements the LLM interface for Groq's API.
// Groq provides ultra-fast inference using their LPU (Language Processing Unit).
type GroqLLM struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *slog.Logger
}

// GroqOption configures a GroqLLM.
type GroqOption func(*GroqLLM)

// WithGroqModel sets the model.
func WithGroqModel(model string) GroqOption {
	return func(g *GroqLLM) {
		g.model = model
	}
}

// WithGroqTemperature sets the sampling temperature.
func WithGroqTemperature(temperature float32) GroqOption {
	return func(g *GroqLLM) {
		g.temperature = temperature
	}
}

// WithGroqBaseURL sets a custom base URL, keeping the configured API key.
func WithGroqBaseURL(apiKey, baseURL string) GroqOption {
	return func(g *GroqLLM) {
		config := openai.DefaultConfig(apiKey)
		config.BaseURL = baseURL
		g.client = openai.NewClientWithConfig(config)
	}
}

// WithGroqClient sets a custom OpenAI client (for testing).
func WithGroqClient(client *openai.Client) GroqOption {
	return func(g *GroqLLM) {
		g.client = client
	}
}

// WithGroqLogger sets the logger.
func WithGroqLogger(logger *slog.Logger) GroqOption {
	return func(g *GroqLLM) {
		g.logger = logger
	}
}

// NewGroqLLM creates a new Groq LLM client with an explicit API key.
func NewGroqLLM(apiKey string, opts ...GroqOption) *GroqLLM {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = GroqAPIURL

	g := &GroqLLM{
		client: openai.NewClientWithConfig(config),
		model:  DefaultGroqModel,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Complete generates a completion for a given prompt.
func (g *GroqLLM) Complete(ctx context.Context, prompt string) (string, error) {
	g.logger.Info("Complete called", "model", g.model, "prompt_len", len(prompt))

	return g.chat(ctx, []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		},
	})
}

// Chat generates a response for a list of chat messages.
func (g *GroqLLM) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	g.logger.Info("Chat called", "model", g.model, "message_count", len(messages))

	return g.chat(ctx, convertToOpenAIMessages(messages))
}

func (g *GroqLLM) chat(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := g.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       g.model,
			Messages:    messages,
			Temperature: g.temperature,
		},
	)

	if err != nil {
		g.logger.Error("Groq completion failed", "error", err)
		return "", NewInvocationError("groq", err)
	}

	if len(resp.Choices) == 0 {
		return "", NewInvocationError("groq", fmt.Errorf("no choices returned"))
	}

	return resp.Choices[0].Message.Content, nil
}

// Metadata returns information about the model's capabilities.
func (g *GroqLLM) Metadata() LLMMetadata {
	meta := DefaultLLMMetadata(g.model)
	if cw, ok := groqModelContextWindows[g.model]; ok {
		meta.ContextWindow = cw
	}
	return meta
}

// Ensure GroqLLM implements the interfaces.
var _ LLM = (*GroqLLM)(nil)
var _ LLMWithMetadata = (*GroqLLM)(nil)
