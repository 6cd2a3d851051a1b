// Package agent wires the router and tools into a single question-answering
// surface.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/aqua777/go-medagent/config"
	"github.com/aqua777/go-medagent/llm"
	"github.com/aqua777/go-medagent/router"
	"github.com/aqua777/go-medagent/tools"
)

// MedicalAgent routes each question to exactly one tool and returns the
// tool's formatted answer. Processing is synchronous and request-at-a-time.
type MedicalAgent struct {
	router  router.Router
	toolset map[router.ToolID]tools.Tool
	logger  *slog.Logger
}

// Option configures a MedicalAgent.
type Option func(*MedicalAgent)

// WithRouter sets a custom router.
func WithRouter(r router.Router) Option {
	return func(a *MedicalAgent) {
		a.router = r
	}
}

// WithTool registers or replaces the tool for the given ID.
func WithTool(id router.ToolID, tool tools.Tool) Option {
	return func(a *MedicalAgent) {
		a.toolset[id] = tool
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *MedicalAgent) {
		a.logger = logger
	}
}

// New creates a MedicalAgent from an explicit toolset.
func New(opts ...Option) *MedicalAgent {
	a := &MedicalAgent{
		router:  router.NewKeywordRouter(),
		toolset: make(map[router.ToolID]tools.Tool),
		logger:  slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// FromConfig builds the full agent: completion collaborator, the three
// dataset tools, and the web knowledge tool.
func FromConfig(cfg *config.Config, opts ...Option) (*MedicalAgent, error) {
	var model llm.LLM
	switch cfg.LLMProvider {
	case config.LLMProviderOpenAI:
		model = llm.NewOpenAILLM(cfg.LLMAPIKey)
	case config.LLMProviderGroq:
		model = llm.NewGroqLLM(cfg.LLMAPIKey)
	default:
		return nil, config.NewConfigurationError(config.EnvLLMProvider,
			fmt.Sprintf("unknown provider %q", cfg.LLMProvider))
	}

	searchProvider := tools.ProviderSerpAPI
	if cfg.SearchProvider == "bing" {
		searchProvider = tools.ProviderBing
	}

	base := []Option{
		WithTool(router.ToolHeart, tools.NewHeartTool(cfg.DataDir, model)),
		WithTool(router.ToolCancer, tools.NewCancerTool(cfg.DataDir, model)),
		WithTool(router.ToolDiabetes, tools.NewDiabetesTool(cfg.DataDir, model)),
		WithTool(router.ToolWeb, tools.NewWebSearchTool(searchProvider, cfg.SearchAPIKey())),
	}

	return New(append(base, opts...)...), nil
}

// Answer classifies the question, dispatches it to the selected tool, and
// returns the answer text along with the tool that produced it. No error
// crosses this boundary; failures arrive as user-facing text.
func (a *MedicalAgent) Answer(ctx context.Context, question string) (string, router.ToolID) {
	requestID := uuid.NewString()
	toolID := a.router.Classify(question)

	log := a.logger.With("request_id", requestID, "tool", string(toolID))
	log.Info("question routed", "question", question)

	tool, ok := a.toolset[toolID]
	if !ok {
		log.Warn("no tool registered for route")
		return fmt.Sprintf("No tool available for %q questions.", toolID), toolID
	}

	out := tool.Call(ctx, question)
	if out.IsError {
		log.Warn("tool returned error answer", "error", out.Error)
	} else {
		log.Info("question answered", "answer_len", len(out.Content))
	}

	return out.Content, toolID
}
