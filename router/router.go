// Package router classifies free-text questions and selects the tool that
// should answer them.
package router

import "strings"

// ToolID identifies one of the agent's tools.
type ToolID string

const (
	// ToolWeb is the web knowledge tool.
	ToolWeb ToolID = "web"
	// ToolHeart is the heart disease dataset tool.
	ToolHeart ToolID = "heart"
	// ToolCancer is the cancer dataset tool.
	ToolCancer ToolID = "cancer"
	// ToolDiabetes is the diabetes dataset tool.
	ToolDiabetes ToolID = "diabetes"
)

// Router is the interface for question classifiers.
type Router interface {
	// Classify returns the tool that should answer the question.
	Classify(question string) ToolID
}

// defaultDataKeywords signal a question about the tabular datasets.
var defaultDataKeywords = []string{
	"count", "average", "mean", "median", "sum", "how many",
	"statistics", "distribution", "correlation", "age", "bps",
	"cholesterol", "glucose", "diagnosis", "patients", "rate",
}

// defaultWebKeywords signal a definitional or treatment question.
// Web intent always wins over data intent.
var defaultWebKeywords = []string{
	"define", "definition", "symptom", "symptoms", "treatment",
	"cure", "how to treat", "what is", "side effects",
}

// KeywordRouter classifies questions by case-insensitive substring match
// against two fixed keyword tiers. It is a pure function of its input.
type KeywordRouter struct {
	dataKeywords []string
	webKeywords  []string
}

// KeywordRouterOption configures a KeywordRouter.
type KeywordRouterOption func(*KeywordRouter)

// WithDataKeywords overrides the data-intent keyword set.
func WithDataKeywords(keywords []string) KeywordRouterOption {
	return func(r *KeywordRouter) {
		r.dataKeywords = keywords
	}
}

// WithWebKeywords overrides the web-intent keyword set.
func WithWebKeywords(keywords []string) KeywordRouterOption {
	return func(r *KeywordRouter) {
		r.webKeywords = keywords
	}
}

// NewKeywordRouter creates a new KeywordRouter with the default keyword sets.
func NewKeywordRouter(opts ...KeywordRouterOption) *KeywordRouter {
	r := &KeywordRouter{
		dataKeywords: defaultDataKeywords,
		webKeywords:  defaultWebKeywords,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Classify returns exactly one tool for the question. Web-intent keywords
// take precedence; data-intent questions are narrowed by disease keyword,
// defaulting to the heart dataset; everything else goes to the web tool.
func (r *KeywordRouter) Classify(question string) ToolID {
	text := strings.ToLower(question)

	if containsAny(text, r.webKeywords) {
		return ToolWeb
	}

	if containsAny(text, r.dataKeywords) || strings.Contains(text, "show") || strings.Contains(text, "list") {
		switch {
		case strings.Contains(text, "heart") || strings.Contains(text, "cardio"):
			return ToolHeart
		case strings.Contains(text, "cancer") || strings.Contains(text, "tumor") || strings.Contains(text, "tumour"):
			return ToolCancer
		case strings.Contains(text, "diabetes") || strings.Contains(text, "blood sugar") || strings.Contains(text, "glucose"):
			return ToolDiabetes
		}
		return ToolHeart
	}

	return ToolWeb
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Ensure KeywordRouter implements Router.
var _ Router = (*KeywordRouter)(nil)
