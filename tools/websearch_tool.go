package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jellydator/ttlcache/v3"
)

// Search providers supported by the web knowledge tool.
type SearchProvider string

const (
	// ProviderSerpAPI is the primary search provider.
	ProviderSerpAPI SearchProvider = "serpapi"
	// ProviderBing is the fallback search provider.
	ProviderBing SearchProvider = "bing"
)

const (
	// DefaultSearchTimeout bounds each outbound search call.
	DefaultSearchTimeout = 10 * time.Second
	// DefaultNumResults is how many organic results to include.
	DefaultNumResults = 3
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 2
	// DefaultCacheTTL is how long a successful answer stays cached.
	// Medical guidance changes; entries must not live forever.
	DefaultCacheTTL = 15 * time.Minute

	serpAPIEndpoint = "https://serpapi.com/search"
	bingEndpoint    = "https://api.bing.microsoft.com/v7.0/search"
)

// NetworkError indicates the search provider could not be reached after
// exhausting retries.
type NetworkError struct {
	Provider SearchProvider
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error contacting %s: %v", e.Provider, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// terminalSearchError marks a non-transient failure that must not be
// retried (bad request, unusable response).
type terminalSearchError struct {
	err error
}

func (e *terminalSearchError) Error() string {
	return e.err.Error()
}

func (e *terminalSearchError) Unwrap() error {
	return e.err
}

// WebSearchTool answers definitional and treatment-style medical
// questions via an external search provider, with retries for transient
// network failures and a TTL cache keyed by the exact question text.
// Error responses are never cached.
type WebSearchTool struct {
	*BaseTool
	provider   SearchProvider
	apiKey     string
	numResults int
	maxRetries uint64
	httpClient *http.Client
	cache      *ttlcache.Cache[string, string]
	logger     *slog.Logger
}

// WebSearchOption configures a WebSearchTool.
type WebSearchOption func(*WebSearchTool)

// WithSearchHTTPClient sets a custom HTTP client (for testing).
func WithSearchHTTPClient(client *http.Client) WebSearchOption {
	return func(wt *WebSearchTool) {
		wt.httpClient = client
	}
}

// WithNumResults sets how many organic results to include.
func WithNumResults(n int) WebSearchOption {
	return func(wt *WebSearchTool) {
		wt.numResults = n
	}
}

// WithMaxRetries sets the retry count for transient failures.
func WithMaxRetries(n int) WebSearchOption {
	return func(wt *WebSearchTool) {
		wt.maxRetries = uint64(n)
	}
}

// WithCacheTTL sets the answer cache lifetime.
func WithCacheTTL(ttl time.Duration) WebSearchOption {
	return func(wt *WebSearchTool) {
		wt.cache = newAnswerCache(ttl)
	}
}

// WithCacheDisabled turns off response caching.
func WithCacheDisabled() WebSearchOption {
	return func(wt *WebSearchTool) {
		wt.cache = nil
	}
}

// WithWebSearchLogger sets the logger.
func WithWebSearchLogger(logger *slog.Logger) WebSearchOption {
	return func(wt *WebSearchTool) {
		wt.logger = logger
	}
}

func newAnswerCache(ttl time.Duration) *ttlcache.Cache[string, string] {
	return ttlcache.New(
		ttlcache.WithTTL[string, string](ttl),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
}

// NewWebSearchTool creates a web knowledge tool for the given provider.
// An empty apiKey does not fail construction; calls degrade to an
// explanatory message instead.
func NewWebSearchTool(provider SearchProvider, apiKey string, opts ...WebSearchOption) *WebSearchTool {
	wt := &WebSearchTool{
		BaseTool: NewBaseTool(NewToolMetadata(
			"web_search",
			"Answers medical definition, symptom, and treatment questions via web search.",
		)),
		provider:   provider,
		apiKey:     apiKey,
		numResults: DefaultNumResults,
		maxRetries: DefaultMaxRetries,
		httpClient: &http.Client{Timeout: DefaultSearchTimeout},
		cache:      newAnswerCache(DefaultCacheTTL),
		logger:     slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}

	for _, opt := range opts {
		opt(wt)
	}

	return wt
}

// Call answers the question, consulting the cache first. Only successful
// answers are cached; network and terminal errors are returned as
// user-facing messages with the typed error preserved.
func (wt *WebSearchTool) Call(ctx context.Context, question string) *ToolOutput {
	query := strings.TrimSpace(question)
	if query == "" {
		return NewToolOutput(wt.metadata.Name, question, "No query provided.")
	}

	if wt.apiKey == "" {
		return NewToolOutput(wt.metadata.Name, question, wt.missingKeyMessage())
	}

	if wt.cache != nil {
		if item := wt.cache.Get(query); item != nil {
			wt.logger.Info("web search cache hit", "query", query)
			return NewToolOutput(wt.metadata.Name, question, item.Value())
		}
	}

	answer, err := wt.search(ctx, query)
	if err != nil {
		var terminal *terminalSearchError
		if errors.As(err, &terminal) {
			return NewErrorToolOutput(wt.metadata.Name, question,
				fmt.Sprintf("Error during web search: %v", terminal.Unwrap()), terminal.Unwrap())
		}
		netErr := &NetworkError{Provider: wt.provider, Err: err}
		return NewErrorToolOutput(wt.metadata.Name, question,
			fmt.Sprintf("Network error while contacting search provider: %v", err), netErr)
	}

	if wt.cache != nil {
		wt.cache.Set(query, answer, ttlcache.DefaultTTL)
	}

	return NewToolOutput(wt.metadata.Name, question, answer)
}

func (wt *WebSearchTool) missingKeyMessage() string {
	if wt.provider == ProviderBing {
		return "Bing key not configured. Set BING_SUBSCRIPTION_KEY in your environment or .env."
	}
	return "SerpAPI key not configured. Set SERPAPI_API_KEY in your environment or .env."
}

// search performs the provider call with retries. Transport failures and
// 5xx/429 responses are retried with exponential backoff starting at
// 500ms; anything else is terminal.
func (wt *WebSearchTool) search(ctx context.Context, query string) (string, error) {
	var body []byte

	op := func() error {
		req, err := wt.buildRequest(ctx, query)
		if err != nil {
			return backoff.Permanent(&terminalSearchError{err: err})
		}

		resp, err := wt.httpClient.Do(req)
		if err != nil {
			wt.logger.Warn("search request failed", "provider", wt.provider, "error", err)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			wt.logger.Warn("search provider unavailable", "provider", wt.provider, "status", resp.StatusCode)
			return fmt.Errorf("search provider returned status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(&terminalSearchError{
				err: fmt.Errorf("search provider returned status %d", resp.StatusCode),
			})
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 500 * time.Millisecond
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, wt.maxRetries), ctx)

	if err := backoff.Retry(op, policy); err != nil {
		return "", err
	}

	answer, err := wt.extract(body)
	if err != nil {
		return "", &terminalSearchError{err: err}
	}
	return answer, nil
}

func (wt *WebSearchTool) buildRequest(ctx context.Context, query string) (*http.Request, error) {
	if wt.provider == ProviderBing {
		params := url.Values{}
		params.Set("q", query)
		params.Set("count", strconv.Itoa(wt.numResults))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, bingEndpoint+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Ocp-Apim-Subscription-Key", wt.apiKey)
		return req, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("engine", "google")
	params.Set("api_key", wt.apiKey)
	params.Set("num", strconv.Itoa(max(1, wt.numResults)))
	return http.NewRequestWithContext(ctx, http.MethodGet, serpAPIEndpoint+"?"+params.Encode(), nil)
}

func (wt *WebSearchTool) extract(body []byte) (string, error) {
	if wt.provider == ProviderBing {
		return extractBing(body, wt.numResults)
	}
	return extractSerpAPI(body, wt.numResults)
}

// serpAPIResponse covers the fields the extraction cares about.
type serpAPIResponse struct {
	AnswerBox *struct {
		Answer                  string   `json:"answer"`
		Snippet                 string   `json:"snippet"`
		SnippetHighlightedWords []string `json:"snippet_highlighted_words"`
	} `json:"answer_box"`
	OrganicResults []struct {
		Title         string `json:"title"`
		Snippet       string `json:"snippet"`
		Link          string `json:"link"`
		DisplayedLink string `json:"displayed_link"`
	} `json:"organic_results"`
	RelatedQuestions []struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	} `json:"related_questions"`
	KnowledgeGraph *struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"knowledge_graph"`
}

// extractSerpAPI joins whatever the response offers, in priority order:
// direct answer box, organic results, related questions, knowledge graph.
func extractSerpAPI(body []byte, numResults int) (string, error) {
	var data serpAPIResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}

	var snippets []string

	if ab := data.AnswerBox; ab != nil {
		switch {
		case ab.Answer != "":
			snippets = append(snippets, "Direct answer:\n"+ab.Answer)
		case ab.Snippet != "":
			snippets = append(snippets, "Direct answer:\n"+ab.Snippet)
		case len(ab.SnippetHighlightedWords) > 0:
			snippets = append(snippets, "Direct answer:\n"+strings.Join(ab.SnippetHighlightedWords, " "))
		}
	}

	for i, r := range data.OrganicResults {
		if i >= numResults {
			break
		}
		title := r.Title
		if title == "" {
			title = fmt.Sprintf("Result %d", i+1)
		}
		link := r.Link
		if link == "" {
			link = r.DisplayedLink
		}
		snippets = append(snippets, fmt.Sprintf("%d. %s\n%s\n%s", i+1, title, r.Snippet, link))
	}

	if len(snippets) == 0 {
		switch {
		case len(data.RelatedQuestions) > 0:
			for i, q := range data.RelatedQuestions {
				if i >= numResults {
					break
				}
				snippets = append(snippets, fmt.Sprintf("%d. %s\n%s", i+1, q.Question, q.Answer))
			}
		case data.KnowledgeGraph != nil:
			snippets = append(snippets, fmt.Sprintf("Knowledge graph: %s\n%s",
				data.KnowledgeGraph.Title, data.KnowledgeGraph.Description))
		}
	}

	if len(snippets) == 0 {
		return "No results found for that query.", nil
	}

	return "Web search results:\n\n" + strings.Join(snippets, "\n\n"), nil
}

// bingResponse covers the fields the extraction cares about.
type bingResponse struct {
	WebPages struct {
		Value []struct {
			Name    string `json:"name"`
			Snippet string `json:"snippet"`
			URL     string `json:"url"`
		} `json:"value"`
	} `json:"webPages"`
}

func extractBing(body []byte, numResults int) (string, error) {
	var data bingResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}

	var snippets []string
	for i, r := range data.WebPages.Value {
		if i >= numResults {
			break
		}
		snippets = append(snippets, fmt.Sprintf("%d. %s\n%s\n%s", i+1, r.Name, r.Snippet, r.URL))
	}

	if len(snippets) == 0 {
		return "No results found for that query.", nil
	}

	return "Web search results:\n\n" + strings.Join(snippets, "\n\n"), nil
}

// Ensure WebSearchTool implements Tool.
var _ Tool = (*WebSearchTool)(nil)
