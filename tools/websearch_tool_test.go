package tools

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTransport fakes the search provider at the HTTP layer and counts
// outbound calls.
type stubTransport struct {
	calls     int
	roundTrip func(req *http.Request) (*http.Response, error)
}

func (s *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.calls++
	return s.roundTrip(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func newStubTool(t *testing.T, stub *stubTransport, opts ...WebSearchOption) *WebSearchTool {
	t.Helper()
	opts = append([]WebSearchOption{
		WithSearchHTTPClient(&http.Client{Transport: stub}),
	}, opts...)
	return NewWebSearchTool(ProviderSerpAPI, "test-key", opts...)
}

const serpAPIFullBody = `{
	"answer_box": {"answer": "Diabetes is a chronic metabolic disease."},
	"organic_results": [
		{"title": "Diabetes - WHO", "snippet": "Overview of diabetes.", "link": "https://who.int/diabetes"},
		{"title": "Diabetes basics", "snippet": "Types and symptoms.", "link": "https://example.org/db"}
	]
}`

// TestWebSearchExtraction tests the response extraction priorities.
func TestWebSearchExtraction(t *testing.T) {
	ctx := context.Background()

	t.Run("answer box then organic results", func(t *testing.T) {
		stub := &stubTransport{roundTrip: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, serpAPIFullBody), nil
		}}
		wt := newStubTool(t, stub)

		out := wt.Call(ctx, "what is diabetes")

		require.False(t, out.IsError)
		assert.Contains(t, out.Content, "Web search results:")
		assert.Contains(t, out.Content, "Direct answer:\nDiabetes is a chronic metabolic disease.")
		assert.Contains(t, out.Content, "1. Diabetes - WHO")
		assert.Contains(t, out.Content, "https://who.int/diabetes")
		assert.Less(t,
			strings.Index(out.Content, "Direct answer:"),
			strings.Index(out.Content, "1. Diabetes - WHO"))
	})

	t.Run("organic results capped at num results", func(t *testing.T) {
		body := `{"organic_results": [
			{"title": "r1", "snippet": "s", "link": "l"},
			{"title": "r2", "snippet": "s", "link": "l"},
			{"title": "r3", "snippet": "s", "link": "l"},
			{"title": "r4", "snippet": "s", "link": "l"}
		]}`
		stub := &stubTransport{roundTrip: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, body), nil
		}}
		wt := newStubTool(t, stub, WithNumResults(2))

		out := wt.Call(ctx, "anything")

		assert.Contains(t, out.Content, "1. r1")
		assert.Contains(t, out.Content, "2. r2")
		assert.NotContains(t, out.Content, "3. r3")
	})

	t.Run("related questions fallback", func(t *testing.T) {
		body := `{"related_questions": [{"question": "What causes diabetes?", "answer": "Insulin resistance."}]}`
		stub := &stubTransport{roundTrip: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, body), nil
		}}
		wt := newStubTool(t, stub)

		out := wt.Call(ctx, "causes")

		assert.Contains(t, out.Content, "What causes diabetes?")
		assert.Contains(t, out.Content, "Insulin resistance.")
	})

	t.Run("knowledge graph fallback", func(t *testing.T) {
		body := `{"knowledge_graph": {"title": "Diabetes", "description": "A metabolic disorder."}}`
		stub := &stubTransport{roundTrip: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, body), nil
		}}
		wt := newStubTool(t, stub)

		out := wt.Call(ctx, "diabetes kg")

		assert.Contains(t, out.Content, "Knowledge graph: Diabetes")
		assert.Contains(t, out.Content, "A metabolic disorder.")
	})

	t.Run("nothing extractable", func(t *testing.T) {
		stub := &stubTransport{roundTrip: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{}`), nil
		}}
		wt := newStubTool(t, stub)

		out := wt.Call(ctx, "obscure")

		require.False(t, out.IsError)
		assert.Equal(t, "No results found for that query.", out.Content)
	})

	t.Run("bing extraction", func(t *testing.T) {
		body := `{"webPages": {"value": [{"name": "MedlinePlus", "snippet": "Overview.", "url": "https://medlineplus.gov"}]}}`
		stub := &stubTransport{roundTrip: func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "test-key", req.Header.Get("Ocp-Apim-Subscription-Key"))
			return jsonResponse(http.StatusOK, body), nil
		}}
		wt := NewWebSearchTool(ProviderBing, "test-key",
			WithSearchHTTPClient(&http.Client{Transport: stub}))

		out := wt.Call(ctx, "anything")

		assert.Contains(t, out.Content, "1. MedlinePlus")
		assert.Contains(t, out.Content, "https://medlineplus.gov")
	})
}

// TestWebSearchCache tests caching behavior.
func TestWebSearchCache(t *testing.T) {
	ctx := context.Background()

	t.Run("identical question issues one outbound call", func(t *testing.T) {
		stub := &stubTransport{roundTrip: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, serpAPIFullBody), nil
		}}
		wt := newStubTool(t, stub)

		first := wt.Call(ctx, "what is diabetes")
		second := wt.Call(ctx, "what is diabetes")

		assert.Equal(t, 1, stub.calls)
		assert.Equal(t, first.Content, second.Content)
	})

	t.Run("different questions are cached separately", func(t *testing.T) {
		stub := &stubTransport{roundTrip: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, serpAPIFullBody), nil
		}}
		wt := newStubTool(t, stub)

		wt.Call(ctx, "what is diabetes")
		wt.Call(ctx, "what is cancer")

		assert.Equal(t, 2, stub.calls)
	})

	t.Run("error responses are not cached", func(t *testing.T) {
		stub := &stubTransport{roundTrip: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		}}
		wt := newStubTool(t, stub, WithMaxRetries(0))

		wt.Call(ctx, "flaky question")
		wt.Call(ctx, "flaky question")

		// Each call goes out again instead of being served a cached error.
		assert.Equal(t, 2, stub.calls)
	})

	t.Run("disabled cache always calls out", func(t *testing.T) {
		stub := &stubTransport{roundTrip: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, serpAPIFullBody), nil
		}}
		wt := newStubTool(t, stub, WithCacheDisabled())

		wt.Call(ctx, "what is diabetes")
		wt.Call(ctx, "what is diabetes")

		assert.Equal(t, 2, stub.calls)
	})
}

// TestWebSearchRetries tests the retry policy.
func TestWebSearchRetries(t *testing.T) {
	ctx := context.Background()

	t.Run("transient failure then success", func(t *testing.T) {
		stub := &stubTransport{}
		stub.roundTrip = func(req *http.Request) (*http.Response, error) {
			if stub.calls == 1 {
				return jsonResponse(http.StatusInternalServerError, ""), nil
			}
			return jsonResponse(http.StatusOK, serpAPIFullBody), nil
		}
		wt := newStubTool(t, stub, WithMaxRetries(2))

		out := wt.Call(ctx, "what is diabetes")

		require.False(t, out.IsError)
		assert.Equal(t, 2, stub.calls)
	})

	t.Run("exhausted retries yield a network error message", func(t *testing.T) {
		stub := &stubTransport{roundTrip: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		}}
		wt := newStubTool(t, stub, WithMaxRetries(1))

		out := wt.Call(ctx, "anything")

		assert.True(t, out.IsError)
		assert.Contains(t, out.Content, "Network error while contacting search provider:")
		// maxRetries=1 means two attempts.
		assert.Equal(t, 2, stub.calls)

		var netErr *NetworkError
		assert.ErrorAs(t, out.Error, &netErr)
	})

	t.Run("client errors are terminal", func(t *testing.T) {
		stub := &stubTransport{roundTrip: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusUnauthorized, ""), nil
		}}
		wt := newStubTool(t, stub, WithMaxRetries(3))

		out := wt.Call(ctx, "anything")

		assert.True(t, out.IsError)
		assert.Contains(t, out.Content, "Error during web search:")
		assert.Equal(t, 1, stub.calls)
	})

	t.Run("undecodable body is terminal", func(t *testing.T) {
		stub := &stubTransport{roundTrip: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, "not json"), nil
		}}
		wt := newStubTool(t, stub)

		out := wt.Call(ctx, "anything")

		assert.True(t, out.IsError)
		assert.Contains(t, out.Content, "Error during web search:")
		assert.Equal(t, 1, stub.calls)
	})
}

// TestWebSearchInput tests input edge cases.
func TestWebSearchInput(t *testing.T) {
	ctx := context.Background()

	t.Run("empty question", func(t *testing.T) {
		stub := &stubTransport{roundTrip: func(req *http.Request) (*http.Response, error) {
			t.Fatal("no outbound call expected")
			return nil, nil
		}}
		wt := newStubTool(t, stub)

		out := wt.Call(ctx, "   ")

		assert.Equal(t, "No query provided.", out.Content)
		assert.Equal(t, 0, stub.calls)
	})

	t.Run("missing serpapi key degrades to a message", func(t *testing.T) {
		wt := NewWebSearchTool(ProviderSerpAPI, "")

		out := wt.Call(ctx, "what is diabetes")

		require.False(t, out.IsError)
		assert.Contains(t, out.Content, "SerpAPI key not configured")
	})

	t.Run("missing bing key degrades to a message", func(t *testing.T) {
		wt := NewWebSearchTool(ProviderBing, "")

		out := wt.Call(ctx, "what is diabetes")

		assert.Contains(t, out.Content, "Bing key not configured")
	})

	t.Run("request carries query parameters", func(t *testing.T) {
		stub := &stubTransport{}
		stub.roundTrip = func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "what is diabetes", req.URL.Query().Get("q"))
			assert.Equal(t, "google", req.URL.Query().Get("engine"))
			assert.Equal(t, "test-key", req.URL.Query().Get("api_key"))
			assert.Equal(t, "3", req.URL.Query().Get("num"))
			return jsonResponse(http.StatusOK, `{}`), nil
		}
		wt := newStubTool(t, stub)

		wt.Call(ctx, "what is diabetes")

		assert.Equal(t, 1, stub.calls)
	})
}
