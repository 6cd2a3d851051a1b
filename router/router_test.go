package router

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestClassify tests the keyword classification rules.
func TestClassify(t *testing.T) {
	r := NewKeywordRouter()

	t.Run("data question without disease keyword defaults to heart", func(t *testing.T) {
		assert.Equal(t, ToolHeart, r.Classify("How many patients are over 60?"))
	})

	t.Run("web intent wins over data intent", func(t *testing.T) {
		// "what is" is a web keyword; "diabetes" alone is not a data keyword.
		assert.Equal(t, ToolWeb, r.Classify("What is diabetes?"))
		// Even with explicit data keywords present, web intent takes precedence.
		assert.Equal(t, ToolWeb, r.Classify("What is the treatment for high cholesterol in heart patients?"))
	})

	t.Run("disease keywords select the dataset", func(t *testing.T) {
		assert.Equal(t, ToolHeart, r.Classify("Show heart patients sorted by age"))
		assert.Equal(t, ToolHeart, r.Classify("count of cardio admissions"))
		assert.Equal(t, ToolCancer, r.Classify("List cancer patients"))
		assert.Equal(t, ToolCancer, r.Classify("average tumor size"))
		assert.Equal(t, ToolCancer, r.Classify("average tumour size"))
		assert.Equal(t, ToolDiabetes, r.Classify("mean glucose level"))
		assert.Equal(t, ToolDiabetes, r.Classify("show blood sugar distribution"))
	})

	t.Run("show and list trigger the data branch", func(t *testing.T) {
		assert.Equal(t, ToolCancer, r.Classify("show me the cancer records"))
		assert.Equal(t, ToolHeart, r.Classify("list everything"))
	})

	t.Run("no keyword match defaults to web", func(t *testing.T) {
		assert.Equal(t, ToolWeb, r.Classify("hello there"))
		assert.Equal(t, ToolWeb, r.Classify(""))
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		assert.Equal(t, ToolDiabetes, r.Classify("AVERAGE GLUCOSE"))
		assert.Equal(t, ToolWeb, r.Classify("SYMPTOMS of flu"))
	})
}

// TestClassifyWebPrecedence asserts that every web keyword routes to web
// even when combined with every data keyword.
func TestClassifyWebPrecedence(t *testing.T) {
	r := NewKeywordRouter()

	for _, web := range defaultWebKeywords {
		for _, data := range defaultDataKeywords {
			question := fmt.Sprintf("%s and also %s for heart patients", web, data)
			assert.Equal(t, ToolWeb, r.Classify(question), "question: %s", question)
		}
	}
}

// TestClassifyIsPure verifies classification has no hidden state.
func TestClassifyIsPure(t *testing.T) {
	r := NewKeywordRouter()

	first := r.Classify("count of heart patients")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, r.Classify("count of heart patients"))
	}
}

// TestKeywordRouterOptions tests keyword set overrides.
func TestKeywordRouterOptions(t *testing.T) {
	r := NewKeywordRouter(
		WithWebKeywords([]string{"lookup"}),
		WithDataKeywords([]string{"tally"}),
	)

	assert.Equal(t, ToolWeb, r.Classify("lookup something"))
	assert.Equal(t, ToolHeart, r.Classify("tally the rows"))
	// Default keywords no longer apply.
	assert.Equal(t, ToolWeb, r.Classify("count of patients"))
}
