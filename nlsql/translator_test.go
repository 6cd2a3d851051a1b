package nlsql

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqua777/go-medagent/llm"
)

// TestStripCodeFences tests Markdown fence removal.
func TestStripCodeFences(t *testing.T) {
	t.Run("sql fence", func(t *testing.T) {
		out := StripCodeFences("```sql\nSELECT * FROM heart_disease\n```")
		assert.Equal(t, "SELECT * FROM heart_disease", out)
	})

	t.Run("plain fence", func(t *testing.T) {
		out := StripCodeFences("```\nSELECT 1\n```")
		assert.Equal(t, "SELECT 1", out)
	})

	t.Run("uppercase fence tag", func(t *testing.T) {
		out := StripCodeFences("```SQL\nSELECT 1\n```")
		assert.Equal(t, "SELECT 1", out)
	})

	t.Run("no fence is untouched", func(t *testing.T) {
		out := StripCodeFences("  SELECT age FROM cancer  ")
		assert.Equal(t, "SELECT age FROM cancer", out)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", StripCodeFences(""))
		assert.Equal(t, "", StripCodeFences("```sql\n```"))
	})
}

// TestSystemPrompt tests the instruction construction.
func TestSystemPrompt(t *testing.T) {
	t.Run("names the table and columns", func(t *testing.T) {
		prompt := SystemPrompt("heart_disease", []string{"age", "cholesterol"})

		assert.Contains(t, prompt, "`heart_disease`")
		assert.Contains(t, prompt, "age, cholesterol")
		assert.Contains(t, prompt, "Only generate SELECT statements")
	})

	t.Run("unknown columns placeholder", func(t *testing.T) {
		prompt := SystemPrompt("cancer", nil)
		assert.Contains(t, prompt, "<unknown_columns>")
	})
}

// TestTranslate tests the question-to-query path.
func TestTranslate(t *testing.T) {
	ctx := context.Background()

	t.Run("strips fences from collaborator output", func(t *testing.T) {
		mock := llm.NewMockLLM("```sql\nSELECT age FROM heart_disease WHERE age > 60\n```")
		tr := NewTranslator(mock)

		query, err := tr.Translate(ctx, "patients over 60", "heart_disease", []string{"age"})
		require.NoError(t, err)
		assert.Equal(t, "SELECT age FROM heart_disease WHERE age > 60", query)
	})

	t.Run("sends system and user messages", func(t *testing.T) {
		mock := llm.NewMockLLM("SELECT * FROM diabetes")
		tr := NewTranslator(mock)

		_, err := tr.Translate(ctx, "show everything", "diabetes", []string{"glucose", "age"})
		require.NoError(t, err)

		require.Len(t, mock.Messages, 1)
		messages := mock.Messages[0]
		require.Len(t, messages, 2)
		assert.Equal(t, llm.MessageRoleSystem, messages[0].Role)
		assert.Contains(t, messages[0].Content, "glucose, age")
		assert.Equal(t, llm.MessageRoleUser, messages[1].Role)
		assert.Equal(t, "show everything", messages[1].Content)
	})

	t.Run("table reference match is case-insensitive", func(t *testing.T) {
		mock := llm.NewMockLLM("SELECT * FROM HEART_DISEASE")
		tr := NewTranslator(mock)

		query, err := tr.Translate(ctx, "anything", "heart_disease", nil)
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM HEART_DISEASE", query)
	})

	t.Run("rejects output missing the table", func(t *testing.T) {
		mock := llm.NewMockLLM("SELECT * FROM other_table")
		tr := NewTranslator(mock)

		_, err := tr.Translate(ctx, "anything", "cancer", nil)

		var translationErr *TranslationError
		require.ErrorAs(t, err, &translationErr)
		assert.Equal(t, "cancer", translationErr.Table)
	})

	t.Run("rejects empty output", func(t *testing.T) {
		mock := llm.NewMockLLM("```sql\n```")
		tr := NewTranslator(mock)

		_, err := tr.Translate(ctx, "anything", "cancer", nil)

		var translationErr *TranslationError
		require.ErrorAs(t, err, &translationErr)
	})

	t.Run("propagates collaborator errors", func(t *testing.T) {
		invocationErr := llm.NewInvocationError("groq", errors.New("connection refused"))
		mock := llm.NewMockLLMWithError(invocationErr)
		tr := NewTranslator(mock)

		_, err := tr.Translate(ctx, "anything", "cancer", nil)

		var unwrapped *llm.InvocationError
		require.ErrorAs(t, err, &unwrapped)
	})
}
