// Package nlsql translates natural-language questions into restricted SQL
// SELECT queries using the text-completion collaborator.
package nlsql

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/aqua777/go-medagent/llm"
)

// TranslationError indicates the collaborator produced output that cannot
// be used as a query for the target table.
type TranslationError struct {
	Table  string
	Output string
	Reason string
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translation failed for table %s: %s", e.Table, e.Reason)
}

// NewTranslationError creates a new TranslationError.
func NewTranslationError(table, output, reason string) *TranslationError {
	return &TranslationError{Table: table, Output: output, Reason: reason}
}

var (
	openFenceRe  = regexp.MustCompile("(?i)^```(?:sql)?[ \t]*\n?")
	closeFenceRe = regexp.MustCompile("\n?```$")
)

// StripCodeFences removes Markdown code-fence wrapping (```sql ... ``` or
// plain ```) from model output.
func StripCodeFences(text string) string {
	s := strings.TrimSpace(text)
	s = openFenceRe.ReplaceAllString(s, "")
	s = closeFenceRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Translator converts a question plus a known schema into a single SELECT
// query via one fixed collaborator invocation.
type Translator struct {
	model  llm.LLM
	logger *slog.Logger
}

// TranslatorOption configures a Translator.
type TranslatorOption func(*Translator)

// WithTranslatorLogger sets the logger.
func WithTranslatorLogger(logger *slog.Logger) TranslatorOption {
	return func(t *Translator) {
		t.logger = logger
	}
}

// NewTranslator creates a new Translator backed by the given model.
func NewTranslator(model llm.LLM, opts ...TranslatorOption) *Translator {
	t := &Translator{
		model:  model,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// SystemPrompt builds the instruction naming the exact table and column
// list and requiring a single SELECT query as the entire output.
func SystemPrompt(tableName string, columns []string) string {
	cols := "<unknown_columns>"
	if len(columns) > 0 {
		cols = strings.Join(columns, ", ")
	}
	return "You are a SQL generator. Convert the user question into a single safe SQL SELECT " +
		fmt.Sprintf("query that queries the table named `%s`. ", tableName) +
		"Return just the SQL SELECT query and nothing else. Use column names exactly as provided. " +
		"If the user requests a limited number of rows, please include a LIMIT clause. " +
		"Only generate SELECT statements. The table columns are: " + cols + "."
}

// Translate asks the collaborator for a query answering the question
// against the named table. The raw output is stripped of code fences; if
// the result does not reference the table, translation fails rather than
// attempting a textual repair.
func (t *Translator) Translate(ctx context.Context, question, tableName string, columns []string) (string, error) {
	messages := []llm.ChatMessage{
		llm.NewSystemMessage(SystemPrompt(tableName, columns)),
		llm.NewUserMessage(question),
	}

	raw, err := t.model.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate query: %w", err)
	}

	query := StripCodeFences(raw)
	if query == "" {
		return "", NewTranslationError(tableName, raw, "collaborator returned empty output")
	}
	if !strings.Contains(strings.ToLower(query), strings.ToLower(tableName)) {
		t.logger.Warn("generated query does not reference target table",
			"table", tableName, "query", query)
		return "", NewTranslationError(tableName, query,
			fmt.Sprintf("generated query does not reference table %q", tableName))
	}

	t.logger.Info("question translated", "table", tableName, "query", query)
	return query, nil
}
