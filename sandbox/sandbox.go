// Package sandbox executes restricted read-only queries against the
// SQLite dataset stores and enforces a result-size ceiling.
package sandbox

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultRowCap is the maximum number of rows returned when a generated
// query carries no explicit limit clause.
const DefaultRowCap = 200

// ValidationError indicates a generated query was rejected before
// execution because it is not a read-only SELECT.
type ValidationError struct {
	Query string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("only SELECT queries allowed for safety (got: %s)", snippet(e.Query))
}

// NewValidationError creates a new ValidationError.
func NewValidationError(query string) *ValidationError {
	return &ValidationError{Query: query}
}

// ExecutionError indicates the store rejected the query.
type ExecutionError struct {
	Query string
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("query execution failed: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// NewExecutionError creates a new ExecutionError.
func NewExecutionError(query string, err error) *ExecutionError {
	return &ExecutionError{Query: query, Err: err}
}

// limitClauseRe matches an explicit LIMIT clause anywhere in the query.
var limitClauseRe = regexp.MustCompile(`(?i)\blimit\b`)

// Sandbox runs validated SELECT queries against a SQLite store, opening a
// connection per call and releasing it on every exit path.
type Sandbox struct {
	rowCap int
	logger *slog.Logger
}

// SandboxOption configures a Sandbox.
type SandboxOption func(*Sandbox)

// WithRowCap sets the maximum row count injected into unlimited queries.
func WithRowCap(rowCap int) SandboxOption {
	return func(s *Sandbox) {
		s.rowCap = rowCap
	}
}

// WithSandboxLogger sets the logger.
func WithSandboxLogger(logger *slog.Logger) SandboxOption {
	return func(s *Sandbox) {
		s.logger = logger
	}
}

// NewSandbox creates a new Sandbox.
func NewSandbox(opts ...SandboxOption) *Sandbox {
	s := &Sandbox{
		rowCap: DefaultRowCap,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Execute validates the query, bounds it, and runs it against the store at
// dbPath. Queries that do not start with SELECT fail with ValidationError
// before any connection is opened. Queries without an explicit LIMIT get
// one equal to the configured cap; queries with one pass through
// unmodified. The prefix check is the only injection defense here; it does
// not inspect anything past the first keyword.
func (s *Sandbox) Execute(ctx context.Context, dbPath, query string) (*ResultSet, error) {
	trimmed := strings.TrimSpace(query)
	if !strings.HasPrefix(strings.ToLower(trimmed), "select") {
		s.logger.Warn("rejected non-SELECT query", "query", snippet(trimmed))
		return nil, NewValidationError(trimmed)
	}

	bounded := trimmed
	if !limitClauseRe.MatchString(bounded) {
		bounded = strings.TrimRight(bounded, "; \t\n") + fmt.Sprintf(" LIMIT %d", s.rowCap)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, NewExecutionError(bounded, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, bounded)
	if err != nil {
		return nil, NewExecutionError(bounded, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, NewExecutionError(bounded, err)
	}

	rs := &ResultSet{
		Query:   bounded,
		Columns: columns,
	}

	for rows.Next() {
		cells := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, NewExecutionError(bounded, err)
		}
		row := make([]string, len(columns))
		for i, c := range cells {
			if c.Valid {
				row[i] = c.String
			}
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, NewExecutionError(bounded, err)
	}

	s.logger.Info("query executed", "rows", rs.NumRows(), "columns", len(columns))
	return rs, nil
}

// TableColumns introspects the schema of the named table and returns its
// column names in declaration order.
func (s *Sandbox) TableColumns(ctx context.Context, dbPath, tableName string) ([]string, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return nil, fmt.Errorf("introspect %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   sql.NullString
			notNull   sql.NullInt64
			dfltValue sql.NullString
			pk        sql.NullInt64
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("introspect %s: %w", tableName, err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("introspect %s: %w", tableName, err)
	}

	return columns, nil
}

func snippet(query string) string {
	const max = 120
	if len(query) > max {
		return query[:max] + "..."
	}
	return query
}
