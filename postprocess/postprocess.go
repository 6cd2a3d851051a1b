// Package postprocess applies heuristic corrective passes to query results
// and renders them as human-readable text.
package postprocess

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aqua777/go-medagent/sandbox"
)

// DefaultPreviewRows is the preview size for large result sets; results
// with more rows than this are summarized instead of listed in full.
const DefaultPreviewRows = 10

// dateWindow is the span of the "last 90 days" fallback filter.
const dateWindow = 90 * 24 * time.Hour

// FormattingError indicates a result set could not be rendered.
type FormattingError struct {
	Reason string
}

func (e *FormattingError) Error() string {
	return fmt.Sprintf("formatting failed: %s", e.Reason)
}

// NewFormattingError creates a new FormattingError.
func NewFormattingError(reason string) *FormattingError {
	return &FormattingError{Reason: reason}
}

// Processor runs the corrective passes and formats results. Both passes
// are strictly additive: they only ever drop or reorder rows, never
// re-expand a query.
type Processor struct {
	now         func() time.Time
	previewRows int
	logger      *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithNow sets the clock used by the time-window pass (for testing).
func WithNow(now func() time.Time) ProcessorOption {
	return func(p *Processor) {
		p.now = now
	}
}

// WithPreviewRows sets the large-result preview size.
func WithPreviewRows(n int) ProcessorOption {
	return func(p *Processor) {
		p.previewRows = n
	}
}

// WithProcessorLogger sets the logger.
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor creates a new Processor.
func NewProcessor(opts ...ProcessorOption) *Processor {
	p := &Processor{
		now:         time.Now,
		previewRows: DefaultPreviewRows,
		logger:      slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Apply runs the time-window and sort fallbacks in order. Each pass is a
// no-op unless its literal trigger phrase appears in the question.
func (p *Processor) Apply(rs *sandbox.ResultSet, question string) *sandbox.ResultSet {
	rs = p.applyDateWindow(rs, question)
	rs = p.applySort(rs, question)
	return rs
}

// applyDateWindow filters rows to the most recent 90-day window when the
// question asks for "last 90 days" and a date-like column exists. It
// silently no-ops if no such column is found or values do not parse.
func (p *Processor) applyDateWindow(rs *sandbox.ResultSet, question string) *sandbox.ResultSet {
	text := strings.ToLower(question)
	if !strings.Contains(text, "last 90") {
		return rs
	}

	idx := p.findDateColumn(rs)
	if idx < 0 {
		return rs
	}

	cutoff := p.now().Add(-dateWindow)
	filtered := &sandbox.ResultSet{
		Query:   rs.Query,
		Columns: rs.Columns,
	}
	for _, row := range rs.Rows {
		ts, ok := parseDate(row[idx])
		if ok && !ts.Before(cutoff) {
			filtered.Rows = append(filtered.Rows, row)
		}
	}

	p.logger.Info("applied 90-day window", "column", rs.Columns[idx],
		"before", rs.NumRows(), "after", filtered.NumRows())
	return filtered
}

// findDateColumn returns the first column whose name looks date-like, or
// failing that the first column whose values parse as dates, or -1.
func (p *Processor) findDateColumn(rs *sandbox.ResultSet) int {
	for i, c := range rs.Columns {
		name := strings.ToLower(c)
		if strings.Contains(name, "date") || strings.Contains(name, "admit") || strings.Contains(name, "time") {
			return i
		}
	}
	for i := range rs.Columns {
		if columnParsesAsDates(rs, i) {
			return i
		}
	}
	return -1
}

// applySort sorts ascending by the age column when the question asks for a
// sort by age. No-ops if there is no age column.
func (p *Processor) applySort(rs *sandbox.ResultSet, question string) *sandbox.ResultSet {
	text := strings.ToLower(question)
	wantsSort := strings.Contains(text, "sort") || strings.Contains(text, "sorted") || strings.Contains(text, "order by")
	if !wantsSort || !strings.Contains(text, "age") {
		return rs
	}

	idx := rs.ColumnIndex("age")
	if idx < 0 {
		return rs
	}

	sorted := &sandbox.ResultSet{
		Query:   rs.Query,
		Columns: rs.Columns,
		Rows:    make([][]string, len(rs.Rows)),
	}
	copy(sorted.Rows, rs.Rows)

	sort.SliceStable(sorted.Rows, func(i, j int) bool {
		a, aerr := strconv.ParseFloat(strings.TrimSpace(sorted.Rows[i][idx]), 64)
		b, berr := strconv.ParseFloat(strings.TrimSpace(sorted.Rows[j][idx]), 64)
		if aerr != nil || berr != nil {
			// Non-numeric ages sort after numeric ones.
			return aerr == nil && berr != nil
		}
		return a < b
	})

	p.logger.Info("applied sort-by-age fallback", "rows", sorted.NumRows())
	return sorted
}

// Format renders the result set. Small results are listed in full; results
// larger than the preview size get a statistical summary plus a preview.
// The executed query is echoed in both cases.
func (p *Processor) Format(rs *sandbox.ResultSet) (string, error) {
	for _, row := range rs.Rows {
		if len(row) != len(rs.Columns) {
			return "", NewFormattingError(fmt.Sprintf(
				"row has %d cells, expected %d", len(row), len(rs.Columns)))
		}
	}

	header := fmt.Sprintf("Executed SQL:\n```sql\n%s\n```\n\n", rs.Query)

	if rs.IsEmpty() {
		return header + "Query returned no results.", nil
	}

	if rs.NumRows() > p.previewRows {
		summary := buildSummary(rs)
		table, err := renderTable(rs.Head(p.previewRows))
		if err != nil {
			return "", err
		}
		return header + fmt.Sprintf("Summary:\n%s\n\nFirst %d rows:\n%s",
			summary, p.previewRows, table), nil
	}

	table, err := renderTable(rs)
	if err != nil {
		return "", err
	}
	return header + "Results:\n" + table, nil
}
