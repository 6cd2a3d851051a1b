package sandbox

import "strings"

// ResultSet is the in-memory result of executing a generated query:
// an ordered list of rows with named columns, capped in size by the
// sandbox. Cells are kept as strings; NULL scans as the empty string.
type ResultSet struct {
	// Query is the query text that was actually executed, including any
	// injected limit clause.
	Query string
	// Columns are the result column names, in order.
	Columns []string
	// Rows are the result rows; each row has one cell per column.
	Rows [][]string
}

// NumRows returns the number of rows in the result set.
func (rs *ResultSet) NumRows() int {
	return len(rs.Rows)
}

// IsEmpty returns true if the result set has no rows.
func (rs *ResultSet) IsEmpty() bool {
	return len(rs.Rows) == 0
}

// ColumnIndex returns the index of the named column (case-insensitive),
// or -1 if the column does not exist.
func (rs *ResultSet) ColumnIndex(name string) int {
	for i, c := range rs.Columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// Head returns a copy of the result set truncated to at most n rows.
func (rs *ResultSet) Head(n int) *ResultSet {
	if n > len(rs.Rows) {
		n = len(rs.Rows)
	}
	head := &ResultSet{
		Query:   rs.Query,
		Columns: rs.Columns,
		Rows:    make([][]string, n),
	}
	copy(head.Rows, rs.Rows[:n])
	return head
}

// Column returns all values of the named column and true, or nil and
// false if the column does not exist.
func (rs *ResultSet) Column(name string) ([]string, bool) {
	idx := rs.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	values := make([]string, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		values = append(values, row[idx])
	}
	return values, true
}
