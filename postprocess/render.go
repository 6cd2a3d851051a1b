package postprocess

import (
	"strings"
	"text/tabwriter"

	"github.com/aqua777/go-medagent/sandbox"
)

// renderTable renders the result set as an aligned text table with a
// header row.
func renderTable(rs *sandbox.ResultSet) (string, error) {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	if _, err := w.Write([]byte(strings.Join(rs.Columns, "\t") + "\n")); err != nil {
		return "", NewFormattingError(err.Error())
	}
	for _, row := range rs.Rows {
		if _, err := w.Write([]byte(strings.Join(row, "\t") + "\n")); err != nil {
			return "", NewFormattingError(err.Error())
		}
	}
	if err := w.Flush(); err != nil {
		return "", NewFormattingError(err.Error())
	}

	return strings.TrimRight(sb.String(), "\n"), nil
}
