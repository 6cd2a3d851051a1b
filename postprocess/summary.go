package postprocess

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aqua777/go-medagent/sandbox"
)

// dateLayouts are the formats the summary and window passes try when
// deciding whether a string cell is a date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
}

// parseDate attempts to parse a cell as a timestamp.
func parseDate(value string) (time.Time, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// columnParsesAsDates reports whether at least one non-empty value in the
// column parses as a date and none of the non-empty values fail to parse
// as anything but a date would (numbers are excluded first).
func columnParsesAsDates(rs *sandbox.ResultSet, idx int) bool {
	parsed := 0
	for _, row := range rs.Rows {
		v := strings.TrimSpace(row[idx])
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			return false
		}
		if _, ok := parseDate(v); !ok {
			return false
		}
		parsed++
	}
	return parsed > 0
}

// columnKind classifies a column for the summary.
type columnKind int

const (
	kindNumeric columnKind = iota
	kindDatetime
	kindCategorical
)

func classifyColumn(rs *sandbox.ResultSet, idx int) columnKind {
	nonEmpty := 0
	numeric := 0
	for _, row := range rs.Rows {
		v := strings.TrimSpace(row[idx])
		if v == "" {
			continue
		}
		nonEmpty++
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			numeric++
		}
	}
	if nonEmpty > 0 && numeric == nonEmpty {
		return kindNumeric
	}
	if columnParsesAsDates(rs, idx) {
		return kindDatetime
	}
	return kindCategorical
}

// buildSummary produces describe-style aggregates: count/mean/std/min/
// quartiles/max for numeric columns, count/unique/top/freq for categorical
// columns, and min/max/count for datetime-like columns.
func buildSummary(rs *sandbox.ResultSet) string {
	var numericLines, categoricalLines, datetimeLines []string

	for i, col := range rs.Columns {
		switch classifyColumn(rs, i) {
		case kindNumeric:
			values := numericValues(rs, i)
			if len(values) == 0 {
				continue
			}
			numericLines = append(numericLines, fmt.Sprintf(
				"%s: count=%d mean=%s std=%s min=%s 25%%=%s 50%%=%s 75%%=%s max=%s",
				col, len(values),
				formatFloat(mean(values)), formatFloat(stddev(values)),
				formatFloat(values[0]), formatFloat(quantile(values, 0.25)),
				formatFloat(quantile(values, 0.5)), formatFloat(quantile(values, 0.75)),
				formatFloat(values[len(values)-1])))
		case kindDatetime:
			minTS, maxTS, count := datetimeRange(rs, i)
			if count == 0 {
				datetimeLines = append(datetimeLines, fmt.Sprintf("%s: all null", col))
				continue
			}
			datetimeLines = append(datetimeLines, fmt.Sprintf(
				"%s: min=%s, max=%s, count=%d",
				col, minTS.Format("2006-01-02"), maxTS.Format("2006-01-02"), count))
		case kindCategorical:
			count, unique, top, freq := categoricalStats(rs, i)
			if count == 0 {
				continue
			}
			categoricalLines = append(categoricalLines, fmt.Sprintf(
				"%s: count=%d unique=%d top=%s freq=%d", col, count, unique, top, freq))
		}
	}

	var parts []string
	if len(numericLines) > 0 {
		parts = append(parts, "Numeric summary:\n"+strings.Join(numericLines, "\n"))
	}
	if len(categoricalLines) > 0 {
		parts = append(parts, "Categorical summary:\n"+strings.Join(categoricalLines, "\n"))
	}
	if len(datetimeLines) > 0 {
		parts = append(parts, "Datetime columns:\n"+strings.Join(datetimeLines, "\n"))
	}

	if len(parts) == 0 {
		return "No summary available."
	}
	return strings.Join(parts, "\n\n")
}

// numericValues returns the column's non-empty values parsed and sorted.
func numericValues(rs *sandbox.ResultSet, idx int) []float64 {
	var values []float64
	for _, row := range rs.Rows {
		v := strings.TrimSpace(row[idx])
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		values = append(values, f)
	}
	sort.Float64s(values)
	return values
}

func mean(sorted []float64) float64 {
	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	return sum / float64(len(sorted))
}

// stddev returns the sample standard deviation (n-1 denominator).
func stddev(sorted []float64) float64 {
	if len(sorted) < 2 {
		return 0
	}
	m := mean(sorted)
	sum := 0.0
	for _, v := range sorted {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(sorted)-1))
}

// quantile computes the q-quantile of sorted values with linear
// interpolation between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func datetimeRange(rs *sandbox.ResultSet, idx int) (time.Time, time.Time, int) {
	var minTS, maxTS time.Time
	count := 0
	for _, row := range rs.Rows {
		ts, ok := parseDate(row[idx])
		if !ok {
			continue
		}
		if count == 0 || ts.Before(minTS) {
			minTS = ts
		}
		if count == 0 || ts.After(maxTS) {
			maxTS = ts
		}
		count++
	}
	return minTS, maxTS, count
}

func categoricalStats(rs *sandbox.ResultSet, idx int) (count, unique int, top string, freq int) {
	counts := make(map[string]int)
	for _, row := range rs.Rows {
		v := strings.TrimSpace(row[idx])
		if v == "" {
			continue
		}
		count++
		counts[v]++
		if counts[v] > freq {
			top = v
			freq = counts[v]
		}
	}
	unique = len(counts)
	return count, unique, top, freq
}
