package output

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
)

var (
	measurementHeader = []string{"machine", "variable", "value", "timestamp", "process"}
	limitHeader       = []string{"machine", "variable", "lower", "upper", "process", "sheet", "row"}
	matchHeader       = []string{"machine", "variable", "value", "timestamp", "process", "lower", "upper", "status"}
	summaryHeader     = []string{
		"process", "machine", "variable", "count", "valid_count", "min", "max", "mean", "std_dev",
		"lower", "upper", "below", "above", "cp", "cpk",
	}
)

// MeasurementRow renders a measurement in measurementHeader order.
func MeasurementRow(m models.Measurement) []string {
	return []string{m.Machine, m.Variable, FormatFloat(m.Value), FormatTime(m.Timestamp), string(m.Process)}
}

func limitRow(r models.LimitRule) []string {
	return []string{r.Machine, r.Variable, FormatFloat(r.Lower), FormatFloat(r.Upper), string(r.Process), r.Sheet, strconv.Itoa(r.Row)}
}

func matchRow(m models.Match) []string {
	row := MeasurementRow(m.Measurement)
	var lower, upper *float64
	if m.Limit != nil {
		lower, upper = m.Limit.Lower, m.Limit.Upper
	}
	return append(row, FormatFloat(lower), FormatFloat(upper), string(m.Status))
}

func summaryRow(s models.Summary) []string {
	return []string{
		string(s.Process), s.Machine, s.Variable, strconv.Itoa(s.Count), strconv.Itoa(s.ValidCount),
		FormatFloat(s.Min), FormatFloat(s.Max), FormatFloat(s.Mean), FormatFloat(s.StdDev),
		FormatFloat(s.Lower), FormatFloat(s.Upper), strconv.Itoa(s.Below), strconv.Itoa(s.Above),
		FormatFloat(s.Cp), FormatFloat(s.Cpk),
	}
}

// WriteMeasurementsCSV writes measurements with a header row.
func WriteMeasurementsCSV(w io.Writer, ms []models.Measurement) error {
	return writeCSV(w, measurementHeader, len(ms), func(i int) []string { return MeasurementRow(ms[i]) })
}

// WriteLimitsCSV writes limit rules with a header row.
func WriteLimitsCSV(w io.Writer, rules []models.LimitRule) error {
	return writeCSV(w, limitHeader, len(rules), func(i int) []string { return limitRow(rules[i]) })
}

// WriteMatchesCSV writes matches with a header row.
func WriteMatchesCSV(w io.Writer, matches []models.Match) error {
	return writeCSV(w, matchHeader, len(matches), func(i int) []string { return matchRow(matches[i]) })
}

// WriteSummariesCSV writes summaries with a header row.
func WriteSummariesCSV(w io.Writer, sums []models.Summary) error {
	return writeCSV(w, summaryHeader, len(sums), func(i int) []string { return summaryRow(sums[i]) })
}

func writeCSV(w io.Writer, header []string, n int, row func(int) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(row(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatFloat renders v in the shortest exact form, "" for nil.
func FormatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// FormatTime renders t as RFC 3339, "" for nil.
func FormatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
