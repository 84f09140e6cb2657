package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
	"github.com/xuri/excelize/v2"
)

// Export groups the tables written to a workbook. Nil tables are skipped,
// except measurements which always get a sheet.
type Export struct {
	Measurements []models.Measurement
	Limits       []models.LimitRule
	Matches      []models.Match
	Summaries    []models.Summary
}

// WriteWorkbook writes the export as an xlsx workbook with one sheet per table.
func WriteWorkbook(w io.Writer, e Export) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "measurements"); err != nil {
		return err
	}
	if err := writeSheet(f, "measurements", measurementHeader, len(e.Measurements), func(i int) []string {
		return MeasurementRow(e.Measurements[i])
	}); err != nil {
		return err
	}
	if e.Limits != nil {
		if err := writeSheet(f, "limits", limitHeader, len(e.Limits), func(i int) []string {
			return limitRow(e.Limits[i])
		}); err != nil {
			return err
		}
	}
	if e.Matches != nil {
		if err := writeSheet(f, "matches", matchHeader, len(e.Matches), func(i int) []string {
			return matchRow(e.Matches[i])
		}); err != nil {
			return err
		}
	}
	if e.Summaries != nil {
		if err := writeSheet(f, "summary", summaryHeader, len(e.Summaries), func(i int) []string {
			return summaryRow(e.Summaries[i])
		}); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func writeSheet(f *excelize.File, name string, header []string, n int, row func(int) []string) error {
	if idx, _ := f.GetSheetIndex(name); idx < 0 {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", cellValues(header, nil)); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cellName, cellValues(row(i), header)); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", name, i+2, err)
		}
	}
	return sw.Flush()
}

// numericColumns are written as numbers so spreadsheet formulas work on them.
var numericColumns = map[string]bool{
	"value": true, "lower": true, "upper": true, "row": true, "count": true, "valid_count": true,
	"min": true, "max": true, "mean": true, "std_dev": true, "below": true, "above": true, "cp": true, "cpk": true,
}

func cellValues(cells []string, header []string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		switch {
		case c == "":
			out[i] = nil
		case header != nil && numericColumns[header[i]]:
			if f, err := strconv.ParseFloat(c, 64); err == nil {
				out[i] = f
				continue
			}
			out[i] = c
		default:
			out[i] = c
		}
	}
	return out
}
