// Package parser provides CSV and Excel reading utilities.
package parser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
	"github.com/xuri/excelize/v2"
)

// ErrEmptyTable indicates a source without a header row.
var ErrEmptyTable = errors.New("table has no header row")

// ErrUnsupportedFormat indicates a file extension that cannot be read.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// TableOptions configures ReadTable.
type TableOptions struct {
	// Sheet selects the worksheet of an Excel source. Empty means the first.
	Sheet string
	// Comma overrides the CSV delimiter. Zero sniffs ',' or ';' from the header.
	Comma rune
}

// ReadTable reads a CSV or Excel file into a Table. Headers are trimmed,
// blank headers become "Unnamed: <i>" and repeated headers get a ".<n>"
// suffix so every column is addressable by name.
func ReadTable(path string, opts TableOptions) (*models.Table, error) {
	var (
		rows [][]string
		name = filepath.Base(path)
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		rows, err = readCSV(path, opts.Comma)
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		var sheet string
		rows, sheet, err = readSheet(path, opts.Sheet)
		name = name + ":" + sheet
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, err
	}

	return NewTable(name, rows)
}

// NewTable builds a Table from raw rows. The first row with any content is
// the header row.
func NewTable(name string, rows [][]string) (*models.Table, error) {
	start := -1
	for i, row := range rows {
		if !blankRow(row) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyTable)
	}

	headers := normalizeHeaders(rows[start])
	t := &models.Table{Name: name, Headers: headers}
	for _, row := range rows[start+1:] {
		if blankRow(row) {
			continue
		}
		out := make([]string, len(headers))
		for i := range out {
			if i < len(row) {
				out[i] = strings.TrimSpace(row[i])
			}
		}
		t.Rows = append(t.Rows, out)
	}
	return t, nil
}

// ReadWorkbook reads every sheet of an Excel workbook as raw cell text.
// Cells are read unformatted so numbers keep full precision.
func ReadWorkbook(path string) (*models.Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadSheets(f, filepath.Base(path))
}

// ReadSheets reads every sheet of an open workbook.
func ReadSheets(f *excelize.File, bookName string) (*models.Workbook, error) {
	wb := &models.Workbook{BookName: bookName}
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
		}
		for _, row := range rows {
			for i := range row {
				row[i] = strings.TrimSpace(row[i])
			}
		}
		wb.Sheets = append(wb.Sheets, models.Sheet{Name: sheetName, Rows: rows})
	}
	return wb, nil
}

func readSheet(path, sheet string) ([][]string, string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, "", fmt.Errorf("%s: %w", path, ErrEmptyTable)
		}
		sheet = list[0]
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, "", fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, sheet, nil
}

func readCSV(path string, comma rune) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	br := bufio.NewReader(file)
	// Excel writes a UTF-8 BOM in front of "CSV UTF-8" exports.
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}
	if comma == 0 {
		comma = sniffComma(br)
	}

	reader := csv.NewReader(br)
	reader.Comma = comma
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV %s: %w", path, err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// sniffComma picks ';' when the first line has more semicolons than commas.
func sniffComma(br *bufio.Reader) rune {
	line, _ := br.Peek(4096)
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

func normalizeHeaders(row []string) []string {
	headers := make([]string, len(row))
	seen := make(map[string]int, len(row))
	for i, h := range row {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		if n, ok := seen[h]; ok {
			seen[h] = n + 1
			h = h + "." + strconv.Itoa(n+1)
		} else {
			seen[h] = 0
		}
		headers[i] = h
	}
	return headers
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
