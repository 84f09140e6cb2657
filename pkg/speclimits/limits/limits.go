// Package limits parses specification-limit workbooks of varying layout
// into limit rules.
package limits

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/parser"
	"github.com/xuri/excelize/v2"
)

// ErrNoLimitRules indicates that no layout heuristic produced any rule.
var ErrNoLimitRules = errors.New("no limit rules parsed")

const maxWarnings = 50

// Options configures limit parsing.
type Options struct {
	// Layout forces a layout. Empty or LayoutAuto detects it.
	Layout models.LimitLayout
	// Sheet restricts parsing to one worksheet.
	Sheet string
	// Region restricts parsing to a cell range. A sheet-qualified region
	// overrides Sheet.
	Region *models.CellRange
	// Table tunes header and bounds detection.
	Table parser.TableDetectionParams
}

// Result holds the parsed rules and what the heuristics decided.
type Result struct {
	Rules    []models.LimitRule `json:"rules"`
	Layout   models.LimitLayout `json:"layout"`
	Sheets   []string           `json:"sheets"`
	Warnings []string           `json:"warnings,omitempty"`

	dropped int
}

func (r *Result) warnf(format string, args ...interface{}) {
	if len(r.Warnings) >= maxWarnings {
		r.dropped++
		return
	}
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Result) finish() {
	if r.dropped > 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("%d more warnings suppressed", r.dropped))
		r.dropped = 0
	}
}

// ParseFile reads a limits workbook (or a CSV export of one) and parses it.
// rangeRef, when set, is a defined name or cell reference restricting the
// region to parse.
func ParseFile(path string, opts Options, rangeRef string) (*Result, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		t, err := parser.ReadTable(path, parser.TableOptions{})
		if err != nil {
			return nil, err
		}
		rows := append([][]string{t.Headers}, t.Rows...)
		wb := &models.Workbook{BookName: filepath.Base(path), Sheets: []models.Sheet{{Name: t.Name, Rows: rows}}}
		if rangeRef != "" {
			region, err := parser.ParseRange(rangeRef)
			if err != nil {
				return nil, err
			}
			opts.Region = region
		}
		return Parse(wb, opts)
	}

	if rangeRef == "" {
		wb, err := parser.ReadWorkbook(path)
		if err != nil {
			return nil, err
		}
		return Parse(wb, opts)
	}

	// Defined names live in the workbook, so keep it open while resolving.
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	region, err := parser.ResolveRange(f, rangeRef)
	if err != nil {
		return nil, err
	}
	opts.Region = region

	wb, err := parser.ReadSheets(f, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return Parse(wb, opts)
}

// Parse extracts limit rules from a workbook. Layouts are tried in order:
// one sheet per process, a CD/CW group row above the header, two 4-column
// blocks side by side, a single flat table, and finally two positional
// blocks when the table is at least 8 columns wide. The returned Result is
// non-nil even with ErrNoLimitRules so callers can report the warnings.
func Parse(wb *models.Workbook, opts Options) (*Result, error) {
	if opts.Layout == "" {
		opts.Layout = models.LayoutAuto
	}
	if opts.Table == (parser.TableDetectionParams{}) {
		opts.Table = parser.DefaultTableParams()
	}
	res := &Result{}
	defer res.finish()

	sheetName := opts.Sheet
	if opts.Region != nil && opts.Region.Sheet != "" {
		sheetName = opts.Region.Sheet
	}

	if sheetName == "" && opts.Region == nil &&
		(opts.Layout == models.LayoutAuto || opts.Layout == models.LayoutPerSheet) {
		if parsePerSheet(wb, opts, res) {
			return res, nil
		}
	}
	if opts.Layout == models.LayoutPerSheet {
		res.warnf("no sheet is named after a process (CD / CW)")
		return res, ErrNoLimitRules
	}

	var sheets []models.Sheet
	if sheetName != "" {
		sheet, ok := wb.Sheet(sheetName)
		if !ok {
			return res, fmt.Errorf("sheet %q not found in %s", sheetName, wb.BookName)
		}
		sheets = []models.Sheet{*sheet}
	} else {
		sheets = wb.Sheets
	}

	for _, sheet := range sheets {
		rows, offset := sheet.Rows, 0
		if opts.Region != nil {
			rows, offset = opts.Region.Crop(rows), opts.Region.R1-1
		}
		layout := parseSheet(sheet.Name, rows, offset, models.Process(""), opts, res)
		if len(res.Rules) > 0 {
			res.Layout = layout
			res.Sheets = []string{sheet.Name}
			return res, nil
		}
	}
	return res, ErrNoLimitRules
}

// parsePerSheet parses every sheet named after a process as a flat table.
func parsePerSheet(wb *models.Workbook, opts Options, res *Result) bool {
	var parsed []string
	for _, sheet := range wb.Sheets {
		p := labelProcess(sheet.Name)
		if p == "" {
			continue
		}
		before := len(res.Rules)
		flat := opts
		flat.Layout = models.LayoutFlat
		parseSheet(sheet.Name, sheet.Rows, 0, p, flat, res)
		if len(res.Rules) > before {
			parsed = append(parsed, sheet.Name)
		}
	}
	if len(parsed) == 0 {
		return false
	}
	res.Layout = models.LayoutPerSheet
	res.Sheets = parsed
	return true
}

// parseSheet applies the layout heuristics to one grid. process, when set,
// is assigned to rules that carry no process of their own.
func parseSheet(name string, rows [][]string, rowOffset int, process models.Process, opts Options, res *Result) models.LimitLayout {
	b, ok := parser.DetectBounds(rows, opts.Table)
	if !ok {
		res.warnf("sheet %q: no table found", name)
		return ""
	}

	groupRow := -1
	switch {
	case isGroupRow(cropRow(rows, b.HeaderRow, b)) && b.HeaderRow < b.MaxRow:
		groupRow = b.HeaderRow
		b.HeaderRow++
	case b.HeaderRow > b.MinRow && isGroupRow(cropRow(rows, b.HeaderRow-1, b)):
		groupRow = b.HeaderRow - 1
	}

	header, data := b.Slice(rows)
	// 1-based worksheet row of data[0].
	firstRow := rowOffset + b.HeaderRow + 2
	blk := block{sheet: name, data: data, firstRow: firstRow}
	layout := opts.Layout

	if groupRow >= 0 && (layout == models.LayoutAuto || layout == models.LayoutMultiHeader) {
		if parseGroups(blk, header, cropRow(rows, groupRow, b), res) {
			return models.LayoutMultiHeader
		}
	}
	if layout == models.LayoutMultiHeader {
		res.warnf("sheet %q: no CD/CW group row above the header", name)
		return ""
	}

	if len(header) >= 8 && (layout == models.LayoutAuto || layout == models.LayoutDualBlock) {
		first, second := detectColumns(header[:4]), detectColumns(header[4:8]).shift(4)
		named := first.complete() && second.complete()
		if named || layout == models.LayoutDualBlock {
			if !named {
				res.warnf("sheet %q: block headers not recognized, assuming machine, variable, lower, upper order", name)
				first, second = positionalColumns(0), positionalColumns(4)
			}
			parseDualBlock(blk, header, first, second, res)
			if len(res.Rules) > 0 {
				return models.LayoutDualBlock
			}
		}
	}
	if layout == models.LayoutDualBlock {
		res.warnf("sheet %q: dual block layout needs at least 8 columns", name)
		return ""
	}

	cols := detectColumns(header)
	if cols.complete() {
		before := len(res.Rules)
		blk.parse(cols, process, res)
		if len(res.Rules) > before {
			return models.LayoutFlat
		}
	} else {
		res.warnf("sheet %q: missing %s column", name, strings.Join(cols.missing(), ", "))
	}

	if layout == models.LayoutAuto && len(header) >= 8 {
		res.warnf("sheet %q: falling back to positional CD/CW blocks", name)
		parseDualBlock(blk, header, positionalColumns(0), positionalColumns(4), res)
		if len(res.Rules) > 0 {
			return models.LayoutDualBlock
		}
	}
	return ""
}

// parseDualBlock parses two side-by-side blocks, CD then CW unless their
// headers say otherwise.
func parseDualBlock(blk block, header []string, first, second blockColumns, res *Result) {
	p1, p2 := blockProcess(header[:4]), blockProcess(header[4:8])
	if p1 == "" {
		p1 = models.ProcessCD
	}
	if p2 == "" {
		p2 = models.ProcessCW
	}
	blk.parse(first, p1, res)
	blk.parse(second, p2, res)
}

// parseGroups splits the header into spans under each group label and
// parses every span as a flat block of that process. Merged group cells
// read as blank, so a label carries over to the right.
func parseGroups(blk block, header, group []string, res *Result) bool {
	before := len(res.Rules)
	var current models.Process
	start := -1
	flush := func(end int) {
		if start < 0 || current == "" {
			return
		}
		cols := detectColumns(header[start:end]).shift(start)
		if !cols.complete() {
			res.warnf("sheet %q: %s group is missing %s column", blk.sheet, current, strings.Join(cols.missing(), ", "))
			return
		}
		blk.parse(cols, current, res)
	}
	for i := range header {
		var label models.Process
		if i < len(group) && group[i] != "" {
			label = groupLabel(group[i])
		}
		if label != "" && label != current {
			flush(i)
			current, start = label, i
		}
	}
	flush(len(header))
	return len(res.Rules) > before
}

func cropRow(rows [][]string, r int, b parser.Bounds) []string {
	if r < 0 || r >= len(rows) {
		return nil
	}
	out := make([]string, b.MaxCol-b.MinCol+1)
	for c := b.MinCol; c <= b.MaxCol && c < len(rows[r]); c++ {
		out[c-b.MinCol] = rows[r][c]
	}
	return out
}
