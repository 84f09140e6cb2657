package limits

import (
	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/normalize"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/parser"
)

func (c blockColumns) shift(n int) blockColumns {
	move := func(i int) int {
		if i < 0 {
			return i
		}
		return i + n
	}
	return blockColumns{
		machine:  move(c.machine),
		variable: move(c.variable),
		lower:    move(c.lower),
		upper:    move(c.upper),
		process:  move(c.process),
	}
}

func (c blockColumns) missing() []string {
	var out []string
	if c.machine < 0 {
		out = append(out, "machine")
	}
	if c.variable < 0 {
		out = append(out, "variable")
	}
	if c.lower < 0 && c.upper < 0 {
		out = append(out, "lower/upper limit")
	}
	return out
}

// block is the data area under a header row.
type block struct {
	sheet    string
	data     [][]string
	firstRow int
}

// parse appends one rule per data row that names a machine and a variable.
// A recognizable process cell wins over the block's process.
func (b block) parse(cols blockColumns, process models.Process, res *Result) {
	for i, row := range b.data {
		machine := cell(row, cols.machine)
		variable := cell(row, cols.variable)
		if machine == "" || variable == "" {
			continue
		}
		rowNum := b.firstRow + i

		rule := models.LimitRule{
			Machine:     machine,
			Variable:    variable,
			VariableKey: normalize.Key(variable),
			Process:     process,
			Sheet:       b.sheet,
			Row:         rowNum,
		}
		if raw := cell(row, cols.process); raw != "" {
			if p, err := models.ParseProcess(raw); err == nil {
				rule.Process = p
			} else if p := labelProcess(raw); p != "" {
				rule.Process = p
			} else {
				res.warnf("sheet %q row %d: unknown process %q", b.sheet, rowNum, raw)
			}
		}

		rule.Lower = bound(row, cols.lower, b.sheet, rowNum, res)
		rule.Upper = bound(row, cols.upper, b.sheet, rowNum, res)
		switch {
		case rule.Lower == nil && rule.Upper == nil:
			res.warnf("sheet %q row %d: %s/%s has no numeric limits", b.sheet, rowNum, machine, variable)
		case rule.Lower != nil && rule.Upper != nil && *rule.Lower > *rule.Upper:
			res.warnf("sheet %q row %d: lower limit above upper limit, swapped", b.sheet, rowNum)
			rule.Lower, rule.Upper = rule.Upper, rule.Lower
		}

		res.Rules = append(res.Rules, rule)
	}
}

func bound(row []string, col int, sheet string, rowNum int, res *Result) *float64 {
	raw := cell(row, col)
	if raw == "" {
		return nil
	}
	v := parser.NumberPtr(raw)
	if v == nil {
		res.warnf("sheet %q row %d: limit %q is not a number", sheet, rowNum, raw)
	}
	return v
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
