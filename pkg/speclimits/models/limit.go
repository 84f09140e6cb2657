package models

// LimitLayout names the shape of a limits workbook.
type LimitLayout string

const (
	// LayoutAuto detects the layout from the workbook.
	LayoutAuto LimitLayout = "auto"
	// LayoutFlat is a single table with machine, variable, lower, upper and
	// an optional process column.
	LayoutFlat LimitLayout = "flat"
	// LayoutDualBlock is an 8-column table: a CD block of four columns
	// followed by a CW block of four columns.
	LayoutDualBlock LimitLayout = "dual_block"
	// LayoutMultiHeader is a table with a group row (CD / CW) above the
	// header row.
	LayoutMultiHeader LimitLayout = "multi_header"
	// LayoutPerSheet holds one flat table per process sheet.
	LayoutPerSheet LimitLayout = "per_sheet"
)

// ParseLimitLayout validates a layout name. Empty means auto.
func ParseLimitLayout(s string) (LimitLayout, bool) {
	switch LimitLayout(s) {
	case "", LayoutAuto:
		return LayoutAuto, true
	case LayoutFlat, LayoutDualBlock, LayoutMultiHeader, LayoutPerSheet:
		return LimitLayout(s), true
	}
	return "", false
}

// LimitRule holds the specification limits for a variable on a machine.
type LimitRule struct {
	// Machine is the machine identifier the rule applies to.
	Machine string `json:"machine"`
	// Variable is the variable name as written in the limits workbook.
	Variable string `json:"variable"`
	// VariableKey is the normalized variable name.
	VariableKey string `json:"variable_key"`
	// Lower is the lower specification limit (LSL), nil when absent.
	Lower *float64 `json:"lower"`
	// Upper is the upper specification limit (USL), nil when absent.
	Upper *float64 `json:"upper"`
	// Process is empty when the rule applies to every process.
	Process Process `json:"process,omitempty"`
	// Sheet is the worksheet the rule was read from.
	Sheet string `json:"sheet,omitempty"`
	// Row is the 1-based worksheet row the rule was read from.
	Row int `json:"row,omitempty"`
}

// AppliesTo reports whether the rule covers the given process.
func (r LimitRule) AppliesTo(p Process) bool {
	return r.Process == "" || r.Process == p
}
