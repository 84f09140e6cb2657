package limits

import (
	"strings"

	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/normalize"
)

// Header fragments, compared after normalize.Key folding.
var (
	machineHints  = []string{"maquina", "machine", "equipo"}
	variableHints = []string{"variable", "parametro", "prueba", "test", "medicion"}
	lowerHints    = []string{"liminf", "limiteinferior", "lower", "lsl", "inferior"}
	upperHints    = []string{"limsup", "limitesuperior", "upper", "usl", "superior"}
	processHints  = []string{"tipo", "proceso", "process"}
)

// blockColumns holds the column index of each role within a block, -1 when absent.
type blockColumns struct {
	machine  int
	variable int
	lower    int
	upper    int
	process  int
}

func (c blockColumns) complete() bool {
	return c.machine >= 0 && c.variable >= 0 && (c.lower >= 0 || c.upper >= 0)
}

// detectColumns assigns roles to headers by substring. "min" and "max" only
// count at the start of a header, so "Terminal" is not a bound. Each header
// takes the first role it matches and each role keeps the first header
// matching it.
func detectColumns(headers []string) blockColumns {
	cols := blockColumns{-1, -1, -1, -1, -1}
	for i, h := range headers {
		key := normalize.Key(h)
		if key == "" {
			continue
		}
		switch {
		case normalize.ContainsAny(key, lowerHints...) || strings.HasPrefix(key, "min"):
			if cols.lower < 0 {
				cols.lower = i
			}
		case normalize.ContainsAny(key, upperHints...) || strings.HasPrefix(key, "max"):
			if cols.upper < 0 {
				cols.upper = i
			}
		case normalize.ContainsAny(key, machineHints...):
			if cols.machine < 0 {
				cols.machine = i
			}
		case normalize.ContainsAny(key, variableHints...):
			if cols.variable < 0 {
				cols.variable = i
			}
		case normalize.ContainsAny(key, processHints...):
			if cols.process < 0 {
				cols.process = i
			}
		}
	}
	return cols
}

// positionalColumns is the machine, variable, lower, upper convention.
func positionalColumns(offset int) blockColumns {
	return blockColumns{machine: offset, variable: offset + 1, lower: offset + 2, upper: offset + 3, process: -1}
}

// labelProcess extracts CD or CW from a header or sheet name such as
// "CD_maquina", "maquina cw", "Limites CD" or "LimInfCD". Names mentioning
// both ("Limites CD-CW"), or neither, yield "".
func labelProcess(s string) models.Process {
	var cd, cw bool
	for _, tok := range normalize.Tokens(s) {
		switch tok {
		case "cd":
			cd = true
		case "cw":
			cw = true
		}
	}
	if !cd && !cw {
		// Unseparated labels such as "LimInfCD".
		key := normalize.Key(s)
		cd = strings.HasPrefix(key, "cd") || strings.HasSuffix(key, "cd")
		cw = strings.HasPrefix(key, "cw") || strings.HasSuffix(key, "cw")
		if strings.Contains(key, "cd") && strings.Contains(key, "cw") {
			return ""
		}
	}
	switch {
	case cd && !cw:
		return models.ProcessCD
	case cw && !cd:
		return models.ProcessCW
	}
	return ""
}

// blockProcess returns the process shared by the labelled headers of a block.
func blockProcess(headers []string) models.Process {
	var found models.Process
	for _, h := range headers {
		p := labelProcess(h)
		if p == "" {
			continue
		}
		if found != "" && found != p {
			return ""
		}
		found = p
	}
	return found
}

// groupLabel returns the process of a group-row cell such as "CD" or
// "Limites CW". Cells that also name a column role are not group labels.
func groupLabel(c string) models.Process {
	p := labelProcess(c)
	if p == "" {
		return ""
	}
	cols := detectColumns([]string{c})
	if cols.machine >= 0 || cols.variable >= 0 || cols.lower >= 0 || cols.upper >= 0 || cols.process >= 0 {
		return ""
	}
	return p
}

// isGroupRow reports whether every non-empty cell of row is a group label.
func isGroupRow(row []string) bool {
	labels := 0
	for _, c := range row {
		if c == "" {
			continue
		}
		if groupLabel(c) == "" {
			return false
		}
		labels++
	}
	return labels > 0
}
