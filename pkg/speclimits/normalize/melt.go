package normalize

import (
	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/parser"
)

// Melt reshapes a wide table into long-format measurements: one record per
// row and variable column. Variables missing from the table are skipped.
// Values that are not numeric are kept with a nil Value.
func Melt(t *models.Table, schema models.Schema, process models.Process, rules Rules) []models.Measurement {
	machineCol := t.Column(schema.MachineColumn)
	dateCol, clockCol := -1, -1
	if schema.DateColumn != "" {
		dateCol = t.Column(schema.DateColumn)
	}
	if schema.TimeColumn != "" {
		clockCol = t.Column(schema.TimeColumn)
	}

	type varCol struct {
		name, key string
		idx       int
	}
	var vars []varCol
	for _, v := range schema.Variables {
		if idx := t.Column(v); idx >= 0 {
			vars = append(vars, varCol{name: v, key: Key(v), idx: idx})
		}
	}
	if len(vars) == 0 {
		return nil
	}

	tsParser := NewTimestampParser(rules.DayFirst)
	bases := make([]models.Measurement, 0, len(t.Rows))
	for r := range t.Rows {
		m := models.Measurement{Machine: t.Value(r, machineCol), Process: process}
		if dateCol >= 0 {
			m.Timestamp = tsParser.Parse(t.Value(r, dateCol), t.Value(r, clockCol))
		}
		bases = append(bases, m)
	}

	// Variable-major order, the same order a melt over value columns yields.
	out := make([]models.Measurement, 0, len(vars)*len(t.Rows))
	for _, v := range vars {
		for r, base := range bases {
			m := base
			m.Variable = v.name
			m.VariableKey = v.key
			m.Value = parser.NumberPtr(t.Value(r, v.idx))
			out = append(out, m)
		}
	}
	return out
}
