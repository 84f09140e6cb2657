package normalize

import (
	"fmt"
	"regexp"
)

// Rules holds the column-name heuristics used by DetectSchema.
type Rules struct {
	// MachineColumns are candidate machine headers, in priority order.
	MachineColumns []string `yaml:"machine_columns"`
	// DateColumns are candidate date headers, in priority order.
	DateColumns []string `yaml:"date_columns"`
	// TimeColumns are candidate time-of-day headers, in priority order.
	TimeColumns []string `yaml:"time_columns"`
	// TimestampHints are substrings marking a combined date-time header.
	TimestampHints []string `yaml:"timestamp_hints"`
	// ExcludeColumns are headers that never hold measured variables.
	ExcludeColumns []string `yaml:"exclude_columns"`
	// ExcludePrefixes drop headers starting with any of these (case-insensitive).
	ExcludePrefixes []string `yaml:"exclude_prefixes"`
	// VariablePattern selects variables by name when no column is numeric enough.
	VariablePattern string `yaml:"variable_pattern"`
	// NumericThreshold is the minimum fraction of numeric cells for a variable.
	NumericThreshold float64 `yaml:"numeric_threshold"`
	// DayFirst parses ambiguous dates such as 03/04/2024 as 3 April. When
	// false they read as 4 March; either way a date that is only valid in
	// the other order (13/02/2024) still parses.
	DayFirst bool `yaml:"day_first"`
}

// DefaultRules returns the heuristics used for the CD/CW test exports.
func DefaultRules() Rules {
	return Rules{
		MachineColumns: []string{"maquina", "machine", "line", "linea"},
		DateColumns:    []string{"date", "day-month-year", "day_month_year", "fecha", "fecha_hora", "daymonthyear"},
		TimeColumns:    []string{"time", "hour_min_seg", "hora", "hour", "time_stamp", "hora_min_seg"},
		TimestampHints: []string{"timestamp", "date_time", "datetime"},
		ExcludeColumns: []string{
			"maquina", "tipo", "timestamp", "date", "time", "serial_number", "serial", "model", "status",
			"hour", "yield", "ref", "start_boot", "power_up", "powerup", "setboard", "totaltime", "total_time",
			"linea", "categoria", "check pn renessas", "mac", "said",
		},
		ExcludePrefixes:  []string{"unnamed"},
		VariablePattern:  `get|angle|encoder|touch|audio|screen|lcd|rssi`,
		NumericThreshold: 0.5,
		DayFirst:         false,
	}
}

// Validate checks the rules for unusable values.
func (r Rules) Validate() error {
	if len(r.MachineColumns) == 0 {
		return fmt.Errorf("machine_columns must not be empty")
	}
	if r.NumericThreshold <= 0 || r.NumericThreshold > 1 {
		return fmt.Errorf("numeric_threshold must be in (0, 1], got %v", r.NumericThreshold)
	}
	if r.VariablePattern != "" {
		if _, err := regexp.Compile(r.VariablePattern); err != nil {
			return fmt.Errorf("variable_pattern: %w", err)
		}
	}
	return nil
}
