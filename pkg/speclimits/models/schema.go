package models

// Schema records the column roles detected in a source table.
type Schema struct {
	// MachineColumn is the header identifying the machine.
	MachineColumn string `json:"machine_column"`
	// DateColumn is the date (or combined date-time) header, if any.
	DateColumn string `json:"date_column,omitempty"`
	// TimeColumn is the time-of-day header, if any.
	TimeColumn string `json:"time_column,omitempty"`
	// Variables lists headers treated as measured variables, in source order.
	Variables []string `json:"variables"`
	// Excluded lists headers that were skipped as identifiers or metadata.
	Excluded []string `json:"excluded,omitempty"`
	// VariableFallback is true when Variables came from the name pattern
	// rather than numeric content.
	VariableFallback bool `json:"variable_fallback,omitempty"`
}

// HasTimestamp reports whether a timestamp can be built for the table.
func (s Schema) HasTimestamp() bool {
	return s.DateColumn != ""
}
