package models

import "time"

// Measurement is one long-format record: a single variable reading taken
// on a machine at a point in time.
type Measurement struct {
	// Machine is the machine identifier as found in the source.
	Machine string `json:"machine"`
	// Variable is the source column name.
	Variable string `json:"variable"`
	// VariableKey is the normalized variable name used for limit matching.
	VariableKey string `json:"variable_key"`
	// Value is the numeric reading, nil when the cell was not numeric.
	Value *float64 `json:"value"`
	// Timestamp is nil when the source has no usable date/time.
	Timestamp *time.Time `json:"timestamp"`
	// Process is the process partition the record came from.
	Process Process `json:"process"`
}
