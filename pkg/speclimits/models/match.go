package models

// Status is the conformance verdict for a measurement.
type Status string

const (
	StatusInSpec    Status = "in_spec"
	StatusBelow     Status = "below"
	StatusAbove     Status = "above"
	StatusNoLimit   Status = "no_limit"
	StatusNoValue   Status = "no_value"
	StatusAmbiguous Status = "ambiguous"
)

// OutOfSpec reports whether the status is a limit violation.
func (s Status) OutOfSpec() bool {
	return s == StatusBelow || s == StatusAbove
}

// Match pairs a measurement with the limit rule applied to it.
type Match struct {
	Measurement Measurement `json:"measurement"`
	Limit       *LimitRule  `json:"limit,omitempty"`
	Status      Status      `json:"status"`
}

// Summary aggregates the matches of one (process, machine, variable) series.
type Summary struct {
	Process  Process `json:"process"`
	Machine  string  `json:"machine"`
	Variable string  `json:"variable"`
	// Count is the number of records, ValidCount those with a numeric value.
	Count      int      `json:"count"`
	ValidCount int      `json:"valid_count"`
	Min        *float64 `json:"min,omitempty"`
	Max        *float64 `json:"max,omitempty"`
	Mean       *float64 `json:"mean,omitempty"`
	StdDev     *float64 `json:"std_dev,omitempty"`
	Lower      *float64 `json:"lower,omitempty"`
	Upper      *float64 `json:"upper,omitempty"`
	Below      int      `json:"below"`
	Above      int      `json:"above"`
	// Cp and Cpk are process capability indices; nil when undefined.
	Cp  *float64 `json:"cp,omitempty"`
	Cpk *float64 `json:"cpk,omitempty"`
}

// OutOfSpec returns the number of violating records.
func (s Summary) OutOfSpec() int {
	return s.Below + s.Above
}
