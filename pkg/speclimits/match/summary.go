package match

import (
	"math"
	"sort"

	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
)

type seriesKey struct {
	process  models.Process
	machine  string
	variable string
}

// Summarize aggregates matches per (process, machine, variable), sorted by
// those fields. Standard deviation is the sample standard deviation.
func Summarize(matches []models.Match) []models.Summary {
	type acc struct {
		sum    models.Summary
		values []float64
	}
	groups := make(map[seriesKey]*acc)
	for _, m := range matches {
		k := seriesKey{m.Measurement.Process, m.Measurement.Machine, m.Measurement.Variable}
		a, ok := groups[k]
		if !ok {
			a = &acc{sum: models.Summary{Process: k.process, Machine: k.machine, Variable: k.variable}}
			groups[k] = a
		}
		a.sum.Count++
		if a.sum.Lower == nil && a.sum.Upper == nil && m.Limit != nil {
			a.sum.Lower, a.sum.Upper = m.Limit.Lower, m.Limit.Upper
		}
		switch m.Status {
		case models.StatusBelow:
			a.sum.Below++
		case models.StatusAbove:
			a.sum.Above++
		}
		if v := m.Measurement.Value; v != nil {
			a.values = append(a.values, *v)
		}
	}

	out := make([]models.Summary, 0, len(groups))
	for _, a := range groups {
		s := a.sum
		fillStats(&s, a.values)
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Process != out[j].Process {
			return out[i].Process < out[j].Process
		}
		if out[i].Machine != out[j].Machine {
			return out[i].Machine < out[j].Machine
		}
		return out[i].Variable < out[j].Variable
	})
	return out
}

func fillStats(s *models.Summary, values []float64) {
	s.ValidCount = len(values)
	if len(values) == 0 {
		return
	}
	lo, hi, total := values[0], values[0], 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		total += v
	}
	mean := total / float64(len(values))
	s.Min, s.Max, s.Mean = ptr(lo), ptr(hi), ptr(mean)

	if len(values) < 2 {
		return
	}
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	sigma := math.Sqrt(sq / float64(len(values)-1))
	s.StdDev = ptr(sigma)
	s.Cp, s.Cpk = Capability(mean, sigma, s.Lower, s.Upper)
}

// Capability returns the Cp and Cpk indices. Cp needs both limits; Cpk is
// one-sided when only one limit is known. Both are nil when sigma is zero.
func Capability(mean, sigma float64, lower, upper *float64) (cp, cpk *float64) {
	if sigma <= 0 || (lower == nil && upper == nil) {
		return nil, nil
	}
	if lower != nil && upper != nil {
		cp = ptr((*upper - *lower) / (6 * sigma))
	}
	k := math.Inf(1)
	if upper != nil {
		k = math.Min(k, (*upper-mean)/(3*sigma))
	}
	if lower != nil {
		k = math.Min(k, (mean-*lower)/(3*sigma))
	}
	return cp, ptr(k)
}

func ptr(v float64) *float64 { return &v }
