package match

import (
	"fmt"
	"sort"
	"time"

	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/normalize"
)

// Filter selects measurements. Empty lists select everything.
type Filter struct {
	Processes []models.Process `json:"processes,omitempty"`
	Machines  []string         `json:"machines,omitempty"`
	Variables []string         `json:"variables,omitempty"`
	// From and To bound the timestamp, inclusive. When either is set,
	// measurements without a timestamp are dropped.
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// Apply returns the measurements selected by the filter, in input order.
func (f Filter) Apply(ms []models.Measurement) []models.Measurement {
	processes := processSet(f.Processes)
	machines := stringSet(f.Machines)
	variables := stringSet(f.Variables)

	var out []models.Measurement
	for _, m := range ms {
		if processes != nil && !processes[m.Process] {
			continue
		}
		if machines != nil && !machines[m.Machine] {
			continue
		}
		if variables != nil && !variables[m.Variable] {
			continue
		}
		if f.From != nil || f.To != nil {
			if m.Timestamp == nil {
				continue
			}
			if f.From != nil && m.Timestamp.Before(*f.From) {
				continue
			}
			if f.To != nil && m.Timestamp.After(*f.To) {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}

// ApplicableLimits returns the rules for the selected machines and
// processes whose variable matches a selected variable after normalization.
func (f Filter) ApplicableLimits(rules []models.LimitRule) []models.LimitRule {
	processes := processSet(f.Processes)
	var machines, variables map[string]bool
	if len(f.Machines) > 0 {
		machines = make(map[string]bool, len(f.Machines))
		for _, m := range f.Machines {
			machines[normalize.Key(m)] = true
		}
	}
	if len(f.Variables) > 0 {
		variables = make(map[string]bool, len(f.Variables))
		for _, v := range f.Variables {
			variables[normalize.Key(v)] = true
		}
	}

	var out []models.LimitRule
	for _, r := range rules {
		if processes != nil && r.Process != "" && !processes[r.Process] {
			continue
		}
		if machines != nil && !machines[normalize.Key(r.Machine)] {
			continue
		}
		if variables != nil && !variables[r.VariableKey] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Machines returns the sorted distinct non-empty machines of ms.
func Machines(ms []models.Measurement) []string {
	return distinct(ms, func(m models.Measurement) string { return m.Machine })
}

// Variables returns the sorted distinct variables of ms.
func Variables(ms []models.Measurement) []string {
	return distinct(ms, func(m models.Measurement) string { return m.Variable })
}

// TimeRange returns the earliest and latest timestamps, nil when none.
func TimeRange(ms []models.Measurement) (first, last *time.Time) {
	for i := range ms {
		ts := ms[i].Timestamp
		if ts == nil {
			continue
		}
		if first == nil || ts.Before(*first) {
			first = ts
		}
		if last == nil || ts.After(*last) {
			last = ts
		}
	}
	return first, last
}

func distinct(ms []models.Measurement, field func(models.Measurement) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range ms {
		v := field(m)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func processSet(ps []models.Process) map[models.Process]bool {
	if len(ps) == 0 {
		return nil
	}
	set := make(map[models.Process]bool, len(ps))
	for _, p := range ps {
		set[p] = true
	}
	return set
}

func stringSet(ss []string) map[string]bool {
	if len(ss) == 0 {
		return nil
	}
	set := make(map[string]bool, len(ss))
	for _, s := range ss {
		set[s] = true
	}
	return set
}

// ParseTime parses a filter bound given as RFC 3339 or a bare date (UTC).
// Empty yields nil.
func ParseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("cannot parse time %q", s)
}
