// Package match pairs measurements with limit rules and summarizes
// conformance.
package match

import (
	"fmt"
	"sort"

	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/normalize"
)

// DuplicatePolicy decides what happens when several rules share a key.
type DuplicatePolicy string

const (
	// DuplicatesFirst applies the first rule in workbook order.
	DuplicatesFirst DuplicatePolicy = "first"
	// DuplicatesUnique applies no rule and marks the measurement ambiguous.
	DuplicatesUnique DuplicatePolicy = "unique"
)

// ParseDuplicatePolicy validates a policy name. Empty means first.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case "", DuplicatesFirst:
		return DuplicatesFirst, nil
	case DuplicatesUnique:
		return DuplicatesUnique, nil
	}
	return "", fmt.Errorf("invalid duplicate policy %q (must be first or unique)", s)
}

type key struct {
	process  models.Process
	machine  string
	variable string
}

func (k key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.process, k.machine, k.variable)
}

// Index looks up limit rules by process, machine and normalized variable.
type Index struct {
	policy DuplicatePolicy
	rules  map[key][]*models.LimitRule
}

// NewIndex indexes rules. A rule without a process is indexed under every
// process. Machines are compared with normalize.Key, so "Maq-01" and
// "MAQ 01" are the same machine.
func NewIndex(rules []models.LimitRule, policy DuplicatePolicy) *Index {
	if policy == "" {
		policy = DuplicatesFirst
	}
	idx := &Index{policy: policy, rules: make(map[key][]*models.LimitRule)}
	for i := range rules {
		r := &rules[i]
		processes := []models.Process{r.Process}
		if r.Process == "" {
			processes = models.Processes
		}
		for _, p := range processes {
			k := key{process: p, machine: normalize.Key(r.Machine), variable: r.VariableKey}
			idx.rules[k] = append(idx.rules[k], r)
		}
	}
	return idx
}

// Lookup returns the rule for a measurement. ambiguous is true when the
// policy is unique and more than one rule matched.
func (idx *Index) Lookup(m models.Measurement) (rule *models.LimitRule, ambiguous bool) {
	if idx == nil {
		return nil, false
	}
	variable := m.VariableKey
	if variable == "" {
		variable = normalize.Key(m.Variable)
	}
	found := idx.rules[key{process: m.Process, machine: normalize.Key(m.Machine), variable: variable}]
	switch {
	case len(found) == 0:
		return nil, false
	case len(found) > 1 && idx.policy == DuplicatesUnique:
		return nil, true
	}
	return found[0], false
}

// Len returns the number of indexed keys.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.rules)
}

// Duplicates describes every key matched by more than one rule, sorted.
func (idx *Index) Duplicates() []string {
	if idx == nil {
		return nil
	}
	var out []string
	for k, rules := range idx.rules {
		if len(rules) < 2 {
			continue
		}
		rows := make([]string, 0, len(rules))
		for _, r := range rules {
			rows = append(rows, fmt.Sprintf("%s!%d", r.Sheet, r.Row))
		}
		out = append(out, fmt.Sprintf("%s matched by %d rules %v", k, len(rules), rows))
	}
	sort.Strings(out)
	return out
}
