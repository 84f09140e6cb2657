package normalize

import (
	"errors"
	"regexp"
	"strings"

	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/parser"
)

// ErrMachineColumnNotFound indicates that no header matched a machine candidate.
var ErrMachineColumnNotFound = errors.New("machine column not found")

// ErrNoVariables indicates that no column qualified as a measured variable.
var ErrNoVariables = errors.New("no variable columns detected")

// ChooseColumn returns the first header equal (case-insensitively, ignoring
// surrounding spaces) to a candidate. Candidate order wins over header order.
func ChooseColumn(headers []string, candidates []string) (string, bool) {
	for _, n := range candidates {
		n = strings.TrimSpace(n)
		for _, h := range headers {
			if strings.EqualFold(strings.TrimSpace(h), n) {
				return h, true
			}
		}
	}
	return "", false
}

// FindDateTimeColumns returns the date and time headers. The first header
// (in table order) matching a date or time candidate is used. Without a date
// header, a header containing a timestamp hint is returned as the date column
// and time is left empty.
func FindDateTimeColumns(headers []string, rules Rules) (date, clock string) {
	for _, h := range headers {
		lh := strings.ToLower(strings.TrimSpace(h))
		if date == "" && containsFold(rules.DateColumns, lh) {
			date = h
		}
		if clock == "" && containsFold(rules.TimeColumns, lh) {
			clock = h
		}
	}
	if date != "" {
		return date, clock
	}
	for _, h := range headers {
		lh := strings.ToLower(h)
		for _, hint := range rules.TimestampHints {
			if hint != "" && strings.Contains(lh, strings.ToLower(hint)) {
				return h, ""
			}
		}
	}
	return "", ""
}

// DetectVariables returns the headers holding measured variables. A column
// qualifies when it is not excluded and at least rules.NumericThreshold of
// its cells (over all rows) parse as numbers. When nothing qualifies, headers
// matching rules.VariablePattern are used and fallback is true.
func DetectVariables(t *models.Table, exclude map[string]bool, rules Rules) (vars []string, fallback bool) {
	threshold := rules.NumericThreshold
	if threshold <= 0 {
		threshold = 0.5
	}

	for col, h := range t.Headers {
		if exclude[strings.ToLower(h)] {
			continue
		}
		if len(t.Rows) == 0 {
			continue
		}
		numeric := 0
		for r := range t.Rows {
			if _, ok := parser.ParseNumber(t.Value(r, col)); ok {
				numeric++
			}
		}
		if float64(numeric)/float64(len(t.Rows)) >= threshold {
			vars = append(vars, h)
		}
	}
	if len(vars) > 0 || rules.VariablePattern == "" {
		return vars, false
	}

	re, err := regexp.Compile(rules.VariablePattern)
	if err != nil {
		return nil, false
	}
	for _, h := range t.Headers {
		if exclude[strings.ToLower(h)] {
			continue
		}
		if re.MatchString(strings.ToLower(h)) {
			vars = append(vars, h)
		}
	}
	return vars, len(vars) > 0
}

// DetectSchema assigns roles to the columns of t. A missing machine column is
// an error; a table without variables yields an empty Variables list so the
// caller can decide whether another source makes up for it.
func DetectSchema(t *models.Table, rules Rules) (models.Schema, error) {
	machine, ok := ChooseColumn(t.Headers, rules.MachineColumns)
	if !ok {
		return models.Schema{}, ErrMachineColumnNotFound
	}

	date, clock := FindDateTimeColumns(t.Headers, rules)
	schema := models.Schema{
		MachineColumn: machine,
		DateColumn:    date,
		TimeColumn:    clock,
	}

	exclude := make(map[string]bool, len(rules.ExcludeColumns)+3)
	for _, c := range rules.ExcludeColumns {
		exclude[strings.ToLower(strings.TrimSpace(c))] = true
	}
	for _, c := range []string{machine, date, clock} {
		if c != "" {
			exclude[strings.ToLower(c)] = true
		}
	}
	for _, h := range t.Headers {
		lh := strings.ToLower(h)
		for _, p := range rules.ExcludePrefixes {
			if p != "" && strings.HasPrefix(lh, strings.ToLower(p)) {
				exclude[lh] = true
			}
		}
		if exclude[lh] {
			schema.Excluded = append(schema.Excluded, h)
		}
	}

	schema.Variables, schema.VariableFallback = DetectVariables(t, exclude, rules)
	return schema, nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), s) {
			return true
		}
	}
	return false
}
