package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
)

func f(v float64) *float64 { return &v }

func at(day int) *time.Time {
	ts := time.Date(2024, 2, day, 8, 0, 0, 0, time.UTC)
	return &ts
}

func measurement(p models.Process, machine, variable string, v *float64) models.Measurement {
	return models.Measurement{Process: p, Machine: machine, Variable: variable, Value: v}
}

func TestParseDuplicatePolicy(t *testing.T) {
	p, err := ParseDuplicatePolicy("")
	require.NoError(t, err)
	assert.Equal(t, DuplicatesFirst, p)

	p, err = ParseDuplicatePolicy("unique")
	require.NoError(t, err)
	assert.Equal(t, DuplicatesUnique, p)

	_, err = ParseDuplicatePolicy("last")
	assert.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	rules := []models.LimitRule{
		{Machine: "MAQ-01", Variable: "Volt (V)", VariableKey: "voltv", Lower: f(1), Upper: f(2), Process: models.ProcessCD},
		{Machine: "maq 01", Variable: "Curr", VariableKey: "curr", Upper: f(0.5)},
	}
	idx := NewIndex(rules, DuplicatesFirst)
	assert.Equal(t, 3, idx.Len())

	ms := []models.Measurement{
		measurement(models.ProcessCD, "Maq01", "volt_v", f(1)),
		measurement(models.ProcessCD, "Maq01", "volt_v", f(2)),
		measurement(models.ProcessCD, "Maq01", "volt_v", f(0.9)),
		measurement(models.ProcessCD, "Maq01", "volt_v", f(2.1)),
		measurement(models.ProcessCD, "Maq01", "volt_v", nil),
		measurement(models.ProcessCW, "Maq01", "volt_v", f(1.5)),
		measurement(models.ProcessCW, "MAQ 01", "CURR", f(-10)),
		measurement(models.ProcessCW, "MAQ 01", "CURR", f(0.6)),
	}
	want := []models.Status{
		models.StatusInSpec,
		models.StatusInSpec,
		models.StatusBelow,
		models.StatusAbove,
		models.StatusNoValue,
		models.StatusNoLimit,
		models.StatusInSpec,
		models.StatusAbove,
	}

	got := Evaluate(ms, idx)
	require.Len(t, got, len(ms))
	for i, m := range got {
		assert.Equal(t, want[i], m.Status, "measurement %d", i)
	}
	assert.Same(t, &rules[0], got[0].Limit)
	assert.Nil(t, got[5].Limit)
}

func TestDuplicatePolicies(t *testing.T) {
	rules := []models.LimitRule{
		{Machine: "M1", VariableKey: "v", Upper: f(1), Process: models.ProcessCD, Sheet: "Hoja", Row: 2},
		{Machine: "M1", VariableKey: "v", Upper: f(5), Process: models.ProcessCD, Sheet: "Hoja", Row: 9},
	}
	m := measurement(models.ProcessCD, "M1", "V", f(3))

	first := NewIndex(rules, DuplicatesFirst)
	got := Evaluate([]models.Measurement{m}, first)
	assert.Equal(t, models.StatusAbove, got[0].Status)
	assert.Equal(t, []string{"CD/m1/v matched by 2 rules [Hoja!2 Hoja!9]"}, first.Duplicates())

	unique := NewIndex(rules, DuplicatesUnique)
	got = Evaluate([]models.Measurement{m}, unique)
	assert.Equal(t, models.StatusAmbiguous, got[0].Status)
	assert.Nil(t, got[0].Limit)
}

func TestNilIndex(t *testing.T) {
	var idx *Index
	rule, ambiguous := idx.Lookup(measurement(models.ProcessCD, "M1", "V", f(1)))
	assert.Nil(t, rule)
	assert.False(t, ambiguous)
	assert.Zero(t, idx.Len())
	assert.Nil(t, idx.Duplicates())
}

func TestFilterApply(t *testing.T) {
	ms := []models.Measurement{
		{Process: models.ProcessCD, Machine: "M1", Variable: "V1", Timestamp: at(1)},
		{Process: models.ProcessCD, Machine: "M2", Variable: "V1", Timestamp: at(2)},
		{Process: models.ProcessCW, Machine: "M1", Variable: "V2", Timestamp: at(3)},
		{Process: models.ProcessCW, Machine: "M1", Variable: "V1"},
	}

	assert.Len(t, Filter{}.Apply(ms), 4)
	assert.Len(t, Filter{Processes: []models.Process{models.ProcessCW}}.Apply(ms), 2)
	assert.Len(t, Filter{Machines: []string{"M1"}, Variables: []string{"V1"}}.Apply(ms), 2)

	got := Filter{From: at(2)}.Apply(ms)
	require.Len(t, got, 2, "records without a timestamp are dropped by a time bound")
	assert.Equal(t, "M2", got[0].Machine)

	got = Filter{From: at(1), To: at(2)}.Apply(ms)
	assert.Len(t, got, 2)
}

func TestApplicableLimits(t *testing.T) {
	rules := []models.LimitRule{
		{Machine: "M-1", VariableKey: "v1", Process: models.ProcessCD},
		{Machine: "M-1", VariableKey: "v1", Process: models.ProcessCW},
		{Machine: "M-1", VariableKey: "v2"},
		{Machine: "M2", VariableKey: "v1", Process: models.ProcessCD},
	}

	got := Filter{
		Processes: []models.Process{models.ProcessCD},
		Machines:  []string{"m1"},
		Variables: []string{"V_1", "V2"},
	}.ApplicableLimits(rules)
	require.Len(t, got, 2)
	assert.Equal(t, models.ProcessCD, got[0].Process)
	assert.Equal(t, "v2", got[1].VariableKey)

	assert.Len(t, Filter{}.ApplicableLimits(rules), 4)
}

func TestDistinctAndTimeRange(t *testing.T) {
	ms := []models.Measurement{
		{Machine: "M2", Variable: "b", Timestamp: at(5)},
		{Machine: "M1", Variable: "a", Timestamp: at(3)},
		{Machine: "", Variable: "b"},
		{Machine: "M2", Variable: "c", Timestamp: at(9)},
	}
	assert.Equal(t, []string{"M1", "M2"}, Machines(ms))
	assert.Equal(t, []string{"a", "b", "c"}, Variables(ms))

	first, last := TimeRange(ms)
	require.NotNil(t, first)
	require.NotNil(t, last)
	assert.Equal(t, 3, first.Day())
	assert.Equal(t, 9, last.Day())

	first, last = TimeRange(nil)
	assert.Nil(t, first)
	assert.Nil(t, last)
}

func TestParseTime(t *testing.T) {
	ts, err := ParseTime("2024-02-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *ts)

	ts, err = ParseTime("2024-02-01T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, 8, ts.UTC().Hour())

	ts, err = ParseTime("")
	assert.NoError(t, err)
	assert.Nil(t, ts)

	_, err = ParseTime("yesterday")
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	rule := &models.LimitRule{Lower: f(0), Upper: f(6)}
	mk := func(machine string, v *float64, status models.Status) models.Match {
		return models.Match{
			Measurement: measurement(models.ProcessCD, machine, "V", v),
			Limit:       rule,
			Status:      status,
		}
	}
	matches := []models.Match{
		mk("M2", f(2), models.StatusInSpec),
		mk("M2", f(4), models.StatusInSpec),
		mk("M2", nil, models.StatusNoValue),
		mk("M1", f(7), models.StatusAbove),
		{Measurement: measurement(models.ProcessCD, "M0", "V", f(1)), Status: models.StatusNoLimit},
	}

	got := Summarize(matches)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"M0", "M1", "M2"}, []string{got[0].Machine, got[1].Machine, got[2].Machine})

	assert.Nil(t, got[0].Lower)
	assert.Nil(t, got[0].StdDev)

	assert.Equal(t, 1, got[1].Above)
	assert.Equal(t, 1, got[1].OutOfSpec())
	assert.Nil(t, got[1].Cp, "a single value has no spread")

	s := got[2]
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 2, s.ValidCount)
	assert.Equal(t, 2.0, *s.Min)
	assert.Equal(t, 4.0, *s.Max)
	assert.Equal(t, 3.0, *s.Mean)
	assert.InDelta(t, 1.41421356, *s.StdDev, 1e-6)
	require.NotNil(t, s.Cp)
	assert.InDelta(t, 6/(6*1.41421356), *s.Cp, 1e-6)
	assert.InDelta(t, 3/(3*1.41421356), *s.Cpk, 1e-6)
}

func TestCapability(t *testing.T) {
	cp, cpk := Capability(5, 1, nil, f(8))
	assert.Nil(t, cp)
	require.NotNil(t, cpk)
	assert.InDelta(t, 1.0, *cpk, 1e-9)

	cp, cpk = Capability(5, 1, f(4), f(8))
	assert.InDelta(t, 4.0/6, *cp, 1e-9)
	assert.InDelta(t, 1.0/3, *cpk, 1e-9)

	cp, cpk = Capability(5, 0, f(4), f(8))
	assert.Nil(t, cp)
	assert.Nil(t, cpk)
}
