package speclimits

import (
	"github.com/ukaji3/speclimits-go/pkg/speclimits/match"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
)

// Report is the checked view of a filtered dataset.
type Report struct {
	Filter       match.Filter         `json:"filter"`
	Measurements []models.Measurement `json:"-"`
	Matches      []models.Match       `json:"matches"`
	Summaries    []models.Summary     `json:"summaries"`
	Limits       []models.LimitRule   `json:"limits"`
}

// OutOfSpec counts the matches outside their limits.
func (r *Report) OutOfSpec() int {
	n := 0
	for _, m := range r.Matches {
		if m.Status.OutOfSpec() {
			n++
		}
	}
	return n
}

// Check filters the measurements, matches them against the limits and
// summarizes each series. Limits are reported for the selected machines
// and variables; with no variable selected, for the variables left after
// filtering.
func (d *Dataset) Check(f match.Filter) *Report {
	ms := f.Apply(d.Measurements)
	matches := match.Evaluate(ms, d.index)

	lf := f
	if len(lf.Variables) == 0 {
		lf.Variables = match.Variables(ms)
	}
	return &Report{
		Filter:       f,
		Measurements: ms,
		Matches:      matches,
		Summaries:    match.Summarize(matches),
		Limits:       lf.ApplicableLimits(d.Limits),
	}
}

// Index returns the limit index used by Check.
func (d *Dataset) Index() *match.Index {
	return d.index
}
