package match

import "github.com/ukaji3/speclimits-go/pkg/speclimits/models"

// Evaluate matches every measurement against the index. Bounds are
// inclusive; a missing bound does not constrain.
func Evaluate(measurements []models.Measurement, idx *Index) []models.Match {
	out := make([]models.Match, 0, len(measurements))
	for _, m := range measurements {
		out = append(out, evaluateOne(m, idx))
	}
	return out
}

func evaluateOne(m models.Measurement, idx *Index) models.Match {
	rule, ambiguous := idx.Lookup(m)
	res := models.Match{Measurement: m, Limit: rule}
	switch {
	case ambiguous:
		res.Status = models.StatusAmbiguous
	case rule == nil:
		res.Status = models.StatusNoLimit
	case m.Value == nil:
		res.Status = models.StatusNoValue
	default:
		res.Status = Classify(*m.Value, rule.Lower, rule.Upper)
	}
	return res
}

// Classify places a value relative to optional lower and upper bounds.
func Classify(v float64, lower, upper *float64) models.Status {
	if lower != nil && v < *lower {
		return models.StatusBelow
	}
	if upper != nil && v > *upper {
		return models.StatusAbove
	}
	return models.StatusInSpec
}
