package parser

import (
	"math"
	"strconv"
	"strings"
)

// ParseValue attempts to parse a string value as a number.
// Returns int64 for integers, float64 for decimals, or the original string.
func ParseValue(s string) interface{} {
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	// Try float
	if f, ok := ParseNumber(s); ok {
		return f
	}
	// Return as string
	return s
}

// ParseNumber parses a numeric cell. Surrounding spaces are ignored and a
// decimal comma is accepted when the text has no dot. Empty text, NaN and
// infinities are rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if !strings.Contains(s, ".") && strings.Count(s, ",") == 1 {
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NumberPtr is ParseNumber returning nil for non-numeric text.
func NumberPtr(s string) *float64 {
	f, ok := ParseNumber(s)
	if !ok {
		return nil
	}
	return &f
}
