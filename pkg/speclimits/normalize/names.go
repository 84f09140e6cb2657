// Package normalize detects column roles in inconsistently named source
// tables and reshapes them into long-format measurement records.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key folds a variable or machine name into its matching key: lower case,
// accents removed, everything outside [0-9a-z] dropped.
// "Lím_Inf (V)" and "liminf v" both become "liminfv".
func Key(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Tokens splits s on every character that is not a letter or digit and
// folds each part with Key. Empty parts are dropped.
// "Límites CD-CW" becomes [limites cd cw].
func Tokens(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if k := Key(f); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// ContainsAny reports whether key contains any of the given fragments.
// Fragments are compared after Key folding.
func ContainsAny(key string, fragments ...string) bool {
	for _, f := range fragments {
		if f = Key(f); f != "" && strings.Contains(key, f) {
			return true
		}
	}
	return false
}
