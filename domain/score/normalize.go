package score

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// absenceMarkers are the literal values read as "no value" (the pandas NaN set).
var absenceMarkers = map[string]struct{}{
	"":     {},
	"nan":  {},
	"NaN":  {},
	"-nan": {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NULL": {},
	"null": {},
	"None": {},
	"<NA>": {},
	"#N/A": {},
}

// IsMissing reports whether v is empty or an absence marker.
func IsMissing(v string) bool {
	_, ok := absenceMarkers[strings.TrimSpace(v)]
	return ok
}

// CleanValue trims v and maps absence markers to the empty string.
func CleanValue(v string) string {
	v = strings.TrimSpace(v)
	if IsMissing(v) {
		return ""
	}
	return v
}

// NormalizeNote drops every rune that is not a letter, number, underscore or
// whitespace. Applying it twice yields the same string as applying it once.
func NormalizeNote(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
}

// ParseScore returns the numeric total score, or false when it is missing or not a number.
func ParseScore(v string) (float64, bool) {
	if IsMissing(v) {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
