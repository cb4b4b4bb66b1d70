package score

import (
	"slices"
	"strings"
)

// CompareNatural orders identifiers so that digit runs compare by numeric value
// and everything else compares lexicographically: "2" < "10", "A2" < "A10".
func CompareNatural(a, b string) int {
	for a != "" && b != "" {
		da, db := isDigit(a[0]), isDigit(b[0])
		switch {
		case da && db:
			na, ra := splitDigits(a)
			nb, rb := splitDigits(b)
			if c := compareDigitRuns(na, nb); c != 0 {
				return c
			}
			a, b = ra, rb
		case da != db:
			// digits sort before non-digits
			if da {
				return -1
			}
			return 1
		default:
			ta, ra := splitText(a)
			tb, rb := splitText(b)
			if c := strings.Compare(ta, tb); c != 0 {
				return c
			}
			a, b = ra, rb
		}
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func splitDigits(s string) (string, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func splitText(s string) (string, string) {
	i := 0
	for i < len(s) && !isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

// compareDigitRuns compares two decimal strings by value, then by length so
// that "01" and "1" still have a total order.
func compareDigitRuns(a, b string) int {
	ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
	if len(ta) != len(tb) {
		if len(ta) < len(tb) {
			return -1
		}
		return 1
	}
	if c := strings.Compare(ta, tb); c != 0 {
		return c
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// CompareRoomBed orders records by room, then bed.
func CompareRoomBed(a, b Record) int {
	if c := CompareNatural(a.Room, b.Room); c != 0 {
		return c
	}
	return CompareNatural(a.Bed, b.Bed)
}

// Sort orders records by room then bed, keeping input order among equal keys.
func Sort(records []Record) {
	slices.SortStableFunc(records, CompareRoomBed)
}
