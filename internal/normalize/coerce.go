package normalize

import (
	"math"
	"strconv"
	"strings"
)

// Present reports whether a cell value carries anything: not nil and not a blank string
func Present(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	default:
		return true
	}
}

// ParseNumber is the strict numeric read: it reports false for anything that
// is not a finite number, including blanks and booleans.
func ParseNumber(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Number reads a usage quantity. Missing, non-numeric and negative input all become 0.
func Number(v any) float64 {
	f, ok := ParseNumber(v)
	if !ok || f < 0 {
		return 0
	}
	return f
}

// Label returns the cell as display text, or sentinel when the cell is empty
func Label(v any, sentinel string) string {
	var s string
	switch val := v.(type) {
	case nil:
		return sentinel
	case string:
		s = strings.TrimSpace(val)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return sentinel
		}
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(val)
	case int:
		s = strconv.Itoa(val)
	case int64:
		s = strconv.FormatInt(val, 10)
	default:
		return sentinel
	}
	if s == "" {
		return sentinel
	}
	return s
}
