// Package temporal turns sheet timestamp cells into time values.
//
// Decoding never fails. A cell that cannot be understood becomes the
// current time, which degrades sort order instead of aborting a load.
package temporal

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// dateLiteral matches the export's Date(Y,M,D[,h,m,s]) encoding. Month is zero-based.
var dateLiteral = regexp.MustCompile(`^Date\(\s*(-?\d+)\s*,\s*(-?\d+)\s*,\s*(-?\d+)\s*(?:,\s*(-?\d+)\s*)?(?:,\s*(-?\d+)\s*)?(?:,\s*(-?\d+)\s*)?(?:,\s*(-?\d+)\s*)?\)$`)

// Decode converts v to a point in time. Recognized forms, in order: a
// time.Time, a Date(...) literal, any other date string, a number of Unix
// milliseconds. Anything else yields now().
//
// The result is always in time.Local, even when the cell carries its own
// offset, so hour-of-day buckets and clock labels use local wall time.
func Decode(v any, now func() time.Time) time.Time {
	return decode(v, now).In(time.Local)
}

func decode(v any, now func() time.Time) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case *time.Time:
		if val != nil {
			return *val
		}
	case string:
		if t, ok := parseString(val); ok {
			return t
		}
	case float64:
		if t, ok := fromMillis(val); ok {
			return t
		}
	case int64:
		return time.UnixMilli(val)
	case int:
		return time.UnixMilli(int64(val))
	}
	return now()
}

// DecodeNow is Decode with the wall clock as fallback
func DecodeNow(v any) time.Time {
	return Decode(v, time.Now)
}

// ParseDateLiteral parses a Date(Y,M,D[,h,m,s]) string in the local zone.
// Missing trailing components default to 0.
func ParseDateLiteral(s string) (time.Time, bool) {
	m := dateLiteral.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, false
	}

	// year, month, day, hour, minute, second, millisecond
	var parts [7]int
	for i := range parts {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return time.Time{}, false
		}
		parts[i] = n
	}

	return time.Date(parts[0], time.Month(parts[1]+1), parts[2], parts[3], parts[4], parts[5], parts[6]*int(time.Millisecond), time.Local), true
}

func parseString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, ok := ParseDateLiteral(s); ok {
		return t, true
	}
	return parseLoose(s)
}

func parseLoose(s string) (t time.Time, ok bool) {
	// dateparse has panicked on pathological input in the past
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()

	t, err := dateparse.ParseIn(s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func fromMillis(ms float64) (time.Time, bool) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)), true
}
