// Package views derives dashboard figures from a usage series.
//
// Every function is pure and expects the series in ascending timestamp
// order, as produced by series.Build.
package views

import (
	"fmt"
	"math"
	"time"

	"github.com/jgoulah/roomwatt/pkg/models"
)

const (
	// WindowSize is the number of trailing readings shown on the usage page
	WindowSize = 10

	// Day covers hours [DayStartHour, DayEndHour); the rest is night
	DayStartHour = 9
	DayEndHour   = 22
)

// RunningTotal sums cost over the whole series
func RunningTotal(s models.UsageSeries) float64 {
	total := 0.0
	for _, r := range s {
		total += r.CostBaht
	}
	return total
}

// RecencyWindow returns the last n records, or all of them if there are fewer
func RecencyWindow(s models.UsageSeries, n int) models.UsageSeries {
	if n <= 0 {
		return models.UsageSeries{}
	}
	start := max(len(s)-n, 0)
	return s[start:len(s):len(s)]
}

// TracePoint pairs the cumulative cost at one reading with the budget limit
type TracePoint struct {
	Timestamp  time.Time `json:"timestamp"`
	Cumulative float64   `json:"cumulative"`
	Limit      float64   `json:"limit"`
}

// CumulativeTrace is the prefix sum of cost alongside a constant limit, for budget-vs-actual charts
func CumulativeTrace(s models.UsageSeries, limit float64) []TracePoint {
	trace := make([]TracePoint, len(s))
	sum := 0.0
	for i, r := range s {
		sum += r.CostBaht
		trace[i] = TracePoint{
			Timestamp:  r.Timestamp,
			Cumulative: sum,
			Limit:      limit,
		}
	}
	return trace
}

// Split is energy use partitioned into day and night hours
type Split struct {
	DayKWh       float64 `json:"day_kwh"`
	NightKWh     float64 `json:"night_kwh"`
	DayPercent   int     `json:"day_percent"`
	NightPercent int     `json:"night_percent"`
}

// IsDayHour reports whether hour falls in the day bucket
func IsDayHour(hour int) bool {
	return hour >= DayStartHour && hour < DayEndHour
}

// DayNight buckets kWh by the hour of each reading. Shares are whole
// percentages of the total, or both 0 when nothing was used.
func DayNight(s models.UsageSeries) Split {
	var split Split
	for _, r := range s {
		if IsDayHour(r.Timestamp.Hour()) {
			split.DayKWh += r.KWhUsage
		} else {
			split.NightKWh += r.KWhUsage
		}
	}

	total := split.DayKWh + split.NightKWh
	if total > 0 {
		split.DayPercent = int(math.Round(split.DayKWh / total * 100))
		split.NightPercent = int(math.Round(split.NightKWh / total * 100))
	}
	return split
}

// LatestMeaningful scans the window backwards for the first reading with
// non-zero power or cost. If there is none it falls back to the last
// reading. It returns false only for an empty window.
func LatestMeaningful(window models.UsageSeries) (models.UsageRecord, bool) {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i].PowerWatts != 0 || window[i].CostBaht != 0 {
			return window[i], true
		}
	}
	return window.Last()
}

// TrendPoint is one labelled point of the usage line chart
type TrendPoint struct {
	Label string  `json:"label"`
	KWh   float64 `json:"kwh"`
}

// Trend labels each reading with its clock time, e.g. "9:05"
func Trend(window models.UsageSeries) []TrendPoint {
	points := make([]TrendPoint, len(window))
	for i, r := range window {
		points[i] = TrendPoint{
			Label: fmt.Sprintf("%d:%02d", r.Timestamp.Hour(), r.Timestamp.Minute()),
			KWh:   r.KWhUsage,
		}
	}
	return points
}

// BudgetStatus compares spend against the configured limit
type BudgetStatus struct {
	Limit       float64 `json:"limit"`
	Used        float64 `json:"used"`
	Remaining   float64 `json:"remaining"`
	PercentUsed float64 `json:"percent_used"`
}

// Budget reports how much of limit the running total has consumed
func Budget(total, limit float64) BudgetStatus {
	b := BudgetStatus{Limit: limit, Used: total, Remaining: limit - total}
	if limit > 0 {
		b.PercentUsed = total / limit * 100
	}
	return b
}
