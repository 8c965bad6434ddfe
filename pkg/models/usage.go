package models

import (
	"strings"
	"time"
)

// RoomUnknown is used when a row has no room label.
const RoomUnknown = "-"

// UsageRecord represents a single electricity reading from the usage log
type UsageRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	RoomNumber string    `json:"room_number"`
	PowerWatts float64   `json:"power_watts"`
	KWhUsage   float64   `json:"kwh_usage"`
	CostBaht   float64   `json:"cost_baht"`
}

// UsageSeries is a list of records sorted ascending by Timestamp.
// Every aggregation assumes that order.
type UsageSeries []UsageRecord

// Last returns the chronologically last record
func (s UsageSeries) Last() (UsageRecord, bool) {
	if len(s) == 0 {
		return UsageRecord{}, false
	}
	return s[len(s)-1], true
}

// Level is a coarse severity label driving dashboard coloring
type Level string

const (
	LevelNormal   Level = "normal"
	LevelWarning  Level = "warning"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
	LevelUnknown  Level = "unknown"
)

// ParseLevel maps a sheet value onto the closed set of levels
func ParseLevel(s string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelNormal:
		return LevelNormal
	case LevelWarning:
		return LevelWarning
	case LevelHigh:
		return LevelHigh
	case LevelCritical:
		return LevelCritical
	default:
		return LevelUnknown
	}
}

// StatusSummary holds the status fields taken from a raw-order scan of the sheet
type StatusSummary struct {
	LatestLevel      Level   `json:"latest_level"`
	LatestAmountPaid float64 `json:"latest_amount_paid"`
	HasAmountPaid    bool    `json:"has_amount_paid"`
}
