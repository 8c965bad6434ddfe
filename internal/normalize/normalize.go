// Package normalize converts raw sheet rows into usage records.
//
// Per-cell defects never produce errors. Numbers default to 0, labels to a
// sentinel and timestamps to the current time; the only row that is dropped
// is one without a timestamp cell.
package normalize

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jgoulah/roomwatt/internal/gviz"
	"github.com/jgoulah/roomwatt/internal/schema"
	"github.com/jgoulah/roomwatt/internal/temporal"
	"github.com/jgoulah/roomwatt/pkg/models"
)

// Sheet is a fetched table together with its resolved columns
type Sheet struct {
	Name  string
	Table *gviz.Table
	Index schema.Index
}

// NewSheet resolves the table's headers and wraps both
func NewSheet(name string, table *gviz.Table) Sheet {
	return Sheet{Name: name, Table: table, Index: schema.Resolve(table.Headers())}
}

// value reads field f of row i, or nil when the field is unresolved or the cell is absent
func (s Sheet) value(i int, f schema.Field) any {
	col, ok := s.Index.Lookup(f)
	if !ok {
		return nil
	}
	return s.Table.Value(i, col)
}

// Row converts row i of the sheet. It returns false when the row has no timestamp.
func (s Sheet) Row(i int, now func() time.Time) (models.UsageRecord, bool) {
	ts := s.value(i, schema.Timestamp)
	if !Present(ts) {
		return models.UsageRecord{}, false
	}

	return models.UsageRecord{
		Timestamp:  temporal.Decode(ts, now),
		RoomNumber: Label(s.value(i, schema.RoomNumber), models.RoomUnknown),
		PowerWatts: Number(s.value(i, schema.PowerWatts)),
		KWhUsage:   Number(s.value(i, schema.KWhUsage)),
		CostBaht:   Number(s.value(i, schema.CostBaht)),
	}, true
}

// Records converts every row in sheet order, dropping rows without a timestamp
func (s Sheet) Records(now func() time.Time) []models.UsageRecord {
	records := make([]models.UsageRecord, 0, len(s.Table.Rows))
	skipped := 0
	for i := range s.Table.Rows {
		rec, ok := s.Row(i, now)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	log.Debug().
		Str("table", s.Name).
		Int("rows", len(s.Table.Rows)).
		Int("records", len(records)).
		Int("skipped", skipped).
		Msg("Normalized sheet rows")
	return records
}

// ScanStatus walks the sheets top to bottom, in the order given, and keeps the
// last non-empty level and the last numeric amount paid.
//
// This scan uses raw sheet order, not timestamp order, so the reported level
// can come from a row that is not the chronologically latest one.
func ScanStatus(sheets ...Sheet) models.StatusSummary {
	summary := models.StatusSummary{LatestLevel: models.LevelUnknown}
	for _, s := range sheets {
		for i := range s.Table.Rows {
			if lv := s.value(i, schema.Level); Present(lv) {
				summary.LatestLevel = models.ParseLevel(Label(lv, ""))
			}
			if paid, ok := ParseNumber(s.value(i, schema.AmountPaid)); ok {
				summary.LatestAmountPaid = paid
				summary.HasAmountPaid = true
			}
		}
	}
	return summary
}
