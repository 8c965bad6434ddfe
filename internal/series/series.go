package series

import (
	"slices"

	"github.com/jgoulah/roomwatt/pkg/models"
)

// Build returns the records sorted ascending by timestamp. The sort is
// stable, so records sharing a timestamp keep their input order. The input
// slice is not modified.
func Build(records []models.UsageRecord) models.UsageSeries {
	out := make(models.UsageSeries, len(records))
	copy(out, records)
	slices.SortStableFunc(out, func(a, b models.UsageRecord) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out
}

// Result is a built series together with the raw-order status summary
type Result struct {
	Series  models.UsageSeries   `json:"series"`
	Summary models.StatusSummary `json:"summary"`
}

// Assemble builds the series from records gathered across all usage sheets.
// The summary is computed separately from raw sheet order and passed through untouched.
func Assemble(records []models.UsageRecord, summary models.StatusSummary) Result {
	return Result{Series: Build(records), Summary: summary}
}
