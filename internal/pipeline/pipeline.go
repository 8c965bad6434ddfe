// Package pipeline runs one dashboard load: fetch every configured sheet,
// normalize, build the series and compute the views.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jgoulah/roomwatt/internal/config"
	"github.com/jgoulah/roomwatt/internal/gviz"
	"github.com/jgoulah/roomwatt/internal/logging"
	"github.com/jgoulah/roomwatt/internal/normalize"
	"github.com/jgoulah/roomwatt/internal/series"
	"github.com/jgoulah/roomwatt/internal/views"
	"github.com/jgoulah/roomwatt/pkg/models"
)

// TableFetcher retrieves one sheet tab
type TableFetcher interface {
	FetchTable(ctx context.Context, ref gviz.TableRef) (*gviz.Table, error)
}

// Snapshot is everything the dashboard surfaces need from one load
type Snapshot struct {
	LoadID    string    `json:"load_id"`
	FetchedAt time.Time `json:"fetched_at"`

	Series  models.UsageSeries   `json:"series"`
	Summary models.StatusSummary `json:"summary"`

	TotalCost float64             `json:"total_cost"`
	Budget    views.BudgetStatus  `json:"budget"`
	Window    models.UsageSeries  `json:"window"`
	Trend     []views.TrendPoint  `json:"trend"`
	Trace     []views.TracePoint  `json:"trace"`
	DayNight  views.Split         `json:"day_night"`
	Latest    *models.UsageRecord `json:"latest,omitempty"`
}

// Loader runs loads against a fixed configuration. It holds no per-load state,
// so concurrent Load calls are independent.
type Loader struct {
	fetcher TableFetcher
	cfg     config.DashboardConfig
	now     func() time.Time
}

// NewLoader creates a loader. The config is copied and never modified.
func NewLoader(fetcher TableFetcher, cfg config.DashboardConfig) *Loader {
	tables := make([]config.TableConfig, len(cfg.Tables))
	copy(tables, cfg.Tables)
	cfg.Tables = tables

	return &Loader{fetcher: fetcher, cfg: cfg, now: time.Now}
}

// Load fetches all tables concurrently and waits for every one of them. Any
// fetch or envelope failure aborts the load; there is no partial snapshot.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	loadID := uuid.NewString()
	logger := logging.ForLoad(loadID)

	tables, err := l.fetchAll(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Dashboard load failed")
		return nil, err
	}

	sheets := make([]normalize.Sheet, len(tables))
	var records []models.UsageRecord
	for i, tc := range l.cfg.Tables {
		sheets[i] = normalize.NewSheet(tc.Name, tables[i])
		if tc.Role != config.RoleUsage {
			continue
		}
		sheets[i].Index.LogUnresolved(logger, tc.Name)
		records = append(records, sheets[i].Records(l.now)...)
	}

	// Status comes from a separate raw-order pass; it is not derived from the sorted series.
	summary := normalize.ScanStatus(sheets...)
	result := series.Assemble(records, summary)

	snap := Compute(result, l.cfg.BudgetLimit)
	snap.LoadID = loadID
	snap.FetchedAt = l.now()

	logger.Info().
		Int("tables", len(tables)).
		Int("records", len(snap.Series)).
		Float64("total_cost", snap.TotalCost).
		Str("level", string(snap.Summary.LatestLevel)).
		Msg("Dashboard loaded")
	return snap, nil
}

func (l *Loader) fetchAll(ctx context.Context) ([]*gviz.Table, error) {
	tables := make([]*gviz.Table, len(l.cfg.Tables))
	g, gctx := errgroup.WithContext(ctx)
	for i, tc := range l.cfg.Tables {
		g.Go(func() error {
			table, err := l.fetcher.FetchTable(gctx, gviz.TableRef{SheetID: tc.SheetID, GID: tc.GID})
			if err != nil {
				return fmt.Errorf("fetching table %s: %w", tc.Name, err)
			}
			tables[i] = table
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// Compute derives every view from a built series
func Compute(result series.Result, budgetLimit float64) *Snapshot {
	window := views.RecencyWindow(result.Series, views.WindowSize)
	total := views.RunningTotal(result.Series)

	snap := &Snapshot{
		Series:    result.Series,
		Summary:   result.Summary,
		TotalCost: total,
		Budget:    views.Budget(total, budgetLimit),
		Window:    window,
		Trend:     views.Trend(window),
		Trace:     views.CumulativeTrace(result.Series, budgetLimit),
		DayNight:  views.DayNight(result.Series),
	}
	if latest, ok := views.LatestMeaningful(window); ok {
		snap.Latest = &latest
	}
	return snap
}
