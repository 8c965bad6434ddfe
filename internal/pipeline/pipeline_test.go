package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jgoulah/roomwatt/internal/config"
	"github.com/jgoulah/roomwatt/internal/gviz"
	"github.com/jgoulah/roomwatt/pkg/models"
)

type fakeFetcher struct {
	tables map[string]*gviz.Table
	errs   map[string]error
}

func (f *fakeFetcher) FetchTable(ctx context.Context, ref gviz.TableRef) (*gviz.Table, error) {
	if err := f.errs[ref.GID]; err != nil {
		return nil, err
	}
	t, ok := f.tables[ref.GID]
	if !ok {
		return nil, fmt.Errorf("no table %s", ref.GID)
	}
	return t, nil
}

func cell(v any) *gviz.Cell { return &gviz.Cell{V: v} }

func usageTable() *gviz.Table {
	t := &gviz.Table{Cols: []gviz.Column{
		{Label: "Timestamp"}, {Label: "Room Number"}, {Label: "Power Watts"}, {Label: "kWh Usage"}, {Label: "Cost Baht"}, {Label: "Level"},
	}}
	rows := [][]*gviz.Cell{
		{cell("Date(2024,0,15,23,0,0)"), cell("A101"), cell(0.0), cell(1.0), cell(0.0), cell("")},
		{cell("Date(2024,0,15,8,0,0)"), cell("A101"), cell(900.0), cell(1.0), cell(100.0), cell("warning")},
		{nil, cell("A101"), cell(5.0), cell(5.0), cell(5.0)},
		{cell("Date(2024,0,15,9,0,0)"), cell("A101"), cell(850.0), cell(1.0), cell(250.5), cell("critical")},
		{cell("Date(2024,0,15,21,0,0)"), cell("A101"), cell("oops"), cell(1.0), cell(49.5)},
		{cell("Date(2024,0,15,22,0,0)"), cell("A101"), cell(0.0), cell(1.0), cell(0.0), cell("")},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, gviz.Row{C: r})
	}
	return t
}

func profileTable() *gviz.Table {
	return &gviz.Table{
		Cols: []gviz.Column{{Label: "Room"}, {Label: "Amount Paid"}},
		Rows: []gviz.Row{
			{C: []*gviz.Cell{cell("A101"), cell(500.0)}},
			{C: []*gviz.Cell{cell("A101"), cell("")}},
		},
	}
}

func testConfig() config.DashboardConfig {
	return config.DashboardConfig{
		BudgetLimit: 1000,
		Tables: []config.TableConfig{
			{Name: "usage", SheetID: "s", GID: "1", Role: config.RoleUsage},
			{Name: "profile", SheetID: "s", GID: "2", Role: config.RoleProfile},
		},
	}
}

func TestLoad(t *testing.T) {
	fetcher := &fakeFetcher{tables: map[string]*gviz.Table{"1": usageTable(), "2": profileTable()}}
	snap, err := NewLoader(fetcher, testConfig()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if snap.LoadID == "" {
		t.Error("Expected a load id")
	}
	if len(snap.Series) != 5 {
		t.Fatalf("Expected 5 records (one row has no timestamp), got %d", len(snap.Series))
	}
	for i := 1; i < len(snap.Series); i++ {
		if snap.Series[i].Timestamp.Before(snap.Series[i-1].Timestamp) {
			t.Fatalf("Series not ascending at %d", i)
		}
	}

	if snap.TotalCost != 400 {
		t.Errorf("TotalCost = %v, want 400", snap.TotalCost)
	}
	if snap.Budget.Remaining != 600 {
		t.Errorf("Budget.Remaining = %v, want 600", snap.Budget.Remaining)
	}
	if snap.DayNight.DayKWh != 2 || snap.DayNight.NightKWh != 3 {
		t.Errorf("DayNight = %+v, want day 2 / night 3", snap.DayNight)
	}
	if snap.DayNight.DayPercent != 40 || snap.DayNight.NightPercent != 60 {
		t.Errorf("DayNight percent = %d/%d", snap.DayNight.DayPercent, snap.DayNight.NightPercent)
	}

	// Raw-order scan: "critical" is the last non-empty level even though its row is not the latest in time
	if snap.Summary.LatestLevel != models.LevelCritical {
		t.Errorf("LatestLevel = %q, want critical", snap.Summary.LatestLevel)
	}
	if !snap.Summary.HasAmountPaid || snap.Summary.LatestAmountPaid != 500 {
		t.Errorf("LatestAmountPaid = %v, want 500", snap.Summary.LatestAmountPaid)
	}

	// Last two readings (22:00, 23:00) are zero; the 21:00 one has cost
	if snap.Latest == nil || snap.Latest.Timestamp.Hour() != 21 {
		t.Errorf("Latest = %+v, want the 21:00 reading", snap.Latest)
	}
	if len(snap.Trace) != 5 || snap.Trace[4].Cumulative != 400 || snap.Trace[4].Limit != 1000 {
		t.Errorf("Trace tail = %+v", snap.Trace[len(snap.Trace)-1])
	}
	if len(snap.Trend) != 5 || snap.Trend[0].Label != "8:00" {
		t.Errorf("Trend = %+v", snap.Trend)
	}
}

func TestLoadFailureAbortsWholeLoad(t *testing.T) {
	fetcher := &fakeFetcher{
		tables: map[string]*gviz.Table{"1": usageTable()},
		errs:   map[string]error{"2": &gviz.FetchError{StatusCode: 500, Endpoint: "s#gid=2", Message: "boom"}},
	}
	snap, err := NewLoader(fetcher, testConfig()).Load(context.Background())
	if err == nil {
		t.Fatal("Expected error")
	}
	if snap != nil {
		t.Error("Expected no partial snapshot")
	}
	var fetchErr *gviz.FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("Expected wrapped *gviz.FetchError, got %v", err)
	}
	if !strings.Contains(err.Error(), "profile") {
		t.Errorf("Expected table name in error, got %v", err)
	}
}

// barrierFetcher only returns once every expected fetch is in flight
type barrierFetcher struct {
	fakeFetcher
	wg sync.WaitGroup
}

func (b *barrierFetcher) FetchTable(ctx context.Context, ref gviz.TableRef) (*gviz.Table, error) {
	b.wg.Done()
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		return nil, errors.New("fetches were not issued concurrently")
	}
	return b.fakeFetcher.FetchTable(ctx, ref)
}

func TestLoadFetchesConcurrently(t *testing.T) {
	b := &barrierFetcher{fakeFetcher: fakeFetcher{tables: map[string]*gviz.Table{"1": usageTable(), "2": profileTable()}}}
	b.wg.Add(2)

	if _, err := NewLoader(b, testConfig()).Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoadEmptyTable(t *testing.T) {
	fetcher := &fakeFetcher{tables: map[string]*gviz.Table{
		"1": {Cols: []gviz.Column{{Label: "timestamp"}}},
		"2": profileTable(),
	}}
	snap, err := NewLoader(fetcher, testConfig()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if snap.TotalCost != 0 || snap.Latest != nil || len(snap.Window) != 0 {
		t.Errorf("Expected empty views, got %+v", snap)
	}
	if snap.DayNight.DayPercent != 0 || snap.DayNight.NightPercent != 0 {
		t.Errorf("Expected zero shares, got %+v", snap.DayNight)
	}
}

func TestLoadOverHTTP(t *testing.T) {
	body := `google.visualization.Query.setResponse({"status":"ok","table":{"cols":[{"label":"timestamp"},{"label":"room"},{"label":"power"},{"label":"kwh"},{"label":"cost"}],"rows":[{"c":[{"v":"Date(2024,0,15,10,30,0)"},{"v":"B7"},{"v":120},{"v":0.5},{"v":2.5}]}]}});`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	cfg := config.DashboardConfig{
		BudgetLimit: 100,
		Tables:      []config.TableConfig{{Name: "usage", SheetID: "s", GID: "0", Role: config.RoleUsage}},
	}
	snap, err := NewLoader(gviz.NewClient(srv.URL, "test"), cfg).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(snap.Series) != 1 || snap.Series[0].RoomNumber != "B7" || snap.Series[0].CostBaht != 2.5 {
		t.Errorf("Unexpected series: %+v", snap.Series)
	}
	want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.Local)
	if !snap.Series[0].Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", snap.Series[0].Timestamp, want)
	}
}
