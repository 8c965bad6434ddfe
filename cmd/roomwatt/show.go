package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"

	"github.com/jgoulah/roomwatt/internal/pipeline"
	"github.com/jgoulah/roomwatt/pkg/models"
)

var (
	showJSON   bool
	showSeries bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Load the sheet once and print the dashboard",
	Long: `Fetches every configured sheet tab, builds the usage series and prints the
dashboard figures. Nothing is stored; every invocation is a fresh load.`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the full snapshot as JSON")
	showCmd.Flags().BoolVar(&showSeries, "series", false, "Also print every reading in the series")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	snap, err := newLoader(cfg).Load(cmd.Context())
	if err != nil {
		return loadError(err)
	}

	if showJSON {
		return json.MarshalWrite(os.Stdout, snap, jsontext.WithIndent("  "))
	}
	printDashboard(os.Stdout, snap, showSeries)
	return nil
}

// baht formats an amount with two decimals and thousands separators
func baht(v float64) string {
	return "฿" + humanize.FormatFloat("#,###.##", v)
}

func printDashboard(w io.Writer, snap *pipeline.Snapshot, withSeries bool) {
	line := strings.Repeat("-", 40)

	fmt.Fprintf(w, "Room Electricity Dashboard (%s readings)\n", humanize.Comma(int64(len(snap.Series))))
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "%-18s %s\n", "Total cost:", baht(snap.TotalCost))
	fmt.Fprintf(w, "%-18s %s of %s (%.0f%% used)\n", "Budget:", baht(snap.Budget.Used), baht(snap.Budget.Limit), snap.Budget.PercentUsed)
	fmt.Fprintf(w, "%-18s %s\n", "Remaining:", baht(snap.Budget.Remaining))
	fmt.Fprintf(w, "%-18s %s\n", "Status:", levelLabel(snap.Summary.LatestLevel))
	if snap.Summary.HasAmountPaid {
		fmt.Fprintf(w, "%-18s %s\n", "Amount paid:", baht(snap.Summary.LatestAmountPaid))
	}

	fmt.Fprintln(w, line)
	if snap.Latest != nil {
		fmt.Fprintf(w, "Latest: %.0f W, %s, room %s at %s\n",
			snap.Latest.PowerWatts, baht(snap.Latest.CostBaht), snap.Latest.RoomNumber,
			snap.Latest.Timestamp.Format("2006-01-02 15:04"))
	} else {
		fmt.Fprintln(w, "Latest: no readings")
	}
	fmt.Fprintf(w, "Day:    %s kWh (%d%%)\n", humanize.FormatFloat("#,###.##", snap.DayNight.DayKWh), snap.DayNight.DayPercent)
	fmt.Fprintf(w, "Night:  %s kWh (%d%%)\n", humanize.FormatFloat("#,###.##", snap.DayNight.NightKWh), snap.DayNight.NightPercent)

	if len(snap.Trend) > 0 {
		fmt.Fprintln(w, line)
		fmt.Fprintf(w, "Last %d readings:\n", len(snap.Trend))
		fmt.Fprintf(w, "%-8s  %10s\n", "Time", "kWh")
		for _, p := range snap.Trend {
			fmt.Fprintf(w, "%-8s  %10.2f\n", p.Label, p.KWh)
		}
	}

	if withSeries && len(snap.Series) > 0 {
		fmt.Fprintln(w, line)
		fmt.Fprintf(w, "%-16s  %-6s  %8s  %8s  %10s\n", "Time", "Room", "W", "kWh", "Cost")
		for _, r := range snap.Series {
			fmt.Fprintf(w, "%-16s  %-6s  %8.0f  %8.2f  %10s\n",
				r.Timestamp.Format("2006-01-02 15:04"), r.RoomNumber, r.PowerWatts, r.KWhUsage, baht(r.CostBaht))
		}
	}
}

func levelLabel(l models.Level) string {
	if l == "" {
		return "-"
	}
	return strings.ToUpper(string(l))
}
