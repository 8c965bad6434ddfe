package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/roomwatt/internal/config"
	"github.com/jgoulah/roomwatt/internal/gviz"
	"github.com/jgoulah/roomwatt/internal/normalize"
	"github.com/jgoulah/roomwatt/internal/schema"
)

var inspectTable string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show sheet headers and how each column was resolved",
	Long: `Fetches each configured sheet tab and prints its headers, the column chosen for
every field and the rule that chose it (exact, synonym, positional or unresolved).
Useful when a sheet's header row changes and figures start defaulting to zero.`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectTable, "table", "", "Only inspect the table with this name")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	client := newClient(cfg)
	found := false
	for _, tc := range cfg.Dashboard.Tables {
		if inspectTable != "" && tc.Name != inspectTable {
			continue
		}
		found = true

		table, err := client.FetchTable(cmd.Context(), gviz.TableRef{SheetID: tc.SheetID, GID: tc.GID})
		if err != nil {
			return fmt.Errorf("fetching table %s: %w", tc.Name, err)
		}
		printInspection(os.Stdout, tc, normalize.NewSheet(tc.Name, table))
	}

	if !found {
		return fmt.Errorf("no table named %q in config", inspectTable)
	}
	return nil
}

func printInspection(w io.Writer, tc config.TableConfig, sheet normalize.Sheet) {
	fmt.Fprintf(w, "\n%s (%s, gid %s)\n", tc.Name, tc.Role, tc.GID)
	fmt.Fprintln(w, strings.Repeat("-", 50))

	headers := sheet.Table.Headers()
	fmt.Fprintf(w, "Headers (%d):\n", len(headers))
	for i, h := range headers {
		fmt.Fprintf(w, "  [%d] %q\n", i, h)
	}

	fmt.Fprintln(w, "Resolved columns:")
	for _, f := range schema.Fields {
		col, ok := sheet.Index.Lookup(f)
		if !ok {
			fmt.Fprintf(w, "  %-12s  %-4s  %s\n", f, "-", schema.Unresolved)
			continue
		}
		fmt.Fprintf(w, "  %-12s  %-4d  %s\n", f, col, sheet.Index.Strategy(f))
	}

	if missing := sheet.Index.Unresolved(schema.Required...); len(missing) > 0 {
		fmt.Fprintf(w, "Warning: required fields unresolved: %v\n", missing)
	}

	if tc.Role == config.RoleUsage {
		records := sheet.Records(time.Now)
		fmt.Fprintf(w, "Rows: %d, accepted: %d, skipped: %d\n",
			len(sheet.Table.Rows), len(records), len(sheet.Table.Rows)-len(records))
	} else {
		fmt.Fprintf(w, "Rows: %d\n", len(sheet.Table.Rows))
	}
}
