package commands

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonseok/quarters/internal/calendar"
	"github.com/wonseok/quarters/internal/estimates"
	"github.com/wonseok/quarters/internal/source"
	"github.com/wonseok/quarters/pkg/config"
	"github.com/wonseok/quarters/pkg/logger"
)

// materializeCmd represents the materialize command
var materializeCmd = &cobra.Command{
	Use:   "materialize",
	Short: "Materialize a point-in-time estimate table from a CSV report log",
	Long: `Reads a CSV report log and prints the dense per-day estimate table for
the requested policy and date range.

Example:
  go run ./cmd/quarters materialize --input data/reports.csv --policy next \
      --start 2015-01-02 --end 2015-01-30 --quarters-out 1`,
	RunE: runMaterialize,
}

var (
	matInput       string
	matPolicy      string
	matStart       string
	matEnd         string
	matEntities    string
	matQuartersOut int
	matColumns     string
)

func init() {
	rootCmd.AddCommand(materializeCmd)

	materializeCmd.Flags().StringVar(&matInput, "input", "", "CSV report log path (default SOURCE_CSV_PATH)")
	materializeCmd.Flags().StringVar(&matPolicy, "policy", "next", `resolution policy ("next" or "previous")`)
	materializeCmd.Flags().StringVar(&matStart, "start", "", "first trading day (YYYY-MM-DD)")
	materializeCmd.Flags().StringVar(&matEnd, "end", "", "last trading day (YYYY-MM-DD)")
	materializeCmd.Flags().StringVar(&matEntities, "entities", "", "comma-separated entity ids (default: all)")
	materializeCmd.Flags().IntVar(&matQuartersOut, "quarters-out", 1, "how many quarters out to resolve (N >= 1)")
	materializeCmd.Flags().StringVar(&matColumns, "columns", "estimate", "output columns as out=src pairs")

	materializeCmd.MarkFlagRequired("start")
	materializeCmd.MarkFlagRequired("end")
}

func runMaterialize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	input := matInput
	if input == "" {
		input = cfg.Source.CSVPath
	}

	start, err := time.Parse("2006-01-02", matStart)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	end, err := time.Parse("2006-01-02", matEnd)
	if err != nil {
		return fmt.Errorf("invalid --end: %w", err)
	}

	columns, err := parseColumns(matColumns)
	if err != nil {
		return err
	}

	reports, err := source.NewCSVSource(input).Fetch(cmd.Context())
	if err != nil {
		return err
	}

	var loader *estimates.Loader
	switch matPolicy {
	case "next":
		loader, err = estimates.NewNextLoader(reports, columns, log)
	case "previous":
		loader, err = estimates.NewPreviousLoader(reports, columns, log)
	default:
		return fmt.Errorf(`--policy must be "next" or "previous"`)
	}
	if err != nil {
		return err
	}

	entities := splitFlagList(matEntities)
	if len(entities) == 0 {
		entities = loader.Ledger().Entities()
	}

	cal := calendar.New(cfg.Calendar.Holidays...)
	table, err := loader.Run(cmd.Context(), estimates.Query{
		Days:        cal.Sessions(start, end),
		Entities:    entities,
		QuartersOut: matQuartersOut,
	})
	if err != nil {
		return err
	}

	printTable(table)
	return nil
}

func splitFlagList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// printTable writes one row per (day, entity) with one column per output
// column. Null cells print as "-".
func printTable(table *estimates.Table) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	columns := table.Columns()

	fmt.Fprint(w, "day\tentity")
	for _, col := range columns {
		fmt.Fprintf(w, "\t%s", col)
	}
	fmt.Fprintln(w)

	for i, d := range table.Days {
		for _, entity := range table.Entities {
			fmt.Fprintf(w, "%s\t%s", d.Format("2006-01-02"), entity)
			for _, col := range columns {
				cell, _ := table.At(col, i, entity)
				fmt.Fprintf(w, "\t%s", formatCell(cell))
			}
			fmt.Fprintln(w)
		}
	}
}

func formatCell(cell estimates.Value) string {
	if !cell.Valid {
		return "-"
	}
	if cell.Kind == estimates.KindTime {
		return cell.Time.Format("2006-01-02")
	}
	return fmt.Sprintf("%g", cell.Float)
}
