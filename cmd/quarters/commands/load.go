package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonseok/quarters/internal/source"
	"github.com/wonseok/quarters/pkg/config"
	"github.com/wonseok/quarters/pkg/database"
	"github.com/wonseok/quarters/pkg/logger"
)

// loadCmd represents the load command
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a CSV report log into PostgreSQL",
	Long: `Reads a CSV report log and upserts every revision into the database.

Example:
  go run ./cmd/quarters load --input data/reports.csv`,
	RunE: runLoad,
}

var loadInput string

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().StringVar(&loadInput, "input", "", "CSV report log path (default SOURCE_CSV_PATH)")
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	log := logger.New(cfg)

	input := loadInput
	if input == "" {
		input = cfg.Source.CSVPath
	}

	reports, err := source.NewCSVSource(input).Fetch(cmd.Context())
	if err != nil {
		return err
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := source.NewReportRepository(db.Pool)
	if err := repo.SaveBatch(cmd.Context(), reports); err != nil {
		return fmt.Errorf("save reports: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"reports": len(reports),
		"input":   input,
	}).Info("Report log loaded")
	fmt.Printf("Loaded %d report revisions from %s\n", len(reports), input)

	return nil
}
