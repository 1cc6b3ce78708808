package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonseok/quarters/internal/api"
	"github.com/wonseok/quarters/internal/api/handlers"
	"github.com/wonseok/quarters/internal/calendar"
	"github.com/wonseok/quarters/internal/entity"
	"github.com/wonseok/quarters/internal/estimates"
	"github.com/wonseok/quarters/internal/scheduler"
	"github.com/wonseok/quarters/internal/scheduler/jobs"
	"github.com/wonseok/quarters/internal/source"
	"github.com/wonseok/quarters/pkg/config"
	"github.com/wonseok/quarters/pkg/database"
	"github.com/wonseok/quarters/pkg/logger"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the estimates API server",
	Long: `Starts the HTTP API server.

Endpoints:
  GET  /health                  - Health check
  POST /api/estimates/query     - Materialize a point-in-time estimate table
  GET  /api/estimates/stream    - Stream a materialization day by day
  POST /api/estimates/reload    - Re-fetch the report log

Example:
  go run ./cmd/quarters serve
  go run ./cmd/quarters serve --port 8090`,
	RunE: runServe,
}

var (
	servePort    string
	serveColumns string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (overrides PORT)")
	serveCmd.Flags().StringVar(&serveColumns, "columns", "estimate", "output columns as out=src pairs")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	log := logger.New(cfg)

	columns, err := parseColumns(serveColumns)
	if err != nil {
		return err
	}

	src, cleanup, err := buildSource(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	service := estimates.NewService(src, columns, log)

	// Load the report log before accepting queries.
	loadCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	err = service.Reload(loadCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("initial report load: %w", err)
	}

	registry, err := registryFromLedger(service)
	if err != nil {
		return err
	}

	cal := calendar.New(cfg.Calendar.Holidays...)

	handler := handlers.NewEstimatesHandler(service, cal, registry, log)
	router := api.NewRouter(cfg, handler, log)
	server := api.New(cfg, log, router)

	var sched *scheduler.Scheduler
	if cfg.Refresh.Enabled {
		sched = scheduler.New(log)
		if err := sched.AddJob(jobs.NewRefreshJob(service, cfg.Refresh.Schedule, log)); err != nil {
			return fmt.Errorf("schedule refresh job: %w", err)
		}
		sched.Start()
	}

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	if sched != nil {
		sched.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

// buildSource creates the report source selected by SOURCE_DRIVER.
func buildSource(cfg *config.Config, log *logger.Logger) (estimates.Source, func(), error) {
	switch cfg.Source.Driver {
	case "postgres":
		db, err := database.New(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		log.Info("Connected to database")
		return source.NewReportRepository(db.Pool), db.Close, nil
	case "csv":
		return source.NewCSVSource(cfg.Source.CSVPath), func() {}, nil
	case "web":
		return source.NewWebClient(cfg.Source.WebBaseURL, cfg.Source.WebSymbols, log), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown source driver %q", cfg.Source.Driver)
	}
}

// registryFromLedger seeds the entity registry with every entity present in
// the loaded report log.
func registryFromLedger(service *estimates.Service) (*entity.Registry, error) {
	loader, err := service.Loader("next")
	if err != nil {
		return nil, err
	}

	registry, err := entity.NewRegistry()
	if err != nil {
		return nil, err
	}
	for _, id := range loader.Ledger().Entities() {
		if err := registry.Add(entity.Entity{ID: id, Symbol: id}); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
