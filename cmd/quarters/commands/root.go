package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonseok/quarters/internal/estimates"
)

var (
	// Global flags
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quarters",
	Short: "Point-in-time quarterly estimate engine",
	Long: `Quarters resolves analyst quarterly estimates as they were knowable on
each trading day, with no lookahead.

Usage:
  go run ./cmd/quarters [command]

Examples:
  go run ./cmd/quarters serve
  go run ./cmd/quarters materialize --input data/reports.csv --policy next --start 2015-01-02 --end 2015-01-30
  go run ./cmd/quarters load --input data/reports.csv`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// parseColumns parses "out=src,out=src" column mappings. An entry without "="
// maps the name to itself.
func parseColumns(value string) (estimates.ColumnMap, error) {
	columns := make(estimates.ColumnMap)
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out, src, found := strings.Cut(item, "=")
		if !found {
			src = out
		}
		if out == "" || src == "" {
			return nil, fmt.Errorf("invalid column mapping %q", item)
		}
		columns[out] = src
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no column mappings in %q", value)
	}
	return columns, nil
}
