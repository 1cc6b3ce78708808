package estimates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wonseok/quarters/pkg/logger"
)

func TestRunRejectsNonPositiveQuartersOut(t *testing.T) {
	builders := map[string]func([]RawReport, ColumnMap, *logger.Logger) (*Loader, error){
		"next":     NewNextLoader,
		"previous": NewPreviousLoader,
	}

	for name, build := range builders {
		t.Run(name, func(t *testing.T) {
			loader, err := build(twoQuarterReports(), testColumns, logger.Nop())
			if err != nil {
				t.Fatalf("build loader failed: %v", err)
			}

			for _, n := range []int{0, -1} {
				_, err := loader.Run(context.Background(), Query{
					Days:        januarySessions(t),
					Entities:    []string{"s0"},
					QuartersOut: n,
				})
				if err == nil {
					t.Fatalf("Run with n=%d should fail", n)
				}
				if !errors.Is(err, ErrInvalidQuantity) {
					t.Errorf("Run with n=%d: error = %v, want ErrInvalidQuantity", n, err)
				}
			}
		})
	}
}

func TestNewLoaderRejectsInvalidQuarterBatch(t *testing.T) {
	reports := append(twoQuarterReports(),
		report("s0", "2015-01-03", "2015-01-25", 2015, 0, 3))

	if _, err := NewNextLoader(reports, testColumns, logger.Nop()); err == nil {
		t.Error("NewNextLoader should reject a batch containing an invalid quarter")
	}
	if _, err := NewPreviousLoader(reports, testColumns, logger.Nop()); err == nil {
		t.Error("NewPreviousLoader should reject a batch containing an invalid quarter")
	}
}

func TestColumnMappingReadsSourceField(t *testing.T) {
	reports := []RawReport{
		{
			EntityID:      "s0",
			KnowledgeTime: day("2015-01-02"),
			EventDate:     day("2015-01-15"),
			FiscalYear:    2015,
			FiscalQuarter: 1,
			Values:        map[string]float64{"eps_avg": 1.5, "eps_high": 2.0},
		},
	}

	loader, err := NewNextLoader(reports, ColumnMap{"estimate": "eps_avg"}, logger.Nop())
	if err != nil {
		t.Fatalf("NewNextLoader failed: %v", err)
	}

	table, err := loader.Run(context.Background(), Query{
		Days:        []time.Time{day("2015-01-05")},
		Entities:    []string{"s0"},
		QuartersOut: 1,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	cell, ok := table.At("estimate", 0, "s0")
	if !ok || !cell.Valid || cell.Float != 1.5 {
		t.Errorf("estimate cell = %+v, want 1.5 read from eps_avg", cell)
	}

	// Unmapped source fields don't leak into the output.
	if _, ok := table.Series("eps_high", "s0"); ok {
		t.Error("eps_high should not be an output column")
	}
}

func TestRunCancelledContext(t *testing.T) {
	loader, err := NewNextLoader(twoQuarterReports(), testColumns, logger.Nop())
	if err != nil {
		t.Fatalf("NewNextLoader failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := loader.Run(ctx, Query{
		Days:        januarySessions(t),
		Entities:    []string{"s0"},
		QuartersOut: 1,
	}); err == nil {
		t.Error("Run should fail once the context is cancelled")
	}
}
