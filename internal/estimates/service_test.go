package estimates

import (
	"context"
	"errors"
	"testing"

	"github.com/wonseok/quarters/pkg/logger"
)

type stubSource struct {
	reports []RawReport
	err     error
	calls   int
}

func (s *stubSource) Fetch(ctx context.Context) ([]RawReport, error) {
	s.calls++
	return s.reports, s.err
}

func TestServiceReloadAndRun(t *testing.T) {
	src := &stubSource{reports: twoQuarterReports()}
	svc := NewService(src, testColumns, logger.Nop())

	if st := svc.Status(); st.Loaded {
		t.Error("service should start unloaded")
	}
	if _, err := svc.Run(context.Background(), "next", Query{QuartersOut: 1}); err == nil {
		t.Error("Run before Reload should fail")
	}

	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	st := svc.Status()
	if !st.Loaded || st.Reports != 2 || st.Entities != 1 {
		t.Errorf("Status() = %+v", st)
	}

	days := januarySessions(t)
	for _, policy := range []string{"next", "previous"} {
		table, err := svc.Run(context.Background(), policy, Query{
			Days:        days,
			Entities:    []string{"s0"},
			QuartersOut: 1,
		})
		if err != nil {
			t.Fatalf("Run(%s) failed: %v", policy, err)
		}
		if len(table.Days) != len(days) {
			t.Errorf("Run(%s) returned %d days, want %d", policy, len(table.Days), len(days))
		}
	}
}

func TestServiceUnknownPolicy(t *testing.T) {
	svc := NewService(&stubSource{reports: twoQuarterReports()}, testColumns, logger.Nop())
	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if _, err := svc.Run(context.Background(), "sideways", Query{QuartersOut: 1}); err == nil {
		t.Error("unknown policy should fail")
	}
}

func TestServiceReloadFailureKeepsLoaders(t *testing.T) {
	src := &stubSource{reports: twoQuarterReports()}
	svc := NewService(src, testColumns, logger.Nop())

	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	src.err = errors.New("source down")
	if err := svc.Reload(context.Background()); err == nil {
		t.Fatal("Reload should propagate the source error")
	}

	// Previous loaders stay usable.
	if _, err := svc.Run(context.Background(), "next", Query{
		Days:        januarySessions(t),
		Entities:    []string{"s0"},
		QuartersOut: 1,
	}); err != nil {
		t.Errorf("Run after failed reload should still work, got %v", err)
	}
}

func TestServiceValidationBeforeLedger(t *testing.T) {
	svc := NewService(&stubSource{reports: twoQuarterReports()}, testColumns, logger.Nop())
	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	_, err := svc.Run(context.Background(), "next", Query{QuartersOut: 0})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("error = %v, want ErrInvalidQuantity", err)
	}
}
