package estimates

import (
	"context"
	"fmt"
	"time"

	"github.com/wonseok/quarters/pkg/logger"
)

// Loader is one of the two engine entry points, binding a report log to a
// resolution policy. The ledger is built once at construction; queries share
// it read-only and may run in parallel.
type Loader struct {
	policy  Policy
	ledger  *Ledger
	columns ColumnMap
	logger  *logger.Logger
}

// Query describes one materialization request. Days must be the ordered
// trading sessions of the range, as supplied by the calendar collaborator.
type Query struct {
	Days        []time.Time
	Entities    []string
	QuartersOut int
}

// NewNextLoader builds a loader resolving the upcoming quarter per day.
func NewNextLoader(reports []RawReport, columns ColumnMap, log *logger.Logger) (*Loader, error) {
	return newLoader(NextPolicy{}, reports, columns, log)
}

// NewPreviousLoader builds a loader resolving the most recently released
// quarter per day.
func NewPreviousLoader(reports []RawReport, columns ColumnMap, log *logger.Logger) (*Loader, error) {
	return newLoader(PreviousPolicy{}, reports, columns, log)
}

func newLoader(policy Policy, reports []RawReport, columns ColumnMap, log *logger.Logger) (*Loader, error) {
	ledger, err := NewLedger(reports)
	if err != nil {
		return nil, fmt.Errorf("build ledger: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"policy":   policy.Name(),
		"reports":  ledger.Len(),
		"entities": len(ledger.Entities()),
	}).Debug("Built estimates ledger")

	return &Loader{
		policy:  policy,
		ledger:  ledger,
		columns: columns,
		logger:  log,
	}, nil
}

// Policy returns the loader's resolution policy.
func (l *Loader) Policy() Policy { return l.policy }

// Ledger exposes the underlying report ledger for read-only inspection.
func (l *Loader) Ledger() *Ledger { return l.ledger }

// Run validates the query and materializes the output table. A non-positive
// quarters-out fails with ErrInvalidQuantity before any ledger access and
// produces no partial output.
func (l *Loader) Run(ctx context.Context, q Query) (*Table, error) {
	if q.QuartersOut <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuantity, q.QuartersOut)
	}

	m := NewMaterializer(l.ledger, l.policy, l.columns, l.logger)
	return m.Run(ctx, q.Days, q.Entities, q.QuartersOut)
}
