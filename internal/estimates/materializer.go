package estimates

import (
	"context"
	"sync"
	"time"

	"github.com/wonseok/quarters/pkg/logger"
)

const defaultWorkers = 8

// Materializer produces the dense per-day output table for one policy over a
// ledger. Entities are independent, so they are materialized concurrently;
// each goroutine owns its cursor and writes only its entity's series.
// ⭐ SSOT: 시계열 구체화는 이 구조체에서만
type Materializer struct {
	ledger  *Ledger
	policy  Policy
	columns ColumnMap
	logger  *logger.Logger
	workers int
}

// NewMaterializer creates a materializer for one (ledger, policy) pair.
func NewMaterializer(ledger *Ledger, policy Policy, columns ColumnMap, log *logger.Logger) *Materializer {
	return &Materializer{
		ledger:  ledger,
		policy:  policy,
		columns: columns,
		logger:  log,
		workers: defaultWorkers,
	}
}

// Run walks the trading days in increasing order for every entity and fills
// one series per output column. For each day it folds in reports that became
// knowable since the previous day, resolves the reference quarter, projects it
// n quarters out, and reads the projected quarter's values. A day's cell
// therefore never depends on knowledge stamped after that day, and a revised
// event date is only honored from the day the revision became knowable.
func (m *Materializer) Run(ctx context.Context, days []time.Time, entities []string, n int) (*Table, error) {
	start := time.Now()
	table := newTable(days, entities, m.columns.OutputColumns())

	sem := make(chan struct{}, m.workers)
	var wg sync.WaitGroup

	for _, entity := range entities {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(entity string) {
			defer wg.Done()
			defer func() { <-sem }()
			m.fillEntity(table, days, entity, n)
		}(entity)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.logger.WithFields(map[string]interface{}{
		"policy":       m.policy.Name(),
		"quarters_out": n,
		"days":         len(days),
		"entities":     len(entities),
		"duration":     time.Since(start),
	}).Debug("Materialized estimate series")

	return table, nil
}

func (m *Materializer) fillEntity(table *Table, days []time.Time, entity string, n int) {
	cursor := m.ledger.Cursor(entity)

	for i, day := range days {
		state := cursor.Advance(day)

		q0, ok := m.policy.Reference(state, day)
		if !ok {
			// No eligible quarter as of this day: every cell stays null.
			continue
		}

		target := m.policy.Project(q0, n)

		// Fiscal year and quarter follow from the projected index alone:
		// knowing which quarter is next pins down the shifted quarter's
		// calendar position even before any report targets it.
		year, quarter := target.Split()
		m.set(table, ColumnFiscalQuarter, i, entity, FloatValue(float64(quarter)))
		m.set(table, ColumnFiscalYear, i, entity, FloatValue(float64(year)))

		report, ok := state[target]
		if !ok {
			// Report-carried columns stay null until a report for the
			// projected quarter becomes visible.
			continue
		}

		m.set(table, ColumnEventDate, i, entity, TimeValue(report.EventDate))
		for col, field := range m.columns {
			if col == ColumnEventDate || col == ColumnFiscalQuarter || col == ColumnFiscalYear {
				continue
			}
			if v, ok := report.Values[field]; ok {
				m.set(table, col, i, entity, FloatValue(v))
			}
		}
	}
}

func (m *Materializer) set(table *Table, column string, day int, entity string, v Value) {
	if byEntity, ok := table.cells[column]; ok {
		if series, ok := byEntity[entity]; ok {
			series[day] = v
		}
	}
}
