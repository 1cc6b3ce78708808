package estimates

import (
	"fmt"
	"sort"
	"time"

	"github.com/wonseok/quarters/internal/fiscal"
)

// Ledger holds the per-entity report history, sorted by knowledge time.
// Once built it is immutable, so any number of queries may read it
// concurrently without synchronization.
// ⭐ SSOT: 엔티티별 리포트 이력은 이 원장이 단독 소유
type Ledger struct {
	entities map[string][]Report
}

// NewLedger normalizes and indexes a report log. The input may arrive in any
// order; reports are stably sorted by knowledge time per entity, so records
// sharing a knowledge time keep their input order and the later-inserted one
// wins the fold. A fiscal quarter outside [1, 4] rejects the whole batch: a
// partially-ingested log would silently change resolution output.
func NewLedger(reports []RawReport) (*Ledger, error) {
	entities := make(map[string][]Report)

	for i, raw := range reports {
		quarter, err := fiscal.Normalize(raw.FiscalYear, raw.FiscalQuarter)
		if err != nil {
			return nil, fmt.Errorf("report %d (entity %s): %w", i, raw.EntityID, err)
		}

		entities[raw.EntityID] = append(entities[raw.EntityID], Report{
			EntityID:      raw.EntityID,
			KnowledgeTime: raw.KnowledgeTime,
			EventDate:     raw.EventDate,
			Quarter:       quarter,
			Values:        raw.Values,
			seq:           i,
		})
	}

	for _, history := range entities {
		sort.SliceStable(history, func(a, b int) bool {
			return history[a].KnowledgeTime.Before(history[b].KnowledgeTime)
		})
	}

	return &Ledger{entities: entities}, nil
}

// Entities returns the ids present in the ledger, sorted.
func (l *Ledger) Entities() []string {
	ids := make([]string, 0, len(l.entities))
	for id := range l.entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the total number of reports across all entities.
func (l *Ledger) Len() int {
	n := 0
	for _, history := range l.entities {
		n += len(history)
	}
	return n
}

// VisibleState replays the entity's reports with knowledge time <= cutoff and
// returns the surviving report per quarter. An entity with no reports yields
// an empty map.
func (l *Ledger) VisibleState(entity string, cutoff time.Time) map[fiscal.QuarterIndex]Report {
	c := l.Cursor(entity)
	return c.Advance(cutoff)
}

// Cursor returns an incremental reader over one entity's history. As the
// cutoff advances day by day, only newly-eligible reports are folded in; the
// state is never rebuilt from scratch.
func (l *Ledger) Cursor(entity string) *Cursor {
	return &Cursor{
		history: l.entities[entity],
		state:   make(map[fiscal.QuarterIndex]Report),
	}
}

// Cursor folds an entity's knowledge-time-ordered history into the visible
// per-quarter state as its cutoff moves forward. Not safe for concurrent use;
// each materialization goroutine owns its own cursor.
type Cursor struct {
	history []Report
	next    int
	state   map[fiscal.QuarterIndex]Report
}

// Advance folds in every report with knowledge time <= cutoff that has not
// been folded yet and returns the visible state. Cutoffs must be
// non-decreasing across calls.
func (c *Cursor) Advance(cutoff time.Time) map[fiscal.QuarterIndex]Report {
	for c.next < len(c.history) {
		r := c.history[c.next]
		if r.KnowledgeTime.After(cutoff) {
			break
		}
		// Latest knowledge time wins; on a tie the later-inserted report
		// replaces the earlier one.
		if cur, ok := c.state[r.Quarter]; !ok || !r.KnowledgeTime.Before(cur.KnowledgeTime) {
			c.state[r.Quarter] = r
		}
		c.next++
	}
	return c.state
}
