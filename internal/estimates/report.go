package estimates

import (
	"sort"
	"time"

	"github.com/wonseok/quarters/internal/fiscal"
)

// Logical output column names. event_date, fiscal_quarter and fiscal_year are
// intrinsic to every report; anything else is read from the report's named
// value fields through the ColumnMap.
const (
	ColumnEventDate     = "event_date"
	ColumnFiscalQuarter = "fiscal_quarter"
	ColumnFiscalYear    = "fiscal_year"
)

// RawReport is a single analyst-estimate revision as produced by a report
// source. KnowledgeTime is when the revision became knowable; EventDate is the
// believed (or confirmed) release date of the target fiscal quarter.
type RawReport struct {
	EntityID      string             `json:"entity_id"`
	KnowledgeTime time.Time          `json:"knowledge_time"`
	EventDate     time.Time          `json:"event_date"`
	FiscalYear    int                `json:"fiscal_year"`
	FiscalQuarter int                `json:"fiscal_quarter"`
	Values        map[string]float64 `json:"values"`
}

// Report is a RawReport with its target quarter normalized to a linear index.
// seq preserves input order so that knowledge-time ties resolve to the
// later-inserted record.
type Report struct {
	EntityID      string
	KnowledgeTime time.Time
	EventDate     time.Time
	Quarter       fiscal.QuarterIndex
	Values        map[string]float64

	seq int
}

// ColumnMap maps output column names to the report value field they are read
// from. The intrinsic columns (event_date, fiscal_quarter, fiscal_year) need
// no entry; mapping them is allowed but ignored.
// ⭐ SSOT: 출력 컬럼 ↔ 소스 필드 매핑은 이 타입으로만 전달
type ColumnMap map[string]string

// OutputColumns returns every column the map produces, intrinsic columns
// included, in a deterministic order.
func (m ColumnMap) OutputColumns() []string {
	cols := []string{ColumnEventDate, ColumnFiscalQuarter, ColumnFiscalYear}
	seen := map[string]bool{
		ColumnEventDate:     true,
		ColumnFiscalQuarter: true,
		ColumnFiscalYear:    true,
	}

	names := make([]string, 0, len(m))
	for name := range m {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return append(cols, names...)
}
