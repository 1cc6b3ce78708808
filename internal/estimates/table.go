package estimates

import (
	"time"
)

// Kind distinguishes the value type a column carries.
type Kind int

const (
	// KindFloat marks a numeric column.
	KindFloat Kind = iota
	// KindTime marks a timestamp column.
	KindTime
)

// Value is a nullable table cell. A cell with Valid == false means no report
// was visible for that day; this is normal output, never an error.
type Value struct {
	Kind  Kind      `json:"kind"`
	Float float64   `json:"float,omitempty"`
	Time  time.Time `json:"time,omitempty"`
	Valid bool      `json:"valid"`
}

// FloatValue builds a valid numeric cell.
func FloatValue(f float64) Value {
	return Value{Kind: KindFloat, Float: f, Valid: true}
}

// TimeValue builds a valid timestamp cell.
func TimeValue(t time.Time) Value {
	return Value{Kind: KindTime, Time: t, Valid: true}
}

// Table is the dense materialization output: one nullable cell per
// (day, entity, column). Each (column, entity) series is aligned to Days.
// Tables are owned by the query that produced them and are never mutated
// after materialization.
type Table struct {
	Days     []time.Time
	Entities []string

	// column -> entity -> per-day values
	cells map[string]map[string][]Value
}

func newTable(days []time.Time, entities []string, columns []string) *Table {
	t := &Table{
		Days:     days,
		Entities: entities,
		cells:    make(map[string]map[string][]Value, len(columns)),
	}
	for _, col := range columns {
		kind := KindFloat
		if col == ColumnEventDate {
			kind = KindTime
		}
		byEntity := make(map[string][]Value, len(entities))
		for _, entity := range entities {
			series := make([]Value, len(days))
			for i := range series {
				series[i].Kind = kind
			}
			byEntity[entity] = series
		}
		t.cells[col] = byEntity
	}
	return t
}

// Columns returns the column names present in the table.
func (t *Table) Columns() []string {
	cols := make([]string, 0, len(t.cells))
	for col := range t.cells {
		cols = append(cols, col)
	}
	return cols
}

// Series returns the per-day values for one (column, entity) pair.
func (t *Table) Series(column, entity string) ([]Value, bool) {
	byEntity, ok := t.cells[column]
	if !ok {
		return nil, false
	}
	series, ok := byEntity[entity]
	return series, ok
}

// At returns the cell for (column, day offset, entity).
func (t *Table) At(column string, day int, entity string) (Value, bool) {
	series, ok := t.Series(column, entity)
	if !ok || day < 0 || day >= len(series) {
		return Value{}, false
	}
	return series[day], true
}

// Row returns every column's cell for one (day offset, entity) pair.
func (t *Table) Row(day int, entity string) map[string]Value {
	row := make(map[string]Value, len(t.cells))
	for col, byEntity := range t.cells {
		if series, ok := byEntity[entity]; ok && day >= 0 && day < len(series) {
			row[col] = series[day]
		}
	}
	return row
}
