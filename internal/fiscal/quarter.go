package fiscal

import (
	"errors"
	"fmt"
)

// ErrInvalidQuarter is returned when a fiscal quarter falls outside [1, 4].
var ErrInvalidQuarter = errors.New("fiscal quarter must be in [1, 4]")

// QuarterIndex is a linearized (fiscal year, fiscal quarter) pair. Consecutive
// quarters map to consecutive integers, so shifting across year boundaries is
// plain integer arithmetic.
// ⭐ SSOT: 분기 인덱스 연산은 이 패키지에서만
type QuarterIndex int64

// Normalize encodes a (year, quarter) pair as a QuarterIndex.
func Normalize(year, quarter int) (QuarterIndex, error) {
	if quarter < 1 || quarter > 4 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidQuarter, quarter)
	}
	return QuarterIndex(int64(year)*4 + int64(quarter) - 1), nil
}

// Split decodes the index back into its (year, quarter) pair. It is the exact
// inverse of Normalize for every representable index.
func (q QuarterIndex) Split() (year, quarter int) {
	y := int64(q) / 4
	r := int64(q) % 4
	if r < 0 {
		r += 4
		y--
	}
	return int(y), int(r) + 1
}

// Year returns the fiscal year of the index.
func (q QuarterIndex) Year() int {
	year, _ := q.Split()
	return year
}

// Quarter returns the fiscal quarter (1-4) of the index.
func (q QuarterIndex) Quarter() int {
	_, quarter := q.Split()
	return quarter
}

// Shift moves the index n quarters forward (negative n moves backward).
func (q QuarterIndex) Shift(n int) QuarterIndex {
	return q + QuarterIndex(n)
}

// String formats the index as e.g. "2015Q1".
func (q QuarterIndex) String() string {
	year, quarter := q.Split()
	return fmt.Sprintf("%dQ%d", year, quarter)
}
