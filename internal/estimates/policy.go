package estimates

import (
	"time"

	"github.com/wonseok/quarters/internal/fiscal"
)

// Policy selects the reference quarter ("one quarter out") for an entity on a
// trading day, and shifts it for multi-quarter requests. Implementations are
// stateless: pure functions of the visible state and the day.
type Policy interface {
	// Name identifies the policy ("next" or "previous").
	Name() string

	// Reference picks the reference quarter from the visible state, or
	// reports that no quarter qualifies.
	Reference(state map[fiscal.QuarterIndex]Report, day time.Time) (fiscal.QuarterIndex, bool)

	// Project shifts the reference quarter to the requested quarters-out in
	// the policy's direction. Assumes n >= 1; n is validated at query entry.
	Project(q fiscal.QuarterIndex, n int) fiscal.QuarterIndex
}

// NextPolicy selects the earliest quarter whose believed release has not
// happened yet: the smallest visible quarter index with event date >= day.
type NextPolicy struct{}

// Name implements Policy.
func (NextPolicy) Name() string { return "next" }

// Reference implements Policy.
func (NextPolicy) Reference(state map[fiscal.QuarterIndex]Report, day time.Time) (fiscal.QuarterIndex, bool) {
	var best fiscal.QuarterIndex
	found := false
	for q, r := range state {
		if r.EventDate.Before(day) {
			continue
		}
		if !found || q < best {
			best = q
			found = true
		}
	}
	return best, found
}

// Project implements Policy: later quarters are further out.
func (NextPolicy) Project(q fiscal.QuarterIndex, n int) fiscal.QuarterIndex {
	return q.Shift(n - 1)
}

// PreviousPolicy selects the most recently released quarter: the largest
// visible quarter index with event date <= day.
type PreviousPolicy struct{}

// Name implements Policy.
func (PreviousPolicy) Name() string { return "previous" }

// Reference implements Policy.
func (PreviousPolicy) Reference(state map[fiscal.QuarterIndex]Report, day time.Time) (fiscal.QuarterIndex, bool) {
	var best fiscal.QuarterIndex
	found := false
	for q, r := range state {
		if r.EventDate.After(day) {
			continue
		}
		if !found || q > best {
			best = q
			found = true
		}
	}
	return best, found
}

// Project implements Policy: earlier quarters are further out.
func (PreviousPolicy) Project(q fiscal.QuarterIndex, n int) fiscal.QuarterIndex {
	return q.Shift(-(n - 1))
}
