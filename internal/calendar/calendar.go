// Package calendar supplies ordered trading sessions for a date range. It is
// the trading-calendar collaborator consumed by the estimates engine: the
// engine never decides what a trading day is, it only walks the sessions it
// is handed.
package calendar

import (
	"time"
)

const dayKey = "2006-01-02"

// Calendar is a weekday trading calendar with holiday exclusions. All
// sessions are normalized to midnight UTC.
type Calendar struct {
	holidays map[string]bool
}

// New creates a calendar excluding the given holidays.
func New(holidays ...time.Time) *Calendar {
	c := &Calendar{holidays: make(map[string]bool, len(holidays))}
	for _, day := range holidays {
		c.holidays[day.UTC().Format(dayKey)] = true
	}
	return c
}

// IsSession reports whether the day is a trading session.
func (c *Calendar) IsSession(day time.Time) bool {
	day = normalize(day)
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !c.holidays[day.Format(dayKey)]
}

// Sessions returns the ordered trading sessions in [from, to], inclusive.
func (c *Calendar) Sessions(from, to time.Time) []time.Time {
	from = normalize(from)
	to = normalize(to)

	var sessions []time.Time
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if c.IsSession(day) {
			sessions = append(sessions, day)
		}
	}
	return sessions
}

// NextSession returns the first trading session on or after the given day.
func (c *Calendar) NextSession(day time.Time) time.Time {
	day = normalize(day)
	for !c.IsSession(day) {
		day = day.AddDate(0, 0, 1)
	}
	return day
}

func normalize(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
