package calendar

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestSessionsSkipWeekends(t *testing.T) {
	c := New()

	// 2015-01-05 is a Monday.
	sessions := c.Sessions(day("2015-01-05"), day("2015-01-11"))
	if len(sessions) != 5 {
		t.Fatalf("expected 5 sessions, got %d", len(sessions))
	}
	if !sessions[0].Equal(day("2015-01-05")) {
		t.Errorf("first session = %v, want 2015-01-05", sessions[0])
	}
	if !sessions[4].Equal(day("2015-01-09")) {
		t.Errorf("last session = %v, want 2015-01-09", sessions[4])
	}
}

func TestSessionsSkipHolidays(t *testing.T) {
	c := New(day("2015-01-01"))

	sessions := c.Sessions(day("2014-12-29"), day("2015-01-02"))
	for _, s := range sessions {
		if s.Equal(day("2015-01-01")) {
			t.Error("holiday 2015-01-01 should not be a session")
		}
	}
	// Mon 12-29 through Fri 01-02 minus the holiday.
	if len(sessions) != 4 {
		t.Errorf("expected 4 sessions, got %d", len(sessions))
	}
}

func TestIsSession(t *testing.T) {
	c := New(day("2015-01-19"))

	tests := []struct {
		day  string
		want bool
	}{
		{"2015-01-05", true},  // Monday
		{"2015-01-10", false}, // Saturday
		{"2015-01-11", false}, // Sunday
		{"2015-01-19", false}, // holiday
		{"2015-01-20", true},
	}

	for _, tt := range tests {
		if got := c.IsSession(day(tt.day)); got != tt.want {
			t.Errorf("IsSession(%s) = %v, want %v", tt.day, got, tt.want)
		}
	}
}

func TestNextSession(t *testing.T) {
	c := New(day("2015-01-01"))

	// New Year's Day (Thursday) rolls forward to Friday.
	if got := c.NextSession(day("2015-01-01")); !got.Equal(day("2015-01-02")) {
		t.Errorf("NextSession(2015-01-01) = %v, want 2015-01-02", got)
	}

	// Saturday rolls forward to Monday.
	if got := c.NextSession(day("2015-01-10")); !got.Equal(day("2015-01-12")) {
		t.Errorf("NextSession(2015-01-10) = %v, want 2015-01-12", got)
	}

	// A session maps to itself.
	if got := c.NextSession(day("2015-01-06")); !got.Equal(day("2015-01-06")) {
		t.Errorf("NextSession(2015-01-06) = %v, want itself", got)
	}
}
