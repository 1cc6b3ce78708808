package fiscal

import (
	"errors"
	"testing"
)

func TestNormalizeSplitRoundTrip(t *testing.T) {
	for year := -2; year <= 2100; year++ {
		for quarter := 1; quarter <= 4; quarter++ {
			idx, err := Normalize(year, quarter)
			if err != nil {
				t.Fatalf("Normalize(%d, %d) failed: %v", year, quarter, err)
			}

			gotYear, gotQuarter := idx.Split()
			if gotYear != year || gotQuarter != quarter {
				t.Errorf("Split(Normalize(%d, %d)) = (%d, %d)", year, quarter, gotYear, gotQuarter)
			}
		}
	}
}

func TestNormalizeSequential(t *testing.T) {
	// Consecutive quarters map to consecutive integers, including across the
	// year boundary.
	q4, err := Normalize(2014, 4)
	if err != nil {
		t.Fatalf("Normalize(2014, 4) failed: %v", err)
	}
	q1, err := Normalize(2015, 1)
	if err != nil {
		t.Fatalf("Normalize(2015, 1) failed: %v", err)
	}
	if q1 != q4+1 {
		t.Errorf("expected 2015Q1 = 2014Q4 + 1, got %d and %d", q1, q4)
	}

	for quarter := 1; quarter < 4; quarter++ {
		a, _ := Normalize(2015, quarter)
		b, _ := Normalize(2015, quarter+1)
		if b != a+1 {
			t.Errorf("expected 2015Q%d + 1 = 2015Q%d, got %d and %d", quarter, quarter+1, a, b)
		}
	}
}

func TestNormalizeInvalidQuarter(t *testing.T) {
	for _, quarter := range []int{0, 5, -1, 13} {
		_, err := Normalize(2015, quarter)
		if err == nil {
			t.Errorf("Normalize(2015, %d) should fail", quarter)
			continue
		}
		if !errors.Is(err, ErrInvalidQuarter) {
			t.Errorf("Normalize(2015, %d) error = %v, want ErrInvalidQuarter", quarter, err)
		}
	}
}

func TestShift(t *testing.T) {
	tests := []struct {
		name        string
		year        int
		quarter     int
		n           int
		wantYear    int
		wantQuarter int
	}{
		{"forward within year", 2015, 1, 2, 2015, 3},
		{"forward across year", 2015, 4, 1, 2016, 1},
		{"backward across year", 2015, 1, -1, 2014, 4},
		{"backward two years", 2015, 2, -5, 2014, 1},
		{"zero", 2015, 3, 0, 2015, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := Normalize(tt.year, tt.quarter)
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}

			year, quarter := idx.Shift(tt.n).Split()
			if year != tt.wantYear || quarter != tt.wantQuarter {
				t.Errorf("%dQ%d shifted by %d = %dQ%d, want %dQ%d",
					tt.year, tt.quarter, tt.n, year, quarter, tt.wantYear, tt.wantQuarter)
			}
		})
	}
}

func TestString(t *testing.T) {
	idx, err := Normalize(2015, 3)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got := idx.String(); got != "2015Q3" {
		t.Errorf("String() = %q, want %q", got, "2015Q3")
	}
}
