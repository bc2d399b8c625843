package core

import (
	"errors"
	"testing"
)

func TestNewCostPeriod(t *testing.T) {
	tests := []struct {
		name    string
		start   Date
		end     Date
		wantErr bool
	}{
		{
			name:  "valid period",
			start: NewDate(2024, 1, 1),
			end:   NewDate(2024, 1, 31),
		},
		{
			name:    "start equals end - invalid",
			start:   NewDate(2024, 1, 1),
			end:     NewDate(2024, 1, 1),
			wantErr: true,
		},
		{
			name:    "start after end - invalid",
			start:   NewDate(2024, 2, 1),
			end:     NewDate(2024, 1, 1),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCostPeriod(tt.start, tt.end, 100)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewCostPeriod() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var ipe *InvalidPeriodError
				if !errors.As(err, &ipe) {
					t.Errorf("NewCostPeriod() error = %T, want *InvalidPeriodError", err)
				}
			}
		})
	}
}

func TestCostPeriod_DurationDays(t *testing.T) {
	tests := []struct {
		name  string
		start Date
		end   Date
		want  int
	}{
		{
			name:  "two days inclusive",
			start: NewDate(2024, 1, 1),
			end:   NewDate(2024, 1, 2),
			want:  2,
		},
		{
			name:  "january",
			start: NewDate(2024, 1, 1),
			end:   NewDate(2024, 1, 31),
			want:  31,
		},
		{
			name:  "leap year february included",
			start: NewDate(2024, 2, 1),
			end:   NewDate(2024, 3, 1),
			want:  30,
		},
		{
			name:  "full year across leap day",
			start: NewDate(2024, 1, 1),
			end:   NewDate(2024, 12, 31),
			want:  366,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewCostPeriod(tt.start, tt.end, 100)
			if err != nil {
				t.Fatalf("NewCostPeriod() error = %v", err)
			}
			if got := p.DurationDays(); got != tt.want {
				t.Errorf("DurationDays() = %d, want %d", got, tt.want)
			}
		})
	}
}

func mustPeriod(t *testing.T, start, end Date, cost float64) CostPeriod {
	t.Helper()
	p, err := NewCostPeriod(start, end, cost)
	if err != nil {
		t.Fatalf("NewCostPeriod(%s, %s) error = %v", start, end, err)
	}
	return p
}

func TestUtility_AddCostPeriod(t *testing.T) {
	base := func(t *testing.T) *Utility {
		u, err := NewUtility("Electricity", PerPerson)
		if err != nil {
			t.Fatalf("NewUtility() error = %v", err)
		}
		if err := u.AddCostPeriod(mustPeriod(t, NewDate(2024, 1, 1), NewDate(2024, 3, 31), 300)); err != nil {
			t.Fatalf("seed period error = %v", err)
		}
		return u
	}

	t.Run("overlap by one day fails", func(t *testing.T) {
		u := base(t)
		err := u.AddCostPeriod(mustPeriod(t, NewDate(2024, 3, 31), NewDate(2024, 6, 30), 100))
		var oe *OverlapError
		if !errors.As(err, &oe) {
			t.Fatalf("AddCostPeriod() error = %v, want *OverlapError", err)
		}
		if oe.Utility != "Electricity" {
			t.Errorf("OverlapError.Utility = %q, want %q", oe.Utility, "Electricity")
		}
	})

	t.Run("fully contained period fails", func(t *testing.T) {
		u := base(t)
		err := u.AddCostPeriod(mustPeriod(t, NewDate(2024, 2, 1), NewDate(2024, 2, 29), 50))
		var oe *OverlapError
		if !errors.As(err, &oe) {
			t.Fatalf("AddCostPeriod() error = %v, want *OverlapError", err)
		}
	})

	t.Run("two day gap fails adjacency", func(t *testing.T) {
		u := base(t)
		err := u.AddCostPeriod(mustPeriod(t, NewDate(2024, 4, 2), NewDate(2024, 6, 30), 100))
		var ae *AdjacencyError
		if !errors.As(err, &ae) {
			t.Fatalf("AddCostPeriod() error = %v, want *AdjacencyError", err)
		}
	})

	t.Run("exactly one day gap succeeds", func(t *testing.T) {
		u := base(t)
		if err := u.AddCostPeriod(mustPeriod(t, NewDate(2024, 4, 1), NewDate(2024, 6, 30), 100)); err != nil {
			t.Fatalf("AddCostPeriod() error = %v", err)
		}
		if got := len(u.Periods()); got != 2 {
			t.Errorf("len(Periods()) = %d, want 2", got)
		}
	})

	t.Run("adjacent before the first period succeeds", func(t *testing.T) {
		u := base(t)
		if err := u.AddCostPeriod(mustPeriod(t, NewDate(2023, 10, 1), NewDate(2023, 12, 31), 200)); err != nil {
			t.Fatalf("AddCostPeriod() error = %v", err)
		}
		periods := u.Periods()
		if !periods[0].Start.Equal(NewDate(2023, 10, 1).Time) {
			t.Errorf("Periods()[0].Start = %s, want 2023-10-01 (resorted by start)", periods[0].Start)
		}
	})

	t.Run("first period needs no neighbour", func(t *testing.T) {
		u, err := NewUtility("Water", PerRoom)
		if err != nil {
			t.Fatalf("NewUtility() error = %v", err)
		}
		if err := u.AddCostPeriod(mustPeriod(t, NewDate(2024, 5, 1), NewDate(2024, 5, 31), 40)); err != nil {
			t.Fatalf("AddCostPeriod() error = %v", err)
		}
	})
}

func TestUtility_TotalCost(t *testing.T) {
	u, err := NewUtility("Gas", PerArea)
	if err != nil {
		t.Fatalf("NewUtility() error = %v", err)
	}
	if got := u.TotalCost(); got != 0 {
		t.Errorf("TotalCost() = %v, want 0 for empty timeline", got)
	}
	if err := u.AddCostPeriod(mustPeriod(t, NewDate(2024, 1, 1), NewDate(2024, 6, 30), 250)); err != nil {
		t.Fatalf("AddCostPeriod() error = %v", err)
	}
	if err := u.AddCostPeriod(mustPeriod(t, NewDate(2024, 7, 1), NewDate(2024, 12, 31), 150)); err != nil {
		t.Fatalf("AddCostPeriod() error = %v", err)
	}
	if got := u.TotalCost(); got != 400 {
		t.Errorf("TotalCost() = %v, want 400", got)
	}
}

func TestNewUtility_InvalidSharingType(t *testing.T) {
	_, err := NewUtility("Electricity", SharingType("per_window"))
	var ue *UnknownSharingTypeError
	if !errors.As(err, &ue) {
		t.Fatalf("NewUtility() error = %v, want *UnknownSharingTypeError", err)
	}
}

func TestUtility_ValidateCoverage(t *testing.T) {
	build := func(t *testing.T, periods ...CostPeriod) *Utility {
		t.Helper()
		u, err := NewUtility("Electricity", PerPerson)
		if err != nil {
			t.Fatalf("NewUtility() error = %v", err)
		}
		for _, p := range periods {
			if err := u.AddCostPeriod(p); err != nil {
				t.Fatalf("AddCostPeriod(%s) error = %v", p, err)
			}
		}
		return u
	}

	t.Run("contiguous timeline covers window", func(t *testing.T) {
		u := build(t,
			mustPeriod(t, NewDate(2024, 1, 1), NewDate(2024, 8, 31), 500),
			mustPeriod(t, NewDate(2024, 9, 1), NewDate(2024, 12, 31), 100),
		)
		if err := u.ValidateCoverage(NewDate(2024, 1, 1), NewDate(2024, 11, 30)); err != nil {
			t.Errorf("ValidateCoverage() error = %v", err)
		}
	})

	t.Run("window starts before timeline", func(t *testing.T) {
		u := build(t, mustPeriod(t, NewDate(2024, 2, 1), NewDate(2024, 12, 31), 500))
		err := u.ValidateCoverage(NewDate(2024, 1, 1), NewDate(2024, 11, 30))
		var ce *CoverageGapError
		if !errors.As(err, &ce) {
			t.Fatalf("ValidateCoverage() error = %v, want *CoverageGapError", err)
		}
	})

	t.Run("window extends one day past timeline", func(t *testing.T) {
		u := build(t, mustPeriod(t, NewDate(2024, 1, 1), NewDate(2024, 11, 29), 500))
		err := u.ValidateCoverage(NewDate(2024, 1, 1), NewDate(2024, 11, 30))
		var ce *CoverageGapError
		if !errors.As(err, &ce) {
			t.Fatalf("ValidateCoverage() error = %v, want *CoverageGapError", err)
		}
	})

	t.Run("empty timeline", func(t *testing.T) {
		u := build(t)
		err := u.ValidateCoverage(NewDate(2024, 1, 1), NewDate(2024, 1, 31))
		var ce *CoverageGapError
		if !errors.As(err, &ce) {
			t.Fatalf("ValidateCoverage() error = %v, want *CoverageGapError", err)
		}
	})

	t.Run("out of order insertion still contiguous after sort", func(t *testing.T) {
		u := build(t,
			mustPeriod(t, NewDate(2024, 3, 1), NewDate(2024, 3, 31), 100),
			mustPeriod(t, NewDate(2024, 4, 1), NewDate(2024, 4, 30), 100),
			mustPeriod(t, NewDate(2024, 1, 1), NewDate(2024, 2, 29), 100),
		)
		if err := u.ValidateCoverage(NewDate(2024, 1, 1), NewDate(2024, 4, 30)); err != nil {
			t.Errorf("ValidateCoverage() error = %v, want nil for contiguous resorted timeline", err)
		}
	})
}
