package services

import (
	"errors"
	"testing"

	"bollette/internal/core"
)

func mustUtility(t *testing.T, name string, sharing core.SharingType, periods ...core.CostPeriod) *core.Utility {
	t.Helper()
	u, err := core.NewUtility(name, sharing)
	if err != nil {
		t.Fatalf("NewUtility(%q) error = %v", name, err)
	}
	for _, p := range periods {
		if err := u.AddCostPeriod(p); err != nil {
			t.Fatalf("AddCostPeriod(%s) error = %v", p, err)
		}
	}
	return u
}

func mustCostPeriod(t *testing.T, start, end core.Date, cost float64) core.CostPeriod {
	t.Helper()
	p, err := core.NewCostPeriod(start, end, cost)
	if err != nil {
		t.Fatalf("NewCostPeriod(%s, %s) error = %v", start, end, err)
	}
	return p
}

func TestCalculateShares_InvalidRange(t *testing.T) {
	prop := core.NewProperty()
	_, err := CalculateShares(prop, core.NewDate(2024, 6, 1), core.NewDate(2024, 6, 1))
	var ire *core.InvalidRangeError
	if !errors.As(err, &ire) {
		t.Fatalf("CalculateShares() error = %v, want *InvalidRangeError", err)
	}
}

func TestCalculateShares_CoverageFailureAbortsAll(t *testing.T) {
	alice := core.NewPerson("Alice", "Smith")
	prop := core.NewProperty()
	prop.AddRoom(mustRoom(t, "wohnzimmer", 40, alice))

	// First utility covers the window, second falls short by one day.
	prop.AddUtility(mustUtility(t, "Electricity", core.PerPerson,
		mustCostPeriod(t, core.NewDate(2024, 1, 1), core.NewDate(2024, 12, 31), 365)))
	prop.AddUtility(mustUtility(t, "Water", core.PerPerson,
		mustCostPeriod(t, core.NewDate(2024, 1, 1), core.NewDate(2024, 11, 29), 100)))

	_, err := CalculateShares(prop, core.NewDate(2024, 1, 1), core.NewDate(2024, 11, 30))
	var ce *core.CoverageGapError
	if !errors.As(err, &ce) {
		t.Fatalf("CalculateShares() error = %v, want *CoverageGapError", err)
	}
	if ce.Utility != "Water" {
		t.Errorf("CoverageGapError.Utility = %q, want %q", ce.Utility, "Water")
	}
}

func TestCalculateShares_PerPersonProRata(t *testing.T) {
	alice := core.NewPerson("Alice", "Smith")
	bob := core.NewPerson("Bob", "Jones")
	prop := core.NewProperty()
	prop.AddRoom(mustRoom(t, "grande", 30, alice, bob))

	// 10 days at 10/day; window clips to the last 4 days.
	prop.AddUtility(mustUtility(t, "Water", core.PerPerson,
		mustCostPeriod(t, core.NewDate(2024, 6, 1), core.NewDate(2024, 6, 10), 100)))

	shares, err := CalculateShares(prop, core.NewDate(2024, 6, 7), core.NewDate(2024, 6, 10))
	if err != nil {
		t.Fatalf("CalculateShares() error = %v", err)
	}
	// 4 days x 10/day split between two people.
	if !almostEqual(shares[alice], 20) || !almostEqual(shares[bob], 20) {
		t.Errorf("shares = %v/%v, want 20 each", shares[alice], shares[bob])
	}
}

func TestCalculateShares_PeriodOutsideWindowSkipped(t *testing.T) {
	alice := core.NewPerson("Alice", "Smith")
	prop := core.NewProperty()
	prop.AddRoom(mustRoom(t, "grande", 30, alice))

	prop.AddUtility(mustUtility(t, "Gas", core.PerPerson,
		mustCostPeriod(t, core.NewDate(2024, 1, 1), core.NewDate(2024, 6, 30), 182),
		mustCostPeriod(t, core.NewDate(2024, 7, 1), core.NewDate(2024, 12, 31), 368)))

	// Window entirely inside the first period: second contributes nothing.
	shares, err := CalculateShares(prop, core.NewDate(2024, 2, 1), core.NewDate(2024, 2, 29))
	if err != nil {
		t.Fatalf("CalculateShares() error = %v", err)
	}
	if !almostEqual(shares[alice], 29) {
		t.Errorf("share[alice] = %v, want 29 (29 days x 1/day)", shares[alice])
	}
}

func TestCalculateShares_MultipleUtilitiesAccumulate(t *testing.T) {
	alice := core.NewPerson("Alice", "Smith")
	bob := core.NewPerson("Bob", "Jones")
	prop := core.NewProperty()
	prop.AddRoom(mustRoom(t, "grande", 40, alice))
	prop.AddRoom(mustRoom(t, "piccola", 20, bob))

	prop.AddUtility(mustUtility(t, "Water", core.PerPerson,
		mustCostPeriod(t, core.NewDate(2024, 6, 1), core.NewDate(2024, 6, 10), 100)))
	prop.AddUtility(mustUtility(t, "Internet", core.PerRoom,
		mustCostPeriod(t, core.NewDate(2024, 6, 1), core.NewDate(2024, 6, 10), 60)))

	shares, err := CalculateShares(prop, core.NewDate(2024, 6, 1), core.NewDate(2024, 6, 10))
	if err != nil {
		t.Fatalf("CalculateShares() error = %v", err)
	}
	// Water: 50 each. Internet: two occupied rooms, 30 each.
	if !almostEqual(shares[alice], 80) {
		t.Errorf("share[alice] = %v, want 80", shares[alice])
	}
	if !almostEqual(shares[bob], 80) {
		t.Errorf("share[bob] = %v, want 80", shares[bob])
	}
}

// The end-to-end scenario from the original household setup: Alice in a
// 40 m2 room, Bob in a 20 m2 room, 40 m2 common area, electricity shared
// per area over two periods, queried for Jan 1 through Nov 30.
func TestCalculateShares_EndToEndPerArea(t *testing.T) {
	alice := core.NewPerson("Alice", "Smith")
	bob := core.NewPerson("Bob", "Jones")

	prop := core.NewProperty()
	prop.SetCommonArea(40)
	prop.AddRoom(mustRoom(t, "wohnzimmer", 40, alice))
	prop.AddRoom(mustRoom(t, "schlafzimmer", 20, bob))
	prop.AddUtility(mustUtility(t, "Electricity", core.PerArea,
		mustCostPeriod(t, core.NewDate(2024, 1, 1), core.NewDate(2024, 8, 31), 500),
		mustCostPeriod(t, core.NewDate(2024, 9, 1), core.NewDate(2024, 12, 31), 100)))

	shares, err := CalculateShares(prop, core.NewDate(2024, 1, 1), core.NewDate(2024, 11, 30))
	if err != nil {
		t.Fatalf("CalculateShares() error = %v", err)
	}

	// First period (244 days) fully inside the window: contributes 500.
	// Second period: 91 of 122 days -> 100 * 91/122.
	wantTotal := 500.0 + 100.0*91.0/122.0
	var sum float64
	for _, v := range shares {
		sum += v
	}
	if !almostEqual(sum, wantTotal) {
		t.Errorf("sum of shares = %v, want %v", sum, wantTotal)
	}

	// Alice: 40 private + half of 40 common over 100 total -> 0.6 of each day.
	if !almostEqual(shares[alice], 0.6*wantTotal) {
		t.Errorf("share[alice] = %v, want %v", shares[alice], 0.6*wantTotal)
	}
	if !almostEqual(shares[bob], 0.4*wantTotal) {
		t.Errorf("share[bob] = %v, want %v", shares[bob], 0.4*wantTotal)
	}
	if shares[alice] <= 0 || shares[bob] <= 0 {
		t.Error("both occupants must receive positive shares")
	}
}

func TestBuildStatement(t *testing.T) {
	alice := core.NewPerson("Alice", "Smith")
	bob := core.NewPerson("Bob", "Jones")
	bob.AddPayment(30, core.NewDate(2024, 6, 5))

	prop := core.NewProperty()
	prop.AddRoom(mustRoom(t, "grande", 40, alice))
	prop.AddRoom(mustRoom(t, "piccola", 20, bob))
	prop.AddUtility(mustUtility(t, "Water", core.PerPerson,
		mustCostPeriod(t, core.NewDate(2024, 6, 1), core.NewDate(2024, 6, 10), 100)))

	st, err := BuildStatement(prop, core.NewDate(2024, 6, 1), core.NewDate(2024, 6, 10))
	if err != nil {
		t.Fatalf("BuildStatement() error = %v", err)
	}

	if len(st.Lines) != 2 {
		t.Fatalf("len(Lines) = %d, want 2", len(st.Lines))
	}
	// Sorted by surname: Jones before Smith.
	if st.Lines[0].Surname != "Jones" || st.Lines[1].Surname != "Smith" {
		t.Errorf("line order = %s, %s; want Jones, Smith", st.Lines[0].Surname, st.Lines[1].Surname)
	}
	if !almostEqual(st.Lines[0].Owed, 50) || !almostEqual(st.Lines[0].Paid, 30) || !almostEqual(st.Lines[0].Balance, 20) {
		t.Errorf("bob line = %+v, want owed 50 paid 30 balance 20", st.Lines[0])
	}
	if !almostEqual(st.Total, 100) {
		t.Errorf("Total = %v, want 100", st.Total)
	}
	if st.GeneratedAt.IsZero() {
		t.Error("GeneratedAt must be set")
	}

	_, err = BuildStatement(prop, core.NewDate(2024, 6, 10), core.NewDate(2024, 6, 1))
	var ire *core.InvalidRangeError
	if !errors.As(err, &ire) {
		t.Errorf("BuildStatement() error = %v, want *InvalidRangeError", err)
	}
}
