package core

import (
	"fmt"
	"sort"
)

// CostPeriod is an inclusive date range carrying the total cost billed for it.
type CostPeriod struct {
	Start Date
	End   Date
	Cost  float64
}

// NewCostPeriod builds a period. Start must be strictly before end.
func NewCostPeriod(start, end Date, cost float64) (CostPeriod, error) {
	if !start.Before(end.Time) {
		return CostPeriod{}, &InvalidPeriodError{Start: start, End: end}
	}
	return CostPeriod{Start: start, End: end, Cost: cost}, nil
}

// DurationDays returns the inclusive day count, always >= 1 for a valid period.
func (p CostPeriod) DurationDays() int {
	return p.Start.DaysUntil(p.End)
}

// Overlaps reports whether the two inclusive ranges intersect.
func (p CostPeriod) Overlaps(other CostPeriod) bool {
	return !p.Start.After(other.End.Time) && !p.End.Before(other.Start.Time)
}

// AdjacentTo reports whether exactly one day separates the two periods,
// in either direction.
func (p CostPeriod) AdjacentTo(other CostPeriod) bool {
	if abs(daysBetween(other.End, p.Start)) == 1 {
		return true
	}
	return abs(daysBetween(p.End, other.Start)) == 1
}

func (p CostPeriod) String() string {
	return fmt.Sprintf("%s to %s: %.2f", p.Start, p.End, p.Cost)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Utility is a recurring cost category with a sharing strategy and a timeline
// of cost periods kept sorted by start date.
type Utility struct {
	Name    string
	Sharing SharingType

	periods []CostPeriod
}

// NewUtility creates a utility with an empty timeline.
func NewUtility(name string, sharing SharingType) (*Utility, error) {
	if !sharing.Valid() {
		return nil, &UnknownSharingTypeError{Type: sharing}
	}
	return &Utility{Name: name, Sharing: sharing}, nil
}

// AddCostPeriod inserts a period into the timeline. The new period must not
// overlap any existing period, and (except for the very first one) must sit
// exactly one day away from at least one existing period. Adjacency is checked
// pairwise against any period, not against the timeline ends, so insertion
// order is free as long as each new period touches something already there.
func (u *Utility) AddCostPeriod(p CostPeriod) error {
	for _, existing := range u.periods {
		if p.Overlaps(existing) {
			return &OverlapError{Utility: u.Name, New: p, Existing: existing}
		}
	}

	if len(u.periods) > 0 {
		adjacent := false
		for _, existing := range u.periods {
			if p.AdjacentTo(existing) {
				adjacent = true
				break
			}
		}
		if !adjacent {
			return &AdjacencyError{Utility: u.Name, Period: p}
		}
	}

	u.periods = append(u.periods, p)
	sort.Slice(u.periods, func(i, j int) bool {
		return u.periods[i].Start.Before(u.periods[j].Start.Time)
	})
	return nil
}

// Periods returns a copy of the timeline, sorted by start date.
func (u *Utility) Periods() []CostPeriod {
	out := make([]CostPeriod, len(u.periods))
	copy(out, u.periods)
	return out
}

// TotalCost sums the cost of every period on the timeline.
func (u *Utility) TotalCost() float64 {
	var total float64
	for _, p := range u.periods {
		total += p.Cost
	}
	return total
}

// ValidateCoverage checks that the timeline fully and contiguously spans the
// window. Global contiguity is recomputed over the sorted list: pairwise
// adjacency at insertion time does not guarantee the sorted timeline is
// gap-free, so this walk is not redundant.
func (u *Utility) ValidateCoverage(from, to Date) error {
	if len(u.periods) == 0 {
		return &CoverageGapError{Utility: u.Name, From: from, To: to}
	}

	if u.periods[0].Start.After(from.Time) {
		return &CoverageGapError{Utility: u.Name, From: from, To: to}
	}
	last := u.periods[len(u.periods)-1]
	if last.End.Before(to.Time) {
		return &CoverageGapError{Utility: u.Name, From: from, To: to}
	}

	for i := 1; i < len(u.periods); i++ {
		prev := u.periods[i-1]
		curr := u.periods[i]
		if daysBetween(prev.End, curr.Start) != 1 {
			return &CoverageGapError{
				Utility:   u.Name,
				From:      from,
				To:        to,
				PrevEnd:   prev.End,
				NextStart: curr.Start,
			}
		}
	}
	return nil
}
