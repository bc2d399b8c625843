package core

import "fmt"

// Domain errors carry the context needed for precise user-facing messages.
// They all represent invalid input data; none of them is retryable.

// InvalidPeriodError reports a period whose start is not strictly before its end.
type InvalidPeriodError struct {
	Start Date
	End   Date
}

func (e *InvalidPeriodError) Error() string {
	return fmt.Sprintf("invalid period: start %s must be before end %s", e.Start, e.End)
}

// InvalidRangeError reports a malformed query window.
type InvalidRangeError struct {
	From Date
	To   Date
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: from %s must be before to %s", e.From, e.To)
}

// OverlapError reports a new period colliding with an existing one on a
// utility's timeline.
type OverlapError struct {
	Utility  string
	New      CostPeriod
	Existing CostPeriod
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("utility %q: period %s overlaps existing period %s", e.Utility, e.New, e.Existing)
}

// AdjacencyError reports a new period that is not exactly one day away from
// any existing period.
type AdjacencyError struct {
	Utility string
	Period  CostPeriod
}

func (e *AdjacencyError) Error() string {
	return fmt.Sprintf("utility %q: period %s is not adjacent to any existing period", e.Utility, e.Period)
}

// CoverageGapError reports a utility timeline that does not contiguously span
// a requested window. Either the window falls outside the timeline, or two
// consecutive periods leave a gap between PrevEnd and NextStart.
type CoverageGapError struct {
	Utility   string
	From      Date
	To        Date
	PrevEnd   Date
	NextStart Date
}

func (e *CoverageGapError) Error() string {
	if !e.PrevEnd.IsZero() {
		return fmt.Sprintf("utility %q: gap between %s and %s", e.Utility, e.PrevEnd, e.NextStart)
	}
	return fmt.Sprintf("utility %q: periods do not cover %s to %s", e.Utility, e.From, e.To)
}

// NoOccupantsError reports a per-person split over a property without occupants.
type NoOccupantsError struct{}

func (e *NoOccupantsError) Error() string {
	return "no occupants for per-person calculation"
}

// ZeroAreaError reports a per-area split over a property with zero total area.
type ZeroAreaError struct{}

func (e *ZeroAreaError) Error() string {
	return "zero total area for per-area calculation"
}

// NoOccupiedRoomsError reports a per-room split with no occupied rooms.
type NoOccupiedRoomsError struct{}

func (e *NoOccupiedRoomsError) Error() string {
	return "no occupied rooms for per-room calculation"
}

// NotFoundError reports a lookup miss for a named entity such as a utility
// or an occupant.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// UnknownSharingTypeError reports an unsupported sharing type.
type UnknownSharingTypeError struct {
	Type SharingType
}

func (e *UnknownSharingTypeError) Error() string {
	return fmt.Sprintf("unknown sharing type: %q", string(e.Type))
}
