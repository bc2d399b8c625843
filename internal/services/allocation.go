package services

import (
	"fmt"
	"sort"
	"time"

	"bollette/internal/core"
)

// CalculateShares runs the allocation engine over the query window and
// returns each occupant's accumulated share across all utilities.
//
// Every utility must contiguously cover the window; the first validation
// failure aborts the whole calculation with no partial result. Occupants
// that never accumulate a share have no entry in the map (absent means zero).
func CalculateShares(prop *core.Property, from, to core.Date) (map[*core.Person]float64, error) {
	if !from.Before(to.Time) {
		return nil, &core.InvalidRangeError{From: from, To: to}
	}

	shares := make(map[*core.Person]float64)

	for _, utility := range prop.Utilities {
		if err := utility.ValidateCoverage(from, to); err != nil {
			return nil, err
		}

		strategy, err := GetShareStrategy(utility.Sharing)
		if err != nil {
			return nil, fmt.Errorf("utility %q: %w", utility.Name, err)
		}

		for _, period := range utility.Periods() {
			if period.End.Before(from.Time) || period.Start.After(to.Time) {
				continue
			}

			effectiveStart := period.Start
			if from.After(effectiveStart.Time) {
				effectiveStart = from
			}
			effectiveEnd := period.End
			if to.Before(effectiveEnd.Time) {
				effectiveEnd = to
			}
			daysActive := effectiveStart.DaysUntil(effectiveEnd)

			// The daily rate is fixed by the period's own declared cost and
			// span; only the number of applicable days is clipped to the window.
			costPerDay := period.Cost / float64(period.DurationDays())

			daily, err := strategy.DailyShares(prop, costPerDay)
			if err != nil {
				return nil, fmt.Errorf("utility %q: %w", utility.Name, err)
			}

			for occ, share := range daily {
				shares[occ] += share * float64(daysActive)
			}
		}
	}

	return shares, nil
}

// BuildStatement runs the engine and renders the result as a statement,
// joining each occupant's owed amount with their recorded payments.
// Lines are sorted by surname then name for stable output.
func BuildStatement(prop *core.Property, from, to core.Date) (core.Statement, error) {
	shares, err := CalculateShares(prop, from, to)
	if err != nil {
		return core.Statement{}, err
	}

	st := core.Statement{
		From:        from,
		To:          to,
		GeneratedAt: time.Now().UTC(),
	}

	// Every occupant gets a line, even with nothing owed in the window
	for _, occ := range prop.Occupants() {
		owed := shares[occ]
		paid := occ.TotalPaid()
		st.Lines = append(st.Lines, core.StatementLine{
			Name:    occ.Name,
			Surname: occ.Surname,
			Owed:    owed,
			Paid:    paid,
			Balance: owed - paid,
		})
		st.Total += owed
	}

	sort.Slice(st.Lines, func(i, j int) bool {
		if st.Lines[i].Surname != st.Lines[j].Surname {
			return st.Lines[i].Surname < st.Lines[j].Surname
		}
		return st.Lines[i].Name < st.Lines[j].Name
	})

	return st, nil
}
