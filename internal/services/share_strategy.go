// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for daily cost distribution.
// Each sharing type (per_person, per_area, per_room) has its own strategy
// that encapsulates how one day's cost is split among occupants.
package services

import (
	"bollette/internal/core"
)

// ShareStrategy is the strategy interface for splitting a single day's cost.
// Each implementation encapsulates the algorithm for a specific sharing type.
type ShareStrategy interface {
	// DailyShares returns each occupant's share of the one-day cost.
	// The returned map is for a single day only; callers accumulate
	// across days and periods themselves.
	DailyShares(prop *core.Property, dailyCost float64) (map[*core.Person]float64, error)
}

// PerPersonStrategy splits the daily cost equally among all occupants,
// regardless of which room they live in.
type PerPersonStrategy struct{}

func (PerPersonStrategy) DailyShares(prop *core.Property, dailyCost float64) (map[*core.Person]float64, error) {
	occupants := prop.Occupants()
	if len(occupants) == 0 {
		return nil, &core.NoOccupantsError{}
	}

	shares := make(map[*core.Person]float64, len(occupants))
	perPerson := dailyCost / float64(len(occupants))
	for _, occ := range occupants {
		shares[occ] = perPerson
	}
	return shares, nil
}

// PerAreaStrategy splits the daily cost proportionally to floor area.
// Each occupied room gets area/totalArea of the cost, divided equally among
// its occupants. Unoccupied rooms still count toward the total area, so their
// slice of the cost is effectively subsidized away rather than redistributed.
// The common area's slice is divided equally among every occupant.
type PerAreaStrategy struct{}

func (PerAreaStrategy) DailyShares(prop *core.Property, dailyCost float64) (map[*core.Person]float64, error) {
	totalArea := prop.TotalArea()
	if totalArea == 0 {
		return nil, &core.ZeroAreaError{}
	}

	shares := make(map[*core.Person]float64)

	for _, room := range prop.Rooms {
		if !room.Occupied() {
			continue
		}
		roomShare := (room.Area / totalArea) * dailyCost
		perPerson := roomShare / float64(len(room.Occupants))
		for _, occ := range room.Occupants {
			shares[occ] += perPerson
		}
	}

	if prop.CommonArea > 0 {
		occupants := prop.Occupants()
		if len(occupants) == 0 {
			return nil, &core.NoOccupantsError{}
		}
		commonShare := (prop.CommonArea / totalArea) * dailyCost
		perPerson := commonShare / float64(len(occupants))
		for _, occ := range occupants {
			shares[occ] += perPerson
		}
	}

	return shares, nil
}

// PerRoomStrategy splits the daily cost equally among occupied rooms only;
// each room's slice is divided equally among that room's occupants.
type PerRoomStrategy struct{}

func (PerRoomStrategy) DailyShares(prop *core.Property, dailyCost float64) (map[*core.Person]float64, error) {
	var occupied []*core.Room
	for _, room := range prop.Rooms {
		if room.Occupied() {
			occupied = append(occupied, room)
		}
	}
	if len(occupied) == 0 {
		return nil, &core.NoOccupiedRoomsError{}
	}

	shares := make(map[*core.Person]float64)
	perRoom := dailyCost / float64(len(occupied))
	for _, room := range occupied {
		perPerson := perRoom / float64(len(room.Occupants))
		for _, occ := range room.Occupants {
			shares[occ] += perPerson
		}
	}
	return shares, nil
}

// shareStrategies maps sharing types to their corresponding strategies.
// This registry enables O(1) lookup and easy extension for new sharing types.
var shareStrategies = map[core.SharingType]ShareStrategy{
	core.PerPerson: PerPersonStrategy{},
	core.PerArea:   PerAreaStrategy{},
	core.PerRoom:   PerRoomStrategy{},
}

// GetShareStrategy returns the strategy for a sharing type.
// Returns an error if the sharing type is not supported.
func GetShareStrategy(sharing core.SharingType) (ShareStrategy, error) {
	strategy, ok := shareStrategies[sharing]
	if !ok {
		return nil, &core.UnknownSharingTypeError{Type: sharing}
	}
	return strategy, nil
}

// RegisterShareStrategy allows registering custom strategies for new sharing
// types without modifying the registry.
func RegisterShareStrategy(sharing core.SharingType, strategy ShareStrategy) {
	shareStrategies[sharing] = strategy
}
