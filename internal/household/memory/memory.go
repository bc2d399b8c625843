// Package memory provides an in-memory property store seeded from a
// household definition file in TOML format.
package memory

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"bollette/internal/core"
)

// householdFile mirrors the TOML layout of a household definition:
//
//	common_area = 40.0
//
//	[[rooms]]
//	name = "wohnzimmer"
//	area = 40.0
//	occupants = [{ name = "Alice", surname = "Smith" }]
//
//	[[utilities]]
//	name = "Electricity"
//	sharing = "per_area"
//	periods = [{ start = "2024-01-01", end = "2024-08-31", cost = 500.0 }]
type householdFile struct {
	CommonArea float64       `toml:"common_area"`
	Rooms      []roomEntry   `toml:"rooms"`
	Utilities  []utilityEntry `toml:"utilities"`
}

type roomEntry struct {
	Name      string          `toml:"name"`
	Area      float64         `toml:"area"`
	Occupants []occupantEntry `toml:"occupants"`
}

type occupantEntry struct {
	Name    string `toml:"name"`
	Surname string `toml:"surname"`
}

type utilityEntry struct {
	Name    string        `toml:"name"`
	Sharing string        `toml:"sharing"`
	Periods []periodEntry `toml:"periods"`
}

type periodEntry struct {
	Start string  `toml:"start"`
	End   string  `toml:"end"`
	Cost  float64 `toml:"cost"`
}

// Store keeps one property graph in memory. All writes mutate the graph
// under the store lock; reads hand out deep copies, so a statement
// computation never shares timeline slices with a concurrent write.
type Store struct {
	mu   sync.Mutex
	prop *core.Property
}

// New wraps an already constructed property graph.
func New(prop *core.Property) *Store {
	return &Store{prop: prop}
}

// NewFromFile loads a household definition from a TOML file and builds the
// property graph through the domain constructors, so every invariant
// (period overlap, adjacency, sharing types) is enforced at load time.
func NewFromFile(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read household file: %w", err)
	}

	var hf householdFile
	if err := toml.Unmarshal(raw, &hf); err != nil {
		return nil, fmt.Errorf("decode household file: %w", err)
	}

	prop, err := buildProperty(hf)
	if err != nil {
		return nil, fmt.Errorf("household file %s: %w", path, err)
	}
	return New(prop), nil
}

func buildProperty(hf householdFile) (*core.Property, error) {
	prop := core.NewProperty()
	prop.SetCommonArea(hf.CommonArea)

	for _, re := range hf.Rooms {
		room, err := core.NewRoom(re.Name, re.Area)
		if err != nil {
			return nil, err
		}
		for _, oe := range re.Occupants {
			room.AddOccupant(core.NewPerson(oe.Name, oe.Surname))
		}
		prop.AddRoom(room)
	}

	for _, ue := range hf.Utilities {
		utility, err := core.NewUtility(ue.Name, core.SharingType(ue.Sharing))
		if err != nil {
			return nil, err
		}
		for _, pe := range ue.Periods {
			start, err := core.ParseDate(pe.Start)
			if err != nil {
				return nil, fmt.Errorf("utility %q: %w", ue.Name, err)
			}
			end, err := core.ParseDate(pe.End)
			if err != nil {
				return nil, fmt.Errorf("utility %q: %w", ue.Name, err)
			}
			period, err := core.NewCostPeriod(start, end, pe.Cost)
			if err != nil {
				return nil, fmt.Errorf("utility %q: %w", ue.Name, err)
			}
			if err := utility.AddCostPeriod(period); err != nil {
				return nil, err
			}
		}
		prop.AddUtility(utility)
	}

	return prop, nil
}

// LoadProperty returns a snapshot of the property graph.
func (s *Store) LoadProperty(_ context.Context) (*core.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prop.Clone(), nil
}

// AddCostPeriod appends a period to the named utility's timeline.
func (s *Store) AddCostPeriod(_ context.Context, utility string, period core.CostPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.prop.UtilityByName(utility)
	if u == nil {
		return &core.NotFoundError{Kind: "utility", Name: utility}
	}
	return u.AddCostPeriod(period)
}

// AddPayment records a payment for the named occupant.
func (s *Store) AddPayment(_ context.Context, name, surname string, payment core.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	occ := s.prop.OccupantByName(name, surname)
	if occ == nil {
		return &core.NotFoundError{Kind: "occupant", Name: name + " " + surname}
	}
	occ.AddPayment(payment.Amount, payment.Date)
	return nil
}
