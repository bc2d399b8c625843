package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	PerPerson SharingType = "per_person"
	PerArea   SharingType = "per_area"
	PerRoom   SharingType = "per_room"
)

type (
	// SharingType selects the allocation strategy for a utility.
	SharingType string

	// Date is a calendar day at UTC midnight. All period arithmetic works on
	// whole days; the embedded time.Time never carries a time-of-day.
	Date struct {
		time.Time
	}

	// Payment is an amount an occupant has paid, kept for auditing.
	// Payments never feed back into the allocation itself.
	Payment struct {
		Amount float64
		Date   Date
	}

	// Person is an occupant sharing costs. Name+Surname act as the identity key.
	Person struct {
		Name     string
		Surname  string
		Payments []Payment
	}

	// Room is a private space with a floor area and its occupants.
	// Occupant order is insertion order.
	Room struct {
		Name      string
		Area      float64
		Occupants []*Person
	}

	// Property owns the rooms and utilities of one shared flat.
	Property struct {
		Rooms      []*Room
		CommonArea float64
		Utilities  []*Utility
	}
)

// Valid reports whether the sharing type is one of the supported strategies.
func (s SharingType) Valid() bool {
	switch s {
	case PerPerson, PerArea, PerRoom:
		return true
	default:
		return false
	}
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t.UTC()}, nil
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MarshalJSON renders the date as a YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON parses a YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysUntil returns the inclusive day count from d through other.
// DaysUntil of a date with itself is 1.
func (d Date) DaysUntil(other Date) int {
	return daysBetween(d, other) + 1
}

// daysBetween is the signed whole-day distance between two dates.
func daysBetween(a, b Date) int {
	return int(b.Sub(a.Time).Hours() / 24)
}

func NewPerson(name, surname string) *Person {
	return &Person{Name: name, Surname: surname}
}

// FullName returns the display identity of the occupant.
func (p *Person) FullName() string {
	return p.Name + " " + p.Surname
}

// AddPayment records a payment for auditing.
func (p *Person) AddPayment(amount float64, date Date) {
	p.Payments = append(p.Payments, Payment{Amount: amount, Date: date})
}

// TotalPaid sums all recorded payments.
func (p *Person) TotalPaid() float64 {
	var total float64
	for _, pay := range p.Payments {
		total += pay.Amount
	}
	return total
}

// NewRoom creates a room. Area must not be negative; a zero-area room is
// allowed and simply contributes nothing to per-area splits.
func NewRoom(name string, area float64) (*Room, error) {
	if area < 0 {
		return nil, fmt.Errorf("room %q: negative area %.2f", name, area)
	}
	return &Room{Name: name, Area: area}, nil
}

// AddOccupant appends an occupant reference to the room.
func (r *Room) AddOccupant(p *Person) {
	r.Occupants = append(r.Occupants, p)
}

// Occupied reports whether the room has at least one occupant.
func (r *Room) Occupied() bool {
	return len(r.Occupants) > 0
}

func NewProperty() *Property {
	return &Property{}
}

func (p *Property) AddRoom(r *Room) {
	p.Rooms = append(p.Rooms, r)
}

// SetCommonArea sets the shared floor area not assigned to any room.
func (p *Property) SetCommonArea(area float64) {
	p.CommonArea = area
}

func (p *Property) AddUtility(u *Utility) {
	p.Utilities = append(p.Utilities, u)
}

// Occupants returns every occupant of the property in room insertion order.
func (p *Property) Occupants() []*Person {
	var out []*Person
	for _, room := range p.Rooms {
		out = append(out, room.Occupants...)
	}
	return out
}

// TotalArea is the sum of all room areas plus the common area.
func (p *Property) TotalArea() float64 {
	total := p.CommonArea
	for _, room := range p.Rooms {
		total += room.Area
	}
	return total
}

// UtilityByName returns the named utility or nil.
func (p *Property) UtilityByName(name string) *Utility {
	for _, u := range p.Utilities {
		if u.Name == name {
			return u
		}
	}
	return nil
}

// Clone returns a deep copy of the property graph. Occupants referenced
// from several rooms stay a single person in the copy.
func (p *Property) Clone() *Property {
	clone := &Property{CommonArea: p.CommonArea}

	people := make(map[*Person]*Person)
	clonePerson := func(occ *Person) *Person {
		if c, ok := people[occ]; ok {
			return c
		}
		c := &Person{Name: occ.Name, Surname: occ.Surname}
		c.Payments = append(c.Payments, occ.Payments...)
		people[occ] = c
		return c
	}

	for _, room := range p.Rooms {
		r := &Room{Name: room.Name, Area: room.Area}
		for _, occ := range room.Occupants {
			r.Occupants = append(r.Occupants, clonePerson(occ))
		}
		clone.Rooms = append(clone.Rooms, r)
	}

	for _, u := range p.Utilities {
		cu := &Utility{Name: u.Name, Sharing: u.Sharing}
		cu.periods = append(cu.periods, u.periods...)
		clone.Utilities = append(clone.Utilities, cu)
	}

	return clone
}

// OccupantByName returns the occupant with the given identity or nil.
func (p *Property) OccupantByName(name, surname string) *Person {
	for _, room := range p.Rooms {
		for _, occ := range room.Occupants {
			if occ.Name == name && occ.Surname == surname {
				return occ
			}
		}
	}
	return nil
}
