package core

import "time"

// StatementLine is one occupant's row in a statement.
type StatementLine struct {
	Name    string  `json:"name"`
	Surname string  `json:"surname"`
	Owed    float64 `json:"owed"`
	Paid    float64 `json:"paid"`
	Balance float64 `json:"balance"`
}

// Statement is the computed allocation for one query window: what each
// occupant owes across all utilities, next to what they already paid.
type Statement struct {
	From        Date            `json:"from"`
	To          Date            `json:"to"`
	GeneratedAt time.Time       `json:"generated_at"`
	Lines       []StatementLine `json:"lines"`
	Total       float64         `json:"total"`
}
