// Package household defines the ports for property stores.
package household

import (
	"context"

	"bollette/internal/core"
)

// Ports for outbound adapters.
type (
	// PropertyLoader materializes the full property graph: rooms, occupants,
	// payments, utilities and their cost periods.
	PropertyLoader interface {
		LoadProperty(ctx context.Context) (*core.Property, error)
	}

	// PeriodWriter appends a cost period to a utility's timeline, enforcing
	// the overlap and adjacency invariants.
	PeriodWriter interface {
		AddCostPeriod(ctx context.Context, utility string, period core.CostPeriod) error
	}

	// PaymentWriter records a payment for an occupant.
	PaymentWriter interface {
		AddPayment(ctx context.Context, name, surname string, payment core.Payment) error
	}

	// StatementWriter persists a computed statement and returns its reference.
	StatementWriter interface {
		SaveStatement(ctx context.Context, st core.Statement) (string, error)
	}

	// StatementReader returns the most recently persisted statement.
	StatementReader interface {
		LatestStatement(ctx context.Context) (core.Statement, error)
	}
)

// Store bundles the ports a backend must provide to serve the HTTP API.
type Store interface {
	PropertyLoader
	PeriodWriter
	PaymentWriter
}
