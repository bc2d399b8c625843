package services

import (
	"context"
	"fmt"
	"log/slog"

	"bollette/internal/amqp"
	"bollette/internal/core"
	"bollette/internal/household"
)

// StatementService orchestrates statement operations across the property
// store and AMQP. Writes land in the store first; the recompute message is
// best-effort and never fails the request.
type StatementService struct {
	store      household.Store
	amqpClient *amqp.Client
}

func NewStatementService(store household.Store, amqpClient *amqp.Client) *StatementService {
	return &StatementService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// Statement loads the property graph and runs the allocation engine for the
// window.
func (s *StatementService) Statement(ctx context.Context, from, to core.Date) (core.Statement, error) {
	prop, err := s.store.LoadProperty(ctx)
	if err != nil {
		return core.Statement{}, fmt.Errorf("load property: %w", err)
	}
	return BuildStatement(prop, from, to)
}

// Property exposes the current property graph, for read-only views.
func (s *StatementService) Property(ctx context.Context) (*core.Property, error) {
	return s.store.LoadProperty(ctx)
}

// AddCostPeriod appends a period to a utility's timeline and requests a
// recompute covering the new period.
func (s *StatementService) AddCostPeriod(ctx context.Context, utility string, period core.CostPeriod) error {
	if err := s.store.AddCostPeriod(ctx, utility, period); err != nil {
		return fmt.Errorf("add cost period: %w", err)
	}

	s.publishRecompute(ctx, period.Start.String(), period.End.String(), amqp.ReasonPeriodAdded)
	return nil
}

// RecordPayment stores a payment for an occupant and requests a recompute of
// the payment's year.
func (s *StatementService) RecordPayment(ctx context.Context, name, surname string, payment core.Payment) error {
	if err := s.store.AddPayment(ctx, name, surname, payment); err != nil {
		return fmt.Errorf("record payment: %w", err)
	}

	year := payment.Date.Year()
	from := core.NewDate(year, 1, 1).String()
	to := core.NewDate(year, 12, 31).String()
	s.publishRecompute(ctx, from, to, amqp.ReasonPaymentAdded)
	return nil
}

func (s *StatementService) publishRecompute(ctx context.Context, from, to, reason string) {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping recompute message")
		return
	}
	if err := s.amqpClient.PublishRecompute(ctx, from, to, reason); err != nil {
		// The write already succeeded; the periodic worker pass will catch up.
		slog.ErrorContext(ctx, "Failed to publish recompute message",
			"from", from, "to", to, "reason", reason, "error", err)
	}
}
