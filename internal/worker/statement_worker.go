// Package worker recomputes and persists statements in response to AMQP
// messages and on a periodic schedule.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bollette/internal/amqp"
	"bollette/internal/core"
	"bollette/internal/household"
	"bollette/internal/services"
)

// Exporter pushes a computed statement to an external destination.
type Exporter interface {
	AppendStatement(ctx context.Context, st core.Statement) (string, error)
}

type StatementWorker struct {
	loader   household.PropertyLoader
	writer   household.StatementWriter
	exporter Exporter // optional
}

func NewStatementWorker(loader household.PropertyLoader, writer household.StatementWriter, exporter Exporter) *StatementWorker {
	return &StatementWorker{
		loader:   loader,
		writer:   writer,
		exporter: exporter,
	}
}

// HandleRecompute processes a single recompute message: it rebuilds the
// statement for the requested window, persists it, and exports it when an
// exporter is configured.
func (w *StatementWorker) HandleRecompute(ctx context.Context, msg *amqp.RecomputeMessage) error {
	slog.InfoContext(ctx, "Processing recompute message",
		"from", msg.From,
		"to", msg.To,
		"reason", msg.Reason)

	from, err := core.ParseDate(msg.From)
	if err != nil {
		return fmt.Errorf("parse 'from' date %q: %w", msg.From, err)
	}
	to, err := core.ParseDate(msg.To)
	if err != nil {
		return fmt.Errorf("parse 'to' date %q: %w", msg.To, err)
	}

	prop, err := w.loader.LoadProperty(ctx)
	if err != nil {
		return fmt.Errorf("load property: %w", err)
	}

	st, err := services.BuildStatement(prop, from, to)
	if err != nil {
		return fmt.Errorf("build statement: %w", err)
	}

	ref, err := w.writer.SaveStatement(ctx, st)
	if err != nil {
		return fmt.Errorf("save statement: %w", err)
	}

	slog.InfoContext(ctx, "Statement recomputed",
		"from", msg.From,
		"to", msg.To,
		"total", st.Total,
		"ref", ref)

	if w.exporter != nil {
		exportRef, err := w.exporter.AppendStatement(ctx, st)
		if err != nil {
			// The statement is already persisted; the export is best-effort
			slog.ErrorContext(ctx, "Failed to export statement", "ref", ref, "error", err)
			return nil
		}
		slog.InfoContext(ctx, "Statement exported", "ref", ref, "export_ref", exportRef)
	}

	return nil
}

// RecomputeCurrentYear rebuilds the statement for the running calendar year.
// Used by the periodic pass that catches up on missed messages.
func (w *StatementWorker) RecomputeCurrentYear(ctx context.Context) error {
	year := time.Now().Year()
	msg := &amqp.RecomputeMessage{
		From:      core.NewDate(year, 1, 1).String(),
		To:        core.NewDate(year, 12, 31).String(),
		Reason:    amqp.ReasonScheduled,
		Timestamp: time.Now(),
	}
	return w.HandleRecompute(ctx, msg)
}
