// Package backend selects and wires the property store a binary runs
// against, based on configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"bollette/internal/amqp"
	"bollette/internal/config"
	"bollette/internal/household"
	"bollette/internal/household/memory"
	"bollette/internal/storage"
)

type Type string

const (
	Memory Type = "memory"
	SQLite Type = "sqlite"
)

func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite:
		return true
	default:
		return false
	}
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result bundles the store with the optional AMQP client and cleanup hook.
type Result struct {
	Store      household.Store
	AMQPClient *amqp.Client
	Cleanup    CleanupFunc
}

type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

func (f *Factory) Create(ctx context.Context, cfg *config.Config) (*Result, error) {
	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch t {
	case SQLite:
		return f.createSQLite(ctx, cfg)
	default:
		return f.createMemory(cfg)
	}
}

func (f *Factory) createSQLite(ctx context.Context, cfg *config.Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite repository: %w", err)
	}

	// A fresh database gets seeded from the household file, so both
	// backends start from the same description of the property.
	empty, err := repo.Empty(ctx)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("check database state: %w", err)
	}
	if empty && cfg.HouseholdFile != "" {
		seed, err := memory.NewFromFile(cfg.HouseholdFile)
		if err != nil {
			repo.Close()
			return nil, fmt.Errorf("load household file for seeding: %w", err)
		}
		prop, err := seed.LoadProperty(ctx)
		if err != nil {
			repo.Close()
			return nil, err
		}
		if err := repo.Seed(ctx, prop); err != nil {
			repo.Close()
			return nil, fmt.Errorf("seed database: %w", err)
		}
		f.logger.Info("Seeded database from household file", "file", cfg.HouseholdFile)
	}

	amqpClient := f.connectAMQP(cfg)

	f.logger.Info("Initialized sqlite backend",
		"db_path", cfg.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)

	return &Result{
		Store:      repo,
		AMQPClient: amqpClient,
		Cleanup: func() error {
			if amqpClient != nil {
				amqpClient.Close()
			}
			return repo.Close()
		},
	}, nil
}

func (f *Factory) createMemory(cfg *config.Config) (*Result, error) {
	store, err := memory.NewFromFile(cfg.HouseholdFile)
	if err != nil {
		return nil, fmt.Errorf("load household file: %w", err)
	}

	amqpClient := f.connectAMQP(cfg)

	f.logger.Info("Initialized memory backend", "household_file", cfg.HouseholdFile)

	return &Result{
		Store:      store,
		AMQPClient: amqpClient,
		Cleanup: func() error {
			if amqpClient != nil {
				amqpClient.Close()
			}
			return nil
		},
	}, nil
}

func (f *Factory) connectAMQP(cfg *config.Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without recompute messages", "error", err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	return client
}
