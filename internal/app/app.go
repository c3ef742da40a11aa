// Package app is the composition root: it turns a Config into open stores
// and ready services. The HTTP server and the mushroomctl CLI both start
// here, so they always see the same data through the same rules.
//
//	config.Config
//	  → durable KeyValueStore (sqlite | postgres | memory)
//	  → session KeyValueStore (LRU, process lifetime)
//	  → blob.Repository
//	  → AuthService, CatalogueService, PrivateSpecimenService
//	  → Aggregator, SubmissionService
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/mushroom-tracker/internal/auth"
	"github.com/sakif/mushroom-tracker/internal/config"
	"github.com/sakif/mushroom-tracker/internal/geocode"
	"github.com/sakif/mushroom-tracker/internal/repository"
	"github.com/sakif/mushroom-tracker/internal/repository/blob"
	"github.com/sakif/mushroom-tracker/internal/repository/memory"
	"github.com/sakif/mushroom-tracker/internal/repository/postgres"
	"github.com/sakif/mushroom-tracker/internal/repository/sqlite"
	"github.com/sakif/mushroom-tracker/internal/service"
)

// App holds every long-lived dependency. Close releases the durable store.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Auth       *service.AuthService
	Catalogue  *service.CatalogueService
	Private    *service.PrivateSpecimenService
	Aggregator *service.Aggregator
	Submission *service.SubmissionService

	// Store is the durable store; it also implements handler.Pinger for
	// the sql drivers.
	Store  repository.KeyValueStore
	closer io.Closer
}

// New opens the stores, builds the services and initializes the user list
// and the catalogue (seeding them on first start).
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	durable, closer, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	a, err := build(ctx, cfg, logger, durable)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	a.closer = closer

	logger.Info("application ready",
		slog.String("storage", cfg.Storage.Driver),
		slog.Bool("geocoding", cfg.Geocode.Enabled),
	)
	return a, nil
}

func build(ctx context.Context, cfg *config.Config, logger *slog.Logger, durable repository.KeyValueStore) (*App, error) {
	sessions, err := memory.New(cfg.Session.Capacity)
	if err != nil {
		return nil, fmt.Errorf("app: creating session store: %w", err)
	}
	repo := blob.New(durable, sessions)

	tokens, err := auth.NewTokenService(cfg.Session.Secret, cfg.Session.Lifetime)
	if err != nil {
		return nil, fmt.Errorf("app: creating token service: %w", err)
	}

	authSvc := service.NewAuthService(repo, repo, tokens, auth.NewPasswordService(), logger)
	authSvc.SetSeedDemoUsers(cfg.Seed.DemoUsers)
	if err := authSvc.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("app: initializing users: %w", err)
	}

	catalogue := service.NewCatalogueService(repo, logger)
	if _, err := catalogue.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("app: initializing catalogue: %w", err)
	}
	private := service.NewPrivateSpecimenService(repo, logger)

	// A nil Geocoder disables lookups; the interface must stay nil, not a
	// typed nil pointer.
	var geocoder service.Geocoder
	if cfg.Geocode.Enabled {
		geocoder = geocode.New(geocode.Options{
			BaseURL:   cfg.Geocode.BaseURL,
			UserAgent: cfg.Geocode.UserAgent,
			Timeout:   cfg.Geocode.Timeout,
		}, logger)
	}

	return &App{
		Config:     cfg,
		Logger:     logger,
		Auth:       authSvc,
		Catalogue:  catalogue,
		Private:    private,
		Aggregator: service.NewAggregator(catalogue, private),
		Submission: service.NewSubmissionService(catalogue, private, geocoder, logger),
		Store:      durable,
	}, nil
}

// openStore opens the durable store named by cfg.Driver.
func openStore(ctx context.Context, cfg config.StorageConfig) (repository.KeyValueStore, io.Closer, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.Path); dir != "." && cfg.Path != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("app: creating database directory %s: %w", dir, err)
			}
		}
		db, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case config.DriverMemory:
		// an in-process SQLite database: unbounded, and gone on Close
		db, err := sqlite.New(":memory:")
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	default:
		return nil, nil, fmt.Errorf("app: unknown storage driver %q", cfg.Driver)
	}
}

// Close releases the durable store.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
