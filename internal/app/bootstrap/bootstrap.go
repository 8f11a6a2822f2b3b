package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	accounts "cardvault/contexts/account-management/account-service"
	authadapter "cardvault/contexts/account-management/account-service/adapters/auth"
	postgresadapter "cardvault/contexts/account-management/account-service/adapters/postgres"
	"cardvault/contexts/account-management/account-service/domain/services"
	"cardvault/contexts/account-management/account-service/ports"
	"cardvault/internal/platform/cache"
	"cardvault/internal/platform/config"
	"cardvault/internal/platform/db"
	"cardvault/internal/platform/httpserver"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	database *db.Database
	cache    cache.Backend
	logger   *slog.Logger
}

func BuildAPI(ctx context.Context, cfg config.Config, logger *slog.Logger) (*APIApp, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("service", cfg.ServiceName, "process", "api")

	policy, err := services.ParseCardDeletePolicy(cfg.Cards.DeletePolicy)
	if err != nil {
		return nil, err
	}
	authenticator, err := NewAuthenticator(cfg.Auth)
	if err != nil {
		return nil, err
	}

	database, repo, err := OpenRepository(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := repo.Migrate(ctx); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	backend, err := OpenCache(ctx, cfg.Cache)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	if cfg.Cache.FlushOnStartup {
		if err := backend.Flush(ctx); err != nil {
			_ = backend.Close()
			_ = database.Close()
			return nil, fmt.Errorf("flush cache: %w", err)
		}
	}

	module := accounts.NewModule(accounts.Dependencies{
		Store:            repo,
		Caches:           accounts.NewCaches(backend),
		Authenticator:    authenticator,
		Clock:            postgresadapter.SystemClock{},
		CardDeletePolicy: policy,
		Logger:           logger,
	})

	logger.Info("api app built",
		"event", "bootstrap_api_built",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"database_driver", cfg.Database.Driver,
		"cache_backend", cfg.Cache.Backend,
		"auth_mode", cfg.Auth.Mode,
		"card_delete_policy", string(policy),
	)

	return &APIApp{
		server:   httpserver.New(module, logger, cfg.HTTP),
		database: database,
		cache:    backend,
		logger:   logger,
	}, nil
}

// Handler exposes the routed engine without starting a listener.
func (a *APIApp) Handler() http.Handler {
	return a.server.Handler()
}

func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return a.server.Run(ctx)
}

func (a *APIApp) Close() error {
	var errs []error
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.database != nil {
		errs = append(errs, a.database.Close())
	}
	return errors.Join(errs...)
}

// OpenRepository connects the configured database and wraps it in the account store.
func OpenRepository(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*db.Database, *postgresadapter.Repository, error) {
	database, err := db.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return database, postgresadapter.NewRepository(database.DB, logger), nil
}

func OpenCache(ctx context.Context, cfg config.CacheConfig) (cache.Backend, error) {
	switch cfg.Backend {
	case config.CacheRedis:
		return cache.NewRedis(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.KeyPrefix,
		})
	case config.CacheMemory, "":
		return cache.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}

func NewAuthenticator(cfg config.AuthConfig) (ports.Authenticator, error) {
	switch cfg.Mode {
	case config.AuthJWT:
		if cfg.JWTSecret == "" {
			return nil, errors.New("jwt secret is required in jwt mode")
		}
		return authadapter.JWTAuthenticator{
			Secret: []byte(cfg.JWTSecret),
			Issuer: cfg.Issuer,
		}, nil
	case config.AuthHeaders, "":
		return authadapter.HeaderAuthenticator{}, nil
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Mode)
	}
}

func NewTokenIssuer(cfg config.AuthConfig) (authadapter.TokenIssuer, error) {
	if cfg.JWTSecret == "" {
		return authadapter.TokenIssuer{}, errors.New("auth.jwt_secret is required to issue tokens")
	}
	return authadapter.TokenIssuer{
		Secret: []byte(cfg.JWTSecret),
		Issuer: cfg.Issuer,
		TTL:    cfg.TokenTTL,
	}, nil
}
