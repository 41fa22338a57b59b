package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	_ "github.com/stockroom/inventory-service/docs"
	"github.com/stockroom/inventory-service/internal/api"
	"github.com/stockroom/inventory-service/internal/api/handler"
	"github.com/stockroom/inventory-service/internal/core/ports"
	"github.com/stockroom/inventory-service/internal/core/service"
	mongodb "github.com/stockroom/inventory-service/internal/infrastructure/db/mongo"
	"github.com/stockroom/inventory-service/internal/infrastructure/db/postgres"
	redisdb "github.com/stockroom/inventory-service/internal/infrastructure/db/redis"
	"github.com/stockroom/inventory-service/internal/pkg/config"
	"github.com/stockroom/inventory-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title                       Inventory Service API
// @version                     1.0
// @description                 User authentication and product inventory management.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
func main() {
	envFileErr := godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "inventory-service",
	})
	if envFileErr != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

// stores bundles the repositories of the selected backend.
type stores struct {
	users    ports.UserRepository
	products ports.ProductRepository
	audit    ports.AuditRepository
	ping     handler.DependencyCheck
	close    func(context.Context) error
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("failed to close store")
		}
	}()
	log.Info().Str("driver", cfg.Store.Driver).Msg("store connected")

	checks := map[string]handler.DependencyCheck{cfg.Store.Driver: st.ping}

	var claimer ports.KeyClaimer
	if cfg.Redis.Addr != "" {
		client, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, uniqueness relies on store indexes only")
		} else {
			defer client.Close()
			claimer = redisdb.NewKeyClaimer(client, cfg.Redis.ClaimTTL)
			checks["redis"] = redisdb.Ping(client)
		}
	}

	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Lifetime())
	authSvc := service.NewAuthService(st.users, tokens, claimer, logger.Component("auth"))
	productSvc := service.NewProductService(st.products, st.audit, claimer, logger.Component("products"))

	e := api.NewRouter(api.RouterDeps{
		Auth:             authSvc,
		Products:         productSvc,
		Tokens:           tokens,
		Health:           checks,
		Logger:           log,
		EnforceWriteAuth: cfg.Auth.EnforceWrites,
		AuthRateLimit:    cfg.Auth.RateLimitRPS,
		AuthRateBurst:    cfg.Auth.RateLimitBurst,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced shutdown: %w", err)
	}
	return nil
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN})
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &stores{
			users:    postgres.NewUserRepository(db),
			products: postgres.NewProductRepository(db),
			audit:    postgres.NewAuditRepository(db),
			ping:     postgres.Ping(db),
			close:    func(context.Context) error { return db.Close() },
		}, nil

	default:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		users := mongodb.NewUserRepository(db)
		products := mongodb.NewProductRepository(db)
		if err := mongodb.EnsureIndexes(ctx, users, products); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &stores{
			users:    users,
			products: products,
			audit:    mongodb.NewAuditRepository(db),
			ping:     mongodb.Ping(db),
			close:    client.Disconnect,
		}, nil
	}
}
