// @title                       Storefront customer API
// @version                     1.0
// @description                 Customer registration, authentication and order history.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/storefront/customer-api/internal/api"
	"github.com/storefront/customer-api/internal/api/handler"
	"github.com/storefront/customer-api/internal/core/service"
	mongodb "github.com/storefront/customer-api/internal/infrastructure/db/mongo"
	redisdb "github.com/storefront/customer-api/internal/infrastructure/db/redis"
	"github.com/storefront/customer-api/internal/infrastructure/security"
	"github.com/storefront/customer-api/internal/pkg/config"
	"github.com/storefront/customer-api/pkg/logger"
)

const (
	serviceName     = "customer-api"
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.MustLoad(ctx)

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
		Env:     cfg.Env,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("service stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
		AppName:  serviceName,
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, dcancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer dcancel()
		if err := client.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		ClientName: serviceName,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	tokens, err := security.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	authService := service.NewAuthService(
		mongodb.NewUserRepository(db),
		security.NewBcryptHasher(cfg.Auth.BcryptCost),
		tokens,
		log.With().Str("component", "auth").Logger(),
	)
	orderService := service.NewOrderService(
		mongodb.NewOrderRepository(db),
		authService,
		redisdb.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL),
		log.With().Str("component", "orders").Logger(),
	)

	e := api.NewRouter(api.Dependencies{
		Auth:       authService,
		Orders:     orderService,
		Checks:     []handler.DependencyCheck{handler.MongoCheck(db), handler.RedisCheck(rdb)},
		Logger:     log,
		Registerer: prometheus.DefaultRegisterer,
		Gatherer:   prometheus.DefaultGatherer,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	return e.Shutdown(shutdownCtx)
}
