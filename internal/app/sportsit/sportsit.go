// Package sportsit собирает HTTP-приложение: хранилище, кэш, платёжный шлюз,
// объектное хранилище и сервисы предметной области.
package sportsit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/sportsit/internal/cache"
	"github.com/magabrotheeeer/sportsit/internal/config"
	"github.com/magabrotheeeer/sportsit/internal/gateway"
	"github.com/magabrotheeeer/sportsit/internal/lib/sl"
	"github.com/magabrotheeeer/sportsit/internal/migrations"
	"github.com/magabrotheeeer/sportsit/internal/objectstore"
	"github.com/magabrotheeeer/sportsit/internal/policy"
	bodyinfoservice "github.com/magabrotheeeer/sportsit/internal/services/bodyinfo"
	competitionservice "github.com/magabrotheeeer/sportsit/internal/services/competition"
	memberservice "github.com/magabrotheeeer/sportsit/internal/services/member"
	paymentservice "github.com/magabrotheeeer/sportsit/internal/services/payment"
	"github.com/magabrotheeeer/sportsit/internal/storage/repository"
)

// App HTTP-приложение.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// serviceCache общий контракт кэша сервисов.
type serviceCache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// New создает приложение. Redis и S3 необязательны: без адреса Redis
// сервисы работают без кэша, без bucket загрузка постеров отключена.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.sportsit.New"

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		svcCache   serviceCache
		redisCache *cache.Cache
	)
	if cfg.AddressRedis != "" {
		redisCache, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		svcCache = redisCache
	} else {
		logger.Warn("redis address is empty, caching disabled")
	}

	var uploader competitionservice.Uploader
	store, err := objectstore.New(ctx, cfg.ObjectStorage)
	switch {
	case errors.Is(err, objectstore.ErrNotConfigured):
		logger.Warn("object storage is not configured, poster upload disabled")
	case err != nil:
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	default:
		uploader = store
	}

	gw := gateway.NewClient(cfg.Gateway)

	services := Services{
		Member:      memberservice.New(db, logger),
		Competition: competitionservice.New(db, svcCache, uploader, policy.V1{}, logger),
		Payment:     paymentservice.New(db, gw, svcCache, logger, cfg.IMPUID, cfg.MerchantUIDAttempts),
		BodyInfo:    bodyinfoservice.New(db, logger),
		Health:      db,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.HTTPServer, services)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  redisCache,
	}, nil
}

// Run запускает сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
