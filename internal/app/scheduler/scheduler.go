// Package scheduler собирает процесс планировщика, который периодически
// пересчитывает состояния соревнований и публикует смены в RabbitMQ.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/sportsit/internal/config"
	"github.com/magabrotheeeer/sportsit/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/sportsit/internal/lib/sl"
	"github.com/magabrotheeeer/sportsit/internal/policy"
	competitionservice "github.com/magabrotheeeer/sportsit/internal/services/competition"
	schedulerservice "github.com/magabrotheeeer/sportsit/internal/services/scheduler"
	"github.com/magabrotheeeer/sportsit/internal/storage/repository"
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	interval         time.Duration
	db               *repository.Storage
	conn             *amqp.Connection
	ch               *amqp.Channel
	logger           *slog.Logger
}

func waitForDB(ctx context.Context, db *repository.Storage) error {
	for range 10 {
		err := db.CheckDatabaseReady(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.CompetitionsExchange, rabbitmq.GetCompetitionQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(ctx, db); err != nil {
		_ = db.Close()
		closeResources(ch, conn, logger)
		return nil, err
	}

	competitions := competitionservice.New(db, nil, nil, policy.V1{}, logger)
	publisher := rabbitmq.NewPublisher(ch, rabbitmq.CompetitionsExchange)

	return &App{
		schedulerService: schedulerservice.NewSchedulerService(competitions, publisher, logger),
		interval:         cfg.RefreshInterval,
		db:               db,
		conn:             conn,
		ch:               ch,
		logger:           logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run запускает планировщик и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		closeResources(a.ch, a.conn, a.logger)
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close storage", sl.Err(err))
		}
	}()

	sched, err := a.schedulerService.Start(ctx, a.interval)
	if err != nil {
		return err
	}

	<-ctx.Done()

	a.logger.Info("shutting down scheduler service")
	if err := sched.Shutdown(); err != nil {
		a.logger.Error("failed to shutdown scheduler", sl.Err(err))
	}
	return nil
}
