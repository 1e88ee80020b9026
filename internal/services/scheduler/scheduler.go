// Package scheduler периодически пересчитывает состояния соревнований
// и публикует каждую смену состояния в RabbitMQ.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/magabrotheeeer/sportsit/internal/lib/metrics"
	"github.com/magabrotheeeer/sportsit/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/sportsit/internal/lib/sl"
	"github.com/magabrotheeeer/sportsit/internal/models"
)

// Refresher пересчитывает состояния. Переход сохраняется только после
// успешного emit.
type Refresher interface {
	RefreshStates(ctx context.Context, emit func(models.StateTransition) error) ([]models.StateTransition, error)
}

type Publisher interface {
	Publish(routingKey string, message any) error
}

type SchedulerService struct {
	refresher Refresher
	publisher Publisher
	log       *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(refresher Refresher, publisher Publisher, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		refresher: refresher,
		publisher: publisher,
		log:       log,
	}
}

// RunOnce пересчитывает состояния и публикует найденные переходы до их сохранения.
// Неопубликованный переход не сохраняется и публикуется при следующем запуске.
// Возвращает число опубликованных и сохранённых переходов.
func (s *SchedulerService) RunOnce(ctx context.Context) (int, error) {
	const op = "scheduler.RunOnce"

	transitions, err := s.refresher.RefreshStates(ctx, s.publish)
	if err != nil && len(transitions) == 0 {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err != nil {
		s.log.Error("state refresh stopped early", slog.String("op", op), sl.Err(err))
	}
	if len(transitions) == 0 {
		s.log.Debug("no competition state changes")
		return 0, nil
	}

	for _, tr := range transitions {
		metrics.StateTransitions.WithLabelValues(string(tr.To)).Inc()
	}
	s.log.Info("competition state changes published", slog.Int("count", len(transitions)))
	return len(transitions), err
}

func (s *SchedulerService) publish(tr models.StateTransition) error {
	if err := s.publisher.Publish(rabbitmq.StateChangedKey, tr); err != nil {
		s.log.Error("failed to publish state change",
			slog.Int64("competition_id", tr.CompetitionID), sl.Err(err))
		return err
	}
	return nil
}

// Start запускает пересчёт сразу и далее с периодом interval.
// Запуски не перекрываются. Остановка через Shutdown у возвращённого планировщика.
func (s *SchedulerService) Start(ctx context.Context, interval time.Duration) (gocron.Scheduler, error) {
	const op = "scheduler.Start"

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := s.RunOnce(ctx); err != nil {
				s.log.Error("competition state refresh failed", sl.Err(err))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sched.Start()
	s.log.Info("competition scheduler started", slog.Duration("interval", interval))
	return sched, nil
}
