// Package member регистрирует участников и выдаёт их по uid.
package member

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/sportsit/internal/models"
	"github.com/magabrotheeeer/sportsit/internal/storage/repository"
)

var (
	ErrNotFound        = errors.New("member not found")
	ErrAlreadyExists   = errors.New("member already exists")
	ErrInvalidArgument = errors.New("invalid argument")
)

type Repository interface {
	CreateMember(ctx context.Context, m *models.Member) (int64, error)
	GetMember(ctx context.Context, uid int64) (*models.Member, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// Register создаёт участника. Подписка должна входить в известный набор.
func (s *Service) Register(ctx context.Context, req *models.DummyMember) (*models.Member, error) {
	const op = "member.Register"

	subscription := models.Subscribe(req.Subscription)
	if !subscription.Valid() {
		return nil, fmt.Errorf("%s: %w: unknown subscription %q", op, ErrInvalidArgument, req.Subscription)
	}

	m := &models.Member{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Role:         req.Role,
		Subscription: subscription,
	}
	if _, err := s.repo.CreateMember(ctx, m); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w: %s", op, ErrAlreadyExists, req.Email)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("member registered", slog.Int64("uid", m.UID), slog.String("subscription", string(m.Subscription)))
	return m, nil
}

func (s *Service) Get(ctx context.Context, uid int64) (*models.Member, error) {
	const op = "member.Get"

	m, err := s.repo.GetMember(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w: %d", op, ErrNotFound, uid)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}
