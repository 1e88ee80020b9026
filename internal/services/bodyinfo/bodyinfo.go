// Package bodyinfo хранит замеры состава тела участников.
package bodyinfo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/sportsit/internal/models"
	"github.com/magabrotheeeer/sportsit/internal/storage/repository"
)

var (
	ErrMemberNotFound  = errors.New("member not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

type Repository interface {
	GetMember(ctx context.Context, uid int64) (*models.Member, error)
	CreateBodyInfo(ctx context.Context, b *models.BodyInfo) (int64, error)
	ListBodyInfo(ctx context.Context, memberUID int64) ([]*models.BodyInfo, error)
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

// Create сохраняет замер. Рост и вес должны быть положительными,
// жировая и мышечная масса неотрицательными.
func (s *Service) Create(ctx context.Context, req *models.DummyBodyInfo) (*models.BodyInfo, error) {
	const op = "bodyinfo.Create"

	if req.Height <= 0 || req.Weight <= 0 || req.FatMass < 0 || req.SmMass < 0 {
		return nil, fmt.Errorf("%s: %w: measurements out of range", op, ErrInvalidArgument)
	}
	if _, err := s.repo.GetMember(ctx, req.MemberUID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w: %d", op, ErrMemberNotFound, req.MemberUID)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	b := &models.BodyInfo{
		MemberUID: req.MemberUID,
		Height:    req.Height,
		Weight:    req.Weight,
		FatMass:   req.FatMass,
		SmMass:    req.SmMass,
	}
	if _, err := s.repo.CreateBodyInfo(ctx, b); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

// ListByMember возвращает замеры участника, новые первыми.
func (s *Service) ListByMember(ctx context.Context, memberUID int64) ([]*models.BodyInfo, error) {
	const op = "bodyinfo.ListByMember"

	res, err := s.repo.ListBodyInfo(ctx, memberUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
