// Package competition управляет соревнованиями: создание с уровнем по подписке
// организатора, чтение с пересчётом состояния, запись участников, постеры
// и периодический пересчёт сохранённых состояний.
package competition

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/gosimple/slug"

	"github.com/magabrotheeeer/sportsit/internal/lib/sl"
	"github.com/magabrotheeeer/sportsit/internal/models"
	"github.com/magabrotheeeer/sportsit/internal/objectstore"
	"github.com/magabrotheeeer/sportsit/internal/policy"
	"github.com/magabrotheeeer/sportsit/internal/storage/repository"
)

const cacheTTL = time.Hour

var (
	ErrNotFound        = errors.New("competition not found")
	ErrHostNotFound    = errors.New("host not found")
	ErrMemberNotFound  = errors.New("member not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotRecruiting   = errors.New("competition is not recruiting")
	ErrAlreadyJoined   = errors.New("member already joined")
	ErrCompetitionFull = errors.New("competition is full")
	ErrStorageDisabled = errors.New("poster storage is disabled")
)

type Repository interface {
	GetMember(ctx context.Context, uid int64) (*models.Member, error)
	CreateCompetition(ctx context.Context, c *models.Competition) (int64, error)
	GetCompetition(ctx context.Context, id int64) (*models.Competition, error)
	ListCompetitions(ctx context.Context, limit, offset int) ([]*models.Competition, error)
	ListCompetitionsForRefresh(ctx context.Context) ([]*models.Competition, error)
	UpdateCompetitionState(ctx context.Context, id int64, state models.CompetitionState) error
	AddParticipant(ctx context.Context, p *models.Participant, limit int) error
	AddPoster(ctx context.Context, competitionID int64, url string) error
	ListParticipants(ctx context.Context, competitionID int64) ([]*models.Participant, error)
}

type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Uploader загружает файлы постеров.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

type Service struct {
	repo     Repository
	cache    Cache
	uploader Uploader
	policy   policy.Policy
	log      *slog.Logger
	now      func() time.Time
}

// New создаёт сервис соревнований. cache и uploader могут быть nil.
func New(repo Repository, cache Cache, uploader Uploader, p policy.Policy, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		uploader: uploader,
		policy:   p,
		log:      log,
		now:      time.Now,
	}
}

func cacheKey(id int64) string {
	return "competition:" + strconv.FormatInt(id, 10)
}

func parseDate(field, value string) (*time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidArgument, field, err)
	}
	t = t.UTC()
	return &t, nil
}

// Create создаёт соревнование. Уровень выводится из подписки организатора,
// расписание проверяется на полноту и порядок дат.
func (s *Service) Create(ctx context.Context, req *models.DummyCompetition) (*models.Competition, error) {
	const op = "competition.Create"

	rs, err := parseDate("recruiting_start", req.RecruitingStart)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	re, err := parseDate("recruiting_end", req.RecruitingEnd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sd, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := policy.ValidateSchedule(rs, re, sd); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, err)
	}

	host, err := s.repo.GetMember(ctx, req.HostUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w: %d", op, ErrHostNotFound, req.HostUID)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	competitionType, err := s.policy.CompetitionType(host)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c := &models.Competition{
		Name:            req.Name,
		Slug:            slug.Make(req.Name),
		Content:         req.Content,
		Category:        models.SportCategory(req.Category),
		Type:            competitionType,
		HostUID:         host.UID,
		Location:        req.Location,
		LocationDetail:  req.LocationDetail,
		MaxPlayer:       req.MaxPlayer,
		MaxViewer:       req.MaxViewer,
		TotalPrize:      req.TotalPrize,
		EntryFee:        req.EntryFee,
		RecruitingStart: rs,
		RecruitingEnd:   re,
		StartDate:       sd,
	}
	c.State, err = s.policy.CompetitionState(c, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.repo.CreateCompetition(ctx, c); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("competition created",
		slog.Int64("id", c.ID),
		slog.String("type", string(c.Type)),
		slog.String("state", string(c.State)),
	)
	return c, nil
}

// Get возвращает соревнование. Запись берётся из кеша, если она там есть,
// но состояние всегда пересчитывается на текущий момент.
func (s *Service) Get(ctx context.Context, id int64) (*models.Competition, error) {
	const op = "competition.Get"

	c, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.refreshState(c); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// Participants возвращает участников соревнования в порядке записи.
func (s *Service) Participants(ctx context.Context, id int64) ([]*models.Participant, error) {
	const op = "competition.Participants"

	if _, err := s.load(ctx, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ps, err := s.repo.ListParticipants(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

func (s *Service) load(ctx context.Context, id int64) (*models.Competition, error) {
	key := cacheKey(id)
	if s.cache != nil {
		var cached models.Competition
		found, err := s.cache.Get(key, &cached)
		if err != nil {
			s.log.Warn("failed to read competition from cache", slog.Int64("id", id), sl.Err(err))
		}
		if found {
			return &cached, nil
		}
	}

	c, err := s.repo.GetCompetition(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(key, c, cacheTTL); err != nil {
			s.log.Warn("failed to cache competition", slog.Int64("id", id), sl.Err(err))
		}
	}
	return c, nil
}

func (s *Service) invalidate(id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(cacheKey(id)); err != nil {
		s.log.Warn("failed to invalidate competition cache", slog.Int64("id", id), sl.Err(err))
	}
}

func (s *Service) refreshState(c *models.Competition) error {
	state, err := s.policy.CompetitionState(c, s.now())
	if err != nil {
		return err
	}
	c.State = state
	return nil
}

// List возвращает страницу соревнований с актуальными состояниями.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.Competition, error) {
	const op = "competition.List"

	if limit <= 0 || offset < 0 {
		return nil, fmt.Errorf("%s: %w: limit must be positive and offset non-negative", op, ErrInvalidArgument)
	}

	list, err := s.repo.ListCompetitions(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, c := range list {
		if err := s.refreshState(c); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return list, nil
}

// Join записывает участника в соревнование. Запись открыта только
// в состоянии RECRUITING и ограничена лимитом игроков или зрителей.
func (s *Service) Join(ctx context.Context, competitionID int64, req *models.JoinRequest) (*models.Participant, error) {
	const op = "competition.Join"

	c, err := s.Get(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if c.State != models.CompetitionStateRecruiting {
		return nil, fmt.Errorf("%s: %w: state %s", op, ErrNotRecruiting, c.State)
	}

	if _, err := s.repo.GetMember(ctx, req.MemberUID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w: %d", op, ErrMemberNotFound, req.MemberUID)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	role := models.ParticipantRole(req.Role)
	var limit int
	switch role {
	case models.ParticipantPlayer:
		limit = c.MaxPlayer
	case models.ParticipantViewer:
		limit = c.MaxViewer
	default:
		return nil, fmt.Errorf("%s: %w: unknown role %q", op, ErrInvalidArgument, req.Role)
	}

	p := &models.Participant{
		CompetitionID: competitionID,
		MemberUID:     req.MemberUID,
		Role:          role,
	}
	if err := s.repo.AddParticipant(ctx, p, limit); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyExists):
			return nil, fmt.Errorf("%s: %w", op, ErrAlreadyJoined)
		case errors.Is(err, repository.ErrLimitReached):
			return nil, fmt.Errorf("%s: %w", op, ErrCompetitionFull)
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%s: %w: %d", op, ErrNotFound, competitionID)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// AddPoster загружает постер и привязывает его URL к соревнованию.
func (s *Service) AddPoster(ctx context.Context, competitionID int64, filename, contentType string, body io.Reader) (string, error) {
	const op = "competition.AddPoster"

	if s.uploader == nil {
		return "", fmt.Errorf("%s: %w", op, ErrStorageDisabled)
	}
	if _, err := s.load(ctx, competitionID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	key := objectstore.ObjectKey("competitions/"+strconv.FormatInt(competitionID, 10), filename)
	url, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.AddPoster(ctx, competitionID, url); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(competitionID)
	return url, nil
}

// RefreshStates пересчитывает состояние незавершённых соревнований и сохраняет
// изменившиеся. Каждый переход сначала передаётся в emit и сохраняется только
// после успешного emit, иначе он повторится при следующем запуске.
// Соревнования с некорректным расписанием пропускаются. Возвращает сохранённые переходы.
func (s *Service) RefreshStates(ctx context.Context, emit func(models.StateTransition) error) ([]models.StateTransition, error) {
	const op = "competition.RefreshStates"

	list, err := s.repo.ListCompetitionsForRefresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	var transitions []models.StateTransition
	for _, c := range list {
		state, err := s.policy.CompetitionState(c, now)
		if err != nil {
			s.log.Error("competition has invalid schedule", slog.String("op", op), slog.Int64("id", c.ID), sl.Err(err))
			continue
		}
		if state == c.State {
			continue
		}
		tr := models.StateTransition{
			CompetitionID: c.ID,
			From:          c.State,
			To:            state,
			At:            now.UTC(),
		}
		if emit != nil {
			if err := emit(tr); err != nil {
				continue
			}
		}
		if err := s.repo.UpdateCompetitionState(ctx, c.ID, state); err != nil {
			return transitions, fmt.Errorf("%s: %w", op, err)
		}
		s.invalidate(c.ID)
		transitions = append(transitions, tr)
	}
	return transitions, nil
}
