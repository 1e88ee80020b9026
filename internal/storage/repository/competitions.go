package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/sportsit/internal/models"
)

const competitionSelect = `SELECT id, name, slug, content, category, competition_type, state, host_uid,
	location, location_detail, max_player, max_viewer, total_prize, entry_fee,
	recruiting_start, recruiting_end, start_date, created_at, updated_at FROM competitions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompetition(row rowScanner) (*models.Competition, error) {
	var c models.Competition
	var category, competitionType, state string
	var rs, re, sd sql.NullTime
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Content, &category, &competitionType, &state, &c.HostUID,
		&c.Location, &c.LocationDetail, &c.MaxPlayer, &c.MaxViewer, &c.TotalPrize, &c.EntryFee,
		&rs, &re, &sd, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Category = models.SportCategory(category)
	c.Type = models.CompetitionType(competitionType)
	c.State = models.CompetitionState(state)
	c.RecruitingStart = timePtr(rs)
	c.RecruitingEnd = timePtr(re)
	c.StartDate = timePtr(sd)
	return &c, nil
}

// CreateCompetition сохраняет соревнование и возвращает его id.
func (s *Storage) CreateCompetition(ctx context.Context, c *models.Competition) (int64, error) {
	const op = "storage.CreateCompetition"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO competitions (name, slug, content, category, competition_type, state, host_uid,
			  location, location_detail, max_player, max_viewer, total_prize, entry_fee,
			  recruiting_start, recruiting_end, start_date)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			  RETURNING id, created_at, updated_at`
	err := s.DB.QueryRowContext(ctx, query,
		c.Name,
		c.Slug,
		c.Content,
		string(c.Category),
		string(c.Type),
		string(c.State),
		c.HostUID,
		c.Location,
		c.LocationDetail,
		c.MaxPlayer,
		c.MaxViewer,
		c.TotalPrize,
		c.EntryFee,
		nullTime(c.RecruitingStart),
		nullTime(c.RecruitingEnd),
		nullTime(c.StartDate),
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return c.ID, nil
}

// GetCompetition возвращает соревнование вместе с постерами.
func (s *Storage) GetCompetition(ctx context.Context, id int64) (*models.Competition, error) {
	const op = "storage.GetCompetition"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	c, err := scanCompetition(s.DB.QueryRowContext(ctx, competitionSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT url FROM competition_posters WHERE competition_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		c.Posters = append(c.Posters, url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// ListCompetitions возвращает страницу соревнований по дате старта.
func (s *Storage) ListCompetitions(ctx context.Context, limit, offset int) ([]*models.Competition, error) {
	const op = "storage.ListCompetitions"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := competitionSelect + ` ORDER BY start_date NULLS LAST, id LIMIT $1 OFFSET $2`
	return s.queryCompetitions(ctx, op, query, limit, offset)
}

// ListCompetitionsForRefresh возвращает соревнования, состояние которых ещё может измениться.
func (s *Storage) ListCompetitionsForRefresh(ctx context.Context) ([]*models.Competition, error) {
	const op = "storage.ListCompetitionsForRefresh"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := competitionSelect + ` WHERE state <> $1 ORDER BY id`
	return s.queryCompetitions(ctx, op, query, string(models.CompetitionStateInProgress))
}

func (s *Storage) queryCompetitions(ctx context.Context, op, query string, args ...any) ([]*models.Competition, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Competition, 0)
	for rows.Next() {
		c, err := scanCompetition(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateCompetitionState сохраняет вычисленное состояние соревнования.
func (s *Storage) UpdateCompetitionState(ctx context.Context, id int64, state models.CompetitionState) error {
	const op = "storage.UpdateCompetitionState"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE competitions SET state = $1, updated_at = now() WHERE id = $2`, string(state), id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// AddPoster привязывает URL постера к соревнованию.
func (s *Storage) AddPoster(ctx context.Context, competitionID int64, url string) error {
	const op = "storage.AddPoster"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO competition_posters (competition_id, url) VALUES ($1, $2)`, competitionID, url)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// AddParticipant записывает участника в соревнование. limit ограничивает
// число участников с той же ролью, 0 означает без ограничения.
// Строка соревнования блокируется на время проверки лимита.
func (s *Storage) AddParticipant(ctx context.Context, p *models.Participant, limit int) error {
	const op = "storage.AddParticipant"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM competitions WHERE id = $1 FOR UPDATE`, p.CompetitionID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if limit > 0 {
		var count int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM competition_participants WHERE competition_id = $1 AND role = $2`,
			p.CompetitionID, string(p.Role)).Scan(&count)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if count >= limit {
			return fmt.Errorf("%s: %w", op, ErrLimitReached)
		}
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO competition_participants (competition_id, member_uid, role)
		 VALUES ($1, $2, $3) RETURNING joined_at`,
		p.CompetitionID, p.MemberUID, string(p.Role)).Scan(&p.JoinedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListParticipants возвращает участников соревнования в порядке записи.
func (s *Storage) ListParticipants(ctx context.Context, competitionID int64) ([]*models.Participant, error) {
	const op = "storage.ListParticipants"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT competition_id, member_uid, role, joined_at FROM competition_participants
		 WHERE competition_id = $1 ORDER BY joined_at, member_uid`, competitionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		var role string
		if err := rows.Scan(&p.CompetitionID, &p.MemberUID, &role, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.Role = models.ParticipantRole(role)
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
