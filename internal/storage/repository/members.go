package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/sportsit/internal/models"
)

// CreateMember сохраняет участника и возвращает его uid.
func (s *Storage) CreateMember(ctx context.Context, m *models.Member) (int64, error) {
	const op = "storage.CreateMember"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO members (name, email, phone, role, subscription)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING uid, created_at`
	err := s.DB.QueryRowContext(ctx, query, m.Name, m.Email, m.Phone, m.Role, string(m.Subscription)).
		Scan(&m.UID, &m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return m.UID, nil
}

// GetMember возвращает участника по uid.
func (s *Storage) GetMember(ctx context.Context, uid int64) (*models.Member, error) {
	const op = "storage.GetMember"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT uid, name, email, phone, role, subscription, created_at
			  FROM members WHERE uid = $1`
	var m models.Member
	var subscription string
	err := s.DB.QueryRowContext(ctx, query, uid).
		Scan(&m.UID, &m.Name, &m.Email, &m.Phone, &m.Role, &subscription, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	m.Subscription = models.Subscribe(subscription)
	return &m, nil
}
