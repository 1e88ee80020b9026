package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/sportsit/internal/models"
)

// CreateBodyInfo сохраняет замер и возвращает его id.
func (s *Storage) CreateBodyInfo(ctx context.Context, b *models.BodyInfo) (int64, error) {
	const op = "storage.CreateBodyInfo"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO body_infos (member_uid, height, weight, fat_mass, sm_mass)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id, created_at`
	err := s.DB.QueryRowContext(ctx, query, b.MemberUID, b.Height, b.Weight, b.FatMass, b.SmMass).
		Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return b.ID, nil
}

// ListBodyInfo возвращает замеры участника, новые первыми.
func (s *Storage) ListBodyInfo(ctx context.Context, memberUID int64) ([]*models.BodyInfo, error) {
	const op = "storage.ListBodyInfo"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, member_uid, height, weight, fat_mass, sm_mass, created_at
			  FROM body_infos WHERE member_uid = $1
			  ORDER BY created_at DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, query, memberUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.BodyInfo, 0)
	for rows.Next() {
		var b models.BodyInfo
		if err := rows.Scan(&b.ID, &b.MemberUID, &b.Height, &b.Weight, &b.FatMass, &b.SmMass, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
