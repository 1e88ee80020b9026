package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/sportsit/internal/models"
)

// PaymentExistsByMerchantUID проверяет, занят ли merchant_uid.
func (s *Storage) PaymentExistsByMerchantUID(ctx context.Context, merchantUID string) (bool, error) {
	const op = "storage.PaymentExistsByMerchantUID"
	if err := ctxDone(ctx, op); err != nil {
		return false, err
	}

	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE merchant_uid = $1)`, merchantUID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// SavePayment сохраняет платёж одной вставкой.
func (s *Storage) SavePayment(ctx context.Context, p *models.Payment) (int64, error) {
	const op = "storage.SavePayment"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}

	var competitionID sql.NullInt64
	if p.CompetitionID != nil {
		competitionID = sql.NullInt64{Int64: *p.CompetitionID, Valid: true}
	}

	query := `INSERT INTO payments (imp_uid, merchant_uid, amount, payment_type, content, status,
			  buyer_uid, competition_id, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id`
	var id int64
	err := s.DB.QueryRowContext(ctx, query,
		p.ImpUID,
		p.MerchantUID,
		p.Amount,
		string(p.Type),
		p.Content,
		string(p.Status),
		p.BuyerUID,
		competitionID,
		p.CreatedAt,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListPaymentsByBuyer возвращает платежи участника, новые первыми.
func (s *Storage) ListPaymentsByBuyer(ctx context.Context, buyerUID int64) ([]*models.Payment, error) {
	const op = "storage.ListPaymentsByBuyer"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := paymentSelect + ` WHERE buyer_uid = $1 ORDER BY created_at DESC, id DESC`
	return s.queryPayments(ctx, op, query, buyerUID)
}

// ListPayments возвращает все платежи, новые первыми.
func (s *Storage) ListPayments(ctx context.Context) ([]*models.Payment, error) {
	const op = "storage.ListPayments"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	return s.queryPayments(ctx, op, paymentSelect+` ORDER BY created_at DESC, id DESC`)
}

const paymentSelect = `SELECT id, imp_uid, merchant_uid, amount, payment_type, content, status,
	buyer_uid, competition_id, created_at FROM payments`

func (s *Storage) queryPayments(ctx context.Context, op, query string, args ...any) ([]*models.Payment, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Payment, 0)
	for rows.Next() {
		var p models.Payment
		var paymentType, status string
		var competitionID sql.NullInt64
		if err := rows.Scan(&p.ID, &p.ImpUID, &p.MerchantUID, &p.Amount, &paymentType, &p.Content,
			&status, &p.BuyerUID, &competitionID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.Type = models.PaymentType(paymentType)
		p.Status = models.PaymentStatus(status)
		if competitionID.Valid {
			id := competitionID.Int64
			p.CompetitionID = &id
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
