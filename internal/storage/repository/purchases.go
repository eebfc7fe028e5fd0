package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/csv-manager/internal/models"
)

// CreatePurchase сохраняет покупку. Повтор по тому же payment intent даёт ErrAlreadyExists.
func (s *Storage) CreatePurchase(ctx context.Context, p models.Purchase) (int64, error) {
	const op = "storage.CreatePurchase"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	currency := p.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}
	status := p.Status
	if status == "" {
		status = models.PurchasePending
	}

	var id int64
	query := `INSERT INTO purchases (user_id, stripe_payment_intent_id, amount, currency, status, product_name)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		p.UserID, p.StripePaymentIntentID, p.Amount.Round(2), currency, status, p.ProductName).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdatePurchaseStatus меняет статус покупки по payment intent.
// Возвращает ErrNotFound, если такой покупки нет.
func (s *Storage) UpdatePurchaseStatus(ctx context.Context, paymentIntentID, status string) error {
	const op = "storage.UpdatePurchaseStatus"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE purchases SET status = $2, updated_at = NOW() WHERE stripe_payment_intent_id = $1`,
		paymentIntentID, status)
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

// ListPurchasesByUser возвращает покупки пользователя, новые первыми.
func (s *Storage) ListPurchasesByUser(ctx context.Context, userID int64) ([]models.Purchase, error) {
	const op = "storage.ListPurchasesByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, user_id, stripe_payment_intent_id, amount, currency, status, product_name, created_at, updated_at
		 FROM purchases WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.Purchase
	for rows.Next() {
		var p models.Purchase
		var productName sql.NullString
		if err := rows.Scan(&p.ID, &p.UserID, &p.StripePaymentIntentID, &p.Amount, &p.Currency,
			&p.Status, &productName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.ProductName = nullString(productName)
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
