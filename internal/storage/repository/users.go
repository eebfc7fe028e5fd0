package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/csv-manager/internal/models"
)

const userColumns = `id, open_id, username, password_hash, name, email, login_method, role,
	stripe_customer_id, subscription_status, subscription_id, created_at, updated_at, last_signed_in`

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	var username, passwordHash, email, customerID, subscriptionID sql.NullString
	if err := row.Scan(&u.ID, &u.OpenID, &username, &passwordHash, &u.Name, &email,
		&u.LoginMethod, &u.Role, &customerID, &u.SubscriptionStatus, &subscriptionID,
		&u.CreatedAt, &u.UpdatedAt, &u.LastSignedIn); err != nil {
		return nil, err
	}
	u.Username = nullString(username)
	u.PasswordHash = nullString(passwordHash)
	u.Email = nullString(email)
	u.StripeCustomerID = nullString(customerID)
	u.SubscriptionID = nullString(subscriptionID)
	return u, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// CreateUser сохраняет нового пользователя и возвращает его ID.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	role := user.Role
	if role == "" {
		role = models.RoleUser
	}
	status := user.SubscriptionStatus
	if status == "" {
		status = models.SubscriptionNone
	}

	var id int64
	query := `INSERT INTO users (open_id, username, password_hash, name, email, login_method,
			      role, subscription_status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		user.OpenID, user.Username, user.PasswordHash, user.Name, user.Email,
		user.LoginMethod, role, status).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

func (s *Storage) getUser(ctx context.Context, op, where string, arg any) (*models.User, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where+` = $1`, arg)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByUsername возвращает пользователя по username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "storage.GetUserByUsername", "username", username)
}

// GetUserByOpenID возвращает пользователя по внешнему идентификатору.
func (s *Storage) GetUserByOpenID(ctx context.Context, openID string) (*models.User, error) {
	return s.getUser(ctx, "storage.GetUserByOpenID", "open_id", openID)
}

// GetUserByID возвращает пользователя по ID.
func (s *Storage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, "storage.GetUserByID", "id", id)
}

// GetUserByStripeCustomerID возвращает пользователя по ID клиента Stripe.
func (s *Storage) GetUserByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	return s.getUser(ctx, "storage.GetUserByStripeCustomerID", "stripe_customer_id", customerID)
}

func (s *Storage) execUser(ctx context.Context, op, query string, args ...any) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, query, args...)
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

// UpdateLastSignedIn отмечает время последнего входа.
func (s *Storage) UpdateLastSignedIn(ctx context.Context, userID int64) error {
	return s.execUser(ctx, "storage.UpdateLastSignedIn",
		`UPDATE users SET last_signed_in = NOW(), updated_at = NOW() WHERE id = $1`, userID)
}

// SetStripeCustomerID сохраняет ID клиента Stripe.
func (s *Storage) SetStripeCustomerID(ctx context.Context, userID int64, customerID string) error {
	return s.execUser(ctx, "storage.SetStripeCustomerID",
		`UPDATE users SET stripe_customer_id = $2, updated_at = NOW() WHERE id = $1`, userID, customerID)
}

// UpdateSubscription меняет статус и ID подписки; nil очищает ID.
func (s *Storage) UpdateSubscription(ctx context.Context, userID int64, status string, subscriptionID *string) error {
	return s.execUser(ctx, "storage.UpdateSubscription",
		`UPDATE users SET subscription_status = $2, subscription_id = $3, updated_at = NOW() WHERE id = $1`,
		userID, status, subscriptionID)
}
