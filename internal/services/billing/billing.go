// Package billing связывает пользователей сервиса с платёжным провайдером:
// оформление покупок и подписок, чтение их состояния и обработку вебхуков.
package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/csv-manager/internal/apperr"
	"github.com/magabrotheeeer/csv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/csv-manager/internal/metrics"
	"github.com/magabrotheeeer/csv-manager/internal/models"
	"github.com/magabrotheeeer/csv-manager/internal/paymentprovider"
)

// Публичные сообщения об ошибках.
const (
	MsgCheckoutFailed       = "Failed to create checkout session"
	MsgNoActiveSubscription = "No active subscription found"
	MsgCancelFailed         = "Failed to cancel subscription"
	MsgSignatureFailed      = "Webhook signature verification failed"
)

// PaymentHistoryLimit — сколько платежей возвращает история.
const PaymentHistoryLimit = 10

// Repository описывает данные, которые меняет биллинг.
type Repository interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
	SetStripeCustomerID(ctx context.Context, userID int64, customerID string) error
	UpdateSubscription(ctx context.Context, userID int64, status string, subscriptionID *string) error
	CreatePurchase(ctx context.Context, p models.Purchase) (int64, error)
	UpdatePurchaseStatus(ctx context.Context, paymentIntentID, status string) error
	ListPurchasesByUser(ctx context.Context, userID int64) ([]models.Purchase, error)
}

// Publisher отправляет события биллинга во внешнюю шину.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// NoopPublisher ничего не отправляет.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

// Outcome показывает, откуда взялось значение чтения.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"      // получено от провайдера
	OutcomeDefault Outcome = "default" // провайдера не спрашивали, значение по умолчанию
	OutcomeFailed  Outcome = "failed"  // провайдер вернул ошибку, значение по умолчанию
)

// ReadResult — результат чтения, который не падает при ошибке провайдера.
type ReadResult[T any] struct {
	Value   T       `json:"value"`
	Outcome Outcome `json:"outcome"`
}

// SubscriptionDetails — данные активной подписки.
type SubscriptionDetails struct {
	ID                string     `json:"id"`
	CurrentPeriodEnd  *time.Time `json:"currentPeriodEnd"`
	CancelAtPeriodEnd bool       `json:"cancelAtPeriodEnd"`
}

// SubscriptionStatus — статус подписки пользователя.
type SubscriptionStatus struct {
	Status       string               `json:"status"`
	Subscription *SubscriptionDetails `json:"subscription"`
}

// PaymentRecord — строка истории платежей.
type PaymentRecord struct {
	ID          string    `json:"id"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	Description string    `json:"description"`
}

// Service реализует операции биллинга.
type Service struct {
	log           *slog.Logger
	provider      paymentprovider.Client
	repo          Repository
	publisher     Publisher
	metrics       metrics.Recorder
	defaultOrigin string
	now           func() time.Time
}

// New создаёт Service. publisher и rec могут быть nil.
func New(log *slog.Logger, provider paymentprovider.Client, repo Repository, publisher Publisher,
	rec metrics.Recorder, defaultOrigin string) *Service {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &Service{
		log:           log,
		provider:      provider,
		repo:          repo,
		publisher:     publisher,
		metrics:       rec,
		defaultOrigin: strings.TrimRight(defaultOrigin, "/"),
		now:           time.Now,
	}
}

// CreateCheckoutSession создаёт сессию оплаты товара key и возвращает адрес для перехода.
func (s *Service) CreateCheckoutSession(ctx context.Context, key ProductKey, user *models.User, origin string) (string, error) {
	const op = "billing.CreateCheckoutSession"

	product, ok := Lookup(key)
	if !ok {
		return "", apperr.Validation(MsgUnknownProduct)
	}

	origin = strings.TrimRight(origin, "/")
	if origin == "" {
		origin = s.defaultOrigin
	}

	userID := strconv.FormatInt(user.ID, 10)
	req := paymentprovider.CheckoutRequest{
		ProductName:       product.Name,
		Description:       product.Description,
		UnitAmount:        product.Amount,
		Currency:          product.Currency,
		SuccessURL:        origin + "/payment/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         origin + "/payment/cancel",
		CustomerEmail:     models.Str(user.Email),
		ClientReferenceID: userID,
		Metadata: map[string]string{
			"user_id":        userID,
			"customer_email": models.Str(user.Email),
			"customer_name":  user.Name,
			"product_key":    string(product.Key),
		},
	}

	switch product.Mode {
	case ModeOneTime:
		req.Mode = paymentprovider.ModePayment
	case ModeRecurring:
		req.Mode = paymentprovider.ModeSubscription
		req.Interval = product.Interval
	default:
		return "", fmt.Errorf("%s: product %s has unsupported mode %d", op, product.Key, product.Mode)
	}

	url, err := s.provider.CreateCheckoutSession(ctx, req)
	if err != nil {
		return "", apperr.Provider(MsgCheckoutFailed, fmt.Errorf("%s: %w", op, err))
	}
	return url, nil
}

// GetSubscriptionStatus возвращает статус подписки. Ошибка провайдера даёт статус "none".
func (s *Service) GetSubscriptionStatus(ctx context.Context, user *models.User) ReadResult[SubscriptionStatus] {
	const op = "billing.GetSubscriptionStatus"
	none := SubscriptionStatus{Status: models.SubscriptionNone}

	customerID := models.Str(user.StripeCustomerID)
	if customerID == "" {
		return ReadResult[SubscriptionStatus]{Value: none, Outcome: OutcomeDefault}
	}

	sub, err := s.provider.ActiveSubscription(ctx, customerID)
	if err != nil {
		s.log.Error("failed to fetch subscription", sl.Op(op), slog.Int64("user_id", user.ID), sl.Err(err))
		return ReadResult[SubscriptionStatus]{Value: none, Outcome: OutcomeFailed}
	}
	if sub == nil {
		return ReadResult[SubscriptionStatus]{Value: none, Outcome: OutcomeOK}
	}
	return ReadResult[SubscriptionStatus]{
		Value: SubscriptionStatus{
			Status: models.SubscriptionActive,
			Subscription: &SubscriptionDetails{
				ID:                sub.ID,
				CurrentPeriodEnd:  sub.CurrentPeriodEnd,
				CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
			},
		},
		Outcome: OutcomeOK,
	}
}

// GetPaymentHistory возвращает последние платежи. Ошибка провайдера даёт пустой список.
func (s *Service) GetPaymentHistory(ctx context.Context, user *models.User) ReadResult[[]PaymentRecord] {
	const op = "billing.GetPaymentHistory"
	empty := []PaymentRecord{}

	customerID := models.Str(user.StripeCustomerID)
	if customerID == "" {
		return ReadResult[[]PaymentRecord]{Value: empty, Outcome: OutcomeDefault}
	}

	intents, err := s.provider.ListPaymentIntents(ctx, customerID, PaymentHistoryLimit)
	if err != nil {
		s.log.Error("failed to fetch payment history", sl.Op(op), slog.Int64("user_id", user.ID), sl.Err(err))
		return ReadResult[[]PaymentRecord]{Value: empty, Outcome: OutcomeFailed}
	}

	records := make([]PaymentRecord, 0, len(intents))
	for _, pi := range intents {
		records = append(records, PaymentRecord{
			ID:          pi.ID,
			Amount:      pi.Amount,
			Currency:    pi.Currency,
			Status:      pi.Status,
			CreatedAt:   pi.CreatedAt,
			Description: pi.Description,
		})
	}
	return ReadResult[[]PaymentRecord]{Value: records, Outcome: OutcomeOK}
}

// CancelSubscription ставит подписку пользователя на отмену в конце периода.
func (s *Service) CancelSubscription(ctx context.Context, user *models.User) error {
	const op = "billing.CancelSubscription"

	subscriptionID := models.Str(user.SubscriptionID)
	if subscriptionID == "" {
		return apperr.Validation(MsgNoActiveSubscription)
	}
	if err := s.provider.CancelAtPeriodEnd(ctx, subscriptionID); err != nil {
		return apperr.Provider(MsgCancelFailed, fmt.Errorf("%s: %w", op, err))
	}
	return nil
}

// ListPurchases возвращает покупки пользователя из локальной базы.
func (s *Service) ListPurchases(ctx context.Context, user *models.User) ([]models.Purchase, error) {
	const op = "billing.ListPurchases"
	purchases, err := s.repo.ListPurchasesByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if purchases == nil {
		purchases = []models.Purchase{}
	}
	return purchases, nil
}
