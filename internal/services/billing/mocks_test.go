package billing

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/csv-manager/internal/models"
	"github.com/magabrotheeeer/csv-manager/internal/paymentprovider"
)

type ProviderMock struct {
	mock.Mock
}

func (m *ProviderMock) CreateCheckoutSession(ctx context.Context, req paymentprovider.CheckoutRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *ProviderMock) ActiveSubscription(ctx context.Context, customerID string) (*paymentprovider.SubscriptionInfo, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.SubscriptionInfo), args.Error(1)
}

func (m *ProviderMock) ListPaymentIntents(ctx context.Context, customerID string, limit int) ([]paymentprovider.PaymentIntentInfo, error) {
	args := m.Called(ctx, customerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]paymentprovider.PaymentIntentInfo), args.Error(1)
}

func (m *ProviderMock) CancelAtPeriodEnd(ctx context.Context, subscriptionID string) error {
	return m.Called(ctx, subscriptionID).Error(0)
}

func (m *ProviderMock) ConstructEvent(payload []byte, signature string) (*paymentprovider.Event, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Event), args.Error(1)
}

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) GetUserByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) SetStripeCustomerID(ctx context.Context, userID int64, customerID string) error {
	return m.Called(ctx, userID, customerID).Error(0)
}

func (m *RepoMock) UpdateSubscription(ctx context.Context, userID int64, status string, subscriptionID *string) error {
	return m.Called(ctx, userID, status, subscriptionID).Error(0)
}

func (m *RepoMock) CreatePurchase(ctx context.Context, p models.Purchase) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) UpdatePurchaseStatus(ctx context.Context, paymentIntentID, status string) error {
	return m.Called(ctx, paymentIntentID, status).Error(0)
}

func (m *RepoMock) ListPurchasesByUser(ctx context.Context, userID int64) ([]models.Purchase, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Purchase), args.Error(1)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, message any) error {
	return m.Called(ctx, routingKey, message).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func strPtr(s string) *string { return &s }
