// Package paymentprovider — адаптер к платёжному провайдеру Stripe.
package paymentprovider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/magabrotheeeer/csv-manager/internal/lib/sl"
)

// Client определяет операции, которые сервис выполняет у провайдера.
type Client interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error)
	ActiveSubscription(ctx context.Context, customerID string) (*SubscriptionInfo, error)
	ListPaymentIntents(ctx context.Context, customerID string, limit int) ([]PaymentIntentInfo, error)
	CancelAtPeriodEnd(ctx context.Context, subscriptionID string) error
	ConstructEvent(payload []byte, signature string) (*Event, error)
}

// StripeClient реализует Client через stripe-go.
type StripeClient struct {
	api           *client.API
	webhookSecret string
	log           *slog.Logger
}

// NewStripeClient создаёт клиента с ключом apiKey и секретом подписи вебхуков.
func NewStripeClient(apiKey, webhookSecret string, log *slog.Logger) *StripeClient {
	return NewStripeClientWithBackends(apiKey, webhookSecret, log, nil)
}

// NewStripeClientWithBackends позволяет подменить транспорт Stripe, например в тестах.
func NewStripeClientWithBackends(apiKey, webhookSecret string, log *slog.Logger, backends *stripe.Backends) *StripeClient {
	api := &client.API{}
	api.Init(apiKey, backends)
	return &StripeClient{
		api:           api,
		webhookSecret: webhookSecret,
		log:           log,
	}
}

// CreateCheckoutSession создаёт сессию и возвращает адрес страницы оплаты.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	const op = "paymentprovider.CreateCheckoutSession"

	priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
		Currency: stripe.String(req.Currency),
		ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:        stripe.String(req.ProductName),
			Description: stripe.String(req.Description),
		},
		UnitAmount: stripe.Int64(req.UnitAmount),
	}
	if req.Mode == ModeSubscription {
		priceData.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval: stripe.String(req.Interval),
		}
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(req.Mode),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{PriceData: priceData, Quantity: stripe.Int64(1)},
		},
		SuccessURL:          stripe.String(req.SuccessURL),
		CancelURL:           stripe.String(req.CancelURL),
		ClientReferenceID:   stripe.String(req.ClientReferenceID),
		AllowPromotionCodes: stripe.Bool(true),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		c.logStripeError(op, err)
		return "", fmt.Errorf("%s: %w", op, err)
	}
	c.log.Info("checkout session created", slog.String("session_id", sess.ID), slog.String("mode", req.Mode))
	return sess.URL, nil
}

// ActiveSubscription возвращает активную подписку клиента или nil.
func (c *StripeClient) ActiveSubscription(ctx context.Context, customerID string) (*SubscriptionInfo, error) {
	const op = "paymentprovider.ActiveSubscription"

	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Limit = stripe.Int64(1)
	params.Context = ctx

	iter := c.api.Subscriptions.List(params)
	if iter.Next() {
		sub := iter.Subscription()
		info := &SubscriptionInfo{
			ID:                sub.ID,
			Status:            string(sub.Status),
			CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		}
		if sub.CurrentPeriodEnd > 0 {
			end := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
			info.CurrentPeriodEnd = &end
		}
		return info, nil
	}
	if err := iter.Err(); err != nil {
		c.logStripeError(op, err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return nil, nil
}

// ListPaymentIntents возвращает не более limit последних платежей клиента.
func (c *StripeClient) ListPaymentIntents(ctx context.Context, customerID string, limit int) ([]PaymentIntentInfo, error) {
	const op = "paymentprovider.ListPaymentIntents"

	params := &stripe.PaymentIntentListParams{
		Customer: stripe.String(customerID),
	}
	params.Limit = stripe.Int64(int64(limit))
	params.Context = ctx

	result := make([]PaymentIntentInfo, 0, limit)
	iter := c.api.PaymentIntents.List(params)
	for len(result) < limit && iter.Next() {
		pi := iter.PaymentIntent()
		result = append(result, PaymentIntentInfo{
			ID:          pi.ID,
			Amount:      pi.Amount,
			Currency:    string(pi.Currency),
			Status:      string(pi.Status),
			Description: pi.Description,
			CreatedAt:   time.Unix(pi.Created, 0).UTC(),
		})
	}
	if err := iter.Err(); err != nil {
		c.logStripeError(op, err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CancelAtPeriodEnd помечает подписку к отмене в конце оплаченного периода.
func (c *StripeClient) CancelAtPeriodEnd(ctx context.Context, subscriptionID string) error {
	const op = "paymentprovider.CancelAtPeriodEnd"

	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	params.Context = ctx

	if _, err := c.api.Subscriptions.Update(subscriptionID, params); err != nil {
		c.logStripeError(op, err)
		return fmt.Errorf("%s: %w", op, err)
	}
	c.log.Info("subscription set to cancel at period end", slog.String("subscription_id", subscriptionID))
	return nil
}

// ConstructEvent проверяет подпись вебхука и возвращает событие.
func (c *StripeClient) ConstructEvent(payload []byte, signature string) (*Event, error) {
	return ConstructEvent(payload, signature, c.webhookSecret)
}

// ConstructEvent проверяет подпись payload общим секретом secret.
func ConstructEvent(payload []byte, signature, secret string) (*Event, error) {
	const op = "paymentprovider.ConstructEvent"

	evt, err := webhook.ConstructEventWithOptions(payload, signature, secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := &Event{ID: evt.ID, Type: string(evt.Type)}
	if evt.Data != nil {
		out.Data = evt.Data.Raw
	}
	return out, nil
}

func (c *StripeClient) logStripeError(op string, err error) {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		c.log.Error("stripe api error",
			sl.Op(op),
			slog.String("type", string(stripeErr.Type)),
			slog.String("code", string(stripeErr.Code)),
			slog.String("message", stripeErr.Msg),
			slog.String("request_id", stripeErr.RequestID),
			slog.Int("status_code", stripeErr.HTTPStatusCode),
		)
		return
	}
	c.log.Error("stripe call failed", sl.Op(op), sl.Err(err))
}
