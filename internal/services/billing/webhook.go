package billing

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/csv-manager/internal/apperr"
	"github.com/magabrotheeeer/csv-manager/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/csv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/csv-manager/internal/models"
	"github.com/magabrotheeeer/csv-manager/internal/paymentprovider"
	"github.com/magabrotheeeer/csv-manager/internal/storage/repository"
)

// Типы событий вебхука, которые сервис обрабатывает.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventPaymentSucceeded    = "payment_intent.succeeded"
	EventPaymentFailed       = "payment_intent.payment_failed"
	EventChargeRefunded      = "charge.refunded"
)

const (
	testEventPrefix = "evt_test_"
	testEventType   = "test"
)

// WebhookResult — ответ на доставку вебхука.
type WebhookResult struct {
	Success   bool   `json:"success"`
	EventType string `json:"eventType"`
}

// BillingEvent публикуется в шину после изменения локальных данных.
type BillingEvent struct {
	EventID         string    `json:"event_id"`
	Type            string    `json:"type"`
	UserID          int64     `json:"user_id"`
	Status          string    `json:"status"`
	SubscriptionID  string    `json:"subscription_id,omitempty"`
	PaymentIntentID string    `json:"payment_intent_id,omitempty"`
	Amount          string    `json:"amount,omitempty"`
	Currency        string    `json:"currency,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// HandleWebhookEvent проверяет подпись и применяет событие к локальным данным.
// После успешной проверки подписи всегда возвращает Success: ошибки сверки только логируются.
func (s *Service) HandleWebhookEvent(ctx context.Context, payload []byte, signature string) (WebhookResult, error) {
	const op = "billing.HandleWebhookEvent"

	evt, err := s.provider.ConstructEvent(payload, signature)
	if err != nil {
		return WebhookResult{}, apperr.Security(MsgSignatureFailed, err)
	}

	log := s.log.With(sl.Op(op), slog.String("event_id", evt.ID), slog.String("event_type", evt.Type))

	if strings.HasPrefix(evt.ID, testEventPrefix) {
		log.Info("test event received")
		return WebhookResult{Success: true, EventType: testEventType}, nil
	}

	s.metrics.RecordWebhookEvent(evt.Type)
	log.Info("webhook event received")

	switch evt.Type {
	case EventCheckoutCompleted:
		s.onCheckoutCompleted(ctx, log, evt)
	case EventSubscriptionUpdated:
		s.onSubscriptionChanged(ctx, log, evt, false)
	case EventSubscriptionDeleted:
		s.onSubscriptionChanged(ctx, log, evt, true)
	case EventPaymentSucceeded:
		if pi, err := paymentprovider.DecodePaymentIntent(evt.Data); err == nil {
			log.Info("payment intent succeeded", slog.String("payment_intent_id", pi.ID), slog.Int64("amount", pi.Amount))
		}
	case EventPaymentFailed:
		if pi, err := paymentprovider.DecodePaymentIntent(evt.Data); err != nil {
			log.Error("failed to decode payment intent", sl.Err(err))
		} else {
			s.setPurchaseStatus(ctx, log, evt.ID, pi.ID, models.PurchaseFailed)
		}
	case EventChargeRefunded:
		if ch, err := paymentprovider.DecodeCharge(evt.Data); err != nil {
			log.Error("failed to decode charge", sl.Err(err))
		} else if ch.PaymentIntentID != "" {
			s.setPurchaseStatus(ctx, log, evt.ID, ch.PaymentIntentID, models.PurchaseRefunded)
		}
	default:
		log.Debug("unhandled event type")
	}

	return WebhookResult{Success: true, EventType: evt.Type}, nil
}

func (s *Service) onCheckoutCompleted(ctx context.Context, log *slog.Logger, evt *paymentprovider.Event) {
	session, err := paymentprovider.DecodeCheckoutSession(evt.Data)
	if err != nil {
		log.Error("failed to decode checkout session", sl.Err(err))
		return
	}

	userID, _ := strconv.ParseInt(session.Metadata["user_id"], 10, 64)
	if userID <= 0 {
		log.Warn("checkout session without user id", slog.String("session_id", session.ID))
		return
	}
	log = log.With(slog.Int64("user_id", userID))

	if session.CustomerID != "" {
		if err := s.repo.SetStripeCustomerID(ctx, userID, session.CustomerID); err != nil {
			log.Error("failed to store stripe customer id", sl.Err(err))
		}
	}

	switch {
	case session.Mode == paymentprovider.ModeSubscription && session.SubscriptionID != "":
		subID := session.SubscriptionID
		if err := s.repo.UpdateSubscription(ctx, userID, models.SubscriptionActive, &subID); err != nil {
			log.Error("failed to activate subscription", sl.Err(err))
			return
		}
		log.Info("subscription activated", slog.String("subscription_id", subID))
		s.publish(ctx, log, rabbitmq.RoutingSubscriptionStatus, BillingEvent{
			EventID:        evt.ID,
			Type:           evt.Type,
			UserID:         userID,
			Status:         models.SubscriptionActive,
			SubscriptionID: subID,
		})

	case session.Mode == paymentprovider.ModePayment && session.PaymentIntentID != "":
		currency := session.Currency
		if currency == "" {
			currency = models.DefaultCurrency
		}
		amount := decimal.NewFromInt(session.AmountTotal)

		var productName *string
		if p, ok := Lookup(ProductKey(session.Metadata["product_key"])); ok {
			productName = &p.Name
		}

		_, err := s.repo.CreatePurchase(ctx, models.Purchase{
			UserID:                userID,
			StripePaymentIntentID: session.PaymentIntentID,
			Amount:                amount,
			Currency:              currency,
			Status:                models.PurchaseSucceeded,
			ProductName:           productName,
		})
		if err != nil {
			log.Error("failed to create purchase", slog.String("payment_intent_id", session.PaymentIntentID), sl.Err(err))
			return
		}
		log.Info("purchase recorded", slog.String("payment_intent_id", session.PaymentIntentID))
		s.publish(ctx, log, rabbitmq.RoutingPurchaseSucceeded, BillingEvent{
			EventID:         evt.ID,
			Type:            evt.Type,
			UserID:          userID,
			Status:          models.PurchaseSucceeded,
			PaymentIntentID: session.PaymentIntentID,
			Amount:          amount.StringFixed(2),
			Currency:        currency,
		})
	}
}

// subscriptionStatus сводит статус провайдера к статусам пользователя.
func subscriptionStatus(providerStatus string) string {
	switch providerStatus {
	case models.SubscriptionActive, models.SubscriptionCanceled, models.SubscriptionPastDue:
		return providerStatus
	default:
		return models.SubscriptionNone
	}
}

func (s *Service) onSubscriptionChanged(ctx context.Context, log *slog.Logger, evt *paymentprovider.Event, deleted bool) {
	sub, err := paymentprovider.DecodeSubscription(evt.Data)
	if err != nil {
		log.Error("failed to decode subscription", sl.Err(err))
		return
	}
	if sub.CustomerID == "" {
		return
	}

	user, err := s.repo.GetUserByStripeCustomerID(ctx, sub.CustomerID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error("failed to find user by customer id", sl.Err(err))
		}
		return
	}
	log = log.With(slog.Int64("user_id", user.ID))

	status := subscriptionStatus(sub.Status)
	if deleted {
		status = models.SubscriptionCanceled
		err = s.repo.UpdateSubscription(ctx, user.ID, status, nil)
	} else {
		err = s.repo.UpdateSubscription(ctx, user.ID, status, &sub.ID)
	}
	if err != nil {
		log.Error("failed to update subscription status", sl.Err(err))
		return
	}

	log.Info("subscription status updated", slog.String("status", status))
	s.publish(ctx, log, rabbitmq.RoutingSubscriptionStatus, BillingEvent{
		EventID:        evt.ID,
		Type:           evt.Type,
		UserID:         user.ID,
		Status:         status,
		SubscriptionID: sub.ID,
	})
}

func (s *Service) setPurchaseStatus(ctx context.Context, log *slog.Logger, eventID, paymentIntentID, status string) {
	log = log.With(slog.String("payment_intent_id", paymentIntentID))
	if err := s.repo.UpdatePurchaseStatus(ctx, paymentIntentID, status); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error("failed to update purchase status", sl.Err(err))
		}
		return
	}
	log.Info("purchase status updated", slog.String("status", status))
	s.publish(ctx, log, rabbitmq.RoutingPurchaseStatus, BillingEvent{
		EventID:         eventID,
		Status:          status,
		PaymentIntentID: paymentIntentID,
	})
}

func (s *Service) publish(ctx context.Context, log *slog.Logger, routingKey string, msg BillingEvent) {
	msg.OccurredAt = s.now().UTC()
	if err := s.publisher.Publish(ctx, routingKey, msg); err != nil {
		log.Warn("failed to publish billing event", slog.String("routing_key", routingKey), sl.Err(err))
	}
}
