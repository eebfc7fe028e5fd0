package paymentprovider

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v78"
)

// DecodeCheckoutSession разбирает объект checkout.session из данных события.
func DecodeCheckoutSession(raw json.RawMessage) (*CheckoutSession, error) {
	var s stripe.CheckoutSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("paymentprovider.DecodeCheckoutSession: %w", err)
	}
	out := &CheckoutSession{
		ID:          s.ID,
		Mode:        string(s.Mode),
		AmountTotal: s.AmountTotal,
		Currency:    string(s.Currency),
		Metadata:    s.Metadata,
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	if s.Subscription != nil {
		out.SubscriptionID = s.Subscription.ID
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	return out, nil
}

// DecodeSubscription разбирает объект subscription из данных события.
func DecodeSubscription(raw json.RawMessage) (*Subscription, error) {
	var s stripe.Subscription
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("paymentprovider.DecodeSubscription: %w", err)
	}
	out := &Subscription{ID: s.ID, Status: string(s.Status)}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	return out, nil
}

// DecodePaymentIntent разбирает объект payment_intent из данных события.
func DecodePaymentIntent(raw json.RawMessage) (*PaymentIntent, error) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(raw, &pi); err != nil {
		return nil, fmt.Errorf("paymentprovider.DecodePaymentIntent: %w", err)
	}
	out := &PaymentIntent{ID: pi.ID, Amount: pi.Amount, Currency: string(pi.Currency)}
	if pi.Customer != nil {
		out.CustomerID = pi.Customer.ID
	}
	return out, nil
}

// DecodeCharge разбирает объект charge из данных события.
func DecodeCharge(raw json.RawMessage) (*Charge, error) {
	var ch stripe.Charge
	if err := json.Unmarshal(raw, &ch); err != nil {
		return nil, fmt.Errorf("paymentprovider.DecodeCharge: %w", err)
	}
	out := &Charge{ID: ch.ID}
	if ch.PaymentIntent != nil {
		out.PaymentIntentID = ch.PaymentIntent.ID
	}
	return out, nil
}
