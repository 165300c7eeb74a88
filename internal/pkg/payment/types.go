package payment

import "context"

// Checkout modes accepted by the create-session endpoint.
const (
	ModePayment      = "payment"
	ModeSubscription = "subscription"
)

// Caller identifies an authenticated buyer. A nil *Caller denotes a guest
// checkout.
type Caller struct {
	UserID uint
	Email  string
}

// CreateCheckoutSessionRequest is the JSON body of the create-session endpoint.
type CreateCheckoutSessionRequest struct {
	PriceID    string `json:"priceId"`
	Mode       string `json:"mode"`
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

// CheckoutSessionResult carries the processor-hosted redirect target back to
// the caller. The caller redirects the buyer's browser to URL; nothing is
// rendered here.
type CheckoutSessionResult struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// SessionParams is the provider-neutral input for creating a hosted checkout
// session with the external processor.
type SessionParams struct {
	CustomerID  string
	PriceID     string
	Quantity    int64
	Mode        string
	SuccessURL  string
	CancelURL   string
	ReferenceID string
}

// CardDetails holds the payment-method summary resolved for a subscription.
type CardDetails struct {
	Brand string
	Last4 string
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	EventID     string
	EventType   string
	PayloadJSON string
}

// CardCache memoizes payment-method card lookups across webhook redeliveries.
// Implementations must treat errors as misses and never fail the caller.
type CardCache interface {
	GetCard(ctx context.Context, paymentMethodID string) (brand string, last4 string, ok bool)
	SetCard(ctx context.Context, paymentMethodID, brand, last4 string)
}
