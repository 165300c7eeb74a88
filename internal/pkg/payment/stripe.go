package payment

import (
	"context"
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/paymentmethod"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Processor is the set of operations the service needs from the external
// payment processor. Tests inject a fake; production uses the stripe-go SDK
// via NewStripeProcessor.
type Processor interface {
	CreateCustomer(ctx context.Context, email, referenceID string) (string, error)
	DeleteCustomer(ctx context.Context, customerID string) error
	CreateCheckoutSession(ctx context.Context, p SessionParams) (*CheckoutSessionResult, error)
	GetCardDetails(ctx context.Context, paymentMethodID string) (CardDetails, error)
	VerifyWebhook(payload []byte, signatureHeader string) (*stripe.Event, error)
}

type stripeProcessor struct {
	webhookSecret string
}

// NewStripeProcessor configures the stripe-go SDK with the account secret key
// and returns a Processor bound to the given webhook signing secret.
func NewStripeProcessor(secretKey, webhookSecret string) Processor {
	stripe.Key = strings.TrimSpace(secretKey)
	return &stripeProcessor{webhookSecret: strings.TrimSpace(webhookSecret)}
}

func (p *stripeProcessor) CreateCustomer(ctx context.Context, email, referenceID string) (string, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	if email != "" {
		params.Email = stripe.String(email)
	}
	if referenceID != "" {
		params.AddMetadata("reference_id", referenceID)
	}

	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: create customer: %w", err)
	}
	return cust.ID, nil
}

func (p *stripeProcessor) DeleteCustomer(ctx context.Context, customerID string) error {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	if _, err := customer.Del(customerID, params); err != nil {
		return fmt.Errorf("stripe: delete customer %s: %w", customerID, err)
	}
	return nil
}

func (p *stripeProcessor) CreateCheckoutSession(ctx context.Context, sp SessionParams) (*CheckoutSessionResult, error) {
	quantity := sp.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	mode := stripe.CheckoutSessionModePayment
	if sp.Mode == ModeSubscription {
		mode = stripe.CheckoutSessionModeSubscription
	}

	params := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(sp.CustomerID),
		Mode:       stripe.String(string(mode)),
		SuccessURL: stripe.String(sp.SuccessURL),
		CancelURL:  stripe.String(sp.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(sp.PriceID),
				Quantity: stripe.Int64(quantity),
			},
		},
	}
	params.Context = ctx
	if sp.ReferenceID != "" {
		params.ClientReferenceID = stripe.String(sp.ReferenceID)
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return &CheckoutSessionResult{SessionID: sess.ID, URL: sess.URL}, nil
}

func (p *stripeProcessor) GetCardDetails(ctx context.Context, paymentMethodID string) (CardDetails, error) {
	params := &stripe.PaymentMethodParams{}
	params.Context = ctx

	pm, err := paymentmethod.Get(paymentMethodID, params)
	if err != nil {
		return CardDetails{}, fmt.Errorf("stripe: get payment method %s: %w", paymentMethodID, err)
	}
	if pm.Card == nil {
		return CardDetails{}, nil
	}
	return CardDetails{Brand: string(pm.Card.Brand), Last4: pm.Card.Last4}, nil
}

// VerifyWebhook authenticates the raw, unparsed body against the signature
// header. The bytes must be the verbatim request body; re-serialized JSON is
// not guaranteed byte-identical and would break the HMAC.
func (p *stripeProcessor) VerifyWebhook(payload []byte, signatureHeader string) (*stripe.Event, error) {
	if strings.TrimSpace(signatureHeader) == "" {
		return nil, ErrMissingSignature
	}

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return &event, nil
}
