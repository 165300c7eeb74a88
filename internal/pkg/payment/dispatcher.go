package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/JonasWeber/CheckFlow/app/models"
	stripe "github.com/stripe/stripe-go/v82"
)

// HandleEvent routes one verified event to its reconciliation handler. The
// event set is closed: anything outside it is acknowledged as a no-op so the
// sender stops redelivering. Every handler is idempotent because delivery is
// at-least-once and may arrive out of order; conflicting writes resolve as
// last write wins by receipt time.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil {
		return errors.New("event is required")
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("decode checkout session payload: %w", err)
		}
		return s.completeOrder(ctx, &sess)

	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription payload: %w", err)
		}
		return s.syncSubscription(ctx, &sub)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription payload: %w", err)
		}
		return s.removeSubscription(ctx, &sub)

	default:
		return nil
	}
}

// completeOrder records the order for a completed checkout session. The
// unique checkout_session_id makes redelivery a no-op. Subscription-mode
// sessions get their subscription state from the subscription events, not
// from here.
func (s *Service) completeOrder(ctx context.Context, sess *stripe.CheckoutSession) error {
	_ = ctx
	if sess.ID == "" {
		return errors.New("checkout session id is required")
	}

	order := &models.Order{
		CheckoutSessionID: sess.ID,
		StripeCustomerID:  customerRefID(sess.Customer),
		AmountSubtotal:    sess.AmountSubtotal,
		AmountTotal:       sess.AmountTotal,
		Currency:          string(sess.Currency),
		PaymentStatus:     string(sess.PaymentStatus),
		Status:            models.OrderStatusCompleted,
	}
	if sess.PaymentIntent != nil {
		order.PaymentIntentID = sess.PaymentIntent.ID
	}

	created, err := s.repo.UpsertOrderBySession(order)
	if err != nil {
		return fmt.Errorf("upsert order for session %s: %w", sess.ID, err)
	}
	if !created {
		log.Printf("payment: order for session %s already recorded", sess.ID)
	}
	return nil
}

// syncSubscription upserts the customer's subscription row from a created or
// updated event. The card brand/last4 lookup is secondary: its failure is
// logged and the upsert proceeds with empty payment-method fields.
func (s *Service) syncSubscription(ctx context.Context, sub *stripe.Subscription) error {
	custID := customerRefID(sub.Customer)
	if custID == "" {
		return errors.New("subscription customer id is required")
	}

	row := &models.Subscription{
		StripeCustomerID:  custID,
		SubscriptionID:    sub.ID,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		Status:            string(sub.Status),
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if item.Price != nil {
			row.PriceID = item.Price.ID
		}
		if item.CurrentPeriodStart > 0 {
			t := time.Unix(item.CurrentPeriodStart, 0).UTC()
			row.CurrentPeriodStart = &t
		}
		if item.CurrentPeriodEnd > 0 {
			t := time.Unix(item.CurrentPeriodEnd, 0).UTC()
			row.CurrentPeriodEnd = &t
		}
	}

	if sub.DefaultPaymentMethod != nil && sub.DefaultPaymentMethod.ID != "" {
		card, err := s.lookupCard(ctx, sub.DefaultPaymentMethod.ID)
		if err != nil {
			log.Printf("payment: card lookup for %s failed: %v", sub.DefaultPaymentMethod.ID, err)
		} else {
			row.PaymentMethodBrand = card.Brand
			row.PaymentMethodLast4 = card.Last4
		}
	}

	if err := s.repo.UpsertSubscriptionByCustomer(row); err != nil {
		return fmt.Errorf("upsert subscription for customer %s: %w", custID, err)
	}
	return nil
}

// removeSubscription soft-deletes the customer's subscription. No matching
// row means the deletion was already reconciled, which is not an error.
func (s *Service) removeSubscription(ctx context.Context, sub *stripe.Subscription) error {
	_ = ctx
	custID := customerRefID(sub.Customer)
	if custID == "" {
		return errors.New("subscription customer id is required")
	}

	matched, err := s.repo.SoftDeleteSubscriptionByCustomer(custID, time.Now())
	if err != nil {
		return fmt.Errorf("soft delete subscription for customer %s: %w", custID, err)
	}
	if matched == 0 {
		log.Printf("payment: subscription for customer %s already removed", custID)
	}
	return nil
}

// lookupCard resolves card brand/last4 for a payment method, memoized in the
// card cache when one is configured.
func (s *Service) lookupCard(ctx context.Context, paymentMethodID string) (CardDetails, error) {
	if s.cards != nil {
		if brand, last4, ok := s.cards.GetCard(ctx, paymentMethodID); ok {
			return CardDetails{Brand: brand, Last4: last4}, nil
		}
	}

	card, err := s.processor.GetCardDetails(ctx, paymentMethodID)
	if err != nil {
		return CardDetails{}, err
	}
	if s.cards != nil && (card.Brand != "" || card.Last4 != "") {
		s.cards.SetCard(ctx, paymentMethodID, card.Brand, card.Last4)
	}
	return card, nil
}

func customerRefID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}
