package payment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/JonasWeber/CheckFlow/app/models"
	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

// Service ties the price catalog, the external processor and the local store
// together. It owns all writes to customer_mappings, orders and
// subscriptions; nothing else in the application mutates those tables.
type Service struct {
	repo      Repository
	processor Processor
	catalog   *Catalog
	cards     CardCache
}

// NewService creates a payment service from injected collaborators. cards may
// be nil, in which case payment-method lookups always hit the processor.
func NewService(repo Repository, processor Processor, catalog *Catalog, cards CardCache) *Service {
	return &Service{repo: repo, processor: processor, catalog: catalog, cards: cards}
}

// NewServiceFromDB creates a payment service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, processor Processor, catalog *Catalog, cards CardCache) *Service {
	return NewService(NewRepository(db), processor, catalog, cards)
}

// CreateCheckoutSession validates the request, resolves the buyer's
// processor identity and opens a hosted checkout session, returning its
// redirect URL. In subscription mode a placeholder subscription row is
// written before the session is requested, so the reconciler always has a
// row to upsert into when the first webhook arrives.
func (s *Service) CreateCheckoutSession(ctx context.Context, req CreateCheckoutSessionRequest, caller *Caller) (*CheckoutSessionResult, error) {
	if err := ValidateCheckoutParams(req); err != nil {
		return nil, err
	}
	if _, err := s.catalog.Lookup(req.PriceID); err != nil {
		return nil, err
	}

	mapping, minted, err := s.resolveCustomer(ctx, caller)
	if err != nil {
		return nil, err
	}

	if req.Mode == ModeSubscription {
		placeholder := &models.Subscription{
			StripeCustomerID: mapping.StripeCustomerID,
			PriceID:          req.PriceID,
			Status:           models.SubscriptionStatusNotStarted,
		}
		if err := s.repo.CreateSubscriptionPlaceholder(placeholder); err != nil {
			s.compensateMint(ctx, mapping, minted)
			return nil, fmt.Errorf("create subscription placeholder: %w", err)
		}
	}

	result, err := s.processor.CreateCheckoutSession(ctx, SessionParams{
		CustomerID:  mapping.StripeCustomerID,
		PriceID:     req.PriceID,
		Quantity:    1,
		Mode:        req.Mode,
		SuccessURL:  req.SuccessURL,
		CancelURL:   req.CancelURL,
		ReferenceID: referenceID(caller),
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// resolveCustomer establishes the processor customer identity for a checkout
// attempt.
//
// Identity policy: authenticated callers reuse their existing non-deleted
// mapping and only mint when none exists; guest callers mint a fresh
// customer per purchase. Two concurrent guest requests therefore create two
// independent mappings, which is deliberate and harmless.
func (s *Service) resolveCustomer(ctx context.Context, caller *Caller) (*models.CustomerMapping, bool, error) {
	var (
		userID *uint
		email  string
	)
	if caller != nil {
		existing, err := s.repo.FindActiveMappingByUser(caller.UserID)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
		uid := caller.UserID
		userID = &uid
		email = caller.Email
	}

	customerID, err := s.processor.CreateCustomer(ctx, email, referenceID(caller))
	if err != nil {
		return nil, false, err
	}

	mapping := &models.CustomerMapping{
		UserID:           userID,
		StripeCustomerID: customerID,
		Email:            email,
	}
	if err := s.repo.CreateMapping(mapping); err != nil {
		// The remote identity exists but the mapping write failed. Undo the
		// mint best-effort; its own failure is logged, not returned, so the
		// root cause stays visible.
		if delErr := s.processor.DeleteCustomer(ctx, customerID); delErr != nil {
			log.Printf("payment: compensating delete of customer %s failed: %v", customerID, delErr)
		}
		return nil, false, err
	}
	return mapping, true, nil
}

// compensateMint undoes a freshly minted customer identity after a later
// local step failed. Reused mappings are left untouched.
func (s *Service) compensateMint(ctx context.Context, mapping *models.CustomerMapping, minted bool) {
	if !minted || mapping == nil {
		return
	}
	if err := s.repo.SoftDeleteMapping(mapping.ID, time.Now()); err != nil {
		log.Printf("payment: soft delete of mapping %d failed: %v", mapping.ID, err)
	}
	if err := s.processor.DeleteCustomer(ctx, mapping.StripeCustomerID); err != nil {
		log.Printf("payment: compensating delete of customer %s failed: %v", mapping.StripeCustomerID, err)
	}
}

func referenceID(caller *Caller) string {
	if caller != nil {
		return fmt.Sprintf("user:%d", caller.UserID)
	}
	return "guest:" + uuid.NewString()
}

// VerifyWebhook authenticates raw webhook bytes against the signature
// header via the processor's shared secret.
func (s *Service) VerifyWebhook(payload []byte, signatureHeader string) (*stripe.Event, error) {
	return s.processor.VerifyWebhook(payload, signatureHeader)
}

// RecordWebhookEvent persists a verified webhook event idempotently. The
// returned bool reports whether this delivery is the first one seen.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.WebhookEvent, error) {
	_ = ctx
	eventID := strings.TrimSpace(in.EventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.WebhookEvent{
		EventID:     eventID,
		EventType:   strings.TrimSpace(in.EventType),
		PayloadJSON: in.PayloadJSON,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}
