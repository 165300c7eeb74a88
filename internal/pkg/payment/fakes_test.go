package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/JonasWeber/CheckFlow/app/models"
	stripe "github.com/stripe/stripe-go/v82"
	"gorm.io/gorm"
)

// fakeRepo is an in-memory Repository with the same conflict semantics as
// the GORM implementation.
type fakeRepo struct {
	mu       sync.Mutex
	nextID   uint
	mappings []*models.CustomerMapping
	orders   map[string]*models.Order
	subs     map[string]*models.Subscription
	events   map[string]*models.WebhookEvent

	failCreateMapping error
	failPlaceholder   error
	softDeletedIDs    []uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders: make(map[string]*models.Order),
		subs:   make(map[string]*models.Subscription),
		events: make(map[string]*models.WebhookEvent),
	}
}

func (r *fakeRepo) id() uint {
	r.nextID++
	return r.nextID
}

func (r *fakeRepo) FindActiveMappingByUser(userID uint) (*models.CustomerMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.mappings) - 1; i >= 0; i-- {
		m := r.mappings[i]
		if m.UserID != nil && *m.UserID == userID && m.DeletedAt == nil {
			cp := *m
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) CreateMapping(m *models.CustomerMapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreateMapping != nil {
		return r.failCreateMapping
	}
	m.ID = r.id()
	cp := *m
	r.mappings = append(r.mappings, &cp)
	return nil
}

func (r *fakeRepo) SoftDeleteMapping(id uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.softDeletedIDs = append(r.softDeletedIDs, id)
	for _, m := range r.mappings {
		if m.ID == id {
			t := at
			m.DeletedAt = &t
		}
	}
	return nil
}

func (r *fakeRepo) UpsertOrderBySession(o *models.Order) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.orders[o.CheckoutSessionID]; ok {
		*o = *existing
		return false, nil
	}
	o.ID = r.id()
	cp := *o
	r.orders[o.CheckoutSessionID] = &cp
	return true, nil
}

func (r *fakeRepo) CreateSubscriptionPlaceholder(sub *models.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failPlaceholder != nil {
		return r.failPlaceholder
	}
	if _, ok := r.subs[sub.StripeCustomerID]; ok {
		return nil
	}
	sub.ID = r.id()
	cp := *sub
	r.subs[sub.StripeCustomerID] = &cp
	return nil
}

func (r *fakeRepo) UpsertSubscriptionByCustomer(sub *models.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.subs[sub.StripeCustomerID]; ok {
		sub.ID = existing.ID
		sub.CreatedAt = existing.CreatedAt
	} else {
		sub.ID = r.id()
	}
	cp := *sub
	r.subs[sub.StripeCustomerID] = &cp
	return nil
}

func (r *fakeRepo) SoftDeleteSubscriptionByCustomer(stripeCustomerID string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[stripeCustomerID]
	if !ok {
		return 0, nil
	}
	t := at
	sub.DeletedAt = &t
	sub.Status = models.SubscriptionStatusCanceled
	return 1, nil
}

func (r *fakeRepo) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.events[event.EventID]; ok {
		cp := *existing
		return false, &cp, nil
	}
	event.ID = r.id()
	cp := *event
	r.events[event.EventID] = &cp
	stored := cp
	return true, &stored, nil
}

func (r *fakeRepo) MarkWebhookProcessed(id uint, processingError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ID == id {
			now := time.Now()
			e.ProcessedAt = &now
			e.ProcessingError = processingError
		}
	}
	return nil
}

func (r *fakeRepo) mappingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.mappings)
}

func (r *fakeRepo) subscription(customerID string) *models.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sub, ok := r.subs[customerID]; ok {
		cp := *sub
		return &cp
	}
	return nil
}

// fakeProcessor records processor calls and returns canned results.
type fakeProcessor struct {
	mu               sync.Mutex
	customerSeq      int
	createdCustomers []string
	deletedCustomers []string
	sessions         []SessionParams

	failCreateCustomer error
	failSession        error
	deleteErr          error

	card      CardDetails
	cardErr   error
	cardCalls int

	onCreateSession func(SessionParams)
}

func (p *fakeProcessor) CreateCustomer(ctx context.Context, email, referenceID string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failCreateCustomer != nil {
		return "", p.failCreateCustomer
	}
	p.customerSeq++
	id := fmt.Sprintf("cus_%03d", p.customerSeq)
	p.createdCustomers = append(p.createdCustomers, id)
	return id, nil
}

func (p *fakeProcessor) DeleteCustomer(ctx context.Context, customerID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deletedCustomers = append(p.deletedCustomers, customerID)
	return p.deleteErr
}

func (p *fakeProcessor) CreateCheckoutSession(ctx context.Context, sp SessionParams) (*CheckoutSessionResult, error) {
	p.mu.Lock()
	hook := p.onCreateSession
	p.mu.Unlock()
	if hook != nil {
		hook(sp)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failSession != nil {
		return nil, p.failSession
	}
	p.sessions = append(p.sessions, sp)
	return &CheckoutSessionResult{
		SessionID: fmt.Sprintf("cs_test_%03d", len(p.sessions)),
		URL:       "https://checkout.stripe.com/c/pay/cs_test",
	}, nil
}

func (p *fakeProcessor) GetCardDetails(ctx context.Context, paymentMethodID string) (CardDetails, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cardCalls++
	if p.cardErr != nil {
		return CardDetails{}, p.cardErr
	}
	return p.card, nil
}

func (p *fakeProcessor) VerifyWebhook(payload []byte, signatureHeader string) (*stripe.Event, error) {
	return nil, errors.New("not implemented in fake")
}

// fakeCardCache is an in-memory CardCache.
type fakeCardCache struct {
	mu    sync.Mutex
	cards map[string]CardDetails
	hits  int
}

func newFakeCardCache() *fakeCardCache {
	return &fakeCardCache{cards: make(map[string]CardDetails)}
}

func (c *fakeCardCache) GetCard(ctx context.Context, paymentMethodID string) (string, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	card, ok := c.cards[paymentMethodID]
	if ok {
		c.hits++
	}
	return card.Brand, card.Last4, ok
}

func (c *fakeCardCache) SetCard(ctx context.Context, paymentMethodID, brand, last4 string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cards[paymentMethodID] = CardDetails{Brand: brand, Last4: last4}
}
