package payment

import (
	"time"

	"github.com/JonasWeber/CheckFlow/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the payment service. All
// reconciliation writes are upserts keyed by a natural unique index, so they
// are safe under concurrent at-least-once webhook delivery.
type Repository interface {
	FindActiveMappingByUser(userID uint) (*models.CustomerMapping, error)
	CreateMapping(m *models.CustomerMapping) error
	SoftDeleteMapping(id uint, at time.Time) error
	UpsertOrderBySession(o *models.Order) (bool, error)
	CreateSubscriptionPlaceholder(sub *models.Subscription) error
	UpsertSubscriptionByCustomer(sub *models.Subscription) error
	SoftDeleteSubscriptionByCustomer(stripeCustomerID string, at time.Time) (int64, error)
	CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payment repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindActiveMappingByUser(userID uint) (*models.CustomerMapping, error) {
	var m models.CustomerMapping
	err := r.db.
		Where("user_id = ? AND deleted_at IS NULL", userID).
		Order("id DESC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormRepository) CreateMapping(m *models.CustomerMapping) error {
	return r.db.Create(m).Error
}

func (r *gormRepository) SoftDeleteMapping(id uint, at time.Time) error {
	return r.db.Model(&models.CustomerMapping{}).
		Where("id = ?", id).
		Update("deleted_at", &at).Error
}

// UpsertOrderBySession inserts an order and reports whether a new row was
// created. Redelivery of the same checkout session is a no-op because the
// conflict target is the unique checkout_session_id index.
func (r *gormRepository) UpsertOrderBySession(o *models.Order) (bool, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "checkout_session_id"}},
		DoNothing: true,
	}).Create(o)
	if tx.Error != nil {
		return false, tx.Error
	}

	created := tx.RowsAffected > 0
	if err := r.db.Where("checkout_session_id = ?", o.CheckoutSessionID).
		First(o).Error; err != nil {
		return false, err
	}
	return created, nil
}

// CreateSubscriptionPlaceholder writes the not_started row during checkout
// creation. A concurrent webhook may already have upserted the customer's
// row, in which case this is a no-op rather than an error.
func (r *gormRepository) CreateSubscriptionPlaceholder(sub *models.Subscription) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_customer_id"}},
		DoNothing: true,
	}).Create(sub).Error
}

func (r *gormRepository) UpsertSubscriptionByCustomer(sub *models.Subscription) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "stripe_customer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"subscription_id",
			"price_id",
			"current_period_start",
			"current_period_end",
			"cancel_at_period_end",
			"payment_method_brand",
			"payment_method_last4",
			"status",
			"deleted_at",
			"updated_at",
		}),
	}).Create(sub).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("stripe_customer_id = ?", sub.StripeCustomerID).
		First(sub).Error
}

// SoftDeleteSubscriptionByCustomer marks the customer's subscription canceled
// and returns the number of matched rows. Zero rows means the deletion was
// already reconciled.
func (r *gormRepository) SoftDeleteSubscriptionByCustomer(stripeCustomerID string, at time.Time) (int64, error) {
	tx := r.db.Model(&models.Subscription{}).
		Where("stripe_customer_id = ?", stripeCustomerID).
		Updates(map[string]interface{}{
			"status":     models.SubscriptionStatusCanceled,
			"deleted_at": &at,
		})
	return tx.RowsAffected, tx.Error
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookEvent
	if err := r.db.Where("event_id = ?", event.EventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
