package models

import "time"

// Subscription status values. SubscriptionStatusNotStarted marks the
// placeholder row written during checkout-session creation, before the first
// webhook for the subscription has arrived.
const (
	SubscriptionStatusNotStarted = "not_started"
	SubscriptionStatusActive     = "active"
	SubscriptionStatusTrialing   = "trialing"
	SubscriptionStatusPastDue    = "past_due"
	SubscriptionStatusCanceled   = "canceled"
	SubscriptionStatusIncomplete = "incomplete"
	SubscriptionStatusUnpaid     = "unpaid"
	SubscriptionStatusPaused     = "paused"
)

// Subscription mirrors the processor's subscription state for one Stripe
// customer. StripeCustomerID is the upsert key; webhook events for the same
// customer update the same row. Deletion events set DeletedAt and status
// canceled instead of removing the row.
type Subscription struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	StripeCustomerID   string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_subscriptions_stripe_customer" json:"stripe_customer_id"`
	SubscriptionID     string     `gorm:"type:varchar(191);default:'';index" json:"subscription_id"`
	PriceID            string     `gorm:"type:varchar(191);default:''" json:"price_id"`
	CurrentPeriodStart *time.Time `gorm:"type:timestamp;default:null" json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  bool       `gorm:"default:false" json:"cancel_at_period_end"`
	PaymentMethodBrand string     `gorm:"type:varchar(32);default:''" json:"payment_method_brand"`
	PaymentMethodLast4 string     `gorm:"type:varchar(4);default:''" json:"payment_method_last4"`
	Status             string     `gorm:"type:varchar(32);not null;default:'not_started';index" json:"status"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          *time.Time `gorm:"type:timestamp;default:null;index" json:"deleted_at,omitempty"`
}
