package models

import "time"

// CustomerMapping links a local user to a Stripe customer identity. UserID is
// NULL for guest checkouts, so two concurrent guest purchases may legally hold
// two distinct rows. Rows are soft-deleted via DeletedAt to keep the audit
// history; for a given user at most one row with deleted_at IS NULL exists.
type CustomerMapping struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           *uint      `gorm:"index" json:"user_id,omitempty"`
	StripeCustomerID string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_customer_mappings_stripe_customer" json:"stripe_customer_id"`
	Email            string     `gorm:"type:varchar(200);default:''" json:"email"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        *time.Time `gorm:"type:timestamp;default:null;index" json:"deleted_at,omitempty"`
}
