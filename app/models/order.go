package models

import "time"

// Order payment status values as reported by the processor.
const (
	OrderPaymentStatusUnpaid            = "unpaid"
	OrderPaymentStatusPaid              = "paid"
	OrderPaymentStatusNoPaymentRequired = "no_payment_required"
)

// Order fulfillment status values.
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCanceled  = "canceled"
)

// Order records one completed checkout session. CheckoutSessionID is the
// natural key: webhook redelivery of the same completion event must not
// create a second row, which the unique index enforces.
type Order struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	CheckoutSessionID string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_orders_checkout_session" json:"checkout_session_id"`
	PaymentIntentID   string    `gorm:"type:varchar(191);default:''" json:"payment_intent_id"`
	StripeCustomerID  string    `gorm:"type:varchar(191);not null;index" json:"stripe_customer_id"`
	AmountSubtotal    int64     `gorm:"not null;default:0" json:"amount_subtotal"`
	AmountTotal       int64     `gorm:"not null;default:0" json:"amount_total"`
	Currency          string    `gorm:"type:varchar(3);not null;default:''" json:"currency"`
	PaymentStatus     string    `gorm:"type:varchar(32);not null;default:'unpaid'" json:"payment_status"`
	Status            string    `gorm:"type:varchar(32);not null;default:'pending'" json:"status"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
