package models

import "time"

// WebhookEvent stores signature-verified processor events with processing
// metadata. The unique event ID lets redeliveries of an already processed
// event short-circuit; the actual reconciliation writes stay idempotent on
// their own natural keys regardless.
type WebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	EventID         string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_webhook_events_event" json:"event_id"`
	EventType       string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payload_json"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Processed reports whether the event already ran to completion without error.
func (e *WebhookEvent) Processed() bool {
	return e != nil && e.ProcessedAt != nil && e.ProcessingError == ""
}
