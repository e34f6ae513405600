package models

import "time"

// WebhookEvent stores provider webhook payloads with deduplication metadata
// for idempotent processing. The unique (provider, provider_event_id) pair
// makes redelivery an upsert, and the retry worker re-runs rows that failed
// processing.
type WebhookEvent struct {
	ID              string     `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	Provider        string     `gorm:"type:varchar(20);not null;uniqueIndex:ux_webhook_provider_event" json:"provider"`
	ProviderEventID string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_webhook_provider_event" json:"provider_event_id"`
	EventType       string     `gorm:"type:varchar(64)" json:"event_type"`
	Payload         string     `gorm:"type:text;not null" json:"payload"`
	SignatureValid  bool       `gorm:"default:false" json:"signature_valid"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	Attempts        int        `gorm:"default:0" json:"attempts"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
