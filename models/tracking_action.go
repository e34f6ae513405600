package models

import "time"

// ActionType names one tracked user interaction.
type ActionType string

const (
	ActionView      ActionType = "view"
	ActionLike      ActionType = "like"
	ActionShare     ActionType = "share"
	ActionDownload  ActionType = "download"
	ActionBookmark  ActionType = "bookmark"
	ActionWatchTime ActionType = "watch_time"
	ActionComplete  ActionType = "complete"
	ActionRate      ActionType = "rate"
	ActionStart     ActionType = "start"
)

// TrackingAction is an append-only event log entry. Rows are never updated
// or deleted by this subsystem; they back "recent actions" and analytics.
type TrackingAction struct {
	ID          string                 `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	UserID      string                 `gorm:"index;not null" json:"user_id"`
	ContentType ContentType            `gorm:"type:varchar(16);not null" json:"content_type"`
	ContentID   string                 `gorm:"index;not null" json:"content_id"`
	ActionType  ActionType             `gorm:"type:varchar(16);not null" json:"action_type"`
	Metadata    map[string]interface{} `gorm:"serializer:json" json:"metadata,omitempty"`
	CreatedAt   time.Time              `gorm:"autoCreateTime;index" json:"created_at"`
}
