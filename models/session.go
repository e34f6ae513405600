package models

import "time"

// CoachingSession is a bookable 1:1 slot offered by a creator.
type CoachingSession struct {
	ID          string  `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	CreatorID   string  `gorm:"index;not null" json:"creator_id"`
	CommunityID string  `gorm:"index" json:"community_id"`
	Title       string  `gorm:"not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	PriceDT     float64 `gorm:"default:0" json:"price_dt"`
	DurationMin int     `gorm:"default:60" json:"duration_min"`

	Timestamps
}

// SessionBooking is one buyer's reservation, confirmed once the order settles.
type SessionBooking struct {
	ID          string     `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	SessionID   string     `gorm:"index;not null" json:"session_id"`
	UserID      string     `gorm:"index;not null" json:"user_id"`
	OrderID     string     `gorm:"index" json:"order_id"`
	Status      string     `gorm:"type:varchar(16);default:'pending'" json:"status"` // pending, confirmed, cancelled
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	BookedAt    time.Time  `gorm:"autoCreateTime" json:"booked_at"`
}
