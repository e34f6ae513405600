package models

import "time"

// Event is a scheduled happening (workshop, meetup, webinar) sold by ticket.
type Event struct {
	ID           string     `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	CommunityID  string     `gorm:"index;not null" json:"community_id"`
	CreatorID    string     `gorm:"index;not null" json:"creator_id"`
	Title        string     `gorm:"not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	ThumbnailURL string     `gorm:"type:text" json:"thumbnail_url"`
	Location     string     `json:"location"`
	PriceDT      float64    `gorm:"default:0" json:"price_dt"`
	StartsAt     time.Time  `gorm:"not null;index" json:"starts_at"`
	EndsAt       *time.Time `json:"ends_at,omitempty"`
	MaxSeats     int        `gorm:"default:0" json:"max_seats"` // 0 = unlimited

	Registrations []EventRegistration `json:"registrations,omitempty" gorm:"foreignKey:EventID"`

	Timestamps
}

// EventRegistration is one attendee's ticket. Paid checkouts do not create
// registrations automatically: the ticket type is not carried on the Order,
// so the attendee (or creator) registers after payment.
type EventRegistration struct {
	ID           string    `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	EventID      string    `gorm:"uniqueIndex:ux_event_registration;not null" json:"event_id"`
	UserID       string    `gorm:"uniqueIndex:ux_event_registration;not null" json:"user_id"`
	TicketType   string    `gorm:"type:varchar(32);default:'standard'" json:"ticket_type"`
	RegisteredAt time.Time `gorm:"autoCreateTime" json:"registered_at"`
}
