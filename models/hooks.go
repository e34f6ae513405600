package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ensureID fills the uuid primary key app-side when the database default
// is unavailable (e.g. the sqlite driver used in tests).
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (m *User) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *Community) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *CommunityMember) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *Post) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *Course) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *Lesson) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *Enrollment) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *Challenge) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *ChallengeTask) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *ChallengeParticipant) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *Event) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *EventRegistration) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *Product) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *ProductPurchase) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *CoachingSession) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *SessionBooking) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *Order) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *PromoCode) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *CreatorFeeOverride) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *ContentProgress) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *TrackingAction) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *RevokedToken) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *AuthCode) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
func (m *WebhookEvent) BeforeCreate(_ *gorm.DB) error { ensureID(&m.ID); return nil }
