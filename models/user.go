package models

import (
	"time"

	"gorm.io/gorm"
)

// SubscriptionTier is the platform-level plan a user is on.
type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierPro     SubscriptionTier = "pro"
	TierCreator SubscriptionTier = "creator"
)

// TierPrices maps paid tiers to their monthly price in DT.
var TierPrices = map[SubscriptionTier]float64{
	TierPro:     15,
	TierCreator: 45,
}

// User is the platform account. PasswordHash is bcrypt and never serialized.
type User struct {
	ID               string           `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	Email            string           `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash     string           `gorm:"not null" json:"-"`
	Name             string           `json:"name"`
	Role             string           `gorm:"type:varchar(16);default:'user'" json:"role"` // user, creator, admin
	TwoFactorEnabled bool             `gorm:"default:false" json:"two_factor_enabled"`
	SubscriptionTier SubscriptionTier `gorm:"type:varchar(16);default:'free'" json:"subscription_tier"`
	LastLoginAt      *time.Time       `json:"last_login_at,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
