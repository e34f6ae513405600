package models

import "time"

// TokenType distinguishes revocation rows. TokenAll is the user-wide
// sentinel written by logout-all: it revokes every token of that user whose
// issued-at predates the row's CreatedAt.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
	TokenAll     TokenType = "all"
)

// RevokedToken is a denylist row. ExpiresAt matches the revoked token's own
// expiry so the cleanup job can drop rows that no longer matter.
type RevokedToken struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	JTI       string    `gorm:"index" json:"jti"` // empty for the "all" sentinel
	UserID    string    `gorm:"index;not null" json:"user_id"`
	TokenType TokenType `gorm:"type:varchar(8);not null" json:"token_type"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// CodePurpose scopes short-lived verification codes.
type CodePurpose string

const (
	PurposeTwoFactor     CodePurpose = "two_factor"
	PurposePasswordReset CodePurpose = "password_reset"
)

// AuthCode is a single-use 6-digit code for 2FA login or password reset.
// Consumed codes keep their row (ConsumedAt set) until the cleanup job
// removes them after expiry.
type AuthCode struct {
	ID         string      `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	UserID     string      `gorm:"index;not null" json:"user_id"`
	Code       string      `gorm:"index;not null" json:"-"`
	Purpose    CodePurpose `gorm:"type:varchar(16);not null" json:"purpose"`
	RememberMe bool        `gorm:"default:false" json:"remember_me"`
	ExpiresAt  time.Time   `gorm:"index;not null" json:"expires_at"`
	ConsumedAt *time.Time  `json:"consumed_at,omitempty"`
	CreatedAt  time.Time   `gorm:"autoCreateTime" json:"created_at"`
}
