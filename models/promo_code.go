package models

import "time"

// PromoCode is a reusable discount rule. Codes are stored uppercase and
// matched case-insensitively. Percent and fixed discounts stack when both
// are set.
type PromoCode struct {
	ID          string   `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	Code        string   `gorm:"uniqueIndex;not null" json:"code"`
	PercentOff  float64  `gorm:"default:0" json:"percent_off"`
	AmountOffDT float64  `gorm:"default:0" json:"amount_off_dt"`

	// Optional scoping: restrict to one content type and/or one item.
	AppliesToType *ContentType `gorm:"type:varchar(16)" json:"applies_to_type,omitempty"`
	AppliesToID   *string      `json:"applies_to_id,omitempty"`

	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`

	MaxRedemptions   *int `json:"max_redemptions,omitempty"`
	RedemptionsCount int  `gorm:"default:0" json:"redemptions_count"`

	IsActive      bool     `gorm:"default:true" json:"is_active"`
	AllowedEmails []string `gorm:"serializer:json" json:"allowed_emails,omitempty"`

	Timestamps
}

// CreatorFeeOverride holds a negotiated platform rate for one creator.
// Absent rows fall back to the platform defaults.
type CreatorFeeOverride struct {
	ID        string  `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	CreatorID string  `gorm:"uniqueIndex;not null" json:"creator_id"`
	Percent   float64 `json:"percent"`
	FixedDT   float64 `json:"fixed_dt"`

	Timestamps
}
