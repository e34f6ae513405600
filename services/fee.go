// services/fee.go
package services

import (
	"creator-platform/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Platform defaults, applied unless the creator has a negotiated override.
const (
	DefaultPlatformPercent = 0.10 // 10% of gross
	DefaultPlatformFixedDT = 0.5  // flat per-order fee in DT
)

// FeeBreakdown is the platform/creator split for one gross amount.
// Invariant: AmountDT == PlatformFeeDT + CreatorNetDT, CreatorNetDT >= 0.
type FeeBreakdown struct {
	AmountDT        float64 `json:"amount_dt"`
	PlatformPercent float64 `json:"platform_percent"`
	PlatformFixedDT float64 `json:"platform_fixed_dt"`
	PlatformFeeDT   float64 `json:"platform_fee_dt"`
	CreatorNetDT    float64 `json:"creator_net_dt"`
}

type FeeService struct {
	DB *gorm.DB
}

func NewFeeService(db *gorm.DB) *FeeService {
	return &FeeService{DB: db}
}

// CalculateForAmount computes the fee split for a gross amount. Callers
// reject non-positive amounts before invoking; the engine itself only
// guarantees the split invariants. Amounts are rounded half-up to 3 decimals
// (TND millimes).
func (s *FeeService) CalculateForAmount(amount float64, creatorID string) FeeBreakdown {
	percent := DefaultPlatformPercent
	fixed := DefaultPlatformFixedDT

	var override models.CreatorFeeOverride
	if err := s.DB.Where("creator_id = ?", creatorID).First(&override).Error; err == nil {
		percent = override.Percent
		fixed = override.FixedDT
	}

	amt := roundDT(decimal.NewFromFloat(amount))
	fee := roundDT(amt.Mul(decimal.NewFromFloat(percent)).Add(decimal.NewFromFloat(fixed)))

	// The fee never exceeds the gross: small orders net the creator zero
	// rather than a negative amount.
	if fee.GreaterThan(amt) {
		fee = amt
	}
	net := amt.Sub(fee)

	return FeeBreakdown{
		AmountDT:        amt.InexactFloat64(),
		PlatformPercent: percent,
		PlatformFixedDT: fixed,
		PlatformFeeDT:   fee.InexactFloat64(),
		CreatorNetDT:    net.InexactFloat64(),
	}
}

// roundDT rounds half-up to millime precision.
func roundDT(d decimal.Decimal) decimal.Decimal {
	return d.Round(3)
}
