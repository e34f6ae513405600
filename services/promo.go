// services/promo.go
package services

import (
	"errors"
	"strings"
	"time"

	"creator-platform/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PromoResult reports discount eligibility and the applied amounts. An
// absent or ineligible code is NOT an error: Valid is false, Reason says
// why, and FinalAmountDT equals the original amount.
type PromoResult struct {
	Valid            bool    `json:"valid"`
	Reason           string  `json:"reason,omitempty"`
	OriginalAmountDT float64 `json:"original_amount_dt"`
	DiscountDT       float64 `json:"discount_dt"`
	FinalAmountDT    float64 `json:"final_amount_dt"`
	AppliedCode      string  `json:"applied_code,omitempty"`
}

type PromoService struct {
	DB *gorm.DB
}

func NewPromoService(db *gorm.DB) *PromoService {
	return &PromoService{DB: db}
}

// ValidateAndApply checks a code against all validity predicates and
// computes the discounted amount. Read-only: redemption counting happens on
// settlement (see PaymentService.settleOrder), not here.
func (s *PromoService) ValidateAndApply(code string, amountDT float64, contentType models.ContentType, contentID, buyerEmail string) PromoResult {
	unchanged := PromoResult{
		Valid:            false,
		OriginalAmountDT: amountDT,
		DiscountDT:       0,
		FinalAmountDT:    amountDT,
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		unchanged.Reason = "no promo code supplied"
		return unchanged
	}

	var promo models.PromoCode
	if err := s.DB.Where("code = ?", code).First(&promo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			unchanged.Reason = "promo code not found"
		} else {
			unchanged.Reason = "promo lookup failed"
		}
		return unchanged
	}

	now := time.Now()
	switch {
	case !promo.IsActive:
		unchanged.Reason = "promo code is not active"
	case promo.StartsAt != nil && now.Before(*promo.StartsAt):
		unchanged.Reason = "promo code is not valid yet"
	case promo.EndsAt != nil && now.After(*promo.EndsAt):
		unchanged.Reason = "promo code has expired"
	case promo.MaxRedemptions != nil && promo.RedemptionsCount >= *promo.MaxRedemptions:
		unchanged.Reason = "promo code redemption limit reached"
	case len(promo.AllowedEmails) > 0 && !emailAllowed(promo.AllowedEmails, buyerEmail):
		unchanged.Reason = "promo code is not available for this account"
	case promo.AppliesToType != nil && *promo.AppliesToType != contentType:
		unchanged.Reason = "promo code does not apply to this content type"
	case promo.AppliesToID != nil && *promo.AppliesToID != contentID:
		unchanged.Reason = "promo code does not apply to this item"
	}
	if unchanged.Reason != "" {
		return unchanged
	}

	amount := decimal.NewFromFloat(amountDT)
	discount := roundDT(amount.Mul(decimal.NewFromFloat(promo.PercentOff)).Div(decimal.NewFromInt(100)).
		Add(decimal.NewFromFloat(promo.AmountOffDT)))
	if discount.GreaterThan(amount) {
		discount = amount
	}
	final := amount.Sub(discount)

	return PromoResult{
		Valid:            true,
		OriginalAmountDT: amountDT,
		DiscountDT:       discount.InexactFloat64(),
		FinalAmountDT:    final.InexactFloat64(),
		AppliedCode:      promo.Code,
	}
}

// RedeemOnce atomically counts one redemption, respecting the cap. Returns
// true when the increment happened.
func (s *PromoService) RedeemOnce(code string) (bool, error) {
	res := s.DB.Model(&models.PromoCode{}).
		Where("code = ?", strings.ToUpper(code)).
		Where("max_redemptions IS NULL OR redemptions_count < max_redemptions").
		UpdateColumn("redemptions_count", gorm.Expr("redemptions_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func emailAllowed(allowed []string, email string) bool {
	if email == "" {
		return false
	}
	for _, a := range allowed {
		if strings.EqualFold(a, email) {
			return true
		}
	}
	return false
}
