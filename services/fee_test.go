package services

import (
	"testing"

	"creator-platform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateForAmountDefaults(t *testing.T) {
	db := newTestDB(t)
	fee := NewFeeService(db)

	b := fee.CalculateForAmount(100, "creator-1")

	assert.InDelta(t, 100.0, b.AmountDT, 0.0001)
	assert.InDelta(t, 10.5, b.PlatformFeeDT, 0.0001) // 10% + 0.5 flat
	assert.InDelta(t, 89.5, b.CreatorNetDT, 0.0001)
	assert.InDelta(t, b.AmountDT, b.PlatformFeeDT+b.CreatorNetDT, 0.0001)
}

func TestCalculateForAmountCreatorOverride(t *testing.T) {
	db := newTestDB(t)
	fee := NewFeeService(db)

	require.NoError(t, db.Create(&models.CreatorFeeOverride{
		CreatorID: "vip-creator",
		Percent:   0.05,
		FixedDT:   0,
	}).Error)

	b := fee.CalculateForAmount(100, "vip-creator")
	assert.InDelta(t, 5.0, b.PlatformFeeDT, 0.0001)
	assert.InDelta(t, 95.0, b.CreatorNetDT, 0.0001)

	// Other creators still get the defaults.
	other := fee.CalculateForAmount(100, "regular-creator")
	assert.InDelta(t, 10.5, other.PlatformFeeDT, 0.0001)
}

func TestCalculateForAmountFeeClampedToGross(t *testing.T) {
	db := newTestDB(t)
	fee := NewFeeService(db)

	// 10% of 0.3 + 0.5 flat exceeds the gross; the creator nets zero, never
	// a negative amount.
	b := fee.CalculateForAmount(0.3, "creator-1")
	assert.InDelta(t, 0.3, b.PlatformFeeDT, 0.0001)
	assert.InDelta(t, 0.0, b.CreatorNetDT, 0.0001)
}

func TestCalculateForAmountMillimeRounding(t *testing.T) {
	db := newTestDB(t)
	fee := NewFeeService(db)

	// 10% of 19.999 = 1.9999 + 0.5 = 2.4999 -> 2.500 at millime precision.
	b := fee.CalculateForAmount(19.999, "creator-1")
	assert.InDelta(t, 2.5, b.PlatformFeeDT, 0.0001)
	assert.InDelta(t, 17.499, b.CreatorNetDT, 0.0001)
	assert.InDelta(t, b.AmountDT, b.PlatformFeeDT+b.CreatorNetDT, 0.0001)
}
