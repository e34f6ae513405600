package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"creator-platform/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPrepareOrderCourse(t *testing.T) {
	db := newTestDB(t)
	payments := newTestPaymentService(db)

	creator := seedUser(t, db, "creator@test.tn")
	buyer := seedUser(t, db, "buyer@test.tn")
	community := seedCommunity(t, db, creator.ID, 0)
	course := seedCourse(t, db, community.ID, creator.ID, 100)

	order, item, ferr := payments.prepareOrder(buyer.ID, buyer.Email, models.ContentCourse, course.ID, "", "offline")
	require.Nil(t, ferr)

	require.NotNil(t, item)
	assert.Equal(t, course.Title, item.Label)
	assert.Equal(t, creator.ID, item.CreatorID)

	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, creator.ID, order.CreatorID)
	assert.InDelta(t, 100.0, order.AmountDT, 0.0001)
	assert.InDelta(t, 10.5, order.PlatformFeeDT, 0.0001)
	assert.InDelta(t, 89.5, order.CreatorNetDT, 0.0001)
	assert.Nil(t, order.PromoCode)
}

func TestPrepareOrderWithPromo(t *testing.T) {
	db := newTestDB(t)
	payments := newTestPaymentService(db)

	creator := seedUser(t, db, "creator@test.tn")
	buyer := seedUser(t, db, "buyer@test.tn")
	community := seedCommunity(t, db, creator.ID, 0)
	course := seedCourse(t, db, community.ID, creator.ID, 100)

	require.NoError(t, db.Create(&models.PromoCode{Code: "LAUNCH20", PercentOff: 20, IsActive: true}).Error)

	order, _, ferr := payments.prepareOrder(buyer.ID, buyer.Email, models.ContentCourse, course.ID, "LAUNCH20", "offline")
	require.Nil(t, ferr)

	// Fees apply to the discounted amount.
	assert.InDelta(t, 80.0, order.AmountDT, 0.0001)
	assert.InDelta(t, 20.0, order.DiscountDT, 0.0001)
	assert.InDelta(t, 8.5, order.PlatformFeeDT, 0.0001)
	assert.InDelta(t, 71.5, order.CreatorNetDT, 0.0001)
	require.NotNil(t, order.PromoCode)
	assert.Equal(t, "LAUNCH20", *order.PromoCode)
}

func TestPrepareOrderInvalidPromoIgnored(t *testing.T) {
	db := newTestDB(t)
	payments := newTestPaymentService(db)

	creator := seedUser(t, db, "creator@test.tn")
	buyer := seedUser(t, db, "buyer@test.tn")
	community := seedCommunity(t, db, creator.ID, 0)
	course := seedCourse(t, db, community.ID, creator.ID, 100)

	order, _, ferr := payments.prepareOrder(buyer.ID, buyer.Email, models.ContentCourse, course.ID, "NOSUCHCODE", "offline")
	require.Nil(t, ferr)

	assert.InDelta(t, 100.0, order.AmountDT, 0.0001)
	assert.Zero(t, order.DiscountDT)
	assert.Nil(t, order.PromoCode)
}

func TestPrepareOrderFreeItemRejected(t *testing.T) {
	db := newTestDB(t)
	payments := newTestPaymentService(db)

	creator := seedUser(t, db, "creator@test.tn")
	buyer := seedUser(t, db, "buyer@test.tn")
	community := seedCommunity(t, db, creator.ID, 0)
	course := seedCourse(t, db, community.ID, creator.ID, 0)

	_, _, ferr := payments.prepareOrder(buyer.ID, buyer.Email, models.ContentCourse, course.ID, "", "offline")
	require.NotNil(t, ferr)
	assert.Equal(t, 400, ferr.Code)
}

func TestPrepareOrderUnknownItem(t *testing.T) {
	db := newTestDB(t)
	payments := newTestPaymentService(db)
	buyer := seedUser(t, db, "buyer@test.tn")

	_, _, ferr := payments.prepareOrder(buyer.ID, buyer.Email, models.ContentCourse, "missing-id", "", "offline")
	require.NotNil(t, ferr)
	assert.Equal(t, 404, ferr.Code)

	_, _, ferr = payments.prepareOrder(buyer.ID, buyer.Email, models.ContentType("garbage"), "x", "", "offline")
	require.NotNil(t, ferr)
	assert.Equal(t, 400, ferr.Code)
}

func TestSettleOrderGrantsCourseAccess(t *testing.T) {
	db := newTestDB(t)
	payments := newTestPaymentService(db)

	creator := seedUser(t, db, "creator@test.tn")
	buyer := seedUser(t, db, "buyer@test.tn")
	community := seedCommunity(t, db, creator.ID, 0)
	course := seedCourse(t, db, community.ID, creator.ID, 100)

	order, _, ferr := payments.prepareOrder(buyer.ID, buyer.Email, models.ContentCourse, course.ID, "", "offline")
	require.Nil(t, ferr)

	require.NoError(t, payments.settleOrder(order, "offline", ""))
	assert.Equal(t, models.OrderPaid, order.Status)

	var stored models.Order
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, models.OrderPaid, stored.Status)

	enrolled, err := payments.Courses.IsEnrolled(course.ID, buyer.ID)
	require.NoError(t, err)
	assert.True(t, enrolled)
}

func TestSettleOrderIdempotent(t *testing.T) {
	db := newTestDB(t)
	payments := newTestPaymentService(db)

	creator := seedUser(t, db, "creator@test.tn")
	buyer := seedUser(t, db, "buyer@test.tn")
	community := seedCommunity(t, db, creator.ID, 0)
	course := seedCourse(t, db, community.ID, creator.ID, 100)

	require.NoError(t, db.Create(&models.PromoCode{Code: "ONCE", PercentOff: 10, IsActive: true}).Error)

	order, _, ferr := payments.prepareOrder(buyer.ID, buyer.Email, models.ContentCourse, course.ID, "ONCE", "offline")
	require.Nil(t, ferr)

	// Settle twice: webhook delivery and client polling race here.
	require.NoError(t, payments.settleOrder(order, "offline", ""))
	require.NoError(t, payments.settleOrder(order, "offline", ""))

	var promo models.PromoCode
	require.NoError(t, db.Where("code = ?", "ONCE").First(&promo).Error)
	assert.Equal(t, 1, promo.RedemptionsCount)

	var enrollments int64
	require.NoError(t, db.Model(&models.Enrollment{}).
		Where("course_id = ? AND user_id = ?", course.ID, buyer.ID).
		Count(&enrollments).Error)
	assert.Equal(t, int64(1), enrollments)
}

func TestSettleOrderSubscriptionUpgradesTier(t *testing.T) {
	db := newTestDB(t)
	payments := newTestPaymentService(db)
	buyer := seedUser(t, db, "buyer@test.tn")

	order, _, ferr := payments.prepareOrder(buyer.ID, buyer.Email, models.ContentSubscription, string(models.TierPro), "", "offline")
	require.Nil(t, ferr)
	assert.InDelta(t, models.TierPrices[models.TierPro], order.AmountDT, 0.0001)
	assert.Equal(t, "platform", order.CreatorID)

	require.NoError(t, payments.settleOrder(order, "offline", ""))

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", buyer.ID).Error)
	assert.Equal(t, models.TierPro, stored.SubscriptionTier)
}

func TestSettleOrderRefundedOrderStaysRefunded(t *testing.T) {
	db := newTestDB(t)
	payments := newTestPaymentService(db)

	creator := seedUser(t, db, "creator@test.tn")
	buyer := seedUser(t, db, "buyer@test.tn")
	community := seedCommunity(t, db, creator.ID, 0)
	course := seedCourse(t, db, community.ID, creator.ID, 100)

	order, _, ferr := payments.prepareOrder(buyer.ID, buyer.Email, models.ContentCourse, course.ID, "", "offline")
	require.Nil(t, ferr)

	require.NoError(t, db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("status", models.OrderRefunded).Error)

	// A late webhook must not resurrect a refunded order.
	require.NoError(t, payments.settleOrder(order, "offline", ""))

	var stored models.Order
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, models.OrderRefunded, stored.Status)
}

func TestFindOrderByPaymentRef(t *testing.T) {
	db := newTestDB(t)
	payments := newTestPaymentService(db)

	creator := seedUser(t, db, "creator@test.tn")
	buyer := seedUser(t, db, "buyer@test.tn")
	community := seedCommunity(t, db, creator.ID, 0)
	course := seedCourse(t, db, community.ID, creator.ID, 100)

	order, _, ferr := payments.prepareOrder(buyer.ID, buyer.Email, models.ContentCourse, course.ID, "", "flouci")
	require.Nil(t, ferr)
	require.NoError(t, db.Model(order).Update("payment_id", "flouci-ref-123").Error)

	byRef, err := payments.findOrderByPaymentRef("flouci-ref-123")
	require.NoError(t, err)
	assert.Equal(t, order.ID, byRef.ID)

	// Offline orders carry no gateway reference; the order id itself works.
	byID, err := payments.findOrderByPaymentRef(order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, byID.ID)

	_, err = payments.findOrderByPaymentRef("nothing-here")
	assert.Error(t, err)
}

func TestVerifyFlouciSignature(t *testing.T) {
	payments := &PaymentService{FlouciWebhookSecret: "topsecret"}
	body := []byte(`{"payment_id":"abc"}`)

	mac := hmac.New(sha256.New, []byte("topsecret"))
	mac.Write(body)
	good := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, payments.VerifyFlouciSignature(body, good))
	assert.False(t, payments.VerifyFlouciSignature(body, "deadbeef"))
	assert.False(t, payments.VerifyFlouciSignature(body, ""))
	assert.False(t, payments.VerifyFlouciSignature([]byte(`{"payment_id":"tampered"}`), good))

	// No secret configured means verification is skipped.
	open := &PaymentService{}
	assert.True(t, open.VerifyFlouciSignature(body, ""))
}

func TestGrantAccessIdempotentPerType(t *testing.T) {
	db := newTestDB(t)
	payments := newTestPaymentService(db)

	creator := seedUser(t, db, "creator@test.tn")
	buyer := seedUser(t, db, "buyer@test.tn")
	community := seedCommunity(t, db, creator.ID, 25)

	order := &models.Order{
		BuyerID:     buyer.ID,
		CreatorID:   creator.ID,
		ContentType: models.ContentCommunity,
		ContentID:   community.ID,
		AmountDT:    25,
		Status:      models.OrderPaid,
	}
	require.NoError(t, db.Create(order).Error)

	require.NoError(t, payments.grantAccess(order))
	require.NoError(t, payments.grantAccess(order))

	var members int64
	require.NoError(t, db.Model(&models.CommunityMember{}).
		Where("community_id = ? AND user_id = ?", community.ID, buyer.ID).
		Count(&members).Error)
	assert.Equal(t, int64(1), members)
}

func TestInitStripeCheckoutItemRemovedMidCheckout(t *testing.T) {
	db := newTestDB(t)
	payments := newTestPaymentService(db)
	payments.Stripe = NewStripeGateway()

	creator := seedUser(t, db, "creator@test.tn")
	buyer := seedUser(t, db, "buyer@test.tn")
	community := seedCommunity(t, db, creator.ID, 0)
	course := seedCourse(t, db, community.ID, creator.ID, 100)

	// Remove the course the moment its order is persisted, landing inside
	// the window between order creation and the gateway call.
	require.NoError(t, db.Callback().Create().After("gorm:create").Register("drop_course_after_order", func(tx *gorm.DB) {
		if tx.Statement != nil && tx.Statement.Table == "orders" {
			db.Exec("DELETE FROM courses WHERE id = ?", course.ID)
		}
	}))

	app := fiber.New()
	app.Post("/payments/stripe-link/init/:contentType", func(c *fiber.Ctx) error {
		c.Locals("user_id", buyer.ID)
		c.Locals("user_email", buyer.Email)
		return payments.InitStripeCheckout(c)
	})

	body := strings.NewReader(fmt.Sprintf(`{"content_id":%q}`, course.ID))
	req := httptest.NewRequest(fiber.MethodPost, "/payments/stripe-link/init/course", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	// The session create fails without gateway credentials; the request must
	// still complete instead of crashing on the missing course row.
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	var order models.Order
	require.NoError(t, db.First(&order, "buyer_id = ?", buyer.ID).Error)
	assert.Equal(t, models.OrderPending, order.Status)
}

func TestVerifyStripeAlreadyPaidKeepsCustomerID(t *testing.T) {
	db := newTestDB(t)
	payments := newTestPaymentService(db)

	creator := seedUser(t, db, "creator@test.tn")
	buyer := seedUser(t, db, "buyer@test.tn")
	community := seedCommunity(t, db, creator.ID, 0)
	course := seedCourse(t, db, community.ID, creator.ID, 100)

	order, _, ferr := payments.prepareOrder(buyer.ID, buyer.Email, models.ContentCourse, course.ID, "", "stripe-link")
	require.Nil(t, ferr)
	require.NoError(t, db.Model(order).Update("payment_id", "cs_test_123").Error)

	require.NoError(t, payments.settleOrder(order, "card", "cus_abc"))

	var stored models.Order
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, "cus_abc", stored.CustomerID)

	app := fiber.New()
	app.Get("/payments/stripe-link/verify", payments.VerifyStripePayment)

	req := httptest.NewRequest(fiber.MethodGet, "/payments/stripe-link/verify?sessionId=cs_test_123", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// The already-paid short-circuit answers with the same shape as a fresh
	// settlement, customer id included.
	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "paid", payload["status"])
	assert.Equal(t, "card", payload["paymentMethod"])
	assert.Equal(t, "cus_abc", payload["customerId"])
}
