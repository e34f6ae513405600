// services/payment.go
package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"creator-platform/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v79"
	"gorm.io/gorm"
)

// Payment modes. Offline mode bypasses external gateways entirely: orders
// are settled through manual/trusted channels (cash, bank transfer) and
// verify synthesizes success.
const (
	PaymentModeInstant = "instant"
	PaymentModeOffline = "offline"
)

// PaymentService orchestrates the full checkout flow: price resolution,
// promo application, fee split, order ledger and gateway calls, plus the
// verify/webhook settlement path with its grant-access side effects.
type PaymentService struct {
	DB     *gorm.DB
	Fee    *FeeService
	Promo  *PromoService
	Flouci *FlouciGateway
	Stripe *StripeGateway

	Communities *CommunityService
	Courses     *CourseService
	Challenges  *ChallengeService
	Products    *ProductService
	Sessions    *SessionService

	Mode                string
	FrontendURL         string
	FlouciWebhookSecret string
}

func NewPaymentService(db *gorm.DB, fee *FeeService, promo *PromoService, flouci *FlouciGateway, stripeGw *StripeGateway,
	communities *CommunityService, courses *CourseService, challenges *ChallengeService,
	products *ProductService, sessions *SessionService) *PaymentService {

	mode := os.Getenv("PAYMENT_MODE")
	if mode != PaymentModeOffline {
		mode = PaymentModeInstant
	}
	frontend := os.Getenv("FRONTEND_URL")
	if frontend == "" {
		frontend = "http://localhost:3000"
	}

	return &PaymentService{
		DB:                  db,
		Fee:                 fee,
		Promo:               promo,
		Flouci:              flouci,
		Stripe:              stripeGw,
		Communities:         communities,
		Courses:             courses,
		Challenges:          challenges,
		Products:            products,
		Sessions:            sessions,
		Mode:                mode,
		FrontendURL:         frontend,
		FlouciWebhookSecret: os.Getenv("FLOUCI_WEBHOOK_SECRET"),
	}
}

// purchasable is the resolved target of a checkout.
type purchasable struct {
	CreatorID string
	PriceDT   float64
	Label     string
}

var errUnknownContentType = errors.New("unknown content type")

func (s *PaymentService) resolvePurchasable(contentType models.ContentType, contentID string) (*purchasable, error) {
	switch contentType {
	case models.ContentCommunity:
		c, err := s.Communities.GetByID(contentID)
		if err != nil {
			return nil, err
		}
		return &purchasable{CreatorID: c.CreatorID, PriceDT: c.PriceDT, Label: c.Name}, nil
	case models.ContentCourse:
		c, err := s.Courses.GetByID(contentID)
		if err != nil {
			return nil, err
		}
		return &purchasable{CreatorID: c.CreatorID, PriceDT: c.PriceDT, Label: c.Title}, nil
	case models.ContentChallenge:
		ch, err := s.Challenges.GetByID(contentID)
		if err != nil {
			return nil, err
		}
		return &purchasable{CreatorID: ch.CreatorID, PriceDT: ch.PriceDT, Label: ch.Title}, nil
	case models.ContentEvent:
		var event models.Event
		if err := s.DB.First(&event, "id = ?", contentID).Error; err != nil {
			return nil, err
		}
		return &purchasable{CreatorID: event.CreatorID, PriceDT: event.PriceDT, Label: event.Title}, nil
	case models.ContentProduct:
		p, err := s.Products.GetByID(contentID)
		if err != nil {
			return nil, err
		}
		return &purchasable{CreatorID: p.CreatorID, PriceDT: p.PriceDT, Label: p.Title}, nil
	case models.ContentSession:
		sess, err := s.Sessions.GetByID(contentID)
		if err != nil {
			return nil, err
		}
		return &purchasable{CreatorID: sess.CreatorID, PriceDT: sess.PriceDT, Label: sess.Title}, nil
	case models.ContentSubscription:
		tier := models.SubscriptionTier(contentID)
		price, ok := models.TierPrices[tier]
		if !ok {
			return nil, gorm.ErrRecordNotFound
		}
		// Platform revenue: the platform is its own "creator" here.
		return &purchasable{CreatorID: "platform", PriceDT: price, Label: "Subscription " + contentID}, nil
	default:
		return nil, errUnknownContentType
	}
}

// prepareOrder runs steps 1-5 of the checkout state machine: resolve, reject
// free items, apply promo, apply fee split, persist a pending order. The
// resolved item is returned with the order so callers never re-resolve it
// (the row could be gone by then).
func (s *PaymentService) prepareOrder(buyerID, buyerEmail string, contentType models.ContentType, contentID, promoCode, provider string) (*models.Order, *purchasable, *fiber.Error) {
	item, err := s.resolvePurchasable(contentType, contentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("%s not found", contentType))
	}
	if errors.Is(err, errUnknownContentType) {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "unknown content type")
	}
	if err != nil {
		return nil, nil, fiber.NewError(fiber.StatusInternalServerError, "failed to resolve item")
	}

	if item.PriceDT <= 0 {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "this item is already free")
	}

	promo := s.Promo.ValidateAndApply(promoCode, item.PriceDT, contentType, contentID, buyerEmail)
	breakdown := s.Fee.CalculateForAmount(promo.FinalAmountDT, item.CreatorID)

	order := models.Order{
		BuyerID:         buyerID,
		CreatorID:       item.CreatorID,
		ContentType:     contentType,
		ContentID:       contentID,
		AmountDT:        breakdown.AmountDT,
		PlatformPercent: breakdown.PlatformPercent,
		PlatformFixedDT: breakdown.PlatformFixedDT,
		PlatformFeeDT:   breakdown.PlatformFeeDT,
		CreatorNetDT:    breakdown.CreatorNetDT,
		DiscountDT:      promo.DiscountDT,
		PaymentProvider: provider,
		Status:          models.OrderPending,
	}
	if promo.Valid {
		order.PromoCode = &promo.AppliedCode
	}
	if err := s.DB.Create(&order).Error; err != nil {
		log.Printf("DB Error creating order: %v", err)
		return nil, nil, fiber.NewError(fiber.StatusInternalServerError, "failed to create order")
	}
	return &order, item, nil
}

// --- Checkout handlers ---

// InitCheckout handles POST /payments/init/:contentType (Flouci / offline).
func (s *PaymentService) InitCheckout(c *fiber.Ctx) error {
	buyerID := c.Locals("user_id").(string)
	buyerEmail, _ := c.Locals("user_email").(string)
	contentType := models.ContentType(c.Params("contentType"))

	var req struct {
		ContentID string `json:"content_id"`
		Tier      string `json:"tier"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	contentID := req.ContentID
	if contentType == models.ContentSubscription {
		contentID = req.Tier
	}
	if contentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "content_id is required"})
	}

	provider := "flouci"
	if s.Mode == PaymentModeOffline {
		provider = "offline"
	}

	order, _, ferr := s.prepareOrder(buyerID, buyerEmail, contentType, contentID, c.Query("promoCode"), provider)
	if ferr != nil {
		return c.Status(ferr.Code).JSON(fiber.Map{"error": ferr.Message})
	}

	if s.Mode == PaymentModeOffline {
		order.PaymentID = order.ID
		if err := s.DB.Save(order).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to persist order"})
		}
		return c.JSON(fiber.Map{"mode": "offline", "paymentId": order.ID})
	}

	successURL := fmt.Sprintf("%s/payments/success?orderId=%s", s.FrontendURL, order.ID)
	failURL := fmt.Sprintf("%s/payments/fail?orderId=%s", s.FrontendURL, order.ID)
	res := s.Flouci.Init(order.AmountDT, successURL, failURL, order.ID)
	if !res.Success {
		log.Printf("❌ Flouci init failed for order %s: %s", order.ID, res.Error)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "payment gateway unavailable"})
	}

	order.PaymentID = res.PaymentID
	if err := s.DB.Save(order).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to persist payment reference"})
	}

	return c.JSON(fiber.Map{
		"link":      res.Link,
		"paymentId": res.PaymentID,
		"qrCode":    res.QRCode,
	})
}

// InitStripeCheckout handles POST /payments/stripe-link/init/:contentType.
func (s *PaymentService) InitStripeCheckout(c *fiber.Ctx) error {
	buyerID := c.Locals("user_id").(string)
	buyerEmail, _ := c.Locals("user_email").(string)
	contentType := models.ContentType(c.Params("contentType"))

	var req struct {
		ContentID string `json:"content_id"`
		Tier      string `json:"tier"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	contentID := req.ContentID
	if contentType == models.ContentSubscription {
		contentID = req.Tier
	}
	if contentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "content_id is required"})
	}

	order, item, ferr := s.prepareOrder(buyerID, buyerEmail, contentType, contentID, c.Query("promoCode"), "stripe-link")
	if ferr != nil {
		return c.Status(ferr.Code).JSON(fiber.Map{"error": ferr.Message})
	}

	successURL := fmt.Sprintf("%s/payments/success?orderId=%s", s.FrontendURL, order.ID)
	failURL := fmt.Sprintf("%s/payments/fail?orderId=%s", s.FrontendURL, order.ID)
	res := s.Stripe.InitCheckout(order.AmountDT, item.Label, successURL, failURL, order.ID)
	if !res.Success {
		log.Printf("❌ Stripe init failed for order %s: %s", order.ID, res.Error)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "payment gateway unavailable"})
	}

	order.PaymentID = res.SessionID
	if err := s.DB.Save(order).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to persist payment reference"})
	}

	return c.JSON(fiber.Map{
		"checkoutUrl": res.CheckoutURL,
		"sessionId":   res.SessionID,
		"provider":    "stripe-link",
	})
}

// --- Settlement path ---

// findOrderByPaymentRef matches the gateway-assigned reference, falling back
// to the order's own id (offline mode sets them equal anyway, this also
// covers success-page polling by order id).
func (s *PaymentService) findOrderByPaymentRef(ref string) (*models.Order, error) {
	var order models.Order
	err := s.DB.Where("payment_id = ?", ref).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.DB.Where("id = ?", ref).First(&order).Error
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// settleOrder marks an order paid exactly once and dispatches grant-access.
// The conditional update is the idempotency guard: concurrent webhook
// delivery and client polling race here, and only the winner proceeds to the
// (itself idempotent) grant.
func (s *PaymentService) settleOrder(order *models.Order, paymentMethod, customerID string) error {
	updates := map[string]interface{}{
		"status":         models.OrderPaid,
		"payment_method": paymentMethod,
	}
	if customerID != "" {
		updates["customer_id"] = customerID
	}
	res := s.DB.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, models.OrderPending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race or already settled; nothing more to do.
		return nil
	}
	order.Status = models.OrderPaid
	order.PaymentMethod = paymentMethod
	if customerID != "" {
		order.CustomerID = customerID
	}

	if order.PromoCode != nil {
		if ok, err := s.Promo.RedeemOnce(*order.PromoCode); err != nil {
			log.Printf("⚠️ promo redemption count failed for %s: %v", *order.PromoCode, err)
		} else if !ok {
			log.Printf("⚠️ promo %s settled past its redemption cap (order %s)", *order.PromoCode, order.ID)
		}
	}

	return s.grantAccess(order)
}

// grantAccess performs the content-type-specific side effect of a paid
// order. Every branch is idempotent, so webhook replays that slip past the
// status guard stay harmless.
func (s *PaymentService) grantAccess(order *models.Order) error {
	switch order.ContentType {
	case models.ContentCommunity:
		return s.Communities.AddMember(order.ContentID, order.BuyerID)
	case models.ContentCourse:
		return s.Courses.Enroll(order.ContentID, order.BuyerID)
	case models.ContentChallenge:
		return s.Challenges.Join(order.ContentID, order.BuyerID)
	case models.ContentProduct:
		return s.Products.RecordPurchase(order.ContentID, order.BuyerID, order.ID)
	case models.ContentSession:
		return s.Sessions.ConfirmBooking(order.ContentID, order.BuyerID, order.ID)
	case models.ContentSubscription:
		return s.DB.Model(&models.User{}).
			Where("id = ?", order.BuyerID).
			Update("subscription_tier", order.ContentID).Error
	case models.ContentEvent:
		// Ticket type is not carried on the order, so automatic event
		// registration is skipped; attendees register separately.
		return nil
	default:
		return fmt.Errorf("no grant-access handler for content type %q", order.ContentType)
	}
}

// VerifyPayment handles GET /payments/verify?paymentId= for the Flouci and
// offline providers.
func (s *PaymentService) VerifyPayment(c *fiber.Ctx) error {
	paymentID := c.Query("paymentId")
	if paymentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "paymentId is required"})
	}

	order, err := s.findOrderByPaymentRef(paymentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if order.Status == models.OrderPaid {
		return c.JSON(fiber.Map{"status": "paid"})
	}

	if order.PaymentProvider == "offline" || s.Mode == PaymentModeOffline {
		if err := s.settleOrder(order, "offline", ""); err != nil {
			log.Printf("❌ offline settle failed for order %s: %v", order.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to settle order"})
		}
		return c.JSON(fiber.Map{"status": "paid"})
	}

	res := s.Flouci.Verify(order.PaymentID)
	if !res.Success {
		status := res.Status
		if status == "" {
			status = "pending"
		}
		return c.JSON(fiber.Map{"status": status})
	}

	if err := s.settleOrder(order, res.PaymentMethod, ""); err != nil {
		log.Printf("❌ settle failed for order %s: %v", order.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to settle order"})
	}
	return c.JSON(fiber.Map{"status": "paid"})
}

// VerifyStripePayment handles GET /payments/stripe-link/verify?sessionId=.
func (s *PaymentService) VerifyStripePayment(c *fiber.Ctx) error {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "sessionId is required"})
	}

	order, err := s.findOrderByPaymentRef(sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if order.Status == models.OrderPaid {
		return c.JSON(fiber.Map{
			"status":        "paid",
			"paymentMethod": order.PaymentMethod,
			"customerId":    order.CustomerID,
		})
	}

	res := s.Stripe.VerifySession(sessionID)
	if !res.Success {
		status := res.Status
		if status == "" {
			status = "pending"
		}
		return c.JSON(fiber.Map{"status": status})
	}

	if err := s.settleOrder(order, res.PaymentMethod, res.CustomerID); err != nil {
		log.Printf("❌ stripe settle failed for order %s: %v", order.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to settle order"})
	}
	return c.JSON(fiber.Map{
		"status":        "paid",
		"paymentMethod": res.PaymentMethod,
		"customerId":    res.CustomerID,
	})
}

// --- Webhooks ---

// VerifyFlouciSignature checks the HMAC-SHA256 of the raw body against the
// header value in constant time. With no secret configured, verification is
// skipped entirely (permissive default for environments without one).
func (s *PaymentService) VerifyFlouciSignature(body []byte, signature string) bool {
	if s.FlouciWebhookSecret == "" {
		return true
	}
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(s.FlouciWebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// FlouciWebhook handles POST /payments/webhook. The payload is
// recorded for audit/retry, then settlement delegates to the same verify path
// the client polls.
func (s *PaymentService) FlouciWebhook(c *fiber.Ctx) error {
	body := c.Body()

	if !s.VerifyFlouciSignature(body, c.Get("x-flouci-signature")) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid webhook signature"})
	}

	var payload struct {
		PaymentID string `json:"payment_id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.PaymentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed webhook body"})
	}

	event := s.recordWebhookEvent("flouci", payload.PaymentID, "payment.update", string(body), true)
	if event != nil && event.ProcessedAt != nil {
		return c.JSON(fiber.Map{"received": true, "duplicate": true})
	}

	if err := s.processFlouciPayment(payload.PaymentID); err != nil {
		s.markWebhookEvent("flouci", payload.PaymentID, err)
		log.Printf("❌ webhook processing failed for payment %s: %v", payload.PaymentID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook processing failed"})
	}
	s.markWebhookEvent("flouci", payload.PaymentID, nil)
	return c.JSON(fiber.Map{"received": true})
}

// processFlouciPayment is the webhook-side settlement: verify with the
// gateway (or synthesize in offline mode) and settle.
func (s *PaymentService) processFlouciPayment(paymentID string) error {
	order, err := s.findOrderByPaymentRef(paymentID)
	if err != nil {
		return fmt.Errorf("order lookup: %w", err)
	}
	if order.Status == models.OrderPaid {
		return nil
	}

	if order.PaymentProvider == "offline" || s.Mode == PaymentModeOffline {
		return s.settleOrder(order, "offline", "")
	}

	res := s.Flouci.Verify(order.PaymentID)
	if !res.Success {
		return fmt.Errorf("gateway reports %q: %s", res.Status, res.Error)
	}
	return s.settleOrder(order, res.PaymentMethod, "")
}

// StripeWebhook handles POST /payments/stripe-link/webhook with
// gateway-verified event dispatch.
func (s *PaymentService) StripeWebhook(c *fiber.Ctx) error {
	event, err := s.Stripe.ConstructWebhookEvent(c.Body(), c.Get("stripe-signature"))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid webhook signature"})
	}

	stored := s.recordWebhookEvent("stripe", event.ID, string(event.Type), string(c.Body()), true)
	if stored != nil && stored.ProcessedAt != nil {
		return c.JSON(fiber.Map{"received": true, "duplicate": true})
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed event payload"})
		}
		if err := s.processStripeSession(sess.ID); err != nil {
			s.markWebhookEvent("stripe", event.ID, err)
			log.Printf("❌ stripe webhook processing failed for session %s: %v", sess.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook processing failed"})
		}
	default:
		// Unhandled event types are acknowledged so Stripe stops retrying.
	}

	s.markWebhookEvent("stripe", event.ID, nil)
	return c.JSON(fiber.Map{"received": true})
}

func (s *PaymentService) processStripeSession(sessionID string) error {
	order, err := s.findOrderByPaymentRef(sessionID)
	if err != nil {
		return fmt.Errorf("order lookup: %w", err)
	}
	if order.Status == models.OrderPaid {
		return nil
	}
	res := s.Stripe.VerifySession(sessionID)
	if !res.Success {
		return fmt.Errorf("gateway reports %q: %s", res.Status, res.Error)
	}
	return s.settleOrder(order, res.PaymentMethod, res.CustomerID)
}

// RefundOrder handles POST /payments/orders/:orderId/refund (creator/admin). The
// same one-way CAS that guards paid guards refunded.
func (s *PaymentService) RefundOrder(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	role, _ := c.Locals("user_role").(string)
	orderID := c.Params("orderId")

	var order models.Order
	if err := s.DB.First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if order.CreatorID != userID && role != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only the creator or an admin can refund"})
	}

	res := s.DB.Model(&models.Order{}).
		Where("id = ? AND status IN ?", orderID, []models.OrderStatus{models.OrderPending, models.OrderPaid}).
		Update("status", models.OrderRefunded)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to refund"})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Order is already refunded"})
	}
	return c.JSON(fiber.Map{"message": "Order refunded", "order_id": orderID})
}

// --- Webhook event bookkeeping ---

// recordWebhookEvent upserts the dedup row and returns the existing row when
// this delivery is a replay.
func (s *PaymentService) recordWebhookEvent(provider, eventID, eventType, payload string, signatureValid bool) *models.WebhookEvent {
	var existing models.WebhookEvent
	err := s.DB.Where("provider = ? AND provider_event_id = ?", provider, eventID).First(&existing).Error
	if err == nil {
		s.DB.Model(&existing).UpdateColumn("attempts", gorm.Expr("attempts + 1"))
		return &existing
	}
	event := models.WebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       eventType,
		Payload:         payload,
		SignatureValid:  signatureValid,
		Attempts:        1,
	}
	if err := s.DB.Create(&event).Error; err != nil {
		log.Printf("⚠️ failed to store webhook event %s/%s: %v", provider, eventID, err)
		return nil
	}
	return &event
}

func (s *PaymentService) markWebhookEvent(provider, eventID string, processErr error) {
	updates := map[string]interface{}{}
	if processErr != nil {
		updates["processing_error"] = processErr.Error()
	} else {
		now := time.Now()
		updates["processed_at"] = &now
		updates["processing_error"] = ""
	}
	s.DB.Model(&models.WebhookEvent{}).
		Where("provider = ? AND provider_event_id = ?", provider, eventID).
		Updates(updates)
}

// ProcessStoredEvent re-runs one failed webhook event; used by the retry
// worker.
func (s *PaymentService) ProcessStoredEvent(event *models.WebhookEvent) error {
	switch event.Provider {
	case "flouci":
		return s.processFlouciPayment(event.ProviderEventID)
	case "stripe":
		var wrapper struct {
			Data struct {
				Object struct {
					ID string `json:"id"`
				} `json:"object"`
			} `json:"data"`
		}
		if err := json.Unmarshal([]byte(event.Payload), &wrapper); err != nil || wrapper.Data.Object.ID == "" {
			return fmt.Errorf("unparseable stored payload for event %s", event.ProviderEventID)
		}
		return s.processStripeSession(wrapper.Data.Object.ID)
	default:
		return fmt.Errorf("unknown provider %q", event.Provider)
	}
}
