// services/stripe_gateway.go
package services

import (
	"fmt"
	"math"
	"os"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeGateway wraps Stripe Checkout for card payments ("stripe-link"
// provider on the API surface). Like the Flouci wrapper it converts remote
// failures into result values instead of propagating errors.
type StripeGateway struct {
	client        *client.API
	currency      string
	webhookSecret string
}

func NewStripeGateway() *StripeGateway {
	sc := &client.API{}
	sc.Init(os.Getenv("STRIPE_SECRET_KEY"), nil)

	currency := os.Getenv("STRIPE_CURRENCY")
	if currency == "" {
		currency = "usd"
	}
	return &StripeGateway{
		client:        sc,
		currency:      currency,
		webhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
	}
}

// StripeInitResult is the outcome of creating a checkout session.
type StripeInitResult struct {
	Success     bool   `json:"success"`
	SessionID   string `json:"session_id,omitempty"`
	CheckoutURL string `json:"checkout_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

// StripeVerifyResult is the outcome of fetching a checkout session.
type StripeVerifyResult struct {
	Success       bool   `json:"success"`
	Status        string `json:"status,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	CustomerID    string `json:"customer_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// InitCheckout creates a hosted checkout session. Amounts use the same
// millime scaling as the TND gateway.
func (g *StripeGateway) InitCheckout(amountDT float64, label, successURL, failURL, orderID string) StripeInitResult {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(failURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(g.currency),
					UnitAmount: stripe.Int64(int64(math.Round(amountDT * 1000))),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(label),
					},
				},
			},
		},
		ClientReferenceID: stripe.String(orderID),
		Metadata:          map[string]string{"order_id": orderID},
	}

	sess, err := g.client.CheckoutSessions.New(params)
	if err != nil {
		return StripeInitResult{Success: false, Error: fmt.Sprintf("stripe checkout create failed: %v", err)}
	}
	return StripeInitResult{
		Success:     true,
		SessionID:   sess.ID,
		CheckoutURL: sess.URL,
	}
}

// VerifySession fetches a checkout session and reports whether it is paid.
func (g *StripeGateway) VerifySession(sessionID string) StripeVerifyResult {
	sess, err := g.client.CheckoutSessions.Get(sessionID, nil)
	if err != nil {
		return StripeVerifyResult{Success: false, Error: fmt.Sprintf("stripe session fetch failed: %v", err)}
	}

	method := "card"
	if len(sess.PaymentMethodTypes) > 0 {
		method = sess.PaymentMethodTypes[0]
	}
	customerID := ""
	if sess.Customer != nil {
		customerID = sess.Customer.ID
	}
	return StripeVerifyResult{
		Success:       sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Status:        string(sess.PaymentStatus),
		PaymentMethod: method,
		CustomerID:    customerID,
	}
}

// ConstructWebhookEvent verifies the stripe-signature header against the
// configured webhook secret and parses the event.
func (g *StripeGateway) ConstructWebhookEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
}
