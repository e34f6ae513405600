// handlers/payment_routes.go
package handlers

import (
	"creator-platform/middleware"
	"creator-platform/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(app *fiber.App, payments *services.PaymentService, auth *services.AuthService) {
	secured := app.Group("/payments", middleware.RequireAuth(auth))

	secured.Post("/init/:contentType", payments.InitCheckout)
	secured.Post("/stripe-link/init/:contentType", payments.InitStripeCheckout)
	secured.Get("/verify", payments.VerifyPayment)
	secured.Get("/stripe-link/verify", payments.VerifyStripePayment)
	secured.Post("/orders/:orderId/refund", payments.RefundOrder)

	// Gateways call these; authentication is the signature on the payload.
	app.Post("/payments/webhook", payments.FlouciWebhook)
	app.Post("/payments/stripe-link/webhook", payments.StripeWebhook)
}
