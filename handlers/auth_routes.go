// handlers/auth_routes.go
package handlers

import (
	"creator-platform/middleware"
	"creator-platform/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, auth *services.AuthService) {
	grp := app.Group("/auth")

	grp.Post("/register", auth.Register)
	grp.Post("/login", auth.Login)
	grp.Post("/2fa/verify", auth.VerifyTwoFactor)
	grp.Post("/refresh", auth.Refresh)
	grp.Post("/logout", auth.Logout)
	grp.Post("/logout-all", middleware.RequireAuth(auth), auth.LogoutAll)
	grp.Post("/password-reset/request", auth.RequestPasswordReset)
	grp.Post("/password-reset/confirm", auth.ConfirmPasswordReset)
}
