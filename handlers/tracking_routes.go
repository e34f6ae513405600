// handlers/tracking_routes.go
package handlers

import (
	"errors"
	"strconv"

	"creator-platform/middleware"
	"creator-platform/models"
	"creator-platform/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupTrackingRoutes(app *fiber.App, tracking *services.TrackingService, auth *services.AuthService) {
	grp := app.Group("/track", middleware.RequireAuth(auth))

	grp.Post("/", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			ContentType string                 `json:"content_type"`
			ContentID   string                 `json:"content_id"`
			Action      string                 `json:"action"`
			Metadata    map[string]interface{} `json:"metadata"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.ContentType == "" || req.ContentID == "" || req.Action == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "content_type, content_id and action are required",
			})
		}

		progress, err := tracking.RecordAction(
			userID,
			models.ContentType(req.ContentType),
			req.ContentID,
			models.ActionType(req.Action),
			req.Metadata,
		)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record action"})
		}
		return c.JSON(progress)
	})

	grp.Get("/recent", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		limit, _ := strconv.Atoi(c.Query("limit", "20"))

		actions, err := tracking.GetRecentActions(userID, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch actions"})
		}
		return c.JSON(fiber.Map{"actions": actions})
	})

	grp.Get("/:contentType/:contentId", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		progress, err := tracking.GetProgress(userID, models.ContentType(c.Params("contentType")), c.Params("contentId"))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Nothing tracked yet; report the zero state rather than a 404
			// so clients don't special-case it.
			return c.JSON(fiber.Map{
				"content_type": c.Params("contentType"),
				"content_id":   c.Params("contentId"),
				"is_completed": false,
				"status":       "not_started",
			})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch progress"})
		}
		return c.JSON(progress)
	})
}
