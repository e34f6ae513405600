// handlers/progression_routes.go
package handlers

import (
	"strconv"
	"strings"

	"creator-platform/middleware"
	"creator-platform/models"
	"creator-platform/services"

	"github.com/gofiber/fiber/v2"
)

func SetupProgressionRoutes(app *fiber.App, progression *services.ProgressionService, communities *services.CommunityService, auth *services.AuthService) {
	grp := app.Group("/progression", middleware.RequireAuth(auth))

	grp.Get("/overview", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var contentTypes []models.ContentType
		if raw := c.Query("contentTypes"); raw != "" {
			for _, t := range strings.Split(raw, ",") {
				t = strings.TrimSpace(t)
				if t != "" {
					contentTypes = append(contentTypes, models.ContentType(t))
				}
			}
		}

		page, _ := strconv.Atoi(c.Query("page", "1"))
		limit, _ := strconv.Atoi(c.Query("limit", "20"))

		communityID := c.Query("communityId")
		if communityID == "" {
			if slugParam := c.Query("communitySlug"); slugParam != "" {
				community, err := communities.GetBySlug(slugParam)
				if err != nil {
					return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Community not found"})
				}
				communityID = community.ID
			}
		}

		overview, err := progression.GetUserProgressOverview(userID, contentTypes, page, limit, communityID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build overview"})
		}
		return c.JSON(overview)
	})
}
