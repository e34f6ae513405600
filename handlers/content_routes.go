// handlers/content_routes.go
package handlers

import (
	"creator-platform/middleware"
	"creator-platform/services"

	"github.com/gofiber/fiber/v2"
)

// SetupContentRoutes wires the catalog surfaces: communities, courses,
// challenges, events, products and coaching sessions. Reads are public,
// writes and joins require auth.
func SetupContentRoutes(
	app *fiber.App,
	communities *services.CommunityService,
	courses *services.CourseService,
	challenges *services.ChallengeService,
	events *services.EventService,
	products *services.ProductService,
	sessions *services.SessionService,
	auth *services.AuthService,
) {
	requireAuth := middleware.RequireAuth(auth)

	app.Get("/communities", communities.ListCommunities)
	app.Get("/communities/:id", communities.GetCommunity)
	app.Post("/communities", requireAuth, communities.CreateCommunity)
	app.Post("/communities/:id/join", requireAuth, communities.JoinCommunity)

	app.Get("/communities/:communityId/courses", courses.ListCommunityCourses)
	app.Get("/courses/:id", courses.GetCourse)
	app.Post("/courses", requireAuth, courses.CreateCourse)
	app.Post("/courses/:id/enroll", requireAuth, courses.EnrollFree)

	app.Get("/challenges/:id", challenges.GetChallenge)
	app.Post("/challenges", requireAuth, challenges.CreateChallenge)
	app.Post("/challenges/:id/join", requireAuth, challenges.JoinChallenge)
	app.Post("/challenges/:id/tasks/:taskId/complete", requireAuth, challenges.CompleteTaskHandler)

	app.Get("/events", events.ListUpcomingEvents)
	app.Post("/events", requireAuth, events.CreateEvent)
	app.Post("/events/:id/register", requireAuth, events.Register)

	app.Get("/products/:id", products.GetProduct)
	app.Get("/creators/:creatorId/products", products.ListCreatorProducts)
	app.Post("/products", requireAuth, products.CreateProduct)

	app.Get("/creators/:creatorId/sessions", sessions.ListCreatorSessions)
	app.Post("/sessions", requireAuth, sessions.CreateSession)
	app.Get("/me/bookings", requireAuth, sessions.ListMyBookings)
}
