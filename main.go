package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"creator-platform/handlers"
	"creator-platform/models"
	"creator-platform/services"
	"creator-platform/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB
	})

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Community{},
		&models.CommunityMember{},
		&models.Post{},
		&models.Course{},
		&models.Lesson{},
		&models.Enrollment{},
		&models.Challenge{},
		&models.ChallengeTask{},
		&models.ChallengeParticipant{},
		&models.Event{},
		&models.EventRegistration{},
		&models.Product{},
		&models.ProductPurchase{},
		&models.CoachingSession{},
		&models.SessionBooking{},
		&models.Order{},
		&models.PromoCode{},
		&models.CreatorFeeOverride{},
		&models.ContentProgress{},
		&models.TrackingAction{},
		&models.RevokedToken{},
		&models.AuthCode{},
		&models.WebhookEvent{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	authService := services.NewAuthService(db)
	communityService := services.NewCommunityService(db)
	courseService := services.NewCourseService(db)
	challengeService := services.NewChallengeService(db)
	eventService := services.NewEventService(db)
	productService := services.NewProductService(db)
	sessionService := services.NewSessionService(db)
	trackingService := services.NewTrackingService(db)
	progressionService := services.NewProgressionService(db)

	feeService := services.NewFeeService(db)
	promoService := services.NewPromoService(db)
	flouciGateway := services.NewFlouciGateway()
	stripeGateway := services.NewStripeGateway()
	paymentService := services.NewPaymentService(db, feeService, promoService, flouciGateway, stripeGateway,
		communityService, courseService, challengeService, productService, sessionService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go workers.PollFailedWebhooks(ctx, db, paymentService, 30*time.Second)

	authService.StartAuthPurgeScheduler()

	handlers.SetupAuthRoutes(app, authService)
	handlers.SetupContentRoutes(app, communityService, courseService, challengeService,
		eventService, productService, sessionService, authService)
	handlers.SetupPaymentRoutes(app, paymentService, authService)
	handlers.SetupTrackingRoutes(app, trackingService, authService)
	handlers.SetupProgressionRoutes(app, progressionService, communityService, authService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5200"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Webhook retry polling running (every 30s)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
