// services/session_service.go
package services

import (
	"errors"
	"log"

	"creator-platform/models"
	"creator-platform/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SessionService struct {
	DB *gorm.DB
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{DB: db}
}

func (s *SessionService) GetByID(id string) (*models.CoachingSession, error) {
	var session models.CoachingSession
	if err := s.DB.First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// ConfirmBooking flips the buyer's booking to confirmed once the order
// settles, creating the booking row if checkout started without one.
// Idempotent: an already-confirmed booking is left as is.
func (s *SessionService) ConfirmBooking(sessionID, userID, orderID string) error {
	var booking models.SessionBooking
	err := s.DB.Where("session_id = ? AND user_id = ? AND status <> ?", sessionID, userID, "cancelled").
		Order("booked_at DESC").
		First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		booking = models.SessionBooking{
			SessionID: sessionID,
			UserID:    userID,
			OrderID:   orderID,
			Status:    "confirmed",
		}
		return s.DB.Create(&booking).Error
	}
	if err != nil {
		return err
	}
	if booking.Status == "confirmed" {
		return nil
	}
	booking.Status = "confirmed"
	booking.OrderID = orderID
	return s.DB.Save(&booking).Error
}

// --- Handlers ---

func (s *SessionService) CreateSession(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		CommunityID string  `json:"community_id" validate:"omitempty,uuid"`
		Title       string  `json:"title" validate:"required,min=3,max=200"`
		Description string  `json:"description"`
		PriceDT     float64 `json:"price_dt" validate:"min=0"`
		DurationMin int     `json:"duration_min" validate:"min=15,max=480"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "details": utils.ValidationErrors(err)})
	}

	session := models.CoachingSession{
		CreatorID:   userID,
		CommunityID: req.CommunityID,
		Title:       req.Title,
		Description: req.Description,
		PriceDT:     req.PriceDT,
		DurationMin: req.DurationMin,
	}
	if err := s.DB.Create(&session).Error; err != nil {
		log.Printf("DB Error creating session: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create session"})
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (s *SessionService) ListCreatorSessions(c *fiber.Ctx) error {
	var sessions []models.CoachingSession
	if err := s.DB.Where("creator_id = ?", c.Params("creatorId")).
		Order("created_at DESC").
		Find(&sessions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch sessions"})
	}
	return c.JSON(sessions)
}

func (s *SessionService) ListMyBookings(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	var bookings []models.SessionBooking
	if err := s.DB.Where("user_id = ?", userID).
		Order("booked_at DESC").
		Find(&bookings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch bookings"})
	}
	return c.JSON(bookings)
}
