// services/event.go
package services

import (
	"errors"
	"log"
	"time"

	"creator-platform/models"
	"creator-platform/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventService struct {
	DB *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{DB: db}
}

func (s *EventService) GetByID(id string) (*models.Event, error) {
	var event models.Event
	if err := s.DB.First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// --- Handlers ---

func (s *EventService) CreateEvent(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		CommunityID string     `json:"community_id" validate:"required,uuid"`
		Title       string     `json:"title" validate:"required,min=3,max=200"`
		Description string     `json:"description"`
		Location    string     `json:"location"`
		PriceDT     float64    `json:"price_dt" validate:"min=0"`
		StartsAt    time.Time  `json:"starts_at" validate:"required"`
		EndsAt      *time.Time `json:"ends_at"`
		MaxSeats    int        `json:"max_seats" validate:"min=0"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "details": utils.ValidationErrors(err)})
	}

	var community models.Community
	if err := s.DB.First(&community, "id = ?", req.CommunityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Community not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if community.CreatorID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only the community creator can create events"})
	}

	event := models.Event{
		CommunityID: req.CommunityID,
		CreatorID:   userID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		PriceDT:     req.PriceDT,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		MaxSeats:    req.MaxSeats,
	}
	if err := s.DB.Create(&event).Error; err != nil {
		log.Printf("DB Error creating event: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create event"})
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

func (s *EventService) ListUpcomingEvents(c *fiber.Ctx) error {
	var events []models.Event
	if err := s.DB.Where("starts_at >= ?", time.Now()).
		Order("starts_at ASC").
		Limit(100).
		Find(&events).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch events"})
	}
	return c.JSON(events)
}

// Register records attendance. Ticket purchases do not call this
// automatically: the order does not carry a ticket type, so ticket holders
// register here after paying.
func (s *EventService) Register(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	eventID := c.Params("id")

	var req struct {
		TicketType string `json:"ticket_type"`
	}
	_ = c.BodyParser(&req)
	if req.TicketType == "" {
		req.TicketType = "standard"
	}

	event, err := s.GetByID(eventID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Event not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if event.MaxSeats > 0 {
		var registered int64
		s.DB.Model(&models.EventRegistration{}).Where("event_id = ?", eventID).Count(&registered)
		if registered >= int64(event.MaxSeats) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Event is fully booked"})
		}
	}

	registration := models.EventRegistration{
		EventID:    eventID,
		UserID:     userID,
		TicketType: req.TicketType,
	}
	if err := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&registration).Error; err != nil {
		log.Printf("DB Error registering for event: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to register"})
	}
	return c.JSON(fiber.Map{"message": "Registered", "event_id": eventID, "ticket_type": req.TicketType})
}
