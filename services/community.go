// services/community.go
package services

import (
	"errors"
	"log"

	"creator-platform/models"
	"creator-platform/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommunityService struct {
	DB *gorm.DB
}

func NewCommunityService(db *gorm.DB) *CommunityService {
	return &CommunityService{DB: db}
}

// AddMember grants membership. Idempotent: re-settling the same order or a
// duplicate webhook hits the unique index and is treated as already-joined.
func (s *CommunityService) AddMember(communityID, userID string) error {
	member := models.CommunityMember{
		CommunityID: communityID,
		UserID:      userID,
	}
	return s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error
}

// GetByID loads a community or gorm.ErrRecordNotFound.
func (s *CommunityService) GetByID(id string) (*models.Community, error) {
	var community models.Community
	if err := s.DB.First(&community, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &community, nil
}

// GetBySlug loads a community by its slug.
func (s *CommunityService) GetBySlug(communitySlug string) (*models.Community, error) {
	var community models.Community
	if err := s.DB.First(&community, "slug = ?", communitySlug).Error; err != nil {
		return nil, err
	}
	return &community, nil
}

// IsMember reports whether the user already belongs to the community.
func (s *CommunityService) IsMember(communityID, userID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.CommunityMember{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error
	return count > 0, err
}

// --- Handlers ---

func (s *CommunityService) CreateCommunity(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		Name        string  `json:"name" validate:"required,min=3,max=120"`
		Description string  `json:"description"`
		PriceDT     float64 `json:"price_dt" validate:"min=0"`
		IsPrivate   bool    `json:"is_private"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "details": utils.ValidationErrors(err)})
	}

	community := models.Community{
		CreatorID:   userID,
		Name:        req.Name,
		Slug:        slug.Make(req.Name),
		Description: req.Description,
		PriceDT:     req.PriceDT,
		IsPrivate:   req.IsPrivate,
	}
	if err := s.DB.Create(&community).Error; err != nil {
		log.Printf("DB Error creating community: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create community"})
	}

	// Creator joins their own community as moderator.
	member := models.CommunityMember{CommunityID: community.ID, UserID: userID, Role: "moderator"}
	if err := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error; err != nil {
		log.Printf("DB Error adding creator membership: %v", err)
	}

	return c.Status(fiber.StatusCreated).JSON(community)
}

func (s *CommunityService) GetCommunity(c *fiber.Ctx) error {
	idOrSlug := c.Params("id")

	var community models.Community
	err := s.DB.First(&community, "id = ?", idOrSlug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = s.DB.First(&community, "slug = ?", idOrSlug).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Community not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	s.DB.Model(&models.CommunityMember{}).
		Where("community_id = ?", community.ID).
		Count(&community.MembersCount)

	return c.JSON(community)
}

func (s *CommunityService) ListCommunities(c *fiber.Ctx) error {
	var communities []models.Community
	if err := s.DB.Where("is_private = ?", false).
		Order("created_at DESC").
		Limit(100).
		Find(&communities).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch communities"})
	}
	return c.JSON(communities)
}

// JoinCommunity is the free-join path; paid communities go through checkout.
func (s *CommunityService) JoinCommunity(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	communityID := c.Params("id")

	community, err := s.GetByID(communityID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Community not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if community.PriceDT > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "This community is paid, start a checkout instead",
		})
	}

	if err := s.AddMember(communityID, userID); err != nil {
		log.Printf("DB Error joining community: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to join community"})
	}
	return c.JSON(fiber.Map{"message": "Joined community", "community_id": communityID})
}
