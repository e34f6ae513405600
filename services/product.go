// services/product.go
package services

import (
	"errors"
	"log"

	"creator-platform/models"
	"creator-platform/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductService struct {
	DB *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{DB: db}
}

func (s *ProductService) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := s.DB.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// RecordPurchase grants download access after settlement (idempotent).
func (s *ProductService) RecordPurchase(productID, userID, orderID string) error {
	purchase := models.ProductPurchase{
		ProductID: productID,
		UserID:    userID,
		OrderID:   orderID,
	}
	return s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&purchase).Error
}

// --- Handlers ---

func (s *ProductService) CreateProduct(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		CommunityID  string  `json:"community_id" validate:"omitempty,uuid"`
		Title        string  `json:"title" validate:"required,min=3,max=200"`
		Description  string  `json:"description"`
		ThumbnailURL string  `json:"thumbnail_url"`
		FileURL      string  `json:"file_url"`
		PriceDT      float64 `json:"price_dt" validate:"min=0"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "details": utils.ValidationErrors(err)})
	}

	product := models.Product{
		CommunityID:  req.CommunityID,
		CreatorID:    userID,
		Title:        req.Title,
		Description:  req.Description,
		ThumbnailURL: req.ThumbnailURL,
		FileURL:      req.FileURL,
		PriceDT:      req.PriceDT,
	}
	if err := s.DB.Create(&product).Error; err != nil {
		log.Printf("DB Error creating product: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create product"})
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (s *ProductService) GetProduct(c *fiber.Ctx) error {
	product, err := s.GetByID(c.Params("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(product)
}

func (s *ProductService) ListCreatorProducts(c *fiber.Ctx) error {
	var products []models.Product
	if err := s.DB.Where("creator_id = ?", c.Params("creatorId")).
		Order("created_at DESC").
		Find(&products).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch products"})
	}
	return c.JSON(products)
}
