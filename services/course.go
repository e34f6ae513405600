// services/course.go
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

type CourseService struct {
	DB *gorm.DB
}

func NewCourseService(db *gorm.DB) *CourseService {
	return &CourseService{DB: db}
}

// Enroll grants course access; duplicate grants are swallowed by the unique
// index so webhook replays stay harmless.
func (s *CourseService) Enroll(courseID, userID string) error {
	enrollment := models.Enrollment{CourseID: courseID, UserID: userID}
	return s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&enrollment).Error
}

func (s *CourseService) GetByID(id string) (*models.Course, error) {
	var course models.Course
	if err := s.DB.First(&course, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (s *CourseService) IsEnrolled(courseID, userID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Enrollment{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&count).Error
	return count > 0, err
}

// --- Handlers ---

// CreateCourse requires the caller to own the parent community.
func (s *CourseService) CreateCourse(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		CommunityID  string  `json:"community_id" validate:"required,uuid"`
		Title        string  `json:"title" validate:"required,min=3,max=200"`
		Description  string  `json:"description"`
		ThumbnailURL string  `json:"thumbnail_url"`
		PriceDT      float64 `json:"price_dt" validate:"min=0"`
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
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only the community creator can add courses"})
	}

	course := models.Course{
		CommunityID:  req.CommunityID,
		CreatorID:    userID,
		Title:        req.Title,
		Slug:         slug.Make(req.Title),
		Description:  req.Description,
		ThumbnailURL: req.ThumbnailURL,
		PriceDT:      req.PriceDT,
	}
	if err := s.DB.Create(&course).Error; err != nil {
		log.Printf("DB Error creating course: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create course"})
	}
	return c.Status(fiber.StatusCreated).JSON(course)
}

func (s *CourseService) GetCourse(c *fiber.Ctx) error {
	var course models.Course
	if err := s.DB.Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&course, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(course)
}

func (s *CourseService) ListCommunityCourses(c *fiber.Ctx) error {
	var courses []models.Course
	if err := s.DB.Where("community_id = ?", c.Params("communityId")).
		Order("created_at DESC").
		Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch courses"})
	}
	return c.JSON(courses)
}

// EnrollFree is the free-course path; paid courses enroll on settlement.
func (s *CourseService) EnrollFree(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	courseID := c.Params("id")

	course, err := s.GetByID(courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if course.PriceDT > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "This course is paid, start a checkout instead",
		})
	}

	if err := s.Enroll(courseID, userID); err != nil {
		log.Printf("DB Error enrolling: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to enroll"})
	}
	return c.JSON(fiber.Map{"message": "Enrolled", "course_id": courseID})
}
