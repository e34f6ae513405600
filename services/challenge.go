// services/challenge.go
package services

import (
	"errors"
	"log"
	"sort"
	"time"

	"creator-platform/models"
	"creator-platform/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTaskLocked     = errors.New("previous task must be completed first")
	ErrNotParticipant = errors.New("user has not joined this challenge")
	ErrTaskNotInScope = errors.New("task does not belong to this challenge")
)

type ChallengeService struct {
	DB *gorm.DB
}

func NewChallengeService(db *gorm.DB) *ChallengeService {
	return &ChallengeService{DB: db}
}

// Join adds the user as a participant (idempotent via unique index).
func (s *ChallengeService) Join(challengeID, userID string) error {
	participant := models.ChallengeParticipant{
		ChallengeID:      challengeID,
		UserID:           userID,
		CompletedTaskIDs: []string{},
	}
	return s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&participant).Error
}

func (s *ChallengeService) GetByID(id string) (*models.Challenge, error) {
	var challenge models.Challenge
	if err := s.DB.First(&challenge, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

// CompleteTask marks one task done for a participant, enforcing sequential
// progression when the challenge has it enabled: the lowest-day task is
// always accessible, any other task requires the previous day's task to be
// in the participant's completed set.
func (s *ChallengeService) CompleteTask(challengeID, userID, taskID string) (*models.ChallengeParticipant, error) {
	var challenge models.Challenge
	if err := s.DB.First(&challenge, "id = ?", challengeID).Error; err != nil {
		return nil, err
	}

	var tasks []models.ChallengeTask
	if err := s.DB.Where("challenge_id = ?", challengeID).Find(&tasks).Error; err != nil {
		return nil, err
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Day < tasks[j].Day })

	idx := -1
	for i, t := range tasks {
		if t.ID == taskID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrTaskNotInScope
	}

	var participant models.ChallengeParticipant
	err := s.DB.Where("challenge_id = ? AND user_id = ?", challengeID, userID).
		First(&participant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotParticipant
	}
	if err != nil {
		return nil, err
	}

	if challenge.SequentialProgression && idx > 0 {
		if !participant.HasCompleted(tasks[idx-1].ID) {
			return nil, ErrTaskLocked
		}
	}

	participant.MarkCompleted(taskID)
	if len(participant.CompletedTaskIDs) == len(tasks) && participant.CompletedAt == nil {
		now := time.Now()
		participant.CompletedAt = &now
	}
	if err := s.DB.Save(&participant).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}

// --- Handlers ---

func (s *ChallengeService) CreateChallenge(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req struct {
		CommunityID           string  `json:"community_id" validate:"required,uuid"`
		Title                 string  `json:"title" validate:"required,min=3,max=200"`
		Description           string  `json:"description"`
		PriceDT               float64 `json:"price_dt" validate:"min=0"`
		SequentialProgression bool    `json:"sequential_progression"`
		Tasks                 []struct {
			Day         int    `json:"day" validate:"min=1"`
			Title       string `json:"title" validate:"required"`
			Description string `json:"description"`
		} `json:"tasks" validate:"dive"`
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
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only the community creator can create challenges"})
	}

	challenge := models.Challenge{
		CommunityID:           req.CommunityID,
		CreatorID:             userID,
		Title:                 req.Title,
		Description:           req.Description,
		PriceDT:               req.PriceDT,
		SequentialProgression: req.SequentialProgression,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&challenge).Error; err != nil {
			return err
		}
		for _, t := range req.Tasks {
			task := models.ChallengeTask{
				ChallengeID: challenge.ID,
				Day:         t.Day,
				Title:       t.Title,
				Description: t.Description,
			}
			if err := tx.Create(&task).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("DB Error creating challenge: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create challenge"})
	}
	return c.Status(fiber.StatusCreated).JSON(challenge)
}

func (s *ChallengeService) GetChallenge(c *fiber.Ctx) error {
	var challenge models.Challenge
	if err := s.DB.Preload("Tasks", func(db *gorm.DB) *gorm.DB {
		return db.Order("day ASC")
	}).First(&challenge, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Challenge not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(challenge)
}

func (s *ChallengeService) JoinChallenge(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	challengeID := c.Params("id")

	challenge, err := s.GetByID(challengeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Challenge not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	if challenge.PriceDT > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "This challenge is paid, start a checkout instead",
		})
	}

	if err := s.Join(challengeID, userID); err != nil {
		log.Printf("DB Error joining challenge: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to join challenge"})
	}
	return c.JSON(fiber.Map{"message": "Joined challenge", "challenge_id": challengeID})
}

func (s *ChallengeService) CompleteTaskHandler(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	participant, err := s.CompleteTask(c.Params("id"), userID, c.Params("taskId"))
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Challenge not found"})
	case errors.Is(err, ErrTaskNotInScope):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found in this challenge"})
	case errors.Is(err, ErrNotParticipant):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Join the challenge before completing tasks"})
	case errors.Is(err, ErrTaskLocked):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Previous task must be completed first"})
	case err != nil:
		log.Printf("DB Error completing task: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to complete task"})
	}
	return c.JSON(fiber.Map{
		"message":            "Task completed",
		"completed_task_ids": participant.CompletedTaskIDs,
		"challenge_done":     participant.CompletedAt != nil,
	})
}
