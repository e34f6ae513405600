// services/tracking.go
package services

import (
	"errors"
	"fmt"
	"time"

	"creator-platform/models"

	"gorm.io/gorm"
)

// TrackingService is the shared per-user/per-content progress recorder. All
// content types funnel through it: one ContentProgress row per
// (user, type, id), plus an append-only TrackingAction log entry per call.
type TrackingService struct {
	DB *gorm.DB
}

func NewTrackingService(db *gorm.DB) *TrackingService {
	return &TrackingService{DB: db}
}

// GetOrCreateProgress returns the progress row, creating it lazily on the
// first tracked action.
func (s *TrackingService) GetOrCreateProgress(userID string, contentType models.ContentType, contentID string) (*models.ContentProgress, error) {
	var prog models.ContentProgress
	err := s.DB.Where("user_id = ? AND content_type = ? AND content_id = ?", userID, contentType, contentID).
		First(&prog).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		prog = models.ContentProgress{
			UserID:         userID,
			ContentType:    contentType,
			ContentID:      contentID,
			LastAccessedAt: time.Now(),
		}
		if err := s.DB.Create(&prog).Error; err != nil {
			return nil, err
		}
		return &prog, nil
	}
	if err != nil {
		return nil, err
	}
	return &prog, nil
}

// RecordAction applies one tracked action: mutate the in-memory progress
// row, save it once, and append the immutable log entry.
func (s *TrackingService) RecordAction(userID string, contentType models.ContentType, contentID string, action models.ActionType, metadata map[string]interface{}) (*models.ContentProgress, error) {
	prog, err := s.GetOrCreateProgress(userID, contentType, contentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	prog.Touch(now)

	switch action {
	case models.ActionView:
		prog.IncrementView()
	case models.ActionLike:
		prog.IncrementLike()
	case models.ActionShare:
		prog.IncrementShare()
	case models.ActionDownload:
		prog.IncrementDownload()
	case models.ActionWatchTime:
		prog.AddWatchTime(metaInt64(metadata, "seconds"))
	case models.ActionComplete:
		prog.MarkCompleted(now)
	case models.ActionRate:
		prog.Rate(int(metaInt64(metadata, "rating")), metaString(metadata, "review"))
	case models.ActionBookmark:
		prog.AddBookmark(metaString(metadata, "bookmark_id"))
	case models.ActionStart:
		// progress row creation + timestamp is the whole effect
	default:
		return nil, fmt.Errorf("unknown action type %q", action)
	}
	prog.SetMetadata(metadata)

	return prog, s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(prog).Error; err != nil {
			return err
		}
		entry := models.TrackingAction{
			UserID:      userID,
			ContentType: contentType,
			ContentID:   contentID,
			ActionType:  action,
			Metadata:    metadata,
		}
		return tx.Create(&entry).Error
	})
}

// GetProgress returns the progress row without creating one; missing rows
// surface gorm.ErrRecordNotFound.
func (s *TrackingService) GetProgress(userID string, contentType models.ContentType, contentID string) (*models.ContentProgress, error) {
	var prog models.ContentProgress
	err := s.DB.Where("user_id = ? AND content_type = ? AND content_id = ?", userID, contentType, contentID).
		First(&prog).Error
	if err != nil {
		return nil, err
	}
	return &prog, nil
}

// GetRecentActions returns the user's newest log entries, newest first.
func (s *TrackingService) GetRecentActions(userID string, limit int) ([]models.TrackingAction, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var actions []models.TrackingAction
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&actions).Error
	return actions, err
}

func metaInt64(m map[string]interface{}, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}

func metaString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
