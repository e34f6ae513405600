// services/progression.go
package services

import (
	"time"

	"creator-platform/models"

	"gorm.io/gorm"
)

// Content types the overview aggregates by default.
var overviewDefaultTypes = []models.ContentType{
	models.ContentCourse,
	models.ContentChallenge,
	models.ContentSession,
	models.ContentEvent,
	models.ContentProduct,
	models.ContentPost,
}

// Item statuses derived from a progress row.
const (
	StatusCompleted  = "completed"
	StatusInProgress = "in_progress"
	StatusNotStarted = "not_started"
)

// OverviewItem is one progress row joined with its denormalized content.
type OverviewItem struct {
	ContentType    models.ContentType     `json:"content_type"`
	ContentID      string                 `json:"content_id"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description,omitempty"`
	ThumbnailURL   string                 `json:"thumbnail_url,omitempty"`
	Status         string                 `json:"status"`
	IsCompleted    bool                   `json:"is_completed"`
	WatchTimeSec   int64                  `json:"watch_time_sec"`
	ViewCount      int64                  `json:"view_count"`
	LikeCount      int64                  `json:"like_count"`
	Rating         int                    `json:"rating,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	CompletedAt    *time.Time             `json:"completed_at,omitempty"`
	LastAccessedAt time.Time              `json:"last_accessed_at"`
}

// TypeCount is the per-type slice of the summary.
type TypeCount struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// OverviewSummary counts items on the current page only. Clients show it
// next to the page they are looking at, not as a global aggregate.
type OverviewSummary struct {
	Total      int                  `json:"total"`
	Completed  int                  `json:"completed"`
	InProgress int                  `json:"in_progress"`
	NotStarted int                  `json:"not_started"`
	ByType     map[string]TypeCount `json:"by_type"`
}

// Overview is the full response payload.
type Overview struct {
	Summary    OverviewSummary `json:"summary"`
	Pagination Pagination      `json:"pagination"`
	Items      []OverviewItem  `json:"items"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// ProgressionService joins the tracking store with denormalized content
// rows into a unified "what have I done" view.
type ProgressionService struct {
	DB *gorm.DB
}

func NewProgressionService(db *gorm.DB) *ProgressionService {
	return &ProgressionService{DB: db}
}

// communityContentIDs resolves which content ids of one type belong to a
// community.
func (s *ProgressionService) communityContentIDs(contentType models.ContentType, communityID string) ([]string, error) {
	var ids []string
	var err error
	switch contentType {
	case models.ContentCourse:
		err = s.DB.Model(&models.Course{}).Where("community_id = ?", communityID).Pluck("id", &ids).Error
	case models.ContentChallenge:
		err = s.DB.Model(&models.Challenge{}).Where("community_id = ?", communityID).Pluck("id", &ids).Error
	case models.ContentSession:
		err = s.DB.Model(&models.CoachingSession{}).Where("community_id = ?", communityID).Pluck("id", &ids).Error
	case models.ContentEvent:
		err = s.DB.Model(&models.Event{}).Where("community_id = ?", communityID).Pluck("id", &ids).Error
	case models.ContentProduct:
		err = s.DB.Model(&models.Product{}).Where("community_id = ?", communityID).Pluck("id", &ids).Error
	case models.ContentPost:
		err = s.DB.Model(&models.Post{}).Where("community_id = ?", communityID).Pluck("id", &ids).Error
	}
	return ids, err
}

// contentMeta is the denormalized shape fetched per content type.
type contentMeta struct {
	ID           string
	Title        string
	Description  string
	ThumbnailURL string
}

// batchFetchMeta loads title/description/thumbnail for a set of ids of one
// type in a single query (no per-row lookups).
func (s *ProgressionService) batchFetchMeta(contentType models.ContentType, ids []string) (map[string]contentMeta, error) {
	out := make(map[string]contentMeta, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []contentMeta
	var err error
	switch contentType {
	case models.ContentCourse:
		err = s.DB.Model(&models.Course{}).Select("id, title, description, thumbnail_url").Where("id IN ?", ids).Scan(&rows).Error
	case models.ContentChallenge:
		err = s.DB.Model(&models.Challenge{}).Select("id, title, description, thumbnail_url").Where("id IN ?", ids).Scan(&rows).Error
	case models.ContentSession:
		err = s.DB.Model(&models.CoachingSession{}).Select("id, title, description").Where("id IN ?", ids).Scan(&rows).Error
	case models.ContentEvent:
		err = s.DB.Model(&models.Event{}).Select("id, title, description, thumbnail_url").Where("id IN ?", ids).Scan(&rows).Error
	case models.ContentProduct:
		err = s.DB.Model(&models.Product{}).Select("id, title, description, thumbnail_url").Where("id IN ?", ids).Scan(&rows).Error
	case models.ContentPost:
		err = s.DB.Model(&models.Post{}).Select("id, title, body as description, thumbnail_url").Where("id IN ?", ids).Scan(&rows).Error
	default:
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ID] = r
	}
	return out, nil
}

// deriveStatus: completed beats everything; any recorded engagement means
// in_progress; a bare row (e.g. created by a "start" action) is not_started.
func deriveStatus(p *models.ContentProgress) string {
	if p.IsCompleted {
		return StatusCompleted
	}
	if p.WatchTimeSec > 0 || p.ViewCount > 0 || p.LikeCount > 0 {
		return StatusInProgress
	}
	if p.Metadata != nil {
		if _, ok := p.Metadata["progressPercent"]; ok {
			return StatusInProgress
		}
	}
	return StatusNotStarted
}

// GetUserProgressOverview builds the paginated unified view. With a
// community filter, the tracking query is narrowed to exactly the content
// ids that belong to that community; requested types with zero ids in the
// community are dropped from the result entirely rather than matched empty.
func (s *ProgressionService) GetUserProgressOverview(userID string, contentTypes []models.ContentType, page, limit int, communityID string) (*Overview, error) {
	if len(contentTypes) == 0 {
		contentTypes = overviewDefaultTypes
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.DB.Model(&models.ContentProgress{}).Where("user_id = ?", userID)

	if communityID != "" {
		var scoped *gorm.DB
		for _, ct := range contentTypes {
			ids, err := s.communityContentIDs(ct, communityID)
			if err != nil {
				return nil, err
			}
			if len(ids) == 0 {
				continue
			}
			cond := s.DB.Session(&gorm.Session{NewDB: true}).
				Where("content_type = ? AND content_id IN ?", ct, ids)
			if scoped == nil {
				scoped = cond
			} else {
				scoped = scoped.Or(cond)
			}
		}
		if scoped == nil {
			return &Overview{
				Summary:    OverviewSummary{ByType: map[string]TypeCount{}},
				Pagination: Pagination{Page: page, Limit: limit},
				Items:      []OverviewItem{},
			}, nil
		}
		query = query.Where(scoped)
	} else {
		query = query.Where("content_type IN ?", contentTypes)
	}

	var totalItems int64
	if err := query.Count(&totalItems).Error; err != nil {
		return nil, err
	}

	var progressRows []models.ContentProgress
	if err := query.
		Order("last_accessed_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&progressRows).Error; err != nil {
		return nil, err
	}

	// One metadata query per content type present on this page.
	idsByType := map[models.ContentType][]string{}
	for _, p := range progressRows {
		idsByType[p.ContentType] = append(idsByType[p.ContentType], p.ContentID)
	}
	metaByType := map[models.ContentType]map[string]contentMeta{}
	for ct, ids := range idsByType {
		meta, err := s.batchFetchMeta(ct, ids)
		if err != nil {
			return nil, err
		}
		metaByType[ct] = meta
	}

	items := make([]OverviewItem, 0, len(progressRows))
	summary := OverviewSummary{ByType: map[string]TypeCount{}}
	for i := range progressRows {
		p := &progressRows[i]
		meta := metaByType[p.ContentType][p.ContentID]
		status := deriveStatus(p)

		items = append(items, OverviewItem{
			ContentType:    p.ContentType,
			ContentID:      p.ContentID,
			Title:          meta.Title,
			Description:    meta.Description,
			ThumbnailURL:   meta.ThumbnailURL,
			Status:         status,
			IsCompleted:    p.IsCompleted,
			WatchTimeSec:   p.WatchTimeSec,
			ViewCount:      p.ViewCount,
			LikeCount:      p.LikeCount,
			Rating:         p.Rating,
			Metadata:       p.Metadata,
			CompletedAt:    p.CompletedAt,
			LastAccessedAt: p.LastAccessedAt,
		})

		// Counts cover the current page only.
		summary.Total++
		tc := summary.ByType[string(p.ContentType)]
		tc.Total++
		switch status {
		case StatusCompleted:
			summary.Completed++
			tc.Completed++
		case StatusInProgress:
			summary.InProgress++
		default:
			summary.NotStarted++
		}
		summary.ByType[string(p.ContentType)] = tc
	}

	totalPages := int((totalItems + int64(limit) - 1) / int64(limit))
	return &Overview{
		Summary: summary,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			TotalItems: totalItems,
			TotalPages: totalPages,
		},
		Items: items,
	}, nil
}
