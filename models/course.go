package models

import "time"

// Course is paid (or free) learning content inside a community.
type Course struct {
	ID           string  `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	CommunityID  string  `gorm:"index;not null" json:"community_id"`
	CreatorID    string  `gorm:"index;not null" json:"creator_id"`
	Title        string  `gorm:"not null" json:"title"`
	Slug         string  `gorm:"index" json:"slug"`
	Description  string  `gorm:"type:text" json:"description"`
	ThumbnailURL string  `gorm:"type:text" json:"thumbnail_url"`
	PriceDT      float64 `gorm:"default:0" json:"price_dt"`
	IsPublished  bool    `gorm:"default:false" json:"is_published"`

	Lessons []Lesson `json:"lessons,omitempty" gorm:"foreignKey:CourseID"`

	Timestamps
}

// Lesson is a single unit inside a course, ordered by Position.
type Lesson struct {
	ID          string `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	CourseID    string `gorm:"index;not null" json:"course_id"`
	Title       string `gorm:"not null" json:"title"`
	VideoURL    string `gorm:"type:text" json:"video_url"`
	DurationSec int    `gorm:"default:0" json:"duration_sec"`
	Position    int    `gorm:"default:0" json:"position"`

	Timestamps
}

// Enrollment links a user to a course they bought or were granted.
type Enrollment struct {
	ID         string    `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	CourseID   string    `gorm:"uniqueIndex:ux_enrollment;not null" json:"course_id"`
	UserID     string    `gorm:"uniqueIndex:ux_enrollment;not null" json:"user_id"`
	EnrolledAt time.Time `gorm:"autoCreateTime" json:"enrolled_at"`
}
