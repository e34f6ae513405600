package models

import "time"

// Community is the top-level creator space. Courses, challenges, events,
// products and posts all hang off a community.
type Community struct {
	ID           string  `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	CreatorID    string  `gorm:"index;not null" json:"creator_id"`
	Name         string  `gorm:"not null" json:"name"`
	Slug         string  `gorm:"uniqueIndex;not null" json:"slug"`
	Description  string  `gorm:"type:text" json:"description"`
	ThumbnailURL string  `gorm:"type:text" json:"thumbnail_url"`
	PriceDT      float64 `gorm:"default:0" json:"price_dt"` // 0 = free to join
	IsPrivate    bool    `gorm:"default:false" json:"is_private"`

	Members []CommunityMember `json:"members,omitempty" gorm:"foreignKey:CommunityID"`

	// Calculated, not stored
	MembersCount int64 `json:"members_count,omitempty" gorm:"-"`

	Timestamps
}

// CommunityMember is set-like: the unique index makes re-adding a member a
// conflict rather than a duplicate, which keeps paid-join grants idempotent.
type CommunityMember struct {
	ID          string    `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	CommunityID string    `gorm:"uniqueIndex:ux_community_member;not null" json:"community_id"`
	UserID      string    `gorm:"uniqueIndex:ux_community_member;not null" json:"user_id"`
	Role        string    `gorm:"type:varchar(16);default:'member'" json:"role"` // member, moderator
	JoinedAt    time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// Post is a community feed entry. It only carries what the progression
// overview needs to denormalize.
type Post struct {
	ID           string `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	CommunityID  string `gorm:"index;not null" json:"community_id"`
	AuthorID     string `gorm:"index;not null" json:"author_id"`
	Title        string `json:"title"`
	Body         string `gorm:"type:text" json:"body"`
	ThumbnailURL string `gorm:"type:text" json:"thumbnail_url"`

	Timestamps
}
