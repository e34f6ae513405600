package models

import "time"

// Challenge is a day-by-day program inside a community. When
// SequentialProgression is set, participants must complete tasks in day
// order.
type Challenge struct {
	ID                    string  `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	CommunityID           string  `gorm:"index;not null" json:"community_id"`
	CreatorID             string  `gorm:"index;not null" json:"creator_id"`
	Title                 string  `gorm:"not null" json:"title"`
	Description           string  `gorm:"type:text" json:"description"`
	ThumbnailURL          string  `gorm:"type:text" json:"thumbnail_url"`
	PriceDT               float64 `gorm:"default:0" json:"price_dt"`
	SequentialProgression bool    `gorm:"default:false" json:"sequential_progression"`

	Tasks        []ChallengeTask        `json:"tasks,omitempty" gorm:"foreignKey:ChallengeID"`
	Participants []ChallengeParticipant `json:"participants,omitempty" gorm:"foreignKey:ChallengeID"`

	Timestamps
}

// ChallengeTask is one unit of a challenge, keyed by Day within its challenge.
type ChallengeTask struct {
	ID          string `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	ChallengeID string `gorm:"index;not null" json:"challenge_id"`
	Day         int    `gorm:"not null" json:"day"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	Timestamps
}

// ChallengeParticipant tracks one user inside one challenge. CompletedTaskIDs
// is a set; membership drives the sequential-progression gate.
type ChallengeParticipant struct {
	ID               string     `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	ChallengeID      string     `gorm:"uniqueIndex:ux_challenge_participant;not null" json:"challenge_id"`
	UserID           string     `gorm:"uniqueIndex:ux_challenge_participant;not null" json:"user_id"`
	CompletedTaskIDs []string   `gorm:"serializer:json" json:"completed_task_ids"`
	JoinedAt         time.Time  `gorm:"autoCreateTime" json:"joined_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// HasCompleted reports whether taskID is in the participant's completed set.
func (p *ChallengeParticipant) HasCompleted(taskID string) bool {
	for _, id := range p.CompletedTaskIDs {
		if id == taskID {
			return true
		}
	}
	return false
}

// MarkCompleted adds taskID to the completed set (idempotent, in-memory only;
// callers persist).
func (p *ChallengeParticipant) MarkCompleted(taskID string) {
	if !p.HasCompleted(taskID) {
		p.CompletedTaskIDs = append(p.CompletedTaskIDs, taskID)
	}
}
