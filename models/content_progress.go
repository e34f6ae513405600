package models

import "time"

// ContentProgress is one user's engagement record for one content item,
// created lazily on the first tracked action. Counters only increase and
// IsCompleted never flips back to false in normal flow. Mutators below work
// on the in-memory copy; the tracking service does a single save afterwards.
type ContentProgress struct {
	ID          string      `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	UserID      string      `gorm:"uniqueIndex:ux_progress;not null" json:"user_id"`
	ContentType ContentType `gorm:"uniqueIndex:ux_progress;type:varchar(16);not null" json:"content_type"`
	ContentID   string      `gorm:"uniqueIndex:ux_progress;not null" json:"content_id"`

	IsCompleted  bool       `gorm:"default:false" json:"is_completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	WatchTimeSec int64      `gorm:"default:0" json:"watch_time_sec"`
	Rating       int        `gorm:"default:0" json:"rating"` // 1-5, 0 = unrated
	Review       string     `gorm:"type:text" json:"review"`

	ViewCount     int64 `gorm:"default:0" json:"view_count"`
	LikeCount     int64 `gorm:"default:0" json:"like_count"`
	ShareCount    int64 `gorm:"default:0" json:"share_count"`
	DownloadCount int64 `gorm:"default:0" json:"download_count"`

	Bookmarks []string               `gorm:"serializer:json" json:"bookmarks,omitempty"`
	Metadata  map[string]interface{} `gorm:"serializer:json" json:"metadata,omitempty"`

	LastAccessedAt time.Time `gorm:"index" json:"last_accessed_at"`

	Timestamps
}

func (p *ContentProgress) Touch(now time.Time) { p.LastAccessedAt = now }

func (p *ContentProgress) IncrementView()     { p.ViewCount++ }
func (p *ContentProgress) IncrementLike()     { p.LikeCount++ }
func (p *ContentProgress) IncrementShare()    { p.ShareCount++ }
func (p *ContentProgress) IncrementDownload() { p.DownloadCount++ }

// AddWatchTime ignores non-positive deltas so the counter stays monotonic.
func (p *ContentProgress) AddWatchTime(seconds int64) {
	if seconds > 0 {
		p.WatchTimeSec += seconds
	}
}

// MarkCompleted is one-way: completing an already-completed item is a no-op
// and keeps the original CompletedAt.
func (p *ContentProgress) MarkCompleted(now time.Time) {
	if !p.IsCompleted {
		p.IsCompleted = true
		p.CompletedAt = &now
	}
}

// Rate stores a 1-5 rating with an optional review; out-of-range values are
// ignored.
func (p *ContentProgress) Rate(rating int, review string) {
	if rating >= 1 && rating <= 5 {
		p.Rating = rating
		if review != "" {
			p.Review = review
		}
	}
}

// AddBookmark is set-like.
func (p *ContentProgress) AddBookmark(id string) {
	for _, b := range p.Bookmarks {
		if b == id {
			return
		}
	}
	p.Bookmarks = append(p.Bookmarks, id)
}

// SetMetadata merges keys into the free-form metadata map.
func (p *ContentProgress) SetMetadata(kv map[string]interface{}) {
	if len(kv) == 0 {
		return
	}
	if p.Metadata == nil {
		p.Metadata = map[string]interface{}{}
	}
	for k, v := range kv {
		p.Metadata[k] = v
	}
}
