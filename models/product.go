package models

import "time"

// Product is a one-off digital good (ebook, template, asset pack).
type Product struct {
	ID           string  `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	CommunityID  string  `gorm:"index" json:"community_id"` // optional: products may be standalone
	CreatorID    string  `gorm:"index;not null" json:"creator_id"`
	Title        string  `gorm:"not null" json:"title"`
	Description  string  `gorm:"type:text" json:"description"`
	ThumbnailURL string  `gorm:"type:text" json:"thumbnail_url"`
	FileURL      string  `gorm:"type:text" json:"file_url"`
	PriceDT      float64 `gorm:"default:0" json:"price_dt"`

	Timestamps
}

// ProductPurchase records a settled product order and gates downloads.
type ProductPurchase struct {
	ID          string    `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	ProductID   string    `gorm:"uniqueIndex:ux_product_purchase;not null" json:"product_id"`
	UserID      string    `gorm:"uniqueIndex:ux_product_purchase;not null" json:"user_id"`
	OrderID     string    `gorm:"index" json:"order_id"`
	PurchasedAt time.Time `gorm:"autoCreateTime" json:"purchased_at"`
}
