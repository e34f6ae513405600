package models

// ContentType scopes orders, tracking rows and promo codes to one kind of
// purchasable/trackable item.
type ContentType string

const (
	ContentCommunity    ContentType = "community"
	ContentCourse       ContentType = "course"
	ContentChallenge    ContentType = "challenge"
	ContentEvent        ContentType = "event"
	ContentProduct      ContentType = "product"
	ContentSession      ContentType = "session"
	ContentSubscription ContentType = "subscription"
	ContentPost         ContentType = "post"
)

// PurchasableTypes are the content types a checkout can be initiated for.
var PurchasableTypes = []ContentType{
	ContentCommunity, ContentCourse, ContentChallenge,
	ContentEvent, ContentProduct, ContentSession, ContentSubscription,
}

// OrderStatus is the order lifecycle. Transitions are one-way:
// pending to paid or pending to refunded, enforced with a conditional update.
type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderPaid     OrderStatus = "paid"
	OrderRefunded OrderStatus = "refunded"
)

// Order is one purchase attempt with its full fee breakdown. It is created
// pending by the payment service and only that service (or the webhook path)
// mutates it. Invariant: AmountDT = PlatformFeeDT + CreatorNetDT.
type Order struct {
	ID        string `gorm:"primaryKey;type:uuid;default:(gen_random_uuid())" json:"id"`
	BuyerID   string `gorm:"index;not null" json:"buyer_id"`
	CreatorID string `gorm:"index;not null" json:"creator_id"`

	ContentType ContentType `gorm:"type:varchar(16);not null;index" json:"content_type"`
	ContentID   string      `gorm:"index;not null" json:"content_id"`

	AmountDT        float64 `gorm:"not null" json:"amount_dt"` // gross, after discount
	PlatformPercent float64 `json:"platform_percent"`
	PlatformFixedDT float64 `json:"platform_fixed_dt"`
	PlatformFeeDT   float64 `json:"platform_fee_dt"`
	CreatorNetDT    float64 `json:"creator_net_dt"`

	PromoCode  *string `gorm:"index" json:"promo_code,omitempty"`
	DiscountDT float64 `gorm:"default:0" json:"discount_dt"`

	PaymentID       string      `gorm:"index" json:"payment_id"` // gateway reference; order ID in offline mode
	PaymentProvider string      `gorm:"type:varchar(16)" json:"payment_provider"` // flouci, stripe-link, offline
	PaymentMethod   string      `gorm:"type:varchar(32)" json:"payment_method"`
	CustomerID      string      `gorm:"type:varchar(64)" json:"customer_id,omitempty"` // gateway customer, stripe-link only
	Status          OrderStatus `gorm:"type:varchar(16);default:'pending';index" json:"status"`

	Timestamps
}
