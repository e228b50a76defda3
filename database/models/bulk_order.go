package models

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"
)

type BulkOrderTier string

const (
	TierSmall     BulkOrderTier = "small"
	TierMedium    BulkOrderTier = "medium"
	TierLarge     BulkOrderTier = "large"
	TierMassive   BulkOrderTier = "massive"
	TierLegendary BulkOrderTier = "legendary"
)

type BulkOrderStatus string

const (
	BulkOrderStatusActive    BulkOrderStatus = "active"
	BulkOrderStatusFulfilled BulkOrderStatus = "fulfilled"
	BulkOrderStatusExpired   BulkOrderStatus = "expired"
)

type BulkOrder struct {
	bun.BaseModel `bun:"table:bulk_orders,alias:bo"`

	ID        snowflake.ID `bun:"id,pk"`
	TraderID  string       `bun:"trader_id,notnull"`
	BuyerID   string       `bun:"buyer_id,notnull"`
	BuyerName string       `bun:"buyer_name,notnull"`
	ProductID string       `bun:"product_id,notnull"`
	Quantity  int          `bun:"quantity,notnull"`
	Progress  int          `bun:"progress,notnull,default:0"`

	// Drawn from the tier's range at creation and then fixed.
	BonusMultiplier float64       `bun:"bonus_multiplier,notnull"`
	Tier            BulkOrderTier `bun:"tier,notnull"`

	Status    BulkOrderStatus `bun:"status,notnull"`
	CreatedAt time.Time       `bun:"created_at,notnull"`
	ExpiresAt time.Time       `bun:"expires_at,notnull"`
}

// Expired reports whether the order is past its deadline. Orders expire
// lazily: callers observing an expired order treat it as gone.
func (o *BulkOrder) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// Remaining returns the quantity still needed to complete the order.
func (o *BulkOrder) Remaining() int {
	if o.Progress >= o.Quantity {
		return 0
	}
	return o.Quantity - o.Progress
}
