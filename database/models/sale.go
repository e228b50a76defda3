package models

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/uptrace/bun"
)

// SaleRecord is one completed sale. The sale log is append-only.
type SaleRecord struct {
	bun.BaseModel `bun:"table:sale_records,alias:sr"`

	ID        snowflake.ID `bun:"id,pk"`
	TraderID  string       `bun:"trader_id,notnull"`
	BuyerID   string       `bun:"buyer_id,notnull"`
	BuyerName string       `bun:"buyer_name,notnull"`
	ProductID string       `bun:"product_id,notnull"`
	Quantity  int          `bun:"quantity,notnull"`
	Amount    float64      `bun:"amount,notnull"`
	Timestamp time.Time    `bun:"timestamp,notnull"`
}

// SaleSummary is the cached per-trader aggregate view of the sale log.
// It must always match a full recomputation over the records.
type SaleSummary struct {
	TotalSales      int       `json:"total_sales"`
	TotalRevenue    float64   `json:"total_revenue"`
	CurrentStreak   int       `json:"current_streak"`
	LastSaleAt      time.Time `json:"last_sale_at"`
	TopBuyerByCount string    `json:"top_buyer_by_count"`
	TopBuyerBySpent string    `json:"top_buyer_by_spent"`
}

// SalePreset is a trader-managed quick-apply price configuration.
type SalePreset struct {
	Label       string  `json:"label"`
	Multiplier  float64 `json:"multiplier"`
	Description string  `json:"description"`
}

// TraderProfile bundles the durable per-trader sale analytics state.
type TraderProfile struct {
	bun.BaseModel `bun:"table:trader_profiles,alias:tp"`

	TraderID       string       `bun:"trader_id,pk"`
	Summary        SaleSummary  `bun:"summary,type:jsonb"`
	FavoriteBuyers []string     `bun:"favorite_buyers,type:jsonb"`
	Presets        []SalePreset `bun:"presets,type:jsonb"`
	UpdatedAt      time.Time    `bun:"updated_at,notnull"`
}
