package models

import (
	"time"

	"github.com/uptrace/bun"
)

type MarketEventKind string

const (
	MarketNormal          MarketEventKind = "normal"
	MarketBuyerRush       MarketEventKind = "buyer_rush"
	MarketPoliceCrackdown MarketEventKind = "police_crackdown"
	MarketFestivalSeason  MarketEventKind = "festival_season"
	MarketSupplyShortage  MarketEventKind = "supply_shortage"
	MarketCrash           MarketEventKind = "market_crash"
	MarketPremiumDemand   MarketEventKind = "premium_demand"
)

// MarketEvent is the global timed price modifier. A single instance is
// active at a time; it is replaced wholesale on expiry, never mutated.
type MarketEvent struct {
	bun.BaseModel `bun:"table:market_events,alias:me"`

	ID         int64           `bun:"id,pk,autoincrement"`
	Kind       MarketEventKind `bun:"kind,notnull"`
	Multiplier float64         `bun:"multiplier,notnull"`
	StartedAt  time.Time       `bun:"started_at,notnull"`
	ExpiresAt  time.Time       `bun:"expires_at,notnull"`
}
