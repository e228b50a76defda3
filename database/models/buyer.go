package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Personality string

const (
	PersonalityCasual      Personality = "casual"
	PersonalityRegular     Personality = "regular"
	PersonalityConnoisseur Personality = "connoisseur"
	PersonalityHighRoller  Personality = "high_roller"
	PersonalityBargain     Personality = "bargain"
	PersonalitySkeptic     Personality = "skeptic"
)

type BuyerCategory string

const (
	CategoryStandard BuyerCategory = "standard"
	CategoryPremium  BuyerCategory = "premium"
	CategoryDiscount BuyerCategory = "discount"
)

type Mood string

const (
	MoodNew       Mood = "new"
	MoodNeutral   Mood = "neutral"
	MoodSatisfied Mood = "satisfied"
	MoodLoyal     Mood = "loyal"
	MoodMissedYou Mood = "missed_you"
)

type Buyer struct {
	bun.BaseModel `bun:"table:buyers,alias:b"`

	ID          string      `bun:"id,pk"`
	Name        string      `bun:"name,notnull"`
	Personality Personality `bun:"personality,notnull"`

	// Preferences
	FavoriteRarity   string   `bun:"favorite_rarity,notnull"`
	PrefersQuality   bool     `bun:"prefers_quality,notnull,default:false"`
	PrefersBulk      bool     `bun:"prefers_bulk,notnull,default:false"`
	FavoriteProducts []string `bun:"favorite_products,type:jsonb"`

	// History
	TotalPurchases  int            `bun:"total_purchases,notnull,default:0"`
	TotalSpent      float64        `bun:"total_spent,notnull,default:0"`
	PurchaseHistory map[string]int `bun:"purchase_history,type:jsonb"`

	FirstSeenAt time.Time `bun:"first_seen_at,notnull"`
	LastSeenAt  time.Time `bun:"last_seen_at,notnull"`
}

// Clone returns a deep copy safe to hand out to read-only callers.
func (b *Buyer) Clone() *Buyer {
	if b == nil {
		return nil
	}
	cp := *b
	cp.FavoriteProducts = append([]string(nil), b.FavoriteProducts...)
	cp.PurchaseHistory = make(map[string]int, len(b.PurchaseHistory))
	for k, v := range b.PurchaseHistory {
		cp.PurchaseHistory[k] = v
	}
	return &cp
}
