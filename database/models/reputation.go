package models

import (
	"github.com/uptrace/bun"
)

type ReputationLevel string

const (
	LevelSuspicious ReputationLevel = "suspicious"
	LevelNeutral    ReputationLevel = "neutral"
	LevelFriendly   ReputationLevel = "friendly"
	LevelTrusted    ReputationLevel = "trusted"
	LevelVIP        ReputationLevel = "vip"
	LevelLegendary  ReputationLevel = "legendary"
)

type ReputationEntry struct {
	bun.BaseModel `bun:"table:reputation_entries,alias:re"`

	ID       int64         `bun:"id,pk,autoincrement"`
	TraderID string        `bun:"trader_id,notnull"`
	Category BuyerCategory `bun:"category,notnull"`
	Score    int           `bun:"score,notnull,default:0"`
}
