package reputation

import (
	"sync"

	"github.com/greenrush-game/economy-engine/database/models"
	"github.com/greenrush-game/economy-engine/economy/utils"
)

// TipRange is the tip contract exposed per level. Tips are cosmetic and
// play no role in pricing.
type TipRange struct {
	Chance float64
	Min    float64
	Max    float64
}

type repKey struct {
	traderID string
	category models.BuyerCategory
}

// Ledger tracks per-(trader, buyer-category) reputation scores. All
// operations are total: unknown pairs behave as score 0 (Neutral).
type Ledger struct {
	mu     sync.RWMutex
	scores map[repKey]int
}

func NewLedger() *Ledger {
	return &Ledger{
		scores: make(map[repKey]int),
	}
}

// Get returns the raw score for a (trader, category) pair, 0 if unknown.
func (l *Ledger) Get(traderID string, category models.BuyerCategory) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.scores[repKey{traderID, category}]
}

// Adjust applies a delta to the raw score. The raw score is never clamped;
// callers clamp for display and bonus lookup only.
func (l *Ledger) Adjust(traderID string, category models.BuyerCategory, delta int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := repKey{traderID, category}
	l.scores[key] += delta
	return l.scores[key]
}

// DisplayScore saturates a raw score into the display range.
func DisplayScore(score int) int {
	if score < utils.DisplayFloor {
		return utils.DisplayFloor
	}
	if score > utils.DisplayCeiling {
		return utils.DisplayCeiling
	}
	return score
}

// LevelFor maps a raw score onto the level ladder. A score exactly on a
// threshold belongs to that level.
func LevelFor(score int) models.ReputationLevel {
	switch {
	case score >= utils.ScoreLegendary:
		return models.LevelLegendary
	case score >= utils.ScoreVIP:
		return models.LevelVIP
	case score >= utils.ScoreTrusted:
		return models.LevelTrusted
	case score >= utils.ScoreFriendly:
		return models.LevelFriendly
	case score >= utils.ScoreNeutral:
		return models.LevelNeutral
	default:
		return models.LevelSuspicious
	}
}

// PriceBonusFor returns the price bonus fraction for a level.
func PriceBonusFor(level models.ReputationLevel) float64 {
	switch level {
	case models.LevelSuspicious:
		return -0.10
	case models.LevelFriendly:
		return 0.05
	case models.LevelTrusted:
		return 0.10
	case models.LevelVIP:
		return 0.15
	case models.LevelLegendary:
		return 0.20
	default:
		return 0
	}
}

// TipRangeFor returns the tip chance and amount range for a level.
func TipRangeFor(level models.ReputationLevel) TipRange {
	switch level {
	case models.LevelFriendly:
		return TipRange{Chance: 0.05, Min: 1, Max: 5}
	case models.LevelTrusted:
		return TipRange{Chance: 0.10, Min: 2, Max: 10}
	case models.LevelVIP:
		return TipRange{Chance: 0.15, Min: 5, Max: 20}
	case models.LevelLegendary:
		return TipRange{Chance: 0.25, Min: 10, Max: 50}
	default:
		return TipRange{}
	}
}

// Entries exports every stored entry, for persistence.
func (l *Ledger) Entries() []models.ReputationEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entries := make([]models.ReputationEntry, 0, len(l.scores))
	for key, score := range l.scores {
		entries = append(entries, models.ReputationEntry{
			TraderID: key.traderID,
			Category: key.category,
			Score:    score,
		})
	}
	return entries
}

// Restore replaces the ledger contents with persisted entries.
func (l *Ledger) Restore(entries []models.ReputationEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scores = make(map[repKey]int, len(entries))
	for _, e := range entries {
		l.scores[repKey{e.TraderID, e.Category}] = e.Score
	}
}
