package utils

import "time"

// Reputation Constants
const (
	// Level thresholds (score at the threshold belongs to that level)
	ScoreNeutral   = 0
	ScoreFriendly  = 50
	ScoreTrusted   = 150
	ScoreVIP       = 300
	ScoreLegendary = 500

	// Display clamp range for raw scores
	DisplayFloor   = -50
	DisplayCeiling = 500

	// Reputation gain per sale
	BaseReputationGain   = 2  // Flat gain per successful sale
	ReputationPerHundred = 1  // Extra gain per full $100 of sale value
	MaxReputationPerSale = 20 // Cap per transaction
)

// Loyalty Constants
const (
	LoyaltyBonusCap     = 0.5   // Maximum loyalty bonus
	LoyaltyBonusDivisor = 400.0 // totalPurchases / divisor, capped
)

// Buyer Mood Thresholds
const (
	LoyalPurchaseThreshold     = 20                 // Purchases needed for loyal mood
	SatisfiedPurchaseThreshold = 5                  // Purchases needed for satisfied mood
	LoyalRecencyWindow         = 3 * 24 * time.Hour // Seen within this window for loyal
	MissedYouWindow            = 7 * 24 * time.Hour // Unseen for this long triggers missed_you
)

// Buyer Directory Constants
const (
	FavoriteProductsCap = 5 // Top products tracked per buyer
)

// Market Event Constants
const (
	MarketEventChance      = 0.08             // Chance per tick to leave Normal
	MarketEventMinDuration = 20 * time.Minute // Minimum event duration
	MarketEventMaxDuration = 60 * time.Minute // Maximum event duration
)

// Bulk Order Constants
const (
	BulkOrderCooldown = 30 * time.Minute // Between order generations, per trader
	BulkOrderLifetime = 45 * time.Minute // Active window before expiry
)

// Pricing Bonus Constants
const (
	FavoriteProductBonus = 0.15 // Product is among buyer's favorites
	FavoriteRarityBonus  = 0.10 // Rarity matches buyer's favorite
	QualityBonus         = 0.20 // Quality-preferring buyer, tier >= QualityBonusTier
	BulkBonus            = 0.15 // Bulk-preferring buyer, quantity >= BulkBonusQuantity
	LoyalMoodBonus       = 0.10 // Buyer mood is loyal

	QualityBonusTier  = 4  // Minimum quality tier for the quality bonus
	BulkBonusQuantity = 10 // Minimum quantity for the bulk bonus

	MinPriceFactor = 0.1 // Floor applied to every multiplicative factor
)

// Sale Analytics Constants
const (
	StreakInactivityWindow = 30 * time.Minute // Gap that breaks a sale streak
	SummaryCacheSize       = 1000             // Per-trader summary LRU size
)
