package pricing

import (
	"math"

	"github.com/greenrush-game/economy-engine/database/models"
	"github.com/greenrush-game/economy-engine/economy/utils"
)

// PricingConfig holds the bonus weights for quote composition.
type PricingConfig struct {
	FavoriteProductBonus  float64 // Product among the buyer's favorites
	FavoriteRarityBonus   float64 // Rarity matches the buyer's favorite
	QualityBonus          float64 // Quality-preferring buyer, high tier
	BulkPrefBonus         float64 // Bulk-preferring buyer, large quantity
	LoyalMoodBonus        float64 // Buyer mood is loyal
	QualityTierThreshold  int     // Minimum tier for the quality bonus
	BulkQuantityThreshold int     // Minimum quantity for the bulk bonus
	MinFactor             float64 // Floor for every multiplicative factor
}

// DefaultPricingConfig returns the canonical bonus weights.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		FavoriteProductBonus:  utils.FavoriteProductBonus,
		FavoriteRarityBonus:   utils.FavoriteRarityBonus,
		QualityBonus:          utils.QualityBonus,
		BulkPrefBonus:         utils.BulkBonus,
		LoyalMoodBonus:        utils.LoyalMoodBonus,
		QualityTierThreshold:  utils.QualityBonusTier,
		BulkQuantityThreshold: utils.BulkBonusQuantity,
		MinFactor:             utils.MinPriceFactor,
	}
}

// QuoteInput is a consistent snapshot of everything a quote depends on.
// The calculator never reads shared state, so Quote is pure: identical
// inputs always produce identical prices.
type QuoteInput struct {
	Product  models.Product
	Quantity int

	// Buyer snapshot; nil for an unknown buyer (standard category, no
	// bonuses).
	Buyer *models.Buyer
	Mood  models.Mood

	CategoryMultiplier float64
	MarketMultiplier   float64
	ReputationBonus    float64
	LoyaltyBonus       float64

	// Bonus multiplier of a fulfillable matching bulk order; zero when
	// none. Applied to every contributing transaction.
	BulkOrderBonus float64
}

// Calculator composes a final sale price from a quote snapshot.
type Calculator struct {
	config PricingConfig
}

func NewCalculator(config PricingConfig) *Calculator {
	return &Calculator{config: config}
}

// Quote runs the fixed composition pipeline. Every step is multiplicative
// with the factor clamped to MinFactor, intermediate values keep full
// precision, and only the final result is rounded (half-up, two decimals).
func (c *Calculator) Quote(in QuoteInput) float64 {
	price := in.Product.BaseUnitValue * float64(in.Quantity)

	price = c.apply(price, in.CategoryMultiplier)
	price = c.apply(price, in.MarketMultiplier)
	price = c.apply(price, 1+in.ReputationBonus)
	price = c.apply(price, 1+in.LoyaltyBonus)

	if in.Buyer != nil {
		if hasFavorite(in.Buyer, in.Product.ID) {
			price = c.apply(price, 1+c.config.FavoriteProductBonus)
		}
		if in.Product.Rarity == in.Buyer.FavoriteRarity {
			price = c.apply(price, 1+c.config.FavoriteRarityBonus)
		}
		if in.Buyer.PrefersQuality && in.Product.QualityTier >= c.config.QualityTierThreshold {
			price = c.apply(price, 1+c.config.QualityBonus)
		}
		if in.Buyer.PrefersBulk && in.Quantity >= c.config.BulkQuantityThreshold {
			price = c.apply(price, 1+c.config.BulkPrefBonus)
		}
		if in.Mood == models.MoodLoyal {
			price = c.apply(price, 1+c.config.LoyalMoodBonus)
		}
	}

	if in.BulkOrderBonus > 0 {
		price = c.apply(price, 1+in.BulkOrderBonus)
	}

	return RoundPrice(price)
}

// apply multiplies by a factor clamped to the configured floor, so no step
// can drive the price negative.
func (c *Calculator) apply(price, factor float64) float64 {
	if factor < c.config.MinFactor {
		factor = c.config.MinFactor
	}
	return price * factor
}

func hasFavorite(b *models.Buyer, productID string) bool {
	for _, id := range b.FavoriteProducts {
		if id == productID {
			return true
		}
	}
	return false
}

// RoundPrice rounds to two decimal places, half-up.
func RoundPrice(price float64) float64 {
	return math.Floor(price*100+0.5) / 100
}
