package bulkorder

import (
	"math/rand"

	"github.com/greenrush-game/economy-engine/database/models"
)

type tierSpec struct {
	MinBonus    float64
	MaxBonus    float64
	MinQuantity int
	MaxQuantity int
	Weight      int // Relative roll weight, out of 100
}

var tierTable = map[models.BulkOrderTier]tierSpec{
	models.TierSmall:     {MinBonus: 0.15, MaxBonus: 0.25, MinQuantity: 10, MaxQuantity: 25, Weight: 40},
	models.TierMedium:    {MinBonus: 0.25, MaxBonus: 0.40, MinQuantity: 25, MaxQuantity: 50, Weight: 30},
	models.TierLarge:     {MinBonus: 0.40, MaxBonus: 0.60, MinQuantity: 50, MaxQuantity: 100, Weight: 20},
	models.TierMassive:   {MinBonus: 0.60, MaxBonus: 1.00, MinQuantity: 100, MaxQuantity: 200, Weight: 8},
	models.TierLegendary: {MinBonus: 1.00, MaxBonus: 2.00, MinQuantity: 200, MaxQuantity: 500, Weight: 2},
}

var tierOrder = []models.BulkOrderTier{
	models.TierSmall,
	models.TierMedium,
	models.TierLarge,
	models.TierMassive,
	models.TierLegendary,
}

func rollTier(rng *rand.Rand) models.BulkOrderTier {
	roll := rng.Intn(100)
	for _, tier := range tierOrder {
		roll -= tierTable[tier].Weight
		if roll < 0 {
			return tier
		}
	}
	return models.TierSmall
}
