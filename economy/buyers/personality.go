package buyers

import (
	"math/rand"

	"github.com/greenrush-game/economy-engine/database/models"
)

// personalityInfo fixes everything a personality tag implies: the buyer
// category (which drives the category multiplier and the reputation key)
// and the default preference flags.
type personalityInfo struct {
	Category       models.BuyerCategory
	PrefersQuality bool
	PrefersBulk    bool
	Weight         int // Relative spawn weight, out of 100
}

var personalityTable = map[models.Personality]personalityInfo{
	models.PersonalityCasual:      {Category: models.CategoryStandard, Weight: 30},
	models.PersonalityRegular:     {Category: models.CategoryStandard, PrefersBulk: true, Weight: 25},
	models.PersonalityConnoisseur: {Category: models.CategoryPremium, PrefersQuality: true, Weight: 15},
	models.PersonalityHighRoller:  {Category: models.CategoryPremium, PrefersQuality: true, PrefersBulk: true, Weight: 10},
	models.PersonalityBargain:     {Category: models.CategoryDiscount, PrefersBulk: true, Weight: 12},
	models.PersonalitySkeptic:     {Category: models.CategoryDiscount, Weight: 8},
}

// personalityOrder keeps weighted rolls deterministic for a seeded source.
var personalityOrder = []models.Personality{
	models.PersonalityCasual,
	models.PersonalityRegular,
	models.PersonalityConnoisseur,
	models.PersonalityHighRoller,
	models.PersonalityBargain,
	models.PersonalitySkeptic,
}

// CategoryFor returns the buyer category a personality belongs to.
// Unknown personalities fall back to standard.
func CategoryFor(p models.Personality) models.BuyerCategory {
	if info, ok := personalityTable[p]; ok {
		return info.Category
	}
	return models.CategoryStandard
}

// CategoryMultiplier returns the fixed price multiplier for a category.
func CategoryMultiplier(c models.BuyerCategory) float64 {
	switch c {
	case models.CategoryPremium:
		return 1.5
	case models.CategoryDiscount:
		return 0.8
	default:
		return 1.0
	}
}

func rollPersonality(rng *rand.Rand) models.Personality {
	roll := rng.Intn(100)
	for _, p := range personalityOrder {
		roll -= personalityTable[p].Weight
		if roll < 0 {
			return p
		}
	}
	return models.PersonalityCasual
}

var rarityTiers = []string{"common", "uncommon", "rare", "epic", "legendary"}

var namePool = []string{
	"Slim", "Tiny Dave", "Big Mo", "Roxy", "Fitz", "Duke",
	"Candy", "Smokey", "Vera", "Ace", "Lefty", "Preacher",
	"Mags", "Ghost", "Turbo", "Dizzy", "Queenie", "Sarge",
	"Flaco", "Birdie", "Hack", "Pockets", "Nova", "Gumbo",
}

func rollName(rng *rand.Rand) string {
	return namePool[rng.Intn(len(namePool))]
}
