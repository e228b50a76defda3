package models

// Product is the catalog descriptor the host application supplies for a
// sellable good. The engine treats BaseUnitValue as opaque: potency and
// packaging quality are already folded in by the catalog.
type Product struct {
	ID            string  `json:"id"`
	BaseUnitValue float64 `json:"base_unit_value"`
	Rarity        string  `json:"rarity"`
	QualityTier   int     `json:"quality_tier"` // 1-5, 6 for the special top tier
}
