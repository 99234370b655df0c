package los

// Default rule values. Heights are in levels, modifiers in to-hit points.
const (
	lightWoodsHeight = 1
	heavyWoodsHeight = 2
	lightWoodsMod    = 1
	heavyWoodsMod    = 2

	smallBuildingMod   = 1
	largeBuildingMod   = 2
	largeBuildingLevel = 3 // building levels at or above this use largeBuildingMod

	interveningUnitMod = 1
	submergedDepth     = 2 // a unit in water this deep is hidden below the surface

	woodsBlockThreshold = 3 // accumulated woods modifier that makes the shot impossible
)

// Rules holds every tunable of the engine. The zero value is not useful; start
// from DefaultRules.
type Rules struct {
	LightWoodsHeight int
	HeavyWoodsHeight int
	LightWoodsMod    int
	HeavyWoodsMod    int

	SmallBuildingMod   int
	LargeBuildingMod   int
	LargeBuildingLevel int

	InterveningUnitMod int
	SubmergedDepth     int

	// WoodsBlock is the accumulated woods modifier at which no shot is possible.
	WoodsBlock int
}

// DefaultRules returns the standard rule table.
func DefaultRules() Rules {
	return Rules{
		LightWoodsHeight:   lightWoodsHeight,
		HeavyWoodsHeight:   heavyWoodsHeight,
		LightWoodsMod:      lightWoodsMod,
		HeavyWoodsMod:      heavyWoodsMod,
		SmallBuildingMod:   smallBuildingMod,
		LargeBuildingMod:   largeBuildingMod,
		LargeBuildingLevel: largeBuildingLevel,
		InterveningUnitMod: interveningUnitMod,
		SubmergedDepth:     submergedDepth,
		WoodsBlock:         woodsBlockThreshold,
	}
}

// buildingMod is the cover a building of the given level gives.
func (r Rules) buildingMod(level int) int {
	if level >= r.LargeBuildingLevel {
		return r.LargeBuildingMod
	}
	return r.SmallBuildingMod
}
