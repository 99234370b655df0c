package los

import (
	"github.com/Garsondee/hexsight/internal/hexgrid"
	"github.com/Garsondee/hexsight/internal/terrain"
)

// Terrain is the read-only board view the engine queries. *terrain.Board
// implements it.
type Terrain interface {
	InBounds(h hexgrid.Coord) bool
	Elevation(h hexgrid.Coord) (int, error)
	FeatureLevel(h hexgrid.Coord, f terrain.Feature) (int, error)
	OccupiedByOther(h hexgrid.Coord) (bool, error)
}

var _ Terrain = (*terrain.Board)(nil)

// Geometry describes one shot. Heights are offsets above the ground of each
// end's hex, in levels.
type Geometry struct {
	Attacker         hexgrid.Coord
	Target           hexgrid.Coord
	AttackerHeight   int
	TargetHeight     int
	AttackerCategory Category
	TargetCategory   Category
	Board            Terrain
}

// Flip returns the same shot taken the other way round.
func (g Geometry) Flip() Geometry {
	return Geometry{
		Attacker:         g.Target,
		Target:           g.Attacker,
		AttackerHeight:   g.TargetHeight,
		TargetHeight:     g.AttackerHeight,
		AttackerCategory: g.TargetCategory,
		TargetCategory:   g.AttackerCategory,
		Board:            g.Board,
	}
}

// Range is the hex distance between the two ends.
func (g Geometry) Range() int {
	return hexgrid.Distance(g.Attacker, g.Target)
}
