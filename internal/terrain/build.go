package terrain

import "github.com/Garsondee/hexsight/internal/hexgrid"

// optionKind controls the pass in which an option is applied.
type optionKind int

const (
	optGround optionKind = iota // elevation, applied first
	optFeature                  // woods, buildings, water
	optUnit                     // unit placement, applied last
)

// Option is a builder step applied to a Board during Build.
type Option struct {
	kind optionKind
	fn   func(*Board)
}

// Build constructs a w x h board from the given options in ordered passes:
//  1. Ground (elevation)
//  2. Terrain features
//  3. Units
//
// Options naming hexes off the board are ignored.
func Build(w, h int, opts ...Option) *Board {
	b := NewBoard(w, h)
	for _, kind := range []optionKind{optGround, optFeature, optUnit} {
		for _, o := range opts {
			if o.kind == kind {
				o.fn(b)
			}
		}
	}
	return b
}

// WithName labels the board.
func WithName(name string) Option {
	return Option{optGround, func(b *Board) { b.Name = name }}
}

// WithElevation sets the ground level of a hex.
func WithElevation(c hexgrid.Coord, elev int) Option {
	return Option{optGround, func(b *Board) { _ = b.SetElevation(c, elev) }}
}

// WithHill raises every hex within radius of center to elev.
func WithHill(center hexgrid.Coord, radius, elev int) Option {
	return Option{optGround, func(b *Board) {
		for i := range b.grid {
			if hexgrid.Distance(center, b.grid[i].Coord) <= radius {
				b.grid[i].Elevation = elev
			}
		}
	}}
}

// WithWoods puts woods of the given level (1 light, 2 heavy) in a hex.
func WithWoods(c hexgrid.Coord, level int) Option {
	return Option{optFeature, func(b *Board) { _ = b.SetFeature(c, Woods, level) }}
}

// WithBuilding puts a building of the given height in levels in a hex.
func WithBuilding(c hexgrid.Coord, level int) Option {
	return Option{optFeature, func(b *Board) { _ = b.SetFeature(c, Building, level) }}
}

// WithWater floods a hex to the given depth.
func WithWater(c hexgrid.Coord, depth int) Option {
	return Option{optFeature, func(b *Board) { _ = b.SetFeature(c, Water, depth) }}
}

// WithUnit places a labelled unit in a hex.
func WithUnit(c hexgrid.Coord, label string) Option {
	return Option{optUnit, func(b *Board) { _ = b.Place(c, label) }}
}
