// Package terrain is the in-memory board store: per-hex elevation, terrain
// features and unit occupancy, read through the query methods the line-of-sight
// engine consumes.
package terrain

import (
	"errors"
	"fmt"

	"github.com/Garsondee/hexsight/internal/hexgrid"
)

// ErrOutOfBounds is returned by every query for a hex outside the board.
var ErrOutOfBounds = errors.New("terrain: hex outside board")

// Feature identifies a terrain feature kind whose level the engine reads.
type Feature int

const (
	Woods    Feature = iota // level 1=light, 2=heavy
	Building                // level = building height in levels
	Water                   // level = depth
)

// Features lists every feature kind in display order.
var Features = [...]Feature{Woods, Building, Water}

func (f Feature) String() string {
	switch f {
	case Woods:
		return "woods"
	case Building:
		return "building"
	case Water:
		return "water"
	default:
		return fmt.Sprintf("feature(%d)", int(f))
	}
}

// Sample is everything the engine needs to know about one hex.
type Sample struct {
	Elevation int
	Woods     int
	Building  int
	Water     int
	Occupied  bool
}

// Level returns the sampled level of f.
func (s Sample) Level(f Feature) int {
	switch f {
	case Woods:
		return s.Woods
	case Building:
		return s.Building
	case Water:
		return s.Water
	default:
		return 0
	}
}

// Hex is one stored board cell.
type Hex struct {
	Coord     hexgrid.Coord
	Elevation int
	Levels    [len(Features)]int
	Unit      string // label of the occupying unit, "" when empty
}

// Board is a rectangular board of Width x Height hexes with 1-based coordinates.
// A Board is not safe for concurrent mutation; take a Snapshot before handing it
// to concurrent readers that must not observe edits.
type Board struct {
	Width, Height int
	Name          string
	grid          []Hex // flat 2D grid: (col-1)*Height + (row-1)
}

// NewBoard returns a flat, featureless board.
func NewBoard(w, h int) *Board {
	b := &Board{Width: w, Height: h, grid: make([]Hex, w*h)}
	for col := 1; col <= w; col++ {
		for row := 1; row <= h; row++ {
			b.grid[b.index(hexgrid.Coord{Col: col, Row: row})].Coord = hexgrid.Coord{Col: col, Row: row}
		}
	}
	return b
}

func (b *Board) index(h hexgrid.Coord) int {
	return (h.Col-1)*b.Height + (h.Row - 1)
}

// InBounds reports whether h is on the board.
func (b *Board) InBounds(h hexgrid.Coord) bool {
	return h.Col >= 1 && h.Col <= b.Width && h.Row >= 1 && h.Row <= b.Height
}

// Get returns the stored hex, or nil when h is off the board.
func (b *Board) Get(h hexgrid.Coord) *Hex {
	if !b.InBounds(h) {
		return nil
	}
	return &b.grid[b.index(h)]
}

func (b *Board) mustGet(h hexgrid.Coord) (*Hex, error) {
	hex := b.Get(h)
	if hex == nil {
		return nil, fmt.Errorf("%w: %s", ErrOutOfBounds, h)
	}
	return hex, nil
}

// Elevation returns the ground level of h.
func (b *Board) Elevation(h hexgrid.Coord) (int, error) {
	hex, err := b.mustGet(h)
	if err != nil {
		return 0, err
	}
	return hex.Elevation, nil
}

// FeatureLevel returns the level of f in h, 0 when absent.
func (b *Board) FeatureLevel(h hexgrid.Coord, f Feature) (int, error) {
	hex, err := b.mustGet(h)
	if err != nil {
		return 0, err
	}
	if f < 0 || int(f) >= len(hex.Levels) {
		return 0, nil
	}
	return hex.Levels[f], nil
}

// OccupiedByOther reports whether a unit stands in h. The engine only asks about
// hexes between attacker and target, so any unit found is a third party.
func (b *Board) OccupiedByOther(h hexgrid.Coord) (bool, error) {
	hex, err := b.mustGet(h)
	if err != nil {
		return false, err
	}
	return hex.Unit != "", nil
}

// Sample reads all facts about h at once.
func (b *Board) Sample(h hexgrid.Coord) (Sample, error) {
	hex, err := b.mustGet(h)
	if err != nil {
		return Sample{}, err
	}
	return Sample{
		Elevation: hex.Elevation,
		Woods:     hex.Levels[Woods],
		Building:  hex.Levels[Building],
		Water:     hex.Levels[Water],
		Occupied:  hex.Unit != "",
	}, nil
}

// SetElevation sets the ground level of h.
func (b *Board) SetElevation(h hexgrid.Coord, elev int) error {
	hex, err := b.mustGet(h)
	if err != nil {
		return err
	}
	hex.Elevation = elev
	return nil
}

// SetFeature sets the level of f in h; level 0 removes the feature.
func (b *Board) SetFeature(h hexgrid.Coord, f Feature, level int) error {
	hex, err := b.mustGet(h)
	if err != nil {
		return err
	}
	if f < 0 || int(f) >= len(hex.Levels) {
		return fmt.Errorf("terrain: unknown feature %v", f)
	}
	if level < 0 {
		level = 0
	}
	hex.Levels[f] = level
	return nil
}

// Place puts a labelled unit in h, replacing whatever stood there.
func (b *Board) Place(h hexgrid.Coord, label string) error {
	hex, err := b.mustGet(h)
	if err != nil {
		return err
	}
	if label == "" {
		label = "unit"
	}
	hex.Unit = label
	return nil
}

// Remove clears any unit from h.
func (b *Board) Remove(h hexgrid.Coord) error {
	hex, err := b.mustGet(h)
	if err != nil {
		return err
	}
	hex.Unit = ""
	return nil
}

// Units returns the occupied hexes in board order.
func (b *Board) Units() []Hex {
	var out []Hex
	for _, hex := range b.grid {
		if hex.Unit != "" {
			out = append(out, hex)
		}
	}
	return out
}

// Hexes returns a copy of every cell in board order (column-major).
func (b *Board) Hexes() []Hex {
	out := make([]Hex, len(b.grid))
	copy(out, b.grid)
	return out
}

// Snapshot returns a deep copy that later edits to b cannot affect.
func (b *Board) Snapshot() *Board {
	cp := &Board{Width: b.Width, Height: b.Height, Name: b.Name, grid: make([]Hex, len(b.grid))}
	copy(cp.grid, b.grid)
	return cp
}
