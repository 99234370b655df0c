// Package hexgrid holds the board coordinate system: offset coordinates as they
// appear in .board files, cube coordinates for arithmetic, range, and exact line
// tracing between hex centers.
//
// Boards use a flat-topped odd-q layout with 1-based columns and rows (XXYY in
// board files). Columns with an even zero-based index sit half a hex higher than
// their odd neighbours.
package hexgrid

import (
	"fmt"
	"strconv"
)

// Coord is a board position in 1-based offset coordinates.
type Coord struct {
	Col, Row int
}

// String formats the coordinate the way board files and the ruler print it: XXYY.
func (c Coord) String() string {
	return fmt.Sprintf("%02d%02d", c.Col, c.Row)
}

// ParseCoord parses an XXYY (or XXXYYY, any even length) coordinate.
func ParseCoord(s string) (Coord, error) {
	if len(s) < 4 || len(s)%2 != 0 {
		return Coord{}, fmt.Errorf("hexgrid: coordinate %q is not XXYY", s)
	}
	half := len(s) / 2
	col, err := strconv.Atoi(s[:half])
	if err != nil {
		return Coord{}, fmt.Errorf("hexgrid: coordinate %q: %w", s, err)
	}
	row, err := strconv.Atoi(s[half:])
	if err != nil {
		return Coord{}, fmt.Errorf("hexgrid: coordinate %q: %w", s, err)
	}
	return Coord{Col: col, Row: row}, nil
}

// Cube is a cube coordinate. Q+R+S == 0 always holds.
type Cube struct {
	Q, R, S int
}

// Add returns the component-wise sum.
func (c Cube) Add(o Cube) Cube {
	return Cube{Q: c.Q + o.Q, R: c.R + o.R, S: c.S + o.S}
}

// ToCube maps a board position into cube space. The column index is Q; the
// half-hex drop of odd zero-based columns is folded into S.
func ToCube(h Coord) Cube {
	col, row := h.Col-1, h.Row-1
	s := row - (col-col&1)/2
	return Cube{Q: col, R: -col - s, S: s}
}

// FromCube is the inverse of ToCube.
func FromCube(c Cube) Coord {
	return Coord{Col: c.Q + 1, Row: c.S + (c.Q-c.Q&1)/2 + 1}
}

// Distance is the number of hex steps between a and b, i.e. the range.
func Distance(a, b Coord) int {
	d, e := ToCube(a), ToCube(b)
	return max(abs(d.Q-e.Q), abs(d.R-e.R), abs(d.S-e.S))
}

// Facing 0-5: 0=N, 1=NE, 2=SE, 3=S, 4=SW, 5=NW (clockwise from top).
var cubeDirections = [6]Cube{
	{0, 1, -1}, {1, 0, -1}, {1, -1, 0},
	{0, -1, 1}, {-1, 0, 1}, {-1, 1, 0},
}

// Neighbors returns the 6 adjacent coordinates in facing order. Off-board
// coordinates are included; callers filter with their board bounds.
func Neighbors(h Coord) [6]Coord {
	c := ToCube(h)
	var out [6]Coord
	for i, d := range cubeDirections {
		out[i] = FromCube(c.Add(d))
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
