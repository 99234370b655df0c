package hexgrid

import "sort"

// LinePoint is one hex crossed by a traced line.
type LinePoint struct {
	Coord Coord
	Step  int  // position in the line; both hexes of an edge pair share a Step
	Enter Frac // where the line enters this hex, 0 at the start hex center
	Exit  Frac // where the line leaves it, 1 at the end hex center
	Edge  bool // the line runs along the side this hex shares with its pair
}

// Mid is the centre of the stretch of line inside the hex. It is the same point
// whichever end the line is traced from.
func (p LinePoint) Mid() Frac {
	return p.Enter.Mid(p.Exit)
}

// Trace returns every hex the straight segment from the center of a to the center
// of b passes through, in order from a to b, both ends included.
//
// Hex sides in cube space lie on lines where x-y, y-z or z-x takes an integer
// value, so every crossing happens at a parameter t = k/|d| for one of the three
// axis deltas d. Between two consecutive crossings the line stays in one hex (or
// runs along one side), which the midpoint of the interval identifies exactly.
// When the line runs along a side, both hexes sharing it are returned with the
// same Step and Edge set. A hex touched only at a corner is not included.
func Trace(a, b Coord) []LinePoint {
	if a == b {
		return []LinePoint{{Coord: a, Enter: Frac{0, 1}, Exit: Frac{1, 1}}}
	}
	ac, bc := ToCube(a), ToCube(b)
	dx := int64(bc.Q - ac.Q)
	dy := int64(bc.R - ac.R)
	dz := int64(bc.S - ac.S)

	span := int64(1)
	axes := [3]int64{dx - dy, dy - dz, dz - dx}
	for _, d := range axes {
		if d != 0 {
			span = lcm(span, abs64(d))
		}
	}
	ticks := crossingTicks(span, axes)

	// Midpoints are evaluated at twice the tick resolution so they stay integral.
	scale := 2 * span
	out := make([]LinePoint, 0, Distance(a, b)+2)
	var prev []Coord
	step := -1
	for i := 0; i+1 < len(ticks); i++ {
		t0, t1 := ticks[i], ticks[i+1]
		p := [3]int64{
			int64(ac.Q)*scale + dx*(t0+t1),
			int64(ac.R)*scale + dy*(t0+t1),
			int64(ac.S)*scale + dz*(t0+t1),
		}
		cells := containing(p, scale)
		if sameCoords(cells, prev) {
			for j := len(out) - len(cells); j < len(out); j++ {
				out[j].Exit = NewFrac(t1, span)
			}
			continue
		}
		step++
		prev = cells
		enter, exit := NewFrac(t0, span), NewFrac(t1, span)
		for _, c := range cells {
			out = append(out, LinePoint{
				Coord: c,
				Step:  step,
				Enter: enter,
				Exit:  exit,
				Edge:  len(cells) > 1,
			})
		}
	}
	return out
}

// Line returns just the coordinates of Trace(a, b).
func Line(a, b Coord) []Coord {
	pts := Trace(a, b)
	out := make([]Coord, len(pts))
	for i, p := range pts {
		out[i] = p.Coord
	}
	return out
}

// crossingTicks lists, in units of 1/span, every t in [0,1] where one of the axis
// differences is integral. The list is sorted and starts at 0 and ends at span.
func crossingTicks(span int64, axes [3]int64) []int64 {
	seen := map[int64]struct{}{0: {}, span: {}}
	for _, d := range axes {
		if d == 0 {
			continue
		}
		stride := span / abs64(d)
		for k := stride; k < span; k += stride {
			seen[k] = struct{}{}
		}
	}
	ticks := make([]int64, 0, len(seen))
	for k := range seen {
		ticks = append(ticks, k)
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i] < ticks[j] })
	return ticks
}

// containing returns the hexes whose closed area holds the cube point p/scale,
// sorted by column then row. Interior points give one hex, points on a side two.
func containing(p [3]int64, scale int64) []Coord {
	c := roundCube(p, scale)
	if !inside(c, p, scale) {
		for _, d := range cubeDirections {
			if n := c.Add(d); inside(n, p, scale) {
				c = n
				break
			}
		}
	}
	cells := []Coord{FromCube(c)}
	for _, d := range cubeDirections {
		if n := c.Add(d); inside(n, p, scale) {
			cells = append(cells, FromCube(n))
		}
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Col != cells[j].Col {
			return cells[i].Col < cells[j].Col
		}
		return cells[i].Row < cells[j].Row
	})
	return cells
}

// inside reports whether p/scale lies in the closed hexagon around c.
func inside(c Cube, p [3]int64, scale int64) bool {
	ex := p[0] - int64(c.Q)*scale
	ey := p[1] - int64(c.R)*scale
	ez := p[2] - int64(c.S)*scale
	return abs64(ex-ey) <= scale && abs64(ey-ez) <= scale && abs64(ez-ex) <= scale
}

// roundCube is integer cube rounding of p/scale.
func roundCube(p [3]int64, scale int64) Cube {
	var r, diff [3]int64
	for i := range p {
		r[i] = floorDiv(2*p[i]+scale, 2*scale)
		diff[i] = abs64(r[i]*scale - p[i])
	}
	switch {
	case diff[0] > diff[1] && diff[0] > diff[2]:
		r[0] = -r[1] - r[2]
	case diff[1] > diff[2]:
		r[1] = -r[0] - r[2]
	default:
		r[2] = -r[0] - r[1]
	}
	return Cube{Q: int(r[0]), R: int(r[1]), S: int(r[2])}
}

func sameCoords(a, b []Coord) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
