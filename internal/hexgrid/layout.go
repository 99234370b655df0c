package hexgrid

import "math"

const sqrt3 = 1.7320508075688772

// ToPixel returns the center of h for flat-topped hexes of the given size
// (center to corner). The center of 0101 is the origin.
func ToPixel(h Coord, size float64) (x, y float64) {
	q := h.Col - 1
	r := h.Row - 1
	x = size * 1.5 * float64(q)
	y = size * sqrt3 * (float64(r) + 0.5*float64(q&1))
	return x, y
}

// FromPixel returns the hex containing the pixel (x, y) in the ToPixel layout.
func FromPixel(x, y, size float64) Coord {
	q := (2.0 / 3.0 * x) / size
	r := (-1.0/3.0*x + sqrt3/3.0*y) / size
	return FromCube(cubeRoundFloat(q, -q-r, r))
}

// Corners returns the six corners of h, starting east and going clockwise.
func Corners(h Coord, size float64) [6][2]float64 {
	cx, cy := ToPixel(h, size)
	var out [6][2]float64
	for i := 0; i < 6; i++ {
		ang := math.Pi / 3 * float64(i)
		out[i] = [2]float64{cx + size*math.Cos(ang), cy + size*math.Sin(ang)}
	}
	return out
}

func cubeRoundFloat(q, r, s float64) Cube {
	rq := math.Round(q)
	rr := math.Round(r)
	rs := math.Round(s)

	dq := math.Abs(rq - q)
	dr := math.Abs(rr - r)
	ds := math.Abs(rs - s)

	if dq > dr && dq > ds {
		rq = -rr - rs
	} else if dr > ds {
		rr = -rq - rs
	} else {
		rs = -rq - rr
	}

	return Cube{Q: int(rq), R: int(rr), S: int(rs)}
}
