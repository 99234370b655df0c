package hexgrid

import "fmt"

// Frac is an exact non-negative rational used for positions along a traced line.
// Den is always positive and the fraction is kept in lowest terms.
type Frac struct {
	Num, Den int64
}

// NewFrac returns num/den reduced. It panics on a zero denominator, which only a
// programming error inside this package can produce.
func NewFrac(num, den int64) Frac {
	if den == 0 {
		panic("hexgrid: zero denominator")
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(abs64(num), den)
	if g > 1 {
		num /= g
		den /= g
	}
	return Frac{Num: num, Den: den}
}

// Float64 is for display only; comparisons stay exact.
func (f Frac) Float64() float64 {
	if f.Den == 0 {
		return 0
	}
	return float64(f.Num) / float64(f.Den)
}

// Cmp returns -1, 0 or +1.
func (f Frac) Cmp(o Frac) int {
	l := f.Num * o.Den
	r := o.Num * f.Den
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

// Mid returns the midpoint of f and o.
func (f Frac) Mid(o Frac) Frac {
	return NewFrac(f.Num*o.Den+o.Num*f.Den, 2*f.Den*o.Den)
}

// Complement returns 1-f.
func (f Frac) Complement() Frac {
	return NewFrac(f.Den-f.Num, f.Den)
}

func (f Frac) String() string {
	return fmt.Sprintf("%d/%d", f.Num, f.Den)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int64) int64 {
	return a / gcd(a, b) * b
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
