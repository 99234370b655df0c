package los

import (
	"fmt"

	"github.com/Garsondee/hexsight/internal/hexgrid"
)

// ray is the straight sight line between the two absolute end heights.
type ray struct {
	from, to int64
}

// heightAt is the ray height at t, for display.
func (r ray) heightAt(t hexgrid.Frac) float64 {
	return float64(r.from) + float64(r.to-r.from)*t.Float64()
}

// blockedBy reports whether an obstruction of the given height rises strictly
// above the ray at t. Touching the ray does not block.
func (r ray) blockedBy(obstruction int, t hexgrid.Frac) bool {
	// obstruction > from + (to-from)*Num/Den, scaled by Den > 0.
	return int64(obstruction)*t.Den > r.from*t.Den+(r.to-r.from)*t.Num
}

// step is every candidate hex at one position along the line.
type step struct {
	index int
	at    hexgrid.Frac
	cands []hexCover
}

// profile checks the intervening steps against the ray in order. It returns the
// blocked flags per candidate, or stops at the first step where every candidate
// is blocked and returns the reason.
func profile(rr ray, steps []step, tr *Trace) (blocked [][]bool, reason string) {
	blocked = make([][]bool, len(steps))
	for i, s := range steps {
		blocked[i] = make([]bool, len(s.cands))
		all := true
		for j, hc := range s.cands {
			b := rr.blockedBy(hc.obstruction, s.at)
			blocked[i][j] = b
			all = all && b
			key := "clear"
			if b {
				key = "blocked"
			}
			tr.Add(s.index, hc.coord.String(), TraceProfile, key,
				fmt.Sprintf("ray %.2f vs obstruction %d", rr.heightAt(s.at), hc.obstruction),
				float64(hc.obstruction))
		}
		if all {
			named := s.cands[leastCover(s.cands)]
			return blocked, fmt.Sprintf("blocked by elevation/terrain at %s", named.coord)
		}
	}
	return blocked, ""
}
