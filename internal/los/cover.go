package los

import (
	"fmt"

	"github.com/Garsondee/hexsight/internal/hexgrid"
	"github.com/Garsondee/hexsight/internal/terrain"
)

// hexCover is what one intervening hex does to a shot, worked out in isolation.
type hexCover struct {
	coord       hexgrid.Coord
	obstruction int // ground plus the height of every feature that counts
	mods        []Modifier
	woodsMods   []int // per entry in mods: the woods share, 0 for other features
	woods       int   // sum of woodsMods
	sum         int
}

// assessHex reads one hex and applies the rule table to it.
func (r Rules) assessHex(board Terrain, c hexgrid.Coord, g Geometry) (hexCover, error) {
	hc := hexCover{coord: c}

	elev, err := board.Elevation(c)
	if err != nil {
		return hc, readErr(c, "elevation", err)
	}
	woods, err := board.FeatureLevel(c, terrain.Woods)
	if err != nil {
		return hc, readErr(c, "woods", err)
	}
	building, err := board.FeatureLevel(c, terrain.Building)
	if err != nil {
		return hc, readErr(c, "building", err)
	}
	water, err := board.FeatureLevel(c, terrain.Water)
	if err != nil {
		return hc, readErr(c, "water", err)
	}
	occupied, err := board.OccupiedByOther(c)
	if err != nil {
		return hc, readErr(c, "occupancy", err)
	}

	hc.obstruction = elev

	switch {
	case woods >= 2:
		hc.obstruction += r.HeavyWoodsHeight
		hc.add(r.HeavyWoodsMod, r.HeavyWoodsMod, fmt.Sprintf("heavy woods at %s", c))
	case woods == 1 && lightWoodsCount(g):
		hc.obstruction += r.LightWoodsHeight
		hc.add(r.LightWoodsMod, r.LightWoodsMod, fmt.Sprintf("light woods at %s", c))
	}

	if building > 0 {
		hc.obstruction += building
		hc.add(r.buildingMod(building), 0, fmt.Sprintf("building (level %d) at %s", building, c))
	}

	// Water adds neither height nor cover; it only hides a unit standing deep in it.
	if occupied && water < r.SubmergedDepth {
		hc.add(r.InterveningUnitMod, 0, fmt.Sprintf("intervening unit at %s", c))
	}
	return hc, nil
}

func (hc *hexCover) add(value, woods int, reason string) {
	hc.mods = append(hc.mods, Modifier{Value: value, Reason: reason})
	hc.woodsMods = append(hc.woodsMods, woods)
	hc.woods += woods
	hc.sum += value
}

// lightWoodsCount reports whether light woods screen this shot. Two walkers see
// over them; any low-profile unit at either end is screened.
func lightWoodsCount(g Geometry) bool {
	return g.AttackerCategory.LowProfile() || g.TargetCategory.LowProfile()
}

func readErr(c hexgrid.Coord, what string, err error) error {
	return fmt.Errorf("%w: reading %s at %s: %w", ErrInvalidGeometry, what, c, err)
}

// outcome is what the rest of the line does to a shot: whether woods density
// makes it impossible, and the modifier total.
type outcome struct {
	dense bool
	sum   int
}

func (o outcome) less(p outcome) bool {
	if o.dense != p.dense {
		return !o.dense
	}
	return o.sum < p.sum
}

// addWoods returns the woods total after a hex with the given woods share, capped
// at the density limit, and whether the hex reaches that limit.
func (r Rules) addWoods(soFar, woods int) (int, bool) {
	if woods == 0 {
		return soFar, false
	}
	next := soFar + woods
	dense := next >= r.WoodsBlock
	if lim := r.woodsCap(); next > lim {
		next = lim
	}
	return next, dense
}

func (r Rules) woodsCap() int {
	if r.WoodsBlock < 0 {
		return 0
	}
	return r.WoodsBlock
}

// through is the outcome of taking the shot through hc with woods already
// counted, given the best outcomes of the remaining steps.
func (r Rules) through(hc hexCover, woods int, rest []outcome) outcome {
	next, dense := r.addWoods(woods, hc.woods)
	o := rest[next]
	o.dense = o.dense || dense
	o.sum += hc.sum
	return o
}

// chooseCandidates picks the hex each step is taken through. A candidate blocked
// by height is never kept. Among the rest the attacker gets the best whole-line
// outcome: no woods density first, then the smallest total. The woods total runs
// across steps, so a pick is judged together with every later step. Equal
// outcomes fall to the smaller modifier sum at the step, then the lower
// obstruction, then trace order.
func (r Rules) chooseCandidates(steps []step, blocked [][]bool) []int {
	lim := r.woodsCap()
	// best[i][w]: best outcome of steps i onward with w woods already counted.
	best := make([][]outcome, len(steps)+1)
	best[len(steps)] = make([]outcome, lim+1)
	for i := len(steps) - 1; i >= 0; i-- {
		best[i] = make([]outcome, lim+1)
		for w := range best[i] {
			k := r.pick(steps[i].cands, blocked[i], w, best[i+1])
			best[i][w] = r.through(steps[i].cands[k], w, best[i+1])
		}
	}

	picks := make([]int, len(steps))
	woods := 0
	for i, s := range steps {
		picks[i] = r.pick(s.cands, blocked[i], woods, best[i+1])
		woods, _ = r.addWoods(woods, s.cands[picks[i]].woods)
	}
	return picks
}

func (r Rules) pick(cands []hexCover, blocked []bool, woods int, rest []outcome) int {
	keep := -1
	var kept outcome
	for j, hc := range cands {
		if blocked[j] {
			continue
		}
		o := r.through(hc, woods, rest)
		if keep < 0 || o.less(kept) || (o == kept && lighter(hc, cands[keep])) {
			keep, kept = j, o
		}
	}
	if keep < 0 {
		return leastCover(cands)
	}
	return keep
}

// leastCover is the candidate with the smallest modifier sum, then the lowest
// obstruction, then the first in trace order.
func leastCover(cands []hexCover) int {
	best := 0
	for i := 1; i < len(cands); i++ {
		if lighter(cands[i], cands[best]) {
			best = i
		}
	}
	return best
}

func lighter(a, b hexCover) bool {
	if a.sum != b.sum {
		return a.sum < b.sum
	}
	return a.obstruction < b.obstruction
}

// applyCover records the kept hex's entries and enforces woods density.
func (r Rules) applyCover(l *Ledger, hc hexCover, woodsSoFar *int, tr *Trace, step int) {
	for i, m := range hc.mods {
		l.Add(m.Value, m.Reason)
		tr.Add(step, hc.coord.String(), TraceCover, "modifier", m.Reason, float64(m.Value))
		if hc.woodsMods[i] == 0 {
			continue
		}
		*woodsSoFar += hc.woodsMods[i]
		if *woodsSoFar >= r.WoodsBlock {
			tr.Add(step, hc.coord.String(), TraceCover, "woods_density", "", float64(*woodsSoFar))
			l.ForceImpossible(fmt.Sprintf("blocked by woods density at %s", hc.coord))
		}
	}
}
