package los

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/Garsondee/hexsight/internal/hexgrid"
	"github.com/Garsondee/hexsight/internal/terrain"
)

func hx(col, row int) hexgrid.Coord { return hexgrid.Coord{Col: col, Row: row} }

func shot(b Terrain, from, to hexgrid.Coord, ah, th int) Geometry {
	return Geometry{
		Attacker:       from,
		Target:         to,
		AttackerHeight: ah,
		TargetHeight:   th,
		Board:          b,
	}
}

func mustEval(t *testing.T, g Geometry) Result {
	t.Helper()
	res, err := NewEngine(DefaultRules()).Evaluate(g)
	if err != nil {
		t.Fatalf("Evaluate(%v->%v): %v", g.Attacker, g.Target, err)
	}
	return res
}

func mustComputed(t *testing.T, res Result) Computed {
	t.Helper()
	c, ok := res.(Computed)
	if !ok {
		t.Fatalf("expected Computed, got %+v", res)
	}
	return c
}

func mustImpossible(t *testing.T, res Result) Impossible {
	t.Helper()
	i, ok := res.(Impossible)
	if !ok {
		t.Fatalf("expected Impossible, got %+v", res)
	}
	return i
}

// ── Reference scenarios ──────────────────────────────────────────────────────

func TestEvaluate_AdjacentFlat(t *testing.T) {
	b := terrain.Build(6, 6)
	c := mustComputed(t, mustEval(t, shot(b, hx(1, 1), hx(1, 2), 1, 1)))
	if c.Total != 0 || len(c.Entries) != 0 {
		t.Fatalf("expected Computed{0, []}, got %+v", c)
	}
}

func TestEvaluate_BuildingAboveRay(t *testing.T) {
	b := terrain.Build(6, 6, terrain.WithBuilding(hx(1, 4), 3))
	i := mustImpossible(t, mustEval(t, shot(b, hx(1, 1), hx(1, 6), 1, 1)))
	if i.Reason != "blocked by elevation/terrain at 0104" {
		t.Fatalf("unexpected reason %q", i.Reason)
	}
}

func TestEvaluate_BuildingBelowRay(t *testing.T) {
	b := terrain.Build(6, 6, terrain.WithBuilding(hx(1, 4), 1))
	c := mustComputed(t, mustEval(t, shot(b, hx(1, 1), hx(1, 6), 1, 1)))
	if c.Total != 1 || len(c.Entries) != 1 {
		t.Fatalf("expected one +1 entry, got %+v", c)
	}
	if c.Entries[0].Reason != "building (level 1) at 0104" {
		t.Fatalf("unexpected reason %q", c.Entries[0].Reason)
	}
}

func TestEvaluate_InterveningUnit(t *testing.T) {
	b := terrain.Build(6, 6, terrain.WithUnit(hx(1, 3), "Commando"))
	c := mustComputed(t, mustEval(t, shot(b, hx(1, 1), hx(1, 6), 1, 1)))
	if c.Total != 1 || len(c.Entries) != 1 || c.Entries[0].Reason != "intervening unit at 0103" {
		t.Fatalf("expected intervening unit entry, got %+v", c)
	}
}

func TestEvaluate_EdgeBetweenWoodsAndClear(t *testing.T) {
	b := terrain.Build(6, 6, terrain.WithWoods(hx(2, 1), 2))
	c := mustComputed(t, mustEval(t, shot(b, hx(1, 2), hx(3, 2), 1, 1)))

	clear := mustComputed(t, mustEval(t, shot(terrain.Build(6, 6), hx(1, 2), hx(3, 2), 1, 1)))
	if c.Total != clear.Total || len(c.Entries) != len(clear.Entries) {
		t.Fatalf("expected same as clear board %+v, got %+v", clear, c)
	}
	if c.Total != 0 {
		t.Fatalf("expected 0, got %d", c.Total)
	}
}

// ── Elevation profile ────────────────────────────────────────────────────────

func TestEvaluate_RayInterpolation(t *testing.T) {
	// Attacker stands on level 4; the ray falls to 0 at 0105 and is at 2 over 0103.
	for _, tc := range []struct {
		hill    int
		blocked bool
	}{
		{2, false}, // touching the ray does not block
		{3, true},
	} {
		b := terrain.Build(6, 6,
			terrain.WithElevation(hx(1, 1), 4),
			terrain.WithElevation(hx(1, 3), tc.hill),
		)
		res := mustEval(t, shot(b, hx(1, 1), hx(1, 5), 0, 0))
		_, impossible := res.(Impossible)
		if impossible != tc.blocked {
			t.Fatalf("hill %d: expected blocked=%v, got %+v", tc.hill, tc.blocked, res)
		}
	}
}

func TestEvaluate_EndpointsNeverBlock(t *testing.T) {
	b := terrain.Build(6, 6,
		terrain.WithBuilding(hx(1, 1), 5),
		terrain.WithWoods(hx(1, 4), 2),
		terrain.WithUnit(hx(1, 4), "target"),
	)
	c := mustComputed(t, mustEval(t, shot(b, hx(1, 1), hx(1, 4), 1, 1)))
	if c.Total != 0 {
		t.Fatalf("endpoint terrain should not count, got %+v", c)
	}
}

func TestEvaluate_EdgeBlockedOnlyIfBothBlocked(t *testing.T) {
	b := terrain.Build(6, 6,
		terrain.WithBuilding(hx(2, 1), 4),
		terrain.WithBuilding(hx(2, 2), 4),
	)
	i := mustImpossible(t, mustEval(t, shot(b, hx(1, 2), hx(3, 2), 1, 1)))
	if !strings.HasPrefix(i.Reason, "blocked by elevation/terrain at ") {
		t.Fatalf("unexpected reason %q", i.Reason)
	}

	b = terrain.Build(6, 6,
		terrain.WithBuilding(hx(2, 1), 4),
		terrain.WithBuilding(hx(2, 2), 1),
	)
	c := mustComputed(t, mustEval(t, shot(b, hx(1, 2), hx(3, 2), 1, 1)))
	if c.Total != 1 || c.Entries[0].Reason != "building (level 1) at 0202" {
		t.Fatalf("expected the low building to be kept, got %+v", c)
	}
}

// ── Cover rules ──────────────────────────────────────────────────────────────

func TestEvaluate_LightWoodsIgnoredBetweenWalkers(t *testing.T) {
	b := terrain.Build(6, 6, terrain.WithWoods(hx(1, 3), 1))

	g := shot(b, hx(1, 1), hx(1, 5), 1, 1)
	c := mustComputed(t, mustEval(t, g))
	if c.Total != 0 {
		t.Fatalf("walkers should see over light woods, got %+v", c)
	}

	g.TargetCategory = Infantry
	c = mustComputed(t, mustEval(t, g))
	if c.Total != 1 || c.Entries[0].Reason != "light woods at 0103" {
		t.Fatalf("expected light woods against infantry, got %+v", c)
	}
}

func TestEvaluate_HeavyWoods(t *testing.T) {
	b := terrain.Build(6, 6, terrain.WithWoods(hx(1, 3), 2))
	c := mustComputed(t, mustEval(t, shot(b, hx(1, 1), hx(1, 5), 2, 2)))
	if c.Total != 2 || c.Entries[0].Reason != "heavy woods at 0103" {
		t.Fatalf("expected heavy woods +2, got %+v", c)
	}
}

func TestEvaluate_LargeBuildingModifier(t *testing.T) {
	b := terrain.Build(6, 6, terrain.WithBuilding(hx(1, 3), 3))
	c := mustComputed(t, mustEval(t, shot(b, hx(1, 1), hx(1, 5), 3, 3)))
	if c.Total != 2 || c.Entries[0].Reason != "building (level 3) at 0103" {
		t.Fatalf("expected level 3 building +2, got %+v", c)
	}
}

func TestEvaluate_WaterAddsNothing(t *testing.T) {
	b := terrain.Build(6, 6,
		terrain.WithWater(hx(1, 2), 1),
		terrain.WithUnit(hx(1, 2), "wading"),
		terrain.WithWater(hx(1, 3), 2),
		terrain.WithUnit(hx(1, 3), "submerged"),
	)
	c := mustComputed(t, mustEval(t, shot(b, hx(1, 1), hx(1, 5), 1, 1)))
	if c.Total != 1 || len(c.Entries) != 1 || c.Entries[0].Reason != "intervening unit at 0102" {
		t.Fatalf("expected only the wading unit to count, got %+v", c)
	}
}

func TestEvaluate_WoodsDensity(t *testing.T) {
	b := terrain.Build(8, 8,
		terrain.WithWoods(hx(1, 2), 1),
		terrain.WithWoods(hx(1, 3), 1),
		terrain.WithWoods(hx(1, 4), 1),
		terrain.WithUnit(hx(1, 5), "behind"),
	)
	g := shot(b, hx(1, 1), hx(1, 6), 1, 1)
	g.AttackerCategory = Vehicle
	i := mustImpossible(t, mustEval(t, g))
	if i.Reason != "blocked by woods density at 0104" {
		t.Fatalf("unexpected reason %q", i.Reason)
	}
	if len(i.Entries) != 4 {
		t.Fatalf("expected entries recorded past the override, got %+v", i.Entries)
	}
}

func TestEvaluate_TotalIsSumOfEntries(t *testing.T) {
	rng := rand.New(rand.NewSource(7)) // #nosec G404 -- test
	e := NewEngine(DefaultRules())
	for n := 0; n < 40; n++ {
		b := randomBoard(rng, 10, 10)
		for k := 0; k < 20; k++ {
			g := randomShot(rng, b)
			res, err := e.Evaluate(g)
			if err != nil {
				t.Fatal(err)
			}
			c, ok := res.(Computed)
			if !ok {
				continue
			}
			sum := 0
			for _, m := range c.Entries {
				sum += m.Value
			}
			if sum != c.Total {
				t.Fatalf("total %d != sum %d for %+v", c.Total, sum, c)
			}
		}
	}
}

// ── Symmetry and tie-break ───────────────────────────────────────────────────

func TestEvaluate_FlipSymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(42)) // #nosec G404 -- test
	e := NewEngine(DefaultRules())
	for n := 0; n < 40; n++ {
		b := randomBoard(rng, 10, 10)
		for k := 0; k < 25; k++ {
			g := randomShot(rng, b)
			fwd, err := e.Evaluate(g)
			if err != nil {
				t.Fatal(err)
			}
			rev, err := e.Evaluate(g.Flip())
			if err != nil {
				t.Fatal(err)
			}
			fc, fok := fwd.(Computed)
			rc, rok := rev.(Computed)
			if fok != rok {
				t.Fatalf("%v<->%v: forward %+v, reverse %+v", g.Attacker, g.Target, fwd, rev)
			}
			if !fok {
				continue
			}
			// Equal-total alternatives at edge steps may be taken through
			// different hexes, so only the total has to match.
			if fc.Total != rc.Total {
				t.Fatalf("%v<->%v: forward %+v, reverse %+v", g.Attacker, g.Target, fc, rc)
			}
		}
	}
}

func TestEvaluate_EdgeTieBreakNoWorseThanEitherHex(t *testing.T) {
	e := NewEngine(DefaultRules())
	a, tgt := hx(1, 2), hx(3, 2)
	pair := [2]hexgrid.Coord{hx(2, 1), hx(2, 2)}

	type dressing struct {
		woods, building int
		unit            bool
	}
	var options []dressing
	for w := 0; w <= 2; w++ {
		for bl := 0; bl <= 2; bl++ {
			for _, u := range []bool{false, true} {
				options = append(options, dressing{w, bl, u})
			}
		}
	}
	dress := func(c hexgrid.Coord, d dressing) []terrain.Option {
		opts := []terrain.Option{terrain.WithWoods(c, d.woods), terrain.WithBuilding(c, d.building)}
		if d.unit {
			opts = append(opts, terrain.WithUnit(c, "u"))
		}
		return opts
	}

	for _, d0 := range options {
		for _, d1 := range options {
			ds := [2]dressing{d0, d1}
			opts := append(dress(pair[0], d0), dress(pair[1], d1)...)
			g := shot(terrain.Build(5, 5, opts...), a, tgt, 2, 2)
			g.TargetCategory = Infantry
			both, err := e.Evaluate(g)
			if err != nil {
				t.Fatal(err)
			}
			for i, only := range pair {
				// Wall off the other hex so the line can only pass through this one.
				walled := append(dress(only, ds[i]), dress(pair[1-i], ds[1-i])...)
				walled = append(walled, terrain.WithBuilding(pair[1-i], 20))
				single := g
				single.Board = terrain.Build(5, 5, walled...)
				alone, err := e.Evaluate(single)
				if err != nil {
					t.Fatal(err)
				}
				if worse(both, alone) {
					t.Fatalf("dressing %+v/%+v: pair result %+v worse than %v alone %+v", d0, d1, both, only, alone)
				}
			}
		}
	}
}

// worse reports whether a is a worse outcome for the attacker than b.
func worse(a, b Result) bool {
	bc, ok := b.(Computed)
	if !ok {
		return false
	}
	ac, ok := a.(Computed)
	if !ok {
		return true
	}
	return ac.Total > bc.Total
}

func TestEvaluate_EdgePickAvoidsWoodsDensity(t *testing.T) {
	// 0102 -> 0502 passes the pairs 0201/0202 and 0401/0402 with 0302 between.
	cases := []struct {
		name    string
		opts    []terrain.Option
		reasons []string
	}{
		{
			name: "woods already on the line",
			opts: []terrain.Option{
				terrain.WithWoods(hx(3, 2), 2),
				terrain.WithWoods(hx(4, 1), 2),
				terrain.WithBuilding(hx(4, 2), 3),
			},
			reasons: []string{"heavy woods at 0302", "building (level 3) at 0402"},
		},
		{
			name: "woods further down the line",
			opts: []terrain.Option{
				terrain.WithWoods(hx(2, 1), 1),
				terrain.WithBuilding(hx(2, 2), 3),
				terrain.WithWoods(hx(3, 2), 2),
			},
			reasons: []string{"building (level 3) at 0202", "heavy woods at 0302"},
		},
	}
	for _, tc := range cases {
		g := shot(terrain.Build(6, 6, tc.opts...), hx(1, 2), hx(5, 2), 3, 3)
		g.TargetCategory = Infantry
		res := mustEval(t, g)
		c, ok := res.(Computed)
		if !ok {
			t.Fatalf("%s: expected Computed, got %+v", tc.name, res)
		}
		if c.Total != 4 || len(c.Entries) != len(tc.reasons) {
			t.Fatalf("%s: expected total 4 from %v, got %+v", tc.name, tc.reasons, c)
		}
		for i, r := range tc.reasons {
			if c.Entries[i].Reason != r {
				t.Fatalf("%s: entry %d: expected %q, got %q", tc.name, i, r, c.Entries[i].Reason)
			}
		}
	}
}

func TestEvaluate_LineAlongBoardEdge(t *testing.T) {
	// 0101 -> 0301 runs between 0201 and the off-board 0200.
	c := mustComputed(t, mustEval(t, shot(terrain.Build(5, 5), hx(1, 1), hx(3, 1), 0, 0)))
	if c.Total != 0 || len(c.Entries) != 0 {
		t.Fatalf("expected Computed{0, []}, got %+v", c)
	}

	b := terrain.Build(5, 5, terrain.WithWoods(hx(2, 1), 2))
	c = mustComputed(t, mustEval(t, shot(b, hx(1, 1), hx(3, 1), 2, 2)))
	if c.Total != 2 || c.Entries[0].Reason != "heavy woods at 0201" {
		t.Fatalf("expected the on-board twin to count, got %+v", c)
	}
	i := mustImpossible(t, mustEval(t, shot(b, hx(3, 1), hx(1, 1), 0, 0)))
	if i.Reason != "blocked by elevation/terrain at 0201" {
		t.Fatalf("unexpected reason %q", i.Reason)
	}

	// Bottom edge: 0205 -> 0405 runs between 0305 and the off-board 0306.
	b = terrain.Build(5, 5, terrain.WithUnit(hx(3, 5), "u"))
	c = mustComputed(t, mustEval(t, shot(b, hx(2, 5), hx(4, 5), 1, 1)))
	if c.Total != 1 || c.Entries[0].Reason != "intervening unit at 0305" {
		t.Fatalf("expected the unit in 0305, got %+v", c)
	}
}

// ── Validation and batch ─────────────────────────────────────────────────────

type failingBoard struct {
	*terrain.Board
	bad hexgrid.Coord
}

func (f failingBoard) FeatureLevel(h hexgrid.Coord, feat terrain.Feature) (int, error) {
	if h == f.bad {
		return 0, errors.New("disk on fire")
	}
	return f.Board.FeatureLevel(h, feat)
}

func TestEvaluate_InvalidGeometry(t *testing.T) {
	e := NewEngine(DefaultRules())
	b := terrain.Build(5, 5)
	cases := map[string]Geometry{
		"same hex":     shot(b, hx(2, 2), hx(2, 2), 0, 0),
		"attacker off": shot(b, hx(0, 2), hx(2, 2), 0, 0),
		"target off":   shot(b, hx(2, 2), hx(2, 6), 0, 0),
		"no board":     shot(nil, hx(1, 1), hx(2, 2), 0, 0),
		"read failure": shot(failingBoard{b, hx(1, 3)}, hx(1, 1), hx(1, 5), 0, 0),
	}
	for name, g := range cases {
		res, err := e.Evaluate(g)
		if !errors.Is(err, ErrInvalidGeometry) {
			t.Fatalf("%s: expected ErrInvalidGeometry, got %v / %+v", name, err, res)
		}
	}

	_, err := e.Evaluate(shot(failingBoard{b, hx(1, 3)}, hx(1, 1), hx(1, 5), 0, 0))
	if !strings.Contains(err.Error(), "0103") {
		t.Fatalf("expected the failing hex to be named, got %v", err)
	}
}

func TestEvaluateTraced_RecordsDecisions(t *testing.T) {
	b := terrain.Build(6, 6,
		terrain.WithBuilding(hx(1, 3), 1),
		terrain.WithBuilding(hx(1, 4), 3),
	)
	res, tr, err := NewEngine(DefaultRules()).EvaluateTraced(shot(b, hx(1, 1), hx(1, 6), 1, 1))
	if err != nil {
		t.Fatal(err)
	}
	mustImpossible(t, res)
	if n := len(tr.Filter(TraceLine, "")); n != 6 {
		t.Fatalf("expected 6 line entries, got %d\n%s", n, tr.Format())
	}
	if !tr.HasEntry(TraceProfile, "blocked", "obstruction 3") {
		t.Fatalf("expected the level 3 building to be traced as blocking\n%s", tr.Format())
	}
	for _, e := range tr.FilterHex("0105") {
		if e.Category == TraceProfile {
			t.Fatalf("profile should stop at the first block\n%s", tr.Format())
		}
	}
}

func TestEvaluateAll_KeepsOrder(t *testing.T) {
	b := terrain.Build(8, 8, terrain.WithBuilding(hx(1, 4), 3), terrain.WithUnit(hx(3, 3), "x"))
	gs := []Geometry{
		shot(b, hx(1, 1), hx(1, 6), 1, 1),
		shot(b, hx(3, 1), hx(3, 5), 1, 1),
		shot(b, hx(5, 5), hx(5, 6), 1, 1),
	}
	res, err := NewEngine(DefaultRules()).EvaluateAll(context.Background(), gs)
	if err != nil {
		t.Fatal(err)
	}
	mustImpossible(t, res[0])
	if c := mustComputed(t, res[1]); c.Total != 1 {
		t.Fatalf("expected unit cover in slot 1, got %+v", c)
	}
	if c := mustComputed(t, res[2]); c.Total != 0 {
		t.Fatalf("expected clear shot in slot 2, got %+v", c)
	}
}

func TestEvaluateAll_StopsOnInvalid(t *testing.T) {
	b := terrain.Build(4, 4)
	gs := []Geometry{
		shot(b, hx(1, 1), hx(1, 3), 0, 0),
		shot(b, hx(2, 2), hx(2, 2), 0, 0),
	}
	if _, err := NewEngine(DefaultRules()).EvaluateAll(context.Background(), gs); !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("expected ErrInvalidGeometry, got %v", err)
	}
}

func TestEvaluateAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := terrain.Build(4, 4)
	_, err := NewEngine(DefaultRules()).EvaluateAll(ctx, []Geometry{shot(b, hx(1, 1), hx(1, 3), 0, 0)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func randomBoard(rng *rand.Rand, w, h int) *terrain.Board {
	var opts []terrain.Option
	for col := 1; col <= w; col++ {
		for row := 1; row <= h; row++ {
			c := hx(col, row)
			opts = append(opts, terrain.WithElevation(c, rng.Intn(3)))
			switch rng.Intn(8) {
			case 0:
				opts = append(opts, terrain.WithWoods(c, 1))
			case 1:
				opts = append(opts, terrain.WithWoods(c, 2))
			case 2:
				opts = append(opts, terrain.WithBuilding(c, 1+rng.Intn(4)))
			case 3:
				opts = append(opts, terrain.WithWater(c, 1+rng.Intn(2)))
			}
			if rng.Intn(10) == 0 {
				opts = append(opts, terrain.WithUnit(c, "u"))
			}
		}
	}
	return terrain.Build(w, h, opts...)
}

func randomShot(rng *rand.Rand, b *terrain.Board) Geometry {
	var from, to hexgrid.Coord
	for from == to {
		from = hx(1+rng.Intn(b.Width), 1+rng.Intn(b.Height))
		to = hx(1+rng.Intn(b.Width), 1+rng.Intn(b.Height))
	}
	return Geometry{
		Attacker:         from,
		Target:           to,
		AttackerHeight:   rng.Intn(4),
		TargetHeight:     rng.Intn(4),
		AttackerCategory: Categories[rng.Intn(len(Categories))],
		TargetCategory:   Categories[rng.Intn(len(Categories))],
		Board:            b,
	}
}
