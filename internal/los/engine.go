// Package los decides whether one unit can see another across a hex board and,
// if it can, which to-hit modifiers the terrain and other units in between add.
//
// Evaluation runs in fixed stages: trace the line between hex centers, read and
// assess every intervening hex, check the elevation profile, then record cover in
// a fresh Ledger. Nothing is kept between calls, so one Engine may serve any
// number of goroutines as long as the boards they pass are not being edited.
package los

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Garsondee/hexsight/internal/hexgrid"
)

// Engine evaluates shots under one rule table.
type Engine struct {
	rules Rules
}

// NewEngine returns an engine using rules.
func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules}
}

// Rules returns the engine's rule table.
func (e *Engine) Rules() Rules {
	return e.rules
}

// Evaluate works out the result of the shot g. Impossible shots are results, not
// errors; the error is non-nil only for ErrInvalidGeometry.
func (e *Engine) Evaluate(g Geometry) (Result, error) {
	return e.evaluate(g, nil)
}

// EvaluateTraced is Evaluate plus a record of every decision taken.
func (e *Engine) EvaluateTraced(g Geometry) (Result, *Trace, error) {
	tr := NewTrace()
	res, err := e.evaluate(g, tr)
	return res, tr, err
}

// EvaluateAll evaluates independent shots concurrently and returns the results in
// input order. It stops at the first invalid geometry or when ctx is done. All
// geometries must reference boards that stay unchanged until it returns.
func (e *Engine) EvaluateAll(ctx context.Context, gs []Geometry) ([]Result, error) {
	out := make([]Result, len(gs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, g := range gs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := e.Evaluate(g)
			if err != nil {
				return fmt.Errorf("shot %d (%s->%s): %w", i, g.Attacker, g.Target, err)
			}
			out[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) evaluate(g Geometry, tr *Trace) (Result, error) {
	if err := validate(g); err != nil {
		return nil, err
	}

	pts := hexgrid.Trace(g.Attacker, g.Target)
	for _, p := range pts {
		key := "hex"
		if p.Edge {
			key = "edge"
		}
		tr.Add(p.Step, p.Coord.String(), TraceLine, key,
			fmt.Sprintf("enter %s exit %s", p.Enter, p.Exit), p.Mid().Float64())
	}

	rr, err := endHeights(g)
	if err != nil {
		return nil, err
	}

	steps, err := e.assess(g, pts)
	if err != nil {
		return nil, err
	}

	blocked, reason := profile(rr, steps, tr)
	if reason != "" {
		tr.Add(-1, "--", TraceLedger, "impossible", reason, 0)
		return Impossible{Reason: reason}, nil
	}

	l := NewLedger()
	l.trace = tr
	woods := 0
	picks := e.rules.chooseCandidates(steps, blocked)
	for i, s := range steps {
		keep := picks[i]
		if len(s.cands) > 1 {
			tr.Add(s.index, s.cands[keep].coord.String(), TraceCover, "edge_pick",
				fmt.Sprintf("kept of %d candidates", len(s.cands)), float64(s.cands[keep].sum))
		}
		e.rules.applyCover(l, s.cands[keep], &woods, tr, s.index)
	}
	return l.Finalize(), nil
}

func validate(g Geometry) error {
	if g.Board == nil {
		return fmt.Errorf("%w: no board", ErrInvalidGeometry)
	}
	if g.Attacker == g.Target {
		return fmt.Errorf("%w: attacker and target both at %s", ErrInvalidGeometry, g.Attacker)
	}
	if !g.Board.InBounds(g.Attacker) {
		return fmt.Errorf("%w: attacker %s off board", ErrInvalidGeometry, g.Attacker)
	}
	if !g.Board.InBounds(g.Target) {
		return fmt.Errorf("%w: target %s off board", ErrInvalidGeometry, g.Target)
	}
	return nil
}

func endHeights(g Geometry) (ray, error) {
	ea, err := g.Board.Elevation(g.Attacker)
	if err != nil {
		return ray{}, readErr(g.Attacker, "elevation", err)
	}
	et, err := g.Board.Elevation(g.Target)
	if err != nil {
		return ray{}, readErr(g.Target, "elevation", err)
	}
	return ray{
		from: int64(ea + g.AttackerHeight),
		to:   int64(et + g.TargetHeight),
	}, nil
}

// assess groups the intervening trace points by step and applies the rules to
// each candidate hex. The two end steps are left out.
func (e *Engine) assess(g Geometry, pts []hexgrid.LinePoint) ([]step, error) {
	last := pts[len(pts)-1].Step
	var steps []step
	for _, p := range pts {
		if p.Step == 0 || p.Step == last {
			continue
		}
		if n := len(steps); n == 0 || steps[n-1].index != p.Step {
			steps = append(steps, step{index: p.Step, at: p.Mid()})
		}
		if p.Edge && !g.Board.InBounds(p.Coord) {
			// Line along the board edge: the on-board twin carries the step.
			continue
		}
		hc, err := e.rules.assessHex(g.Board, p.Coord, g)
		if err != nil {
			return nil, err
		}
		s := &steps[len(steps)-1]
		s.cands = append(s.cands, hc)
	}
	for _, s := range steps {
		if len(s.cands) == 0 {
			return nil, fmt.Errorf("%w: line leaves the board at step %d", ErrInvalidGeometry, s.index)
		}
	}
	return steps, nil
}
