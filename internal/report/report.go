// Package report renders engine results as the text the ruler shows and copies.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/Garsondee/hexsight/internal/hexgrid"
	"github.com/Garsondee/hexsight/internal/los"
)

// Format renders one result: "<total> = reason, reason" or "impossible: reason".
// A clear shot with no modifiers renders as "0".
func Format(r los.Result) string {
	switch v := r.(type) {
	case los.Computed:
		if len(v.Entries) == 0 {
			return strconv.Itoa(v.Total)
		}
		reasons := make([]string, len(v.Entries))
		for i, m := range v.Entries {
			reasons[i] = m.Reason
		}
		return fmt.Sprintf("%d = %s", v.Total, strings.Join(reasons, ", "))
	case los.Impossible:
		return "impossible: " + v.Reason
	default:
		return "no result"
	}
}

// RulerReport is a measurement between two hexes seen from both ends.
type RulerReport struct {
	Range   int
	Forward los.Geometry
	Reverse los.Geometry
	ToHit   los.Result // forward shot
	Back    los.Result // reverse shot
}

// Ruler evaluates g in both directions. The engine's error, if any, is returned
// unchanged so callers can match los.ErrInvalidGeometry.
func Ruler(e *los.Engine, g los.Geometry) (RulerReport, error) {
	fwd, err := e.Evaluate(g)
	if err != nil {
		return RulerReport{}, err
	}
	rev := g.Flip()
	back, err := e.Evaluate(rev)
	if err != nil {
		return RulerReport{}, err
	}
	return RulerReport{
		Range:   hexgrid.Distance(g.Attacker, g.Target),
		Forward: g,
		Reverse: rev,
		ToHit:   fwd,
		Back:    back,
	}, nil
}

// String renders the report the way the ruler window shows it.
//
//	--- Ruler 0101 -> 0106 ---
//	range: 5
//	0101 (walker, +1) -> 0106 (vehicle, +0): 1 = intervening unit at 0103
//	0106 (vehicle, +0) -> 0101 (walker, +1): 1 = intervening unit at 0103
func (r RulerReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- Ruler %s -> %s ---\n", r.Forward.Attacker, r.Forward.Target)
	fmt.Fprintf(&b, "range: %d\n", r.Range)
	fmt.Fprintf(&b, "%s: %s\n", describe(r.Forward), Format(r.ToHit))
	fmt.Fprintf(&b, "%s: %s\n", describe(r.Reverse), Format(r.Back))
	return b.String()
}

func describe(g los.Geometry) string {
	return fmt.Sprintf("%s (%s, %+d) -> %s (%s, %+d)",
		g.Attacker, g.AttackerCategory, g.AttackerHeight,
		g.Target, g.TargetCategory, g.TargetHeight)
}

// CopyToClipboard puts text on the system clipboard.
func CopyToClipboard(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("report: no clipboard available on this system")
	}
	if text == "" {
		text = " "
	}
	return clipboard.WriteAll(text)
}
