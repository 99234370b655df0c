// Package viewer is the interactive ruler window: a hex board drawn with ebiten,
// an attacker and a target placed with the mouse, and the two-way ruler report
// recomputed on every change.
package viewer

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/hexsight/internal/hexgrid"
	"github.com/Garsondee/hexsight/internal/los"
	"github.com/Garsondee/hexsight/internal/report"
	"github.com/Garsondee/hexsight/internal/terrain"
)

const (
	margin    = 24
	panelW    = 420 // report panel on the right
	lineH     = 16
	maxHeight = 9
)

var (
	colBackground = color.RGBA{R: 22, G: 26, B: 22, A: 255}
	colGrid       = color.RGBA{R: 70, G: 80, B: 70, A: 255}
	colLight      = color.RGBA{R: 70, G: 120, B: 60, A: 255}
	colHeavy      = color.RGBA{R: 35, G: 85, B: 35, A: 255}
	colBuilding   = color.RGBA{R: 120, G: 110, B: 100, A: 255}
	colWater      = color.RGBA{R: 40, G: 70, B: 130, A: 255}
	colUnit       = color.RGBA{R: 220, G: 200, B: 60, A: 255}
	colAttacker   = color.RGBA{R: 220, G: 60, B: 50, A: 255}
	colTarget     = color.RGBA{R: 60, G: 140, B: 230, A: 255}
	colLineClear  = color.RGBA{R: 240, G: 240, B: 240, A: 220}
	colLineBlock  = color.RGBA{R: 240, G: 80, B: 60, A: 220}
	colEdge       = color.RGBA{R: 255, G: 180, B: 40, A: 90}
	colText       = color.RGBA{R: 225, G: 230, B: 220, A: 255}
)

// Viewer implements ebiten.Game.
type Viewer struct {
	board  *terrain.Board
	engine *los.Engine
	size   float64 // hex center to corner, pixels
	face   text.Face

	attacker, target       hexgrid.Coord
	hasAttacker, hasTarget bool
	attackerHeight         int
	targetHeight           int
	attackerCategory       los.Category
	targetCategory         los.Category

	report   report.RulerReport
	reportOK bool
	status   string
	path     []hexgrid.LinePoint

	prevKeys map[ebiten.Key]bool
	width    int
	height   int
}

// New builds a viewer for board. scale is the hex size in pixels.
func New(board *terrain.Board, engine *los.Engine, scale float64) *Viewer {
	if scale <= 0 {
		scale = 24
	}
	v := &Viewer{
		board:          board,
		engine:         engine,
		size:           scale,
		face:           text.NewGoXFace(basicfont.Face7x13),
		attackerHeight: 1,
		targetHeight:   1,
		prevKeys:       make(map[ebiten.Key]bool),
		status:         "left click: attacker   right drag: target",
	}
	bw, bh := v.boardPixels()
	v.width = int(bw) + 2*margin + panelW
	v.height = int(bh) + 2*margin
	if v.height < 360 {
		v.height = 360
	}
	return v
}

// WindowSize is the size the window should open at.
func (v *Viewer) WindowSize() (int, int) {
	return v.width, v.height
}

func (v *Viewer) boardPixels() (float64, float64) {
	w := v.size * (1.5*float64(v.board.Width-1) + 2)
	h := v.size * sqrt3 * (float64(v.board.Height) + 0.5)
	return w, h
}

const sqrt3 = 1.7320508075688772

// origin is the screen position of the center of hex 0101.
func (v *Viewer) origin() (float64, float64) {
	return margin + v.size, margin + v.size*sqrt3/2
}

func (v *Viewer) screenPos(c hexgrid.Coord) (float32, float32) {
	ox, oy := v.origin()
	x, y := hexgrid.ToPixel(c, v.size)
	return float32(ox + x), float32(oy + y)
}

func (v *Viewer) hexAt(mx, my int) (hexgrid.Coord, bool) {
	ox, oy := v.origin()
	c := hexgrid.FromPixel(float64(mx)-ox, float64(my)-oy, v.size)
	return c, v.board.InBounds(c)
}

// ------------------------------ update -------------------------------------

func (v *Viewer) pressed(k ebiten.Key, cur map[ebiten.Key]bool) bool {
	cur[k] = ebiten.IsKeyPressed(k)
	return cur[k] && !v.prevKeys[k]
}

// Update handles input. Every change re-runs the ruler from scratch.
func (v *Viewer) Update() error {
	changed := false
	mx, my := ebiten.CursorPosition()

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if c, ok := v.hexAt(mx, my); ok && (!v.hasAttacker || c != v.attacker) {
			v.attacker, v.hasAttacker = c, true
			changed = true
		}
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		if c, ok := v.hexAt(mx, my); ok && (!v.hasTarget || c != v.target) {
			v.target, v.hasTarget = c, true
			changed = true
		}
	}

	cur := map[ebiten.Key]bool{}
	if v.pressed(ebiten.KeyF, cur) && v.hasAttacker && v.hasTarget {
		v.attacker, v.target = v.target, v.attacker
		v.attackerHeight, v.targetHeight = v.targetHeight, v.attackerHeight
		v.attackerCategory, v.targetCategory = v.targetCategory, v.attackerCategory
		changed = true
	}
	if v.pressed(ebiten.KeyBracketLeft, cur) {
		changed = adjust(&v.attackerHeight, -1) || changed
	}
	if v.pressed(ebiten.KeyBracketRight, cur) {
		changed = adjust(&v.attackerHeight, +1) || changed
	}
	if v.pressed(ebiten.KeyMinus, cur) {
		changed = adjust(&v.targetHeight, -1) || changed
	}
	if v.pressed(ebiten.KeyEqual, cur) {
		changed = adjust(&v.targetHeight, +1) || changed
	}
	for i, k := range []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3} {
		if v.pressed(k, cur) && v.attackerCategory != los.Categories[i] {
			v.attackerCategory = los.Categories[i]
			changed = true
		}
	}
	if v.pressed(ebiten.KeyShift, cur) {
		next := (int(v.targetCategory) + 1) % len(los.Categories)
		v.targetCategory = los.Categories[next]
		changed = true
	}
	if v.pressed(ebiten.KeyC, cur) && v.reportOK {
		if err := report.CopyToClipboard(v.report.String()); err != nil {
			log.Warn().Err(err).Msg("copy report")
			v.status = "copy failed: " + err.Error()
		} else {
			v.status = "report copied"
		}
	}
	v.prevKeys = cur

	if changed {
		v.recompute()
	}
	return nil
}

func adjust(h *int, d int) bool {
	n := *h + d
	if n < 0 || n > maxHeight {
		return false
	}
	*h = n
	return true
}

func (v *Viewer) recompute() {
	v.reportOK = false
	v.path = nil
	if !v.hasAttacker || !v.hasTarget {
		return
	}
	v.path = hexgrid.Trace(v.attacker, v.target)
	rep, err := report.Ruler(v.engine, v.geometry())
	if err != nil {
		v.status = err.Error()
		return
	}
	v.report, v.reportOK = rep, true
	v.status = ""
	log.Debug().Str("from", v.attacker.String()).Str("to", v.target.String()).
		Str("result", report.Format(rep.ToHit)).Msg("ruler")
}

func (v *Viewer) geometry() los.Geometry {
	return los.Geometry{
		Attacker:         v.attacker,
		Target:           v.target,
		AttackerHeight:   v.attackerHeight,
		TargetHeight:     v.targetHeight,
		AttackerCategory: v.attackerCategory,
		TargetCategory:   v.targetCategory,
		Board:            v.board,
	}
}

// ------------------------------- draw --------------------------------------

// Draw renders the board, the sight line and the report panel.
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(colBackground)
	for _, hex := range v.board.Hexes() {
		v.drawHex(screen, hex)
	}
	v.drawLine(screen)
	v.drawPanel(screen)
}

func (v *Viewer) hexPath(c hexgrid.Coord, inset float64) *vector.Path {
	ox, oy := v.origin()
	var path vector.Path
	for i, p := range hexgrid.Corners(c, v.size-inset) {
		x, y := float32(ox+p[0]), float32(oy+p[1])
		if i == 0 {
			path.MoveTo(x, y)
		} else {
			path.LineTo(x, y)
		}
	}
	path.Close()
	return &path
}

func (v *Viewer) fillHex(screen *ebiten.Image, c hexgrid.Coord, inset float64, clr color.Color) {
	op := &vector.DrawPathOptions{AntiAlias: true}
	op.ColorScale.ScaleWithColor(clr)
	vector.FillPath(screen, v.hexPath(c, inset), &vector.FillOptions{}, op)
}

func (v *Viewer) drawHex(screen *ebiten.Image, hex terrain.Hex) {
	// Ground shade by elevation.
	shade := uint8(40 + 18*clamp(hex.Elevation, -2, 8))
	v.fillHex(screen, hex.Coord, 1, color.RGBA{R: shade, G: shade, B: shade - shade/8, A: 255})

	switch lvl := hex.Levels[terrain.Woods]; {
	case lvl >= 2:
		v.fillHex(screen, hex.Coord, v.size*0.25, colHeavy)
	case lvl == 1:
		v.fillHex(screen, hex.Coord, v.size*0.25, colLight)
	}
	if hex.Levels[terrain.Water] > 0 {
		v.fillHex(screen, hex.Coord, v.size*0.25, colWater)
	}
	if hex.Levels[terrain.Building] > 0 {
		v.fillHex(screen, hex.Coord, v.size*0.45, colBuilding)
	}

	corners := hexgrid.Corners(hex.Coord, v.size)
	ox, oy := v.origin()
	for i := range corners {
		a, b := corners[i], corners[(i+1)%6]
		vector.StrokeLine(screen, float32(ox+a[0]), float32(oy+a[1]), float32(ox+b[0]), float32(oy+b[1]), 1.0, colGrid, false)
	}

	cx, cy := v.screenPos(hex.Coord)
	if hex.Unit != "" {
		vector.FillCircle(screen, cx, cy, float32(v.size*0.22), colUnit, true)
	}
	if v.size >= 20 {
		ebitenutil.DebugPrintAt(screen, hex.Coord.String(), int(cx)-12, int(cy-float32(v.size*0.8)))
	}
}

func (v *Viewer) drawLine(screen *ebiten.Image) {
	for _, p := range v.path {
		if p.Edge {
			v.fillHex(screen, p.Coord, 2, colEdge)
		}
	}
	if v.hasAttacker {
		x, y := v.screenPos(v.attacker)
		vector.StrokeCircle(screen, x, y, float32(v.size*0.55), 3, colAttacker, true)
	}
	if v.hasTarget {
		x, y := v.screenPos(v.target)
		vector.StrokeCircle(screen, x, y, float32(v.size*0.55), 3, colTarget, true)
	}
	if !v.hasAttacker || !v.hasTarget {
		return
	}
	clr := colLineClear
	if _, blocked := v.report.ToHit.(los.Impossible); v.reportOK && blocked {
		clr = colLineBlock
	}
	ax, ay := v.screenPos(v.attacker)
	tx, ty := v.screenPos(v.target)
	vector.StrokeLine(screen, ax, ay, tx, ty, 2, clr, true)
}

func (v *Viewer) drawPanel(screen *ebiten.Image) {
	x := float64(v.width - panelW + 12)
	vector.FillRect(screen, float32(v.width-panelW), 0, panelW, float32(v.height), color.RGBA{R: 12, G: 14, B: 12, A: 255}, false)

	var lines []string
	lines = append(lines,
		fmt.Sprintf("board %s  %dx%d", v.board.Name, v.board.Width, v.board.Height),
		fmt.Sprintf("attacker [%s] +%d   ([ ] height, 1/2/3 kind)", v.attackerCategory, v.attackerHeight),
		fmt.Sprintf("target   [%s] +%d   (- = height, shift kind)", v.targetCategory, v.targetHeight),
		"F flip   C copy",
		"",
	)
	if v.reportOK {
		lines = append(lines, wrap(v.report.String(), (panelW-24)/7)...)
	}
	if v.status != "" {
		lines = append(lines, "", v.status)
	}

	op := &text.DrawOptions{}
	op.GeoM.Translate(x, margin)
	op.ColorScale.ScaleWithColor(colText)
	op.LineSpacing = lineH
	text.Draw(screen, strings.Join(lines, "\n"), v.face, op)
}

// Layout reports the fixed logical screen size.
func (v *Viewer) Layout(_, _ int) (int, int) {
	return v.width, v.height
}

// wrap splits s into lines of at most n runes, breaking at spaces.
func wrap(s string, n int) []string {
	var out []string
	for _, para := range strings.Split(strings.TrimRight(s, "\n"), "\n") {
		line := ""
		for _, w := range strings.Fields(para) {
			if line != "" && len(line)+1+len(w) > n {
				out = append(out, line)
				line = "  " + w
				continue
			}
			if line == "" {
				line = w
			} else {
				line += " " + w
			}
		}
		out = append(out, line)
	}
	return out
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
