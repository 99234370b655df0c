package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Garsondee/hexsight/internal/hexgrid"
	"github.com/Garsondee/hexsight/internal/los"
	"github.com/Garsondee/hexsight/internal/report"
	"github.com/Garsondee/hexsight/internal/terrain"
)

type options struct {
	boardPath string
	dbPath    string
	boardName string
	from, to  string
	ah, th    int
	ac, tc    string
	units     string
	save      string
	trace     bool
	copy      bool
}

func main() {
	var o options
	flag.StringVar(&o.boardPath, "board", "", ".board file")
	flag.StringVar(&o.dbPath, "db", "", "sqlite board catalog (with -name)")
	flag.StringVar(&o.boardName, "name", "", "board name in the catalog")
	flag.StringVar(&o.from, "from", "", "attacker hex, XXYY")
	flag.StringVar(&o.to, "to", "", "target hex, XXYY")
	flag.IntVar(&o.ah, "ah", 1, "attacker height above ground")
	flag.IntVar(&o.th, "th", 1, "target height above ground")
	flag.StringVar(&o.ac, "ac", "walker", "attacker category: walker, vehicle, infantry")
	flag.StringVar(&o.tc, "tc", "walker", "target category: walker, vehicle, infantry")
	flag.StringVar(&o.units, "units", "", "occupied hexes, e.g. 0103,0205")
	flag.StringVar(&o.save, "save", "", "store the -board file in the -db catalog under this name and exit")
	flag.BoolVar(&o.trace, "trace", false, "print the decision trace of the forward shot")
	flag.BoolVar(&o.copy, "copy", false, "copy the report to the clipboard")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := run(context.Background(), o, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options, out io.Writer) error {
	if o.save != "" {
		return saveBoard(ctx, o, out)
	}
	board, err := loadBoard(ctx, o)
	if err != nil {
		return err
	}
	for _, u := range splitUnits(o.units) {
		c, err := hexgrid.ParseCoord(u)
		if err != nil {
			return fmt.Errorf("-units: %w", err)
		}
		if err := board.Place(c, u); err != nil {
			return fmt.Errorf("-units: %w", err)
		}
	}

	g, err := geometry(o, board)
	if err != nil {
		return err
	}
	engine := los.NewEngine(los.DefaultRules())
	rep, err := report.Ruler(engine, g)
	if err != nil {
		return err
	}
	text := rep.String()
	fmt.Fprint(out, text)

	if o.trace {
		_, tr, err := engine.EvaluateTraced(g)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\n--- trace %s -> %s ---\n%s", g.Attacker, g.Target, tr.Format())
	}
	if o.copy {
		if err := report.CopyToClipboard(text); err != nil {
			log.Warn().Err(err).Msg("copy report")
		}
	}
	return nil
}

// saveBoard imports a .board file into the catalog.
func saveBoard(ctx context.Context, o options, out io.Writer) error {
	if o.boardPath == "" || o.dbPath == "" {
		return errors.New("-save needs -board and -db")
	}
	board, err := terrain.LoadBoard(o.boardPath)
	if err != nil {
		return err
	}
	st, err := terrain.OpenStore(o.dbPath)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Save(ctx, o.save, board); err != nil {
		return err
	}
	fmt.Fprintf(out, "saved %s (%dx%d) as %q\n", o.boardPath, board.Width, board.Height, o.save)
	return nil
}

func loadBoard(ctx context.Context, o options) (*terrain.Board, error) {
	switch {
	case o.boardPath != "":
		return terrain.LoadBoard(o.boardPath)
	case o.dbPath != "" && o.boardName != "":
		st, err := terrain.OpenStore(o.dbPath)
		if err != nil {
			return nil, err
		}
		defer st.Close()
		return st.Load(ctx, o.boardName)
	default:
		return nil, errors.New("need -board, or -db with -name")
	}
}

func geometry(o options, board *terrain.Board) (los.Geometry, error) {
	from, err := hexgrid.ParseCoord(o.from)
	if err != nil {
		return los.Geometry{}, fmt.Errorf("-from: %w", err)
	}
	to, err := hexgrid.ParseCoord(o.to)
	if err != nil {
		return los.Geometry{}, fmt.Errorf("-to: %w", err)
	}
	ac, err := los.ParseCategory(o.ac)
	if err != nil {
		return los.Geometry{}, fmt.Errorf("-ac: %w", err)
	}
	tc, err := los.ParseCategory(o.tc)
	if err != nil {
		return los.Geometry{}, fmt.Errorf("-tc: %w", err)
	}
	return los.Geometry{
		Attacker:         from,
		Target:           to,
		AttackerHeight:   o.ah,
		TargetHeight:     o.th,
		AttackerCategory: ac,
		TargetCategory:   tc,
		Board:            board,
	}, nil
}

func splitUnits(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
}
