package main

import (
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Garsondee/hexsight/internal/los"
	"github.com/Garsondee/hexsight/internal/terrain"
	"github.com/Garsondee/hexsight/internal/viewer"
)

func main() {
	var boardPath string
	var scale float64
	var verbose bool

	flag.StringVar(&boardPath, "board", "", ".board file to open (blank 16x17 board if empty)")
	flag.Float64Var(&scale, "scale", 24, "hex size in pixels")
	flag.BoolVar(&verbose, "v", false, "log every ruler evaluation")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	board := terrain.NewBoard(16, 17)
	board.Name = "blank"
	if boardPath != "" {
		b, err := terrain.LoadBoard(boardPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load board")
		}
		board = b
	}

	v := viewer.New(board, los.NewEngine(los.DefaultRules()), scale)
	ebiten.SetWindowTitle("hexsight ruler: " + board.Name)
	ebiten.SetWindowSize(v.WindowSize())
	if err := ebiten.RunGame(v); err != nil {
		log.Fatal().Err(err).Msg("viewer exited")
	}
}
