package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Garsondee/hexsight/internal/los"
	"github.com/Garsondee/hexsight/internal/server"
	"github.com/Garsondee/hexsight/internal/terrain"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	board, err := loadBoard(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load board")
	}

	srv := server.New(los.NewEngine(los.DefaultRules()), board, os.Getenv("CLIENT_ORIGIN"))
	port := getEnv("PORT", "5180")
	log.Info().Str("port", port).Str("board", board.Name).
		Int("width", board.Width).Int("height", board.Height).Msg("starting rulerd")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// loadBoard picks the board from BOARD_PATH, else BOARD_DB + BOARD_NAME, else a
// blank 16x17 map.
func loadBoard(ctx context.Context) (*terrain.Board, error) {
	if path := os.Getenv("BOARD_PATH"); path != "" {
		return terrain.LoadBoard(path)
	}
	if db := os.Getenv("BOARD_DB"); db != "" {
		st, err := terrain.OpenStore(db)
		if err != nil {
			return nil, err
		}
		defer st.Close()
		return st.Load(ctx, getEnv("BOARD_NAME", "default"))
	}
	log.Warn().Msg("no BOARD_PATH or BOARD_DB set; serving a blank board")
	b := terrain.NewBoard(16, 17)
	b.Name = "blank"
	return b, nil
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
