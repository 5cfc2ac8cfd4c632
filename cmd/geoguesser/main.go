// Command geoguesser is the desktop client: guess the city from its
// shuffled picture, one letter at a time.
package main

import (
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/devinkaradag/geoguesser/assets"
	"github.com/devinkaradag/geoguesser/internal/client"
	"github.com/devinkaradag/geoguesser/internal/daily"
	"github.com/devinkaradag/geoguesser/internal/game"
	"github.com/devinkaradag/geoguesser/internal/puzzle"
	"github.com/devinkaradag/geoguesser/internal/words"
)

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	dailyMode := flag.Bool("daily", false, "play today's daily challenge")
	grid := flag.Int("grid", puzzle.DefaultGridSize, "puzzle grid size (n×n tiles)")
	maxHelp := flag.Int("help", game.DefaultMaxHelp, "help budget per round")
	flag.Parse()

	if err := words.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load place list")
	}
	app, err := client.New(client.Options{
		MaxHelp:  *maxHelp,
		GridSize: *grid,
		Lookup:   assets.Lookup,
		Daily:    *dailyMode,
		Salt:     daily.SaltFromEnv(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("start game")
	}

	ebiten.SetWindowTitle("GeoGuesser")
	ebiten.SetWindowSize(client.ScreenWidth, client.ScreenHeight)
	if err := ebiten.RunGame(app); err != nil {
		log.Fatal().Err(err).Msg("game exited")
	}
}
