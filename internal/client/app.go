// Package client is the desktop front end: an ebiten game that renders the
// shuffled puzzle and feeds keyboard input to a game.Controller.
//
// Keys:
//
//	letters  guess
//	? Enter  help
//	Tab      reshuffle the tiles
//	N        new game (after game over)
//	C        copy the score (after game over)
//	Esc      quit
package client

import (
	"image"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"

	"github.com/devinkaradag/geoguesser/internal/daily"
	"github.com/devinkaradag/geoguesser/internal/game"
	"github.com/devinkaradag/geoguesser/internal/puzzle"
)

// Options configures an App.
type Options struct {
	Words    []string      // nil uses the words package list
	MaxHelp  int           // help budget per round
	GridSize int           // puzzle grid dimension
	Lookup   puzzle.Lookup // image source
	Daily    bool          // seed tiles and help from today's date
	Salt     string        // daily seed salt
}

// App implements ebiten.Game.
type App struct {
	ctrl *game.Controller
	gen  *puzzle.Generator
	mode string
	date string

	snap     game.Snapshot
	tiles    []*ebiten.Image
	places   []placement
	tilesFor string

	prevKeys map[ebiten.Key]bool
	chars    []rune
	notice   string // transient message, cleared on the next round
}

// New builds the controller and generator and subscribes to state changes.
func New(opts Options) (*App, error) {
	a := &App{
		mode:     "classic",
		prevKeys: map[ebiten.Key]bool{},
	}
	gopts := game.Options{
		Words:      opts.Words,
		MaxHelp:    opts.MaxHelp,
		OnGameOver: a.gameOver,
	}
	a.gen = puzzle.NewGenerator(opts.Lookup, opts.GridSize)
	if opts.Daily {
		now := time.Now()
		a.mode, a.date = "daily", daily.DateKey(now)
		a.gen.Rand, gopts.Rand = daily.Rand(now, opts.Salt)
	}
	c, err := game.New(gopts)
	if err != nil {
		return nil, err
	}
	a.ctrl = c
	c.Subscribe(a.onChange)
	a.onChange(c.Snapshot())
	return a, nil
}

// onChange refreshes the cached snapshot and re-cuts tiles when the round's
// image changes.
func (a *App) onChange(s game.Snapshot) {
	prev := a.snap
	a.snap = s
	if s.RoundNumber != prev.RoundNumber || s.State != prev.State {
		a.notice = ""
	}
	restarted := prev.State == game.StateGameOver && s.State == game.StatePlaying
	if s.Image != a.tilesFor || restarted {
		a.cutTiles(s.Image)
	}
}

func (a *App) cutTiles(name string) {
	for _, img := range a.tiles {
		img.Deallocate()
	}
	a.tiles, a.places, a.tilesFor = nil, nil, name
	parts := a.gen.Generate(name)
	if parts == nil {
		log.Warn().Str("image", name).Msg("no artwork for place")
		return
	}
	a.tiles = make([]*ebiten.Image, len(parts))
	sizes := make([]image.Point, len(parts))
	for i, t := range parts {
		a.tiles[i] = ebiten.NewImageFromImage(t.Image)
		sizes[i] = t.Bounds.Size()
	}
	a.places = placeTiles(a.gen.GridSize, sizes, boardArea)
}

func (a *App) gameOver(r game.Result) {
	log.Info().Str("mode", a.mode).Int("score", r.Score).Int("help", r.HelpUsed).Msg("game over")
}

// Update handles input once per tick.
func (a *App) Update() error {
	if a.justPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if a.justPressed(ebiten.KeyTab) {
		a.cutTiles(a.snap.Image)
	}
	enter := a.justPressed(ebiten.KeyEnter)
	if a.justPressed(ebiten.KeyNumpadEnter) || enter {
		a.ctrl.Help()
	}
	a.chars = ebiten.AppendInputChars(a.chars[:0])
	for _, r := range a.chars {
		a.handleRune(r)
	}
	return nil
}

// handleRune routes one typed character.
func (a *App) handleRune(r rune) {
	if a.ctrl.State() == game.StateGameOver {
		switch r {
		case 'n', 'N':
			a.ctrl.NewGame()
		case 'c', 'C':
			a.copyScore()
		}
		return
	}
	if r == '?' {
		a.ctrl.Help()
		return
	}
	a.ctrl.SubmitLetterGuess(string(r))
}

func (a *App) copyScore() {
	if err := clipboard.WriteAll(shareText(a.snap, a.mode, a.date)); err != nil {
		log.Warn().Err(err).Msg("copy score")
		a.notice = "Clipboard unavailable"
		return
	}
	a.notice = "Score copied"
}

// justPressed reports a key press edge.
func (a *App) justPressed(k ebiten.Key) bool {
	down := ebiten.IsKeyPressed(k)
	was := a.prevKeys[k]
	a.prevKeys[k] = down
	return down && !was
}

// Layout fixes the logical screen size.
func (a *App) Layout(_, _ int) (int, int) {
	return ScreenWidth, ScreenHeight
}
