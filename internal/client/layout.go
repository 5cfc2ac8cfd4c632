package client

import (
	"fmt"
	"image"
	"strings"

	"github.com/devinkaradag/geoguesser/internal/game"
)

// Screen dimensions in logical pixels.
const (
	ScreenWidth  = 480
	ScreenHeight = 800

	tileGap = 4
)

// boardArea is where the shuffled tiles are drawn.
var boardArea = image.Rect(20, 90, ScreenWidth-20, 90+440)

// placement positions one tile on screen.
type placement struct {
	X, Y  float64
	Scale float64
}

// placeTiles lays out tiles in display order on an n×n grid inside area.
// Every cell is sized to the largest tile and one uniform scale keeps the
// picture's aspect ratio; the grid is centred in area.
func placeTiles(n int, sizes []image.Point, area image.Rectangle) []placement {
	if n < 1 || len(sizes) == 0 {
		return nil
	}
	var cell image.Point
	for _, s := range sizes {
		cell.X = max(cell.X, s.X)
		cell.Y = max(cell.Y, s.Y)
	}
	if cell.X == 0 || cell.Y == 0 {
		return make([]placement, len(sizes))
	}
	gaps := float64(tileGap * (n - 1))
	scale := min(
		(float64(area.Dx())-gaps)/float64(n*cell.X),
		(float64(area.Dy())-gaps)/float64(n*cell.Y),
	)
	cw, ch := float64(cell.X)*scale, float64(cell.Y)*scale
	gridW, gridH := float64(n)*cw+gaps, float64(n)*ch+gaps
	ox := float64(area.Min.X) + (float64(area.Dx())-gridW)/2
	oy := float64(area.Min.Y) + (float64(area.Dy())-gridH)/2

	out := make([]placement, len(sizes))
	for i := range sizes {
		row, col := i/n, i%n
		out[i] = placement{
			X:     ox + float64(col)*(cw+tileGap),
			Y:     oy + float64(row)*(ch+tileGap),
			Scale: scale,
		}
	}
	return out
}

// statusLine summarises the round for the HUD.
func statusLine(s game.Snapshot) string {
	return fmt.Sprintf("Round %d/%d   Score %d   Help %d/%d", s.RoundNumber, s.Rounds, s.Score, s.HelpCount, s.MaxHelp)
}

// outcomeLine describes the last guess.
func outcomeLine(o game.Outcome) string {
	switch o {
	case game.OutcomeCorrect:
		return "Correct!"
	case game.OutcomeIncorrect:
		return "Wrong letter"
	}
	return ""
}

// shareText is the text copied to the clipboard after a game.
func shareText(s game.Snapshot, mode, date string) string {
	var b strings.Builder
	b.WriteString("GeoGuesser")
	if mode != "" {
		b.WriteString(" " + mode)
	}
	if date != "" {
		b.WriteString(" " + date)
	}
	fmt.Fprintf(&b, ": %d points over %d places", s.Score, s.Rounds)
	if s.HelpUsed > 0 {
		fmt.Fprintf(&b, " (%d help)", s.HelpUsed)
	}
	return b.String()
}
