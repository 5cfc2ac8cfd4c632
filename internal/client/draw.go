package client

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/devinkaradag/geoguesser/internal/game"
)

var (
	bgTop      = color.RGBA{R: 18, G: 32, B: 48, A: 255}
	bgBottom   = color.RGBA{R: 8, G: 12, B: 20, A: 255}
	frameColor = color.RGBA{R: 120, G: 150, B: 180, A: 200}
	emptyCell  = color.RGBA{R: 40, G: 52, B: 66, A: 255}
	overlay    = color.RGBA{R: 0, G: 0, B: 0, A: 170}
)

// debug font cell height; ebitenutil prints with a 6x16 face
const lineH = 16

// Draw renders the HUD, the shuffled board and the masked answer.
func (a *App) Draw(screen *ebiten.Image) {
	drawGradient(screen)

	ebitenutil.DebugPrintAt(screen, "GEOGUESSER  "+a.mode+" "+a.date, 20, 20)
	ebitenutil.DebugPrintAt(screen, statusLine(a.snap), 20, 20+lineH)

	a.drawBoard(screen)

	y := boardArea.Max.Y + 24
	a.drawLarge(screen, a.snap.Display, 20, y, 3)
	y += 3*lineH + 12
	if msg := outcomeLine(a.snap.Outcome); msg != "" {
		ebitenutil.DebugPrintAt(screen, msg, 20, y)
	}
	y += lineH
	if a.snap.Error != "" {
		ebitenutil.DebugPrintAt(screen, a.snap.Error, 20, y)
	}
	y += lineH * 2
	ebitenutil.DebugPrintAt(screen, "type a letter to guess   ? or Enter: help   Tab: shuffle", 20, y)

	if a.snap.State == game.StateGameOver {
		a.drawGameOver(screen)
	}
}

func drawGradient(screen *ebiten.Image) {
	const bands = 32
	h := float32(ScreenHeight) / bands
	for i := 0; i < bands; i++ {
		t := float64(i) / (bands - 1)
		c := color.RGBA{
			R: lerp(bgTop.R, bgBottom.R, t),
			G: lerp(bgTop.G, bgBottom.G, t),
			B: lerp(bgTop.B, bgBottom.B, t),
			A: 255,
		}
		vector.FillRect(screen, 0, float32(i)*h, ScreenWidth, h+1, c, false)
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

func (a *App) drawBoard(screen *ebiten.Image) {
	x, y := float32(boardArea.Min.X), float32(boardArea.Min.Y)
	w, h := float32(boardArea.Dx()), float32(boardArea.Dy())
	vector.StrokeRect(screen, x-2, y-2, w+4, h+4, 1.5, frameColor, false)
	if len(a.tiles) == 0 {
		vector.FillRect(screen, x, y, w, h, emptyCell, false)
		ebitenutil.DebugPrintAt(screen, "no picture for this place", int(x)+12, int(y)+12)
		return
	}
	for i, img := range a.tiles {
		p := a.places[i]
		opts := &ebiten.DrawImageOptions{}
		opts.GeoM.Scale(p.Scale, p.Scale)
		opts.GeoM.Translate(p.X, p.Y)
		opts.Filter = ebiten.FilterLinear
		screen.DrawImage(img, opts)
	}
}

// drawLarge prints s scaled up through an offscreen buffer.
func (a *App) drawLarge(screen *ebiten.Image, s string, x, y int, scale float64) {
	if s == "" {
		return
	}
	buf := ebiten.NewImage(len(s)*6+2, lineH)
	defer buf.Deallocate()
	ebitenutil.DebugPrintAt(buf, s, 0, 0)
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(scale, scale)
	opts.GeoM.Translate(float64(x), float64(y))
	screen.DrawImage(buf, opts)
}

func (a *App) drawGameOver(screen *ebiten.Image) {
	vector.FillRect(screen, 0, 0, ScreenWidth, ScreenHeight, overlay, false)
	y := ScreenHeight/2 - 80
	a.drawLarge(screen, "GAME OVER", 60, y, 4)
	y += 4*lineH + 16
	ebitenutil.DebugPrintAt(screen, shareText(a.snap, a.mode, a.date), 60, y)
	y += lineH * 2
	ebitenutil.DebugPrintAt(screen, "N: new game   C: copy score   Esc: quit", 60, y)
	if a.notice != "" {
		ebitenutil.DebugPrintAt(screen, a.notice, 60, y+lineH*2)
	}
}
