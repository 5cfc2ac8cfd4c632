// internal/puzzle/puzzle.go
//
// Tile puzzle generator.
//   - Partition cuts an image into an N×N row-major grid of fragments.
//   - Shuffle permutes fragments with Fisher–Yates over an injected random source.
//   - Generator ties both to an image lookup and reshuffles on every call.
//   - Compose draws a fragment sequence back into a single grid image.
//
// Boundaries are computed as Min + i*size/n (integer floor) so the fragments
// tile the source exactly: none missing, none overlapping. When the size is
// not divisible by N fragment sizes differ by at most one pixel.

package puzzle

import (
	"image"
	"math/rand"
	"time"

	"golang.org/x/image/draw"
)

// DefaultGridSize is the number of rows (and columns) of the puzzle grid.
const DefaultGridSize = 4

// Rand is the random source used for shuffling. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Lookup resolves a source image by name; ok is false when it does not exist.
type Lookup func(name string) (image.Image, bool)

// Tile is one rectangular fragment of a source image.
type Tile struct {
	Row    int             // grid row before shuffling
	Col    int             // grid column before shuffling
	Bounds image.Rectangle // fragment rectangle in source coordinates
	Image  image.Image     // fragment pixels; Image.Bounds() == Bounds
}

// Index is the row-major position of the tile before shuffling.
func (t Tile) Index(n int) int { return t.Row*n + t.Col }

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// Partition splits img into an n×n grid in row-major order.
// It returns nil when img is nil or n < 1.
func Partition(img image.Image, n int) []Tile {
	if img == nil || n < 1 {
		return nil
	}
	b := img.Bounds()
	xs := cuts(b.Min.X, b.Dx(), n)
	ys := cuts(b.Min.Y, b.Dy(), n)

	tiles := make([]Tile, 0, n*n)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			r := image.Rect(xs[col], ys[row], xs[col+1], ys[row+1])
			tiles = append(tiles, Tile{Row: row, Col: col, Bounds: r, Image: crop(img, r)})
		}
	}
	return tiles
}

// cuts returns the n+1 fragment boundaries along one axis.
func cuts(min, size, n int) []int {
	out := make([]int, n+1)
	for i := 0; i <= n; i++ {
		out[i] = min + i*size/n
	}
	return out
}

func crop(img image.Image, r image.Rectangle) image.Image {
	if r.Empty() {
		return image.NewRGBA(r)
	}
	if si, ok := img.(subImager); ok {
		return si.SubImage(r)
	}
	dst := image.NewRGBA(r)
	draw.Copy(dst, r.Min, img, r, draw.Src, nil)
	return dst
}

// Shuffle permutes tiles in place.
func Shuffle(tiles []Tile, rng Rand) {
	for i := len(tiles) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		tiles[i], tiles[j] = tiles[j], tiles[i]
	}
}

// Generator produces freshly shuffled tile sequences for named images.
type Generator struct {
	Lookup   Lookup
	GridSize int
	Rand     Rand
}

// NewGenerator builds a Generator with a time-seeded random source.
// A gridSize below 1 selects DefaultGridSize.
func NewGenerator(lookup Lookup, gridSize int) *Generator {
	if gridSize < 1 {
		gridSize = DefaultGridSize
	}
	return &Generator{
		Lookup:   lookup,
		GridSize: gridSize,
		Rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate returns the shuffled fragments of the named image.
// A name that cannot be resolved yields an empty sequence. A Generator built
// without Rand or GridSize gets a time-seeded source and DefaultGridSize.
func (g *Generator) Generate(name string) []Tile {
	if g.Lookup == nil {
		return nil
	}
	img, ok := g.Lookup(name)
	if !ok || img == nil {
		return nil
	}
	if g.Rand == nil {
		g.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if g.GridSize < 1 {
		g.GridSize = DefaultGridSize
	}
	tiles := Partition(img, g.GridSize)
	Shuffle(tiles, g.Rand)
	return tiles
}

// Compose draws tiles into an n×n grid image in sequence order.
// Each cell is sized to the largest fragment; smaller fragments are anchored
// at the cell's top-left corner.
func Compose(tiles []Tile, n int) *image.RGBA {
	if len(tiles) == 0 || n < 1 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	cw, ch := 0, 0
	for _, t := range tiles {
		cw = max(cw, t.Bounds.Dx())
		ch = max(ch, t.Bounds.Dy())
	}
	dst := image.NewRGBA(image.Rect(0, 0, cw*n, ch*n))
	for i, t := range tiles {
		if i >= n*n {
			break
		}
		at := image.Pt((i%n)*cw, (i/n)*ch)
		draw.Draw(dst, image.Rectangle{Min: at, Max: at.Add(t.Bounds.Size())}, t.Image, t.Bounds.Min, draw.Src)
	}
	return dst
}
