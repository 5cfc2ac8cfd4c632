// assets/embed.go
//
// Build-time bundled game assets.
//   - places.txt:     ordered list of rounds (one lowercase place name per line).
//   - places/*.<ext>: one source image per place, keyed by the place name.
//
// Images are decoded on first lookup and cached. PNG, JPEG and GIF decoders
// come from the standard library; BMP and WEBP are registered from
// golang.org/x/image so artwork can be dropped in any of those formats.

package assets

import (
	"bufio"
	"embed"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

//go:embed places.txt places
var FS embed.FS

// imageExts is the lookup order when resolving a place image.
var imageExts = []string{".png", ".jpg", ".jpeg", ".webp", ".gif", ".bmp"}

var (
	cacheMu sync.Mutex
	cache   = map[string]image.Image{}
)

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out, sc.Err()
}

// PlacesList returns the bundled, ordered list of place names.
func PlacesList() ([]string, error) {
	return readLines("places.txt")
}

// Lookup resolves the image for a place name.
// It reports false when no decodable image is bundled under that name.
func Lookup(name string) (image.Image, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || strings.ContainsAny(name, `/\.`) {
		return nil, false
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if img, ok := cache[name]; ok {
		return img, true
	}
	for _, ext := range imageExts {
		img, err := decode(FS, "places/"+name+ext)
		if err != nil {
			continue
		}
		cache[name] = img
		return img, true
	}
	return nil, false
}

func decode(fsys fs.FS, path string) (image.Image, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}
