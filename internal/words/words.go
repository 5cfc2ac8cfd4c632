// internal/words/words.go
//
// Ordered place-name list that drives the rounds of a game.
//
// Initialization behavior (Init):
//   1. If WORDS_FILE is set, load one place name per line from that file.
//   2. Otherwise use the bundled assets/places.txt.
//   3. If the bundled list cannot be read, fall back to the built-in defaults.
//
// Constraints:
//   • Names are trimmed and lowercased; blank lines and '#' comments are skipped.
//   • Names must consist of letters only (any script).
//   • Initialization is run once (sync.Once).

package words

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/devinkaradag/geoguesser/assets"
)

// Defaults is the built-in round order.
var Defaults = []string{"ankara", "istanbul", "izmir", "bursa", "antalya"}

var (
	initOnce   sync.Once
	places     []string
	initialErr error
)

// Init loads the place list exactly once.
// Returns an error if the list ends up empty or an override file is unreadable.
func Init() error {
	initOnce.Do(func() {
		if path := os.Getenv("WORDS_FILE"); path != "" {
			list, err := readWordFile(path)
			if err != nil {
				initialErr = fmt.Errorf("words: read %s: %w", path, err)
				return
			}
			places = list
		} else {
			list, err := assets.PlacesList()
			if err != nil {
				log.Warn().Err(err).Msg("bundled place list unreadable, using defaults")
				list = Defaults
			}
			places = Normalize(list)
		}
		if len(places) == 0 {
			initialErr = errors.New("words: place list is empty")
		}
	})
	return initialErr
}

func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return Normalize(lines), nil
}

// Normalize lowercases and trims each entry, dropping comments, blanks and
// entries containing anything but letters.
func Normalize(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		w := strings.ToLower(strings.TrimSpace(line))
		if w == "" || strings.HasPrefix(w, "#") || !isLetters(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// List returns a copy of the loaded place list, loading it on first use.
// If loading failed the built-in defaults are returned.
func List() []string {
	if err := Init(); err != nil {
		return append([]string(nil), Defaults...)
	}
	return append([]string(nil), places...)
}

// Count reports how many rounds a full game has.
func Count() int { return len(List()) }
