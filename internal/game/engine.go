// internal/game/engine.go
//
// Controller for a single player's game.
// Responsibilities:
//   - Walk the ordered place list one round at a time.
//   - Apply letter guesses and help requests to the current answer.
//   - Award max(0, 100 - helpCount*10) points when a round is solved.
//   - Track state transitions: playing → game over, and back on NewGame.
//   - Notify observers with a Snapshot after every observable change.
//
// Notes:
//   - A wrong guess costs like a help (helpCount++), capped at len(answer)-1.
//   - All methods are synchronous; callers serialise access.
package game

import (
	"errors"
	"math/rand"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/devinkaradag/geoguesser/internal/words"
)

// ErrNoWords is returned by New when the place list is empty.
var ErrNoWords = errors.New("game: no words to play")

// Controller owns round, answer, guess and score state.
type Controller struct {
	words      []string
	maxHelp    int
	rng        Rand
	onGameOver func(Result)

	round     int
	answer    string
	guessed   map[rune]struct{}
	helpCount int
	score     int
	helpTotal int
	outcome   Outcome
	errMsg    string
	state     State

	observers    map[int]func(Snapshot)
	nextObserver int
}

// New constructs a controller positioned at round 0.
func New(opts Options) (*Controller, error) {
	list := opts.Words
	if list == nil {
		list = words.List()
	}
	list = words.Normalize(list)
	if len(list) == 0 {
		return nil, ErrNoWords
	}
	c := &Controller{
		words:      list,
		maxHelp:    opts.MaxHelp,
		rng:        opts.Rand,
		onGameOver: opts.OnGameOver,
		observers:  make(map[int]func(Snapshot)),
	}
	if c.maxHelp <= 0 {
		c.maxHelp = DefaultMaxHelp
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	c.reset()
	return c, nil
}

// reset returns to round 0 with a zero score.
func (c *Controller) reset() {
	c.round = 0
	c.score = 0
	c.helpTotal = 0
	c.state = StatePlaying
	c.startRound()
}

// startRound clears per-round state for c.round.
func (c *Controller) startRound() {
	c.answer = c.words[c.round]
	c.guessed = make(map[rune]struct{})
	c.helpCount = 0
	c.outcome = OutcomeUnknown
	c.errMsg = ""
}

// SubmitLetterGuess applies a single-letter guess.
//
// Only the last character of input counts, lowercased; blank input and
// letters already guessed are ignored.
func (c *Controller) SubmitLetterGuess(input string) {
	if c.state != StatePlaying {
		return
	}
	letter, ok := normalizeLetter(input)
	if !ok {
		return
	}
	if _, seen := c.guessed[letter]; seen {
		return
	}
	c.guessed[letter] = struct{}{}

	if strings.ContainsRune(c.answer, letter) {
		c.outcome = OutcomeCorrect
	} else {
		if c.helpCount < c.answerLen()-1 {
			c.helpCount++
		}
		c.outcome = OutcomeIncorrect
	}
	c.checkRoundComplete()
	c.notify()
}

// normalizeLetter extracts the last rune of input, lowercased.
func normalizeLetter(input string) (rune, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, false
	}
	r, _ := utf8.DecodeLastRuneInString(input)
	if r == utf8.RuneError {
		return 0, false
	}
	return unicode.ToLower(r), true
}

// Help spends one help from the configured budget.
func (c *Controller) Help() { c.UseHelp(c.maxHelp) }

// UseHelp reveals one random unguessed character of the answer.
//
// It fails softly, setting Error and changing nothing else, when the help
// budget (maxHelp or the answer length) is exhausted or when nothing is left
// to reveal.
func (c *Controller) UseHelp(maxHelp int) {
	if c.state != StatePlaying {
		return
	}
	if c.helpCount >= c.answerLen() || c.helpCount >= maxHelp {
		c.errMsg = MsgMaxHelp
		c.notify()
		return
	}
	var unguessed []rune
	for _, r := range c.answer {
		if _, ok := c.guessed[r]; !ok {
			unguessed = append(unguessed, r)
		}
	}
	if len(unguessed) == 0 {
		c.errMsg = MsgNoUnguessed
		c.notify()
		return
	}
	c.guessed[unguessed[c.rng.Intn(len(unguessed))]] = struct{}{}
	c.helpCount++
	c.checkRoundComplete()
	c.notify()
}

// checkRoundComplete awards points and advances when the answer is revealed.
func (c *Controller) checkRoundComplete() {
	if c.MaskedAnswer() != c.answer {
		return
	}
	c.score += RoundScore(c.helpCount)
	c.helpTotal += c.helpCount
	c.advanceRound()
}

// RoundScore is the award for solving a round after helpCount helps.
func RoundScore(helpCount int) int {
	return max(0, roundPoints-helpCount*helpPenalty)
}

// advanceRound moves to the next word, or ends the game after the last one.
func (c *Controller) advanceRound() {
	if c.round < len(c.words)-1 {
		c.round++
		c.startRound()
		return
	}
	c.state = StateGameOver
	if c.onGameOver != nil {
		c.onGameOver(Result{Score: c.score, Rounds: len(c.words), HelpUsed: c.helpTotal})
	}
}

// NewGame discards all progress and starts again at round 0.
func (c *Controller) NewGame() {
	c.reset()
	c.notify()
}

// MaskedAnswer is the current answer with unrevealed characters hidden.
func (c *Controller) MaskedAnswer() string { return Mask(c.answer, c.guessed) }

// Mask replaces every rune of answer not in guessed with Placeholder.
func Mask(answer string, guessed map[rune]struct{}) string {
	var b strings.Builder
	for _, r := range answer {
		if _, ok := guessed[r]; ok {
			b.WriteRune(r)
		} else {
			b.WriteRune(Placeholder)
		}
	}
	return b.String()
}

// Spaced renders s with a space after every character, for display.
func Spaced(s string) string {
	var b strings.Builder
	for _, r := range s {
		b.WriteRune(r)
		b.WriteByte(' ')
	}
	return b.String()
}

func (c *Controller) answerLen() int { return utf8.RuneCountInString(c.answer) }

// Guessed reports whether letter has been revealed this round.
func (c *Controller) Guessed(letter rune) bool {
	_, ok := c.guessed[letter]
	return ok
}

// State reports the lifecycle state.
func (c *Controller) State() State { return c.state }

// Snapshot returns a copy of the observable state.
func (c *Controller) Snapshot() Snapshot {
	masked := c.MaskedAnswer()
	return Snapshot{
		Round:       c.round,
		RoundNumber: c.round + 1,
		Rounds:      len(c.words),
		Masked:      masked,
		Display:     Spaced(masked),
		Score:       c.score,
		HelpCount:   c.helpCount,
		HelpUsed:    c.helpTotal,
		MaxHelp:     c.maxHelp,
		Outcome:     c.outcome,
		Error:       c.errMsg,
		State:       c.state,
		Image:       c.answer,
	}
}

// Subscribe registers fn to receive a Snapshot after every observable change.
// The returned function removes the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) (cancel func()) {
	id := c.nextObserver
	c.nextObserver++
	c.observers[id] = fn
	return func() { delete(c.observers, id) }
}

func (c *Controller) notify() {
	if len(c.observers) == 0 {
		return
	}
	snap := c.Snapshot()
	for _, fn := range c.observers {
		fn(snap)
	}
}
