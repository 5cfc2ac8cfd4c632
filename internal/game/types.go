// internal/game/types.go
//
// Core type definitions for the guessing game controller.
// Defines:
//   - State:    playing / game over.
//   - Outcome:  evaluation of the last letter guess.
//   - Snapshot: read-only view of the controller handed to presentation layers.
//   - Result:   summary passed to the game-over hook.
//   - Options:  controller configuration, including the injected random source.

package game

// State is the coarse lifecycle state of a game.
type State string

const (
	StatePlaying  State = "playing"
	StateGameOver State = "game_over"
)

// Outcome is the evaluation of the most recent letter guess.
// It is reset to OutcomeUnknown at the start of every round.
type Outcome string

const (
	OutcomeUnknown   Outcome = "unknown"
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
)

// User-visible soft errors raised by UseHelp.
const (
	MsgMaxHelp     = "Max number of help is reached."
	MsgNoUnguessed = "No unguessed characters left."
)

const (
	// DefaultMaxHelp is the help budget per round.
	DefaultMaxHelp = 5
	// Placeholder replaces unrevealed characters in the masked answer.
	Placeholder = '_'

	roundPoints = 100
	helpPenalty = 10
)

// Rand is the random source used to pick help letters.
// *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Snapshot is a copy of everything a presentation layer may observe.
type Snapshot struct {
	Round       int     // current round, 0-based
	RoundNumber int     // current round, 1-based for display
	Rounds      int     // total rounds in a game
	Masked      string  // answer with unrevealed characters replaced by Placeholder
	Display     string  // Masked with a space after every character
	Score       int     // accumulated score
	HelpCount   int     // help used (including wrong-guess penalties) this round
	HelpUsed    int     // help spent on rounds already solved this game
	MaxHelp     int     // help budget per round
	Outcome     Outcome // last guess evaluation
	Error       string  // last soft error, empty when none
	State       State   // playing or game over
	Image       string  // image identifier for the round (the answer)
}

// Result summarises a finished game.
type Result struct {
	Score    int // final score
	Rounds   int // rounds completed
	HelpUsed int // help count summed over all rounds
}

// Options configures a Controller.
type Options struct {
	Words      []string     // ordered round answers; nil selects the words package list
	MaxHelp    int          // help budget per round; <= 0 selects DefaultMaxHelp
	Rand       Rand         // help-letter source; nil selects a time-seeded source
	OnGameOver func(Result) // optional hook fired once when the last round is solved
}
