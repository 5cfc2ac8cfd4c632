// internal/store/memory.go
//
// In-memory session store for the HTTP server.
// Each Session pairs a game.Controller with the puzzle generator that draws
// its tiles, plus the ownership data needed to record the final score.
//
// Characteristics:
//   - Sessions are keyed by ID in a map guarded by an RWMutex.
//   - Each Session has its own mutex; Do applies one command atomically.
//   - State is lost when the process restarts.
//   - Idle sessions are dropped by Sweep.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/devinkaradag/geoguesser/internal/game"
	"github.com/devinkaradag/geoguesser/internal/puzzle"
)

// ErrNotFound is returned by Get for unknown session IDs.
var ErrNotFound = errors.New("store: session not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save persists or replaces a session.
	Save(ctx context.Context, s *Session) error

	// Get retrieves a session by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session; unknown IDs are ignored.
	Delete(ctx context.Context, id string) error

	// Sweep drops sessions untouched for longer than idle and reports how many.
	Sweep(ctx context.Context, idle time.Duration) int
}

// Session is one client's game.
type Session struct {
	ID          string
	Mode        string // "classic" or "daily"
	Date        string // daily date key; empty for classic
	UserID      string // owning account, if signed in
	AnonymousID string // owning anonymous cookie, if not signed in

	mu         sync.Mutex
	controller *game.Controller
	generator  *puzzle.Generator
	tiles      []puzzle.Tile
	tilesFor   string // image the cached tiles were cut from
	tilesGame  int    // game counter the cached tiles belong to
	games      int    // incremented on every NewGame
	recorded   bool   // final score already persisted for the current game
	touched    time.Time
}

// NewSession wraps a controller and generator.
func NewSession(id string, c *game.Controller, g *puzzle.Generator) *Session {
	return &Session{ID: id, controller: c, generator: g, touched: time.Now()}
}

// Do runs fn with exclusive access to the session's controller and returns
// the resulting snapshot.
func (s *Session) Do(fn func(c *game.Controller)) game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = time.Now()
	if fn != nil {
		fn(s.controller)
	}
	return s.controller.Snapshot()
}

// Restart starts a new game on the session.
func (s *Session) Restart() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = time.Now()
	s.controller.NewGame()
	s.games++
	s.recorded = false
	return s.controller.Snapshot()
}

// Tiles returns the shuffled tiles for the current round together with that
// round's 1-based number, both read under one lock.
// Tiles are regenerated when the round's image changes, when a new game
// starts, or when reshuffle is set.
func (s *Session) Tiles(reshuffle bool) (tiles []puzzle.Tile, round int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = time.Now()
	snap := s.controller.Snapshot()
	img := snap.Image
	if reshuffle || s.tiles == nil || s.tilesFor != img || s.tilesGame != s.games {
		s.tiles = s.generator.Generate(img)
		s.tilesFor = img
		s.tilesGame = s.games
	}
	return append([]puzzle.Tile(nil), s.tiles...), snap.RoundNumber
}

// GridSize reports the puzzle grid dimension.
func (s *Session) GridSize() int { return s.generator.GridSize }

// MarkRecorded reports whether the finished game still needed recording and
// flags it as recorded.
func (s *Session) MarkRecorded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recorded || s.controller.State() != game.StateGameOver {
		return false
	}
	s.recorded = true
	return true
}

func (s *Session) lastTouched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex        // guards sessions map
	sessions map[string]*Session // keyed by Session.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Session)}
}

func (m *memory) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) Sweep(ctx context.Context, idle time.Duration) int {
	cutoff := time.Now().Add(-idle)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.lastTouched().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
