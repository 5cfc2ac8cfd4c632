// internal/httpserver/routes_game.go
//
// HTTP routes for playing a game. Mounted under /game:
//   - POST /game/new                    → start a session (classic or daily)
//   - GET  /game/{id}                   → current snapshot
//   - DELETE /game/{id}                 → abandon the session
//   - POST /game/{id}/guess             → submit one letter
//   - POST /game/{id}/help              → reveal one random letter
//   - POST /game/{id}/restart           → start over at round 1
//   - GET  /game/{id}/tiles             → shuffled tile layout for the round
//   - GET  /game/{id}/tiles/{index}.png → one tile image
//   - GET  /game/{id}/board.png         → the shuffled board as one image
//
// The answer is never sent while a game is in progress. Finished games are
// recorded once in the score store; daily games at most once per player and day.

package httpserver

import (
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/devinkaradag/geoguesser/internal/auth"
	"github.com/devinkaradag/geoguesser/internal/daily"
	"github.com/devinkaradag/geoguesser/internal/game"
	"github.com/devinkaradag/geoguesser/internal/puzzle"
	"github.com/devinkaradag/geoguesser/internal/scores"
	"github.com/devinkaradag/geoguesser/internal/store"
)

// mountGame registers all /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Post("/new", s.handleNewGame)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.handleState)
		r.Delete("/", s.handleAbandon)
		r.Post("/guess", s.handleGuess)
		r.Post("/help", s.handleHelp)
		r.Post("/restart", s.handleRestart)
		r.Get("/tiles", s.handleTiles)
		r.Get("/tiles/{index}.png", s.handleTilePNG)
		r.Get("/board.png", s.handleBoardPNG)
	})
}

// snapshotRes is the JSON view of a game snapshot.
type snapshotRes struct {
	GameID    string       `json:"gameId"`
	Mode      string       `json:"mode"`
	Round     int          `json:"round"` // 1-based
	Rounds    int          `json:"rounds"`
	Masked    string       `json:"masked"`
	Display   string       `json:"display"`
	Score     int          `json:"score"`
	HelpCount int          `json:"helpCount"`
	MaxHelp   int          `json:"maxHelp"`
	Outcome   game.Outcome `json:"outcome"`
	Error     *string      `json:"error"`
	State     game.State   `json:"state"`
	Answer    string       `json:"answer,omitempty"` // only once the game is over
}

func toSnapshotRes(sess *store.Session, snap game.Snapshot) snapshotRes {
	res := snapshotRes{
		GameID:    sess.ID,
		Mode:      sess.Mode,
		Round:     snap.RoundNumber,
		Rounds:    snap.Rounds,
		Masked:    snap.Masked,
		Display:   snap.Display,
		Score:     snap.Score,
		HelpCount: snap.HelpCount,
		MaxHelp:   snap.MaxHelp,
		Outcome:   snap.Outcome,
		State:     snap.State,
	}
	if snap.Error != "" {
		msg := snap.Error
		res.Error = &msg
	}
	if snap.State == game.StateGameOver {
		res.Answer = snap.Image
	}
	return res
}

// -----------------------------------------------------------------------------
// /game/new

type newGameReq struct {
	Mode string `json:"mode"` // "classic" (default) | "daily"
}

type newGameRes struct {
	GameID string       `json:"gameId"`
	Mode   string       `json:"mode"`
	Date   string       `json:"date,omitempty"`
	Played bool         `json:"played"`
	Game   *snapshotRes `json:"game,omitempty"`
}

// handleNewGame creates a session. Daily sessions share the day's seed so
// every player sees the same arrangement; a player who already finished
// today's daily gets Played=true and no session.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json")
			return
		}
	}
	if req.Mode == "" {
		req.Mode = scores.ModeClassic
	}
	if req.Mode != scores.ModeClassic && req.Mode != scores.ModeDaily {
		writeError(w, http.StatusBadRequest, "unknown_mode")
		return
	}

	var userID, anonID string
	if me := auth.FromContext(r.Context()); me != nil {
		userID = me.ID
	} else {
		anonID = s.auth.EnsureAnonID(w, r)
	}

	gen := puzzle.NewGenerator(s.cfg.Lookup, s.cfg.GridSize)
	opts := game.Options{Words: s.cfg.Words, MaxHelp: s.cfg.MaxHelp}
	date := ""
	if req.Mode == scores.ModeDaily {
		now := s.now()
		date = daily.DateKey(now)
		played, err := s.scores.AlreadyPlayed(r.Context(), userID, anonID, scores.ModeDaily, date)
		if err != nil {
			log.Error().Err(err).Msg("check daily played")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		if played {
			writeJSON(w, http.StatusOK, newGameRes{Mode: req.Mode, Date: date, Played: true})
			return
		}
		tilesRand, helpRand := daily.Rand(now, s.cfg.DailySalt)
		gen.Rand = tilesRand
		opts.Rand = helpRand
	}

	c, err := game.New(opts)
	if err != nil {
		log.Error().Err(err).Msg("new game")
		writeError(w, http.StatusInternalServerError, "no_words")
		return
	}
	sess := store.NewSession(uuid.NewString(), c, gen)
	sess.Mode, sess.Date = req.Mode, date
	sess.UserID, sess.AnonymousID = userID, anonID
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	log.Info().Str("gameId", sess.ID).Str("mode", req.Mode).Msg("game started")

	snap := toSnapshotRes(sess, sess.Do(nil))
	writeJSON(w, http.StatusOK, newGameRes{GameID: sess.ID, Mode: req.Mode, Date: date, Game: &snap})
}

// -----------------------------------------------------------------------------
// commands

// session resolves {id} or writes a 404.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*store.Session, bool) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store_error")
		return nil, false
	}
	return sess, true
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotRes(sess, sess.Do(nil)))
}

// handleAbandon drops the session; an unfinished game is not recorded.
func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := s.store.Delete(r.Context(), sess.ID); err != nil {
		log.Error().Err(err).Str("gameId", sess.ID).Msg("delete session")
		writeError(w, http.StatusInternalServerError, "store_error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type guessReq struct {
	Letter string `json:"letter"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	snap := sess.Do(func(c *game.Controller) { c.SubmitLetterGuess(req.Letter) })
	s.recordIfFinished(r, sess, snap)
	writeJSON(w, http.StatusOK, toSnapshotRes(sess, snap))
}

func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	snap := sess.Do(func(c *game.Controller) { c.Help() })
	s.recordIfFinished(r, sess, snap)
	writeJSON(w, http.StatusOK, toSnapshotRes(sess, snap))
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotRes(sess, sess.Restart()))
}

// recordIfFinished persists the final score once per finished game.
// Failures are logged; the player still sees their result.
func (s *Server) recordIfFinished(r *http.Request, sess *store.Session, snap game.Snapshot) {
	if snap.State != game.StateGameOver || !sess.MarkRecorded() {
		return
	}
	ctx := r.Context()
	date := sess.Date
	if date == "" {
		date = daily.DateKey(s.now())
	}
	if sess.Mode == scores.ModeDaily {
		played, err := s.scores.AlreadyPlayed(ctx, sess.UserID, sess.AnonymousID, scores.ModeDaily, date)
		if err != nil {
			log.Warn().Err(err).Str("gameId", sess.ID).Msg("check daily played")
			return
		}
		if played {
			log.Info().Str("gameId", sess.ID).Msg("daily already recorded, skipping")
			return
		}
	}
	res := scores.Result{
		UserID:      sess.UserID,
		AnonymousID: sess.AnonymousID,
		Mode:        sess.Mode,
		Date:        date,
		Score:       snap.Score,
		Rounds:      snap.Rounds,
		HelpUsed:    snap.HelpUsed,
	}
	if err := s.scores.Insert(ctx, res); err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("insert result")
		return
	}
	if sess.UserID != "" {
		if err := s.auth.RecordGame(ctx, sess.UserID, snap.Score); err != nil {
			log.Warn().Err(err).Str("user", sess.UserID).Msg("bump stats")
		}
	}
	log.Info().Str("gameId", sess.ID).Int("score", snap.Score).Msg("game finished")
}

// -----------------------------------------------------------------------------
// tiles

type tileRes struct {
	Index  int    `json:"index"` // position in the shuffled sequence
	Row    int    `json:"row"`   // display row
	Col    int    `json:"col"`   // display column
	Width  int    `json:"width"`
	Height int    `json:"height"`
	URL    string `json:"url"`
}

type tilesRes struct {
	GridSize int       `json:"gridSize"`
	Round    int       `json:"round"`
	Tiles    []tileRes `json:"tiles"`
}

// handleTiles returns the current shuffled layout; ?shuffle=1 reshuffles.
func (s *Server) handleTiles(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	tiles, round := sess.Tiles(r.URL.Query().Get("shuffle") == "1")
	n := sess.GridSize()
	out := tilesRes{GridSize: n, Round: round, Tiles: make([]tileRes, 0, len(tiles))}
	for i, t := range tiles {
		out.Tiles = append(out.Tiles, tileRes{
			Index:  i,
			Row:    i / n,
			Col:    i % n,
			Width:  t.Bounds.Dx(),
			Height: t.Bounds.Dy(),
			URL:    "/game/" + sess.ID + "/tiles/" + strconv.Itoa(i) + ".png",
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTilePNG(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	tiles, _ := sess.Tiles(false)
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || i < 0 || i >= len(tiles) {
		writeError(w, http.StatusNotFound, "no_tile")
		return
	}
	writePNG(w, tiles[i].Image)
}

func (s *Server) handleBoardPNG(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	tiles, _ := sess.Tiles(false)
	if len(tiles) == 0 {
		// missing artwork renders nothing
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writePNG(w, puzzle.Compose(tiles, sess.GridSize()))
}

func writePNG(w http.ResponseWriter, img image.Image) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := png.Encode(w, img); err != nil {
		log.Warn().Err(err).Msg("encode png")
	}
}
