package httpserver

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/devinkaradag/geoguesser/internal/auth"
	"github.com/devinkaradag/geoguesser/internal/daily"
	"github.com/devinkaradag/geoguesser/internal/scores"
)

// mountScores registers the leaderboard (public) and personal history (gated).
func (s *Server) mountScores() {
	s.r.Get("/scores", s.handleLeaderboard)
	s.r.With(s.auth.Require).Get("/scores/mine", s.handleMyScores)
}

type leaderboardRes struct {
	Mode string         `json:"mode"`
	Date string         `json:"date,omitempty"`
	Rows []scores.LBRow `json:"rows"`
}

// handleLeaderboard serves GET /scores?mode=classic|daily&date=YYYY-MM-DD&limit=N.
// Daily boards default to today.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("mode")
	if mode == "" {
		mode = scores.ModeClassic
	}
	if mode != scores.ModeClassic && mode != scores.ModeDaily {
		writeError(w, http.StatusBadRequest, "unknown_mode")
		return
	}
	date := q.Get("date")
	if date == "" && mode == scores.ModeDaily {
		date = daily.DateKey(s.now())
	}
	rows, err := s.scores.Leaderboard(r.Context(), mode, date, queryLimit(r, 20, 100))
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, leaderboardRes{Mode: mode, Date: date, Rows: rows})
}

func (s *Server) handleMyScores(w http.ResponseWriter, r *http.Request) {
	me := auth.FromContext(r.Context())
	rows, err := s.scores.ForUser(r.Context(), me.ID, queryLimit(r, 50, 200))
	if err != nil {
		log.Error().Err(err).Msg("scores for user")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// queryLimit reads ?limit, falling back to def and clamping to hi.
func queryLimit(r *http.Request, def, hi int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return def
	}
	return min(n, hi)
}
