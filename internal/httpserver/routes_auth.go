// internal/httpserver/routes_auth.go
//
// Account endpoints:
//   - POST /auth/signup → create account, set auth cookie, claim guest results
//   - POST /auth/login  → verify password, set auth cookie, claim guest results
//   - POST /auth/logout → clear auth cookie
//   - GET  /auth/me     → current user with stats (require auth)

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/devinkaradag/geoguesser/internal/auth"
)

// credentialsReq is the payload for signup and login.
type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) mountAuth() {
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)
	s.r.With(s.auth.Require).Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, auth.FromContext(r.Context()))
	})
}

// handleSignup creates a new user, signs a JWT, sets the auth cookie and
// claims the guest's results.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.auth.Signup(r.Context(), body.Username, body.Password)
	var invalid auth.ValidationError
	switch {
	case errors.Is(err, auth.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "Username taken")
		return
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, invalid.Error())
		return
	case err != nil:
		log.Error().Err(err).Msg("signup")
		writeError(w, http.StatusInternalServerError, "signup_failed")
		return
	}
	s.signIn(w, r, u)
}

// handleLogin authenticates a user, sets the auth cookie and claims the
// guest's results.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.auth.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	s.signIn(w, r, u)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request, u *auth.User) {
	tok, exp, err := s.auth.Sign(u)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.auth.SetCookie(w, tok, exp)
	if anon := auth.AnonID(r); anon != "" {
		s.claimGuestResults(r, anon, u)
	}
	writeJSON(w, http.StatusOK, u)
}

// claimGuestResults moves the guest's results onto u and refreshes u's stats
// from them. Failures are logged; sign-in still succeeds.
func (s *Server) claimGuestResults(r *http.Request, anon string, u *auth.User) {
	ctx := r.Context()
	if err := s.scores.ClaimAnonymous(ctx, anon, u.ID); err != nil {
		log.Warn().Err(err).Str("user", u.ID).Msg("claim guest results")
		return
	}
	if err := s.auth.SyncStats(ctx, u.ID); err != nil {
		log.Warn().Err(err).Str("user", u.ID).Msg("sync stats")
		return
	}
	if fresh, err := s.auth.FindByID(ctx, u.ID); err == nil {
		*u = *fresh
	}
}

// handleLogout clears the auth cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.ClearCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
