package auth

import (
	"context"
	"net/http"
)

type ctxUserKey struct{}

// FromContext returns the authenticated user placed by Optional or Require.
func FromContext(ctx context.Context) *User {
	u, _ := ctx.Value(ctxUserKey{}).(*User)
	return u
}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, u)
}

func (s *Service) userFromRequest(r *http.Request) *User {
	tok := s.TokenFromRequest(r)
	if tok == "" {
		return nil
	}
	id, err := s.Parse(tok)
	if err != nil {
		return nil
	}
	// Ensure user still exists
	u, err := s.FindByID(r.Context(), id)
	if err != nil {
		return nil
	}
	return u
}

// Optional decorates requests with the user when a valid token is present.
// It never rejects; used for routes where guests are allowed.
func (s *Service) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u := s.userFromRequest(r); u != nil {
			r = r.WithContext(WithUser(r.Context(), u))
		}
		next.ServeHTTP(w, r)
	})
}

// Require enforces a valid token and injects the user into the request context.
func (s *Service) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := s.userFromRequest(r)
		if u == nil {
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}
