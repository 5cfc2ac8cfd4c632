// Package scores persists finished games and serves the leaderboard.
package scores

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Game modes.
const (
	ModeClassic = "classic"
	ModeDaily   = "daily"
)

// Result is one finished game.
type Result struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"userId,omitempty"`
	AnonymousID string    `json:"-"`
	Mode        string    `json:"mode"`
	Date        string    `json:"date"` // YYYY-MM-DD (UTC)
	Score       int       `json:"score"`
	Rounds      int       `json:"rounds"`
	HelpUsed    int       `json:"helpUsed"`
	CreatedAt   time.Time `json:"createdAt"`
}

// LBRow is one leaderboard entry.
type LBRow struct {
	Player   string `json:"player"`
	Score    int    `json:"score"`
	HelpUsed int    `json:"helpUsed"`
	Date     string `json:"date"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Insert records a finished game.
func (s *Store) Insert(ctx context.Context, r Result) error {
	if r.Mode == "" {
		r.Mode = ModeClassic
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO results(user_id, anonymous_id, mode, date, score, rounds, help_used)
		VALUES(?,?,?,?,?,?,?)`,
		nullable(r.UserID), nullable(r.AnonymousID), r.Mode, r.Date, r.Score, r.Rounds, r.HelpUsed,
	)
	return err
}

// AlreadyPlayed reports whether the owner (user or anonymous ID) has a result
// for the given mode and date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, anonID, mode, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM results
		WHERE mode=? AND date=? AND ((? <> '' AND user_id=?) OR (? <> '' AND anonymous_id=?))`,
		mode, date, userID, userID, anonID, anonID,
	).Scan(&cnt)
	return cnt > 0, err
}

// Leaderboard returns the best results for a mode, optionally restricted to
// one date. Ties go to less help, then to the earlier result.
func (s *Store) Leaderboard(ctx context.Context, mode, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(u.username, 'guest'), r.score, r.help_used, r.date
		FROM results r LEFT JOIN users u ON u.id = r.user_id
		WHERE r.mode=? AND (?='' OR r.date=?)
		ORDER BY r.score DESC, r.help_used ASC, r.created_at ASC, r.id ASC
		LIMIT ?`, mode, date, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.Player, &r.Score, &r.HelpUsed, &r.Date); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ForUser returns a user's most recent results.
func (s *Store) ForUser(ctx context.Context, userID string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, COALESCE(user_id,''), mode, date, score, rounds, help_used, created_at
		FROM results WHERE user_id=? ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Result{}
	for rows.Next() {
		var r Result
		var created string
		if err := rows.Scan(&r.ID, &r.UserID, &r.Mode, &r.Date, &r.Score, &r.Rounds, &r.HelpUsed, &created); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClaimAnonymous moves results recorded under an anonymous ID to a user.
// Guest daily results for a date the user already has are dropped so the
// user keeps at most one daily result per day.
func (s *Store) ClaimAnonymous(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM results
		WHERE anonymous_id=? AND mode=? AND date IN (
			SELECT date FROM results WHERE user_id=? AND mode=?)`,
		anonID, ModeDaily, userID, ModeDaily,
	); err != nil {
		return fmt.Errorf("drop duplicate dailies: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE results SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID,
	); err != nil {
		return fmt.Errorf("claim results: %w", err)
	}
	return tx.Commit()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
