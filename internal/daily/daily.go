// Package daily derives the shared "daily challenge" randomness: every player
// starting a daily game on the same UTC date gets the same tile arrangement
// and help picks.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
	"os"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// SaltFromEnv returns DAILY_SALT, falling back to JWT_SECRET. The server and
// the desktop client both use it so they deal the same daily board.
func SaltFromEnv() string {
	if v := os.Getenv("DAILY_SALT"); v != "" {
		return v
	}
	return os.Getenv("JWT_SECRET")
}

// Seed returns a deterministic seed for a date using HMAC(salt, YYYY-MM-DD).
func Seed(date time.Time, salt string) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes, top bit cleared so the seed stays positive
	return int64(binary.BigEndian.Uint64(sum[:8]) &^ (1 << 63))
}

// Rand returns the random sources for a date: one for the tile shuffle and
// one for help picks, so the two streams do not disturb each other.
func Rand(date time.Time, salt string) (tiles, help *rand.Rand) {
	seed := Seed(date, salt)
	return rand.New(rand.NewSource(seed)), rand.New(rand.NewSource(seed ^ 0x5f3759df))
}
