// GeoGuesser HTTP server.
//
// Loads .env, opens the SQLite database, and serves the game API.
package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/devinkaradag/geoguesser/assets"
	"github.com/devinkaradag/geoguesser/internal/auth"
	"github.com/devinkaradag/geoguesser/internal/daily"
	"github.com/devinkaradag/geoguesser/internal/db"
	"github.com/devinkaradag/geoguesser/internal/httpserver"
	"github.com/devinkaradag/geoguesser/internal/scores"
	"github.com/devinkaradag/geoguesser/internal/store"
	"github.com/devinkaradag/geoguesser/internal/words"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := words.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load place list")
	}

	sqlDB, err := db.Open(getEnv("DB_PATH", "./data/geoguesser.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer sqlDB.Close()
	if err := db.Migrate(sqlDB); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		log.Warn().Msg("JWT_SECRET not set, using development secret")
	}
	au := auth.NewService(sqlDB, auth.Config{
		Secret:      secret,
		ExpiresDays: envInt("JWT_EXPIRES_DAYS", 14),
		CookieName:  getEnv("COOKIE_NAME", "geo_token"),
		Secure:      getEnv("NODE_ENV", "") == "production",
	})

	srv := httpserver.New(httpserver.Config{
		MaxHelp:      envInt("MAX_HELP", 5),
		GridSize:     envInt("GRID_SIZE", 4),
		Lookup:       assets.Lookup,
		DailySalt:    daily.SaltFromEnv(),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
	}, store.NewMemoryStore(), scores.NewStore(sqlDB), au)

	idle := time.Duration(envInt("SESSION_IDLE_MINUTES", 60)) * time.Minute
	go srv.SweepSessions(context.Background(), time.Minute, idle)

	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Int("places", words.Count()).Msg("starting geoguesser server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return n
}
