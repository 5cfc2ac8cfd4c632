package httpserver

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/devinkaradag/geoguesser/internal/auth"
	"github.com/devinkaradag/geoguesser/internal/db"
	"github.com/devinkaradag/geoguesser/internal/scores"
	"github.com/devinkaradag/geoguesser/internal/store"
)

func testLookup(name string) (image.Image, bool) {
	if name == "missing" {
		return nil, false
	}
	return image.NewRGBA(image.Rect(0, 0, 40, 30)), true
}

func newTestServer(t *testing.T, words []string) *Server {
	t.Helper()
	sqlDB, err := db.Open(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.Migrate(sqlDB); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	s := New(Config{Words: words, GridSize: 2, Lookup: testLookup, DailySalt: "salt"},
		store.NewMemoryStore(), scores.NewStore(sqlDB), auth.NewService(sqlDB, auth.Config{Secret: "s"}))
	s.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }
	return s
}

// client keeps cookies between requests like a browser would.
type client struct {
	t       *testing.T
	s       *Server
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T, s *Server) *client {
	return &client{t: t, s: s, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.s.Router().ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func (c *client) newGame(mode string) newGameRes {
	c.t.Helper()
	w := c.do(http.MethodPost, "/game/new", map[string]string{"mode": mode})
	if w.Code != http.StatusOK {
		c.t.Fatalf("new game: %d %s", w.Code, w.Body.String())
	}
	return decode[newGameRes](c.t, w)
}

func (c *client) guess(id, letter string) snapshotRes {
	c.t.Helper()
	w := c.do(http.MethodPost, "/game/"+id+"/guess", map[string]string{"letter": letter})
	if w.Code != http.StatusOK {
		c.t.Fatalf("guess: %d %s", w.Code, w.Body.String())
	}
	return decode[snapshotRes](c.t, w)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, []string{"ab"})
	w := newClient(t, s).do(http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("health = %d %s", w.Code, w.Body.String())
	}
}

func TestNewGameHidesAnswer(t *testing.T) {
	c := newClient(t, newTestServer(t, []string{"ankara", "izmir"}))
	res := c.newGame("")
	if res.GameID == "" || res.Mode != scores.ModeClassic || res.Game == nil {
		t.Fatalf("unexpected response %+v", res)
	}
	g := res.Game
	if g.Masked != "______" || g.Round != 1 || g.Rounds != 2 || g.Answer != "" || g.Error != nil {
		t.Fatalf("unexpected snapshot %+v", g)
	}
	if c.cookies["geo_anon"] == nil {
		t.Fatal("guest should get an anonymous cookie")
	}
}

func TestUnknownModeAndGame(t *testing.T) {
	c := newClient(t, newTestServer(t, []string{"ab"}))
	if w := c.do(http.MethodPost, "/game/new", map[string]string{"mode": "blitz"}); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown mode status = %d", w.Code)
	}
	if w := c.do(http.MethodGet, "/game/nope", nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown game status = %d", w.Code)
	}
}

func TestPlayToGameOverRecordsScore(t *testing.T) {
	s := newTestServer(t, []string{"ab", "cd"})
	c := newClient(t, s)
	id := c.newGame(scores.ModeClassic).GameID

	if g := c.guess(id, "x"); g.Outcome != "incorrect" || g.HelpCount != 1 {
		t.Fatalf("wrong guess = %+v", g)
	}
	c.guess(id, "a")
	g := c.guess(id, "B") // completes "ab" with one penalty
	if g.Round != 2 || g.Score != 90 || g.Masked != "__" {
		t.Fatalf("after round 1 = %+v", g)
	}
	c.guess(id, "c")
	g = c.guess(id, "d")
	if g.State != "game_over" || g.Score != 190 || g.Answer != "cd" {
		t.Fatalf("game over = %+v", g)
	}
	// further commands are ignored and do not record twice
	c.guess(id, "e")
	c.do(http.MethodPost, "/game/"+id+"/help", nil)

	w := c.do(http.MethodGet, "/scores?mode=classic", nil)
	lb := decode[leaderboardRes](t, w)
	if len(lb.Rows) != 1 || lb.Rows[0].Score != 190 || lb.Rows[0].HelpUsed != 1 || lb.Rows[0].Player != "guest" {
		t.Fatalf("leaderboard = %+v", lb)
	}
}

func TestHelpBudget(t *testing.T) {
	s := newTestServer(t, []string{"abcdefgh"})
	s.cfg.MaxHelp = 2
	c := newClient(t, s)
	id := c.newGame("").GameID
	for i := 0; i < 2; i++ {
		w := c.do(http.MethodPost, "/game/"+id+"/help", nil)
		if g := decode[snapshotRes](t, w); g.Error != nil || g.HelpCount != i+1 {
			t.Fatalf("help %d = %+v", i, g)
		}
	}
	g := decode[snapshotRes](t, c.do(http.MethodPost, "/game/"+id+"/help", nil))
	if g.Error == nil || *g.Error != "Max number of help is reached." || g.HelpCount != 2 {
		t.Fatalf("exhausted help = %+v", g)
	}
	if strings.Count(g.Masked, "_") != 6 {
		t.Fatalf("two letters should be revealed, got %q", g.Masked)
	}
}

func TestRestart(t *testing.T) {
	c := newClient(t, newTestServer(t, []string{"ab", "cd"}))
	id := c.newGame("").GameID
	c.guess(id, "a")
	c.guess(id, "b")
	g := decode[snapshotRes](t, c.do(http.MethodPost, "/game/"+id+"/restart", nil))
	if g.Round != 1 || g.Score != 0 || g.Masked != "__" || g.State != "playing" {
		t.Fatalf("restart = %+v", g)
	}
}

func TestTiles(t *testing.T) {
	c := newClient(t, newTestServer(t, []string{"ab"}))
	id := c.newGame("").GameID

	w := c.do(http.MethodGet, "/game/"+id+"/tiles", nil)
	tr := decode[tilesRes](t, w)
	if tr.GridSize != 2 || len(tr.Tiles) != 4 {
		t.Fatalf("tiles = %+v", tr)
	}
	area := 0
	for i, tile := range tr.Tiles {
		if tile.Index != i || tile.Row != i/2 || tile.Col != i%2 {
			t.Fatalf("tile %d position = %+v", i, tile)
		}
		area += tile.Width * tile.Height
	}
	if area != 40*30 {
		t.Fatalf("tiles cover %d pixels, want %d", area, 40*30)
	}

	w = c.do(http.MethodGet, "/game/"+id+"/tiles/3.png", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("tile png = %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if _, err := png.Decode(w.Body); err != nil {
		t.Fatalf("tile png decode: %v", err)
	}
	if w := c.do(http.MethodGet, "/game/"+id+"/tiles/4.png", nil); w.Code != http.StatusNotFound {
		t.Fatalf("out of range tile = %d", w.Code)
	}

	w = c.do(http.MethodGet, "/game/"+id+"/board.png", nil)
	img, err := png.Decode(w.Body)
	if err != nil {
		t.Fatalf("board decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Fatalf("board bounds = %v", b)
	}
}

func TestTilesMissingImage(t *testing.T) {
	c := newClient(t, newTestServer(t, []string{"missing"}))
	id := c.newGame("").GameID
	tr := decode[tilesRes](t, c.do(http.MethodGet, "/game/"+id+"/tiles", nil))
	if len(tr.Tiles) != 0 {
		t.Fatalf("missing image should yield no tiles, got %d", len(tr.Tiles))
	}
	if w := c.do(http.MethodGet, "/game/"+id+"/board.png", nil); w.Code != http.StatusNoContent {
		t.Fatalf("board for missing image = %d", w.Code)
	}
}

func TestDailyOncePerDay(t *testing.T) {
	s := newTestServer(t, []string{"ab"})
	c := newClient(t, s)
	res := c.newGame(scores.ModeDaily)
	if res.Date != "2026-03-14" || res.Played {
		t.Fatalf("daily = %+v", res)
	}
	c.guess(res.GameID, "a")
	if g := c.guess(res.GameID, "b"); g.State != "game_over" {
		t.Fatalf("daily not finished: %+v", g)
	}
	again := c.newGame(scores.ModeDaily)
	if !again.Played || again.GameID != "" {
		t.Fatalf("second daily = %+v", again)
	}
	lb := decode[leaderboardRes](t, c.do(http.MethodGet, "/scores?mode=daily", nil))
	if lb.Date != "2026-03-14" || len(lb.Rows) != 1 {
		t.Fatalf("daily leaderboard = %+v", lb)
	}
}

func TestDailySameTilesForEveryone(t *testing.T) {
	s := newTestServer(t, []string{"ab"})
	// uneven size so every tile is distinguishable by its dimensions
	s.cfg.Lookup = func(string) (image.Image, bool) { return image.NewRGBA(image.Rect(0, 0, 41, 31)), true }
	layout := func() []tileRes {
		c := newClient(t, s)
		id := c.newGame(scores.ModeDaily).GameID
		return decode[tilesRes](t, c.do(http.MethodGet, "/game/"+id+"/tiles", nil)).Tiles
	}
	a, b := layout(), layout()
	for i := range a {
		if a[i].Width != b[i].Width || a[i].Height != b[i].Height {
			t.Fatalf("daily layouts differ at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestAuthFlowClaimsGuestResults(t *testing.T) {
	s := newTestServer(t, []string{"ab"})
	c := newClient(t, s)
	id := c.newGame("").GameID
	c.guess(id, "a")
	c.guess(id, "b")

	w := c.do(http.MethodPost, "/auth/signup", credentialsReq{Username: "deniz", Password: "password1"})
	if w.Code != http.StatusOK {
		t.Fatalf("signup = %d %s", w.Code, w.Body.String())
	}
	if u := decode[auth.User](t, w); u.GamesPlayed != 1 || u.BestScore != 100 {
		t.Fatalf("signup should count the claimed game: %+v", u)
	}
	if w := c.do(http.MethodPost, "/auth/signup", credentialsReq{Username: "deniz", Password: "password1"}); w.Code != http.StatusConflict {
		t.Fatalf("duplicate signup = %d", w.Code)
	}

	mine := decode[[]scores.Result](t, c.do(http.MethodGet, "/scores/mine", nil))
	if len(mine) != 1 || mine[0].Score != 100 {
		t.Fatalf("claimed results = %+v", mine)
	}

	// a signed-in game bumps the account stats
	id = c.newGame("").GameID
	c.guess(id, "a")
	c.guess(id, "b")
	me := decode[auth.User](t, c.do(http.MethodGet, "/auth/me", nil))
	if me.Username != "deniz" || me.GamesPlayed != 2 || me.BestScore != 100 {
		t.Fatalf("me = %+v", me)
	}

	c.do(http.MethodPost, "/auth/logout", nil)
	if w := c.do(http.MethodGet, "/auth/me", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout = %d", w.Code)
	}
	if w := c.do(http.MethodPost, "/auth/login", credentialsReq{Username: "deniz", Password: "nope-nope"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login = %d", w.Code)
	}
	if w := c.do(http.MethodPost, "/auth/login", credentialsReq{Username: "DENIZ", Password: "password1"}); w.Code != http.StatusOK {
		t.Fatalf("login = %d", w.Code)
	}
}

func TestLoginClaimKeepsOneDailyPerDay(t *testing.T) {
	s := newTestServer(t, []string{"ab"})

	member := newClient(t, s)
	if w := member.do(http.MethodPost, "/auth/signup", credentialsReq{Username: "deniz", Password: "password1"}); w.Code != http.StatusOK {
		t.Fatalf("signup = %d", w.Code)
	}
	id := member.newGame(scores.ModeDaily).GameID
	member.guess(id, "a")
	member.guess(id, "b")

	// same player, another device, not signed in yet
	guest := newClient(t, s)
	id = guest.newGame(scores.ModeDaily).GameID
	guest.guess(id, "a")
	guest.guess(id, "b")
	w := guest.do(http.MethodPost, "/auth/login", credentialsReq{Username: "deniz", Password: "password1"})
	if w.Code != http.StatusOK {
		t.Fatalf("login = %d", w.Code)
	}

	lb := decode[leaderboardRes](t, guest.do(http.MethodGet, "/scores?mode=daily", nil))
	if len(lb.Rows) != 1 || lb.Rows[0].Player != "deniz" {
		t.Fatalf("daily leaderboard = %+v", lb.Rows)
	}
	mine := decode[[]scores.Result](t, guest.do(http.MethodGet, "/scores/mine", nil))
	me := decode[auth.User](t, guest.do(http.MethodGet, "/auth/me", nil))
	if len(mine) != 1 || me.GamesPlayed != len(mine) {
		t.Fatalf("results %d vs gamesPlayed %d", len(mine), me.GamesPlayed)
	}
	if again := guest.newGame(scores.ModeDaily); !again.Played {
		t.Fatalf("daily should already be played: %+v", again)
	}
}

func TestSignupErrors(t *testing.T) {
	c := newClient(t, newTestServer(t, []string{"ab"}))
	w := c.do(http.MethodPost, "/auth/signup", credentialsReq{Username: "deniz", Password: "short"})
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "password must be 8-72 chars") {
		t.Fatalf("invalid password = %d %s", w.Code, w.Body.String())
	}
	if w := c.do(http.MethodPost, "/auth/signup", "not an object"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad json = %d", w.Code)
	}
}

func TestSignupDatabaseFailureIsInternal(t *testing.T) {
	sqlDB, err := db.Open(filepath.Join(t.TempDir(), "broken.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.Migrate(sqlDB); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	s := New(Config{Words: []string{"ab"}, Lookup: testLookup},
		store.NewMemoryStore(), scores.NewStore(sqlDB), auth.NewService(sqlDB, auth.Config{Secret: "s"}))
	sqlDB.Close()

	w := newClient(t, s).do(http.MethodPost, "/auth/signup", credentialsReq{Username: "deniz", Password: "password1"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "sql") {
		t.Fatalf("database error leaked to client: %s", w.Body.String())
	}
}

func TestAbandonGame(t *testing.T) {
	c := newClient(t, newTestServer(t, []string{"ab"}))
	id := c.newGame("").GameID
	if w := c.do(http.MethodDelete, "/game/"+id, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}
	if w := c.do(http.MethodGet, "/game/"+id, nil); w.Code != http.StatusNotFound {
		t.Fatalf("abandoned game still served: %d", w.Code)
	}
	if w := c.do(http.MethodDelete, "/game/"+id, nil); w.Code != http.StatusNotFound {
		t.Fatalf("second delete = %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, []string{"ab"})
	w := newClient(t, s).do(http.MethodOptions, "/game/new", nil)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("preflight = %d %v", w.Code, w.Header())
	}
}
