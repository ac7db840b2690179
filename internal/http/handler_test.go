package http

import (
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sensei/internal/config"
	"sensei/internal/core"
	"sensei/internal/processor"
	"sensei/internal/service"
	"sensei/internal/storage"

	"github.com/gofiber/fiber/v2"
)

type testServer struct {
	app  *fiber.App
	proc *processor.Processor
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, func(*config.Config) {})
}

func newTestServerWith(t *testing.T, configure func(*config.Config)) *testServer {
	t.Helper()

	store, err := storage.NewStore(filepath.Join(t.TempDir(), "http.db"), false)
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	if err := store.InitDB(); err != nil {
		t.Fatalf("InitDB error: %v", err)
	}

	svc := service.New(store, nil, []byte(strings.Repeat("k", 32)), time.Hour)
	t.Cleanup(func() { svc.Shutdown(time.Second) })

	cfg := config.Default()
	cfg.Limits.Rate = 1000
	cfg.Limits.AuthRate = 100
	configure(cfg)

	proc := processor.New(svc)
	return &testServer{app: NewFiberApp(proc, svc, cfg), proc: proc}
}

// do sends a request and decodes a JSON body into out when out is non-nil
func (s *testServer) do(t *testing.T, method, path, body, token string, out any) int {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (s *testServer) createGame(t *testing.T, body, token string) core.GameResponse {
	t.Helper()
	var g core.GameResponse
	if code := s.do(t, "POST", "/api/v1/games", body, token, &g); code != nethttp.StatusCreated {
		t.Fatalf("POST /games = %d, want 201", code)
	}
	return g
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	var body map[string]any
	if code := s.do(t, "GET", "/health", "", "", &body); code != nethttp.StatusOK {
		t.Fatalf("GET /health = %d, want 200", code)
	}
	if body["storage"] != "ok" {
		t.Errorf("storage = %v, want ok", body["storage"])
	}
}

func TestGameRoutes(t *testing.T) {
	s := newTestServer(t)
	g := s.createGame(t, `{}`, "")
	base := "/api/v1/games/" + g.GameID

	var moved core.GameResponse
	if code := s.do(t, "POST", base+"/moves", `{"move":"e2e4"}`, "", &moved); code != nethttp.StatusOK {
		t.Fatalf("POST /moves = %d, want 200", code)
	}
	if len(moved.Moves) != 1 || moved.Turn != "b" {
		t.Errorf("after move = %+v", moved)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
		code   string
	}{
		{"bad game id", "GET", "/api/v1/games/not-a-uuid", "", 400, core.ErrInvalidRequest},
		{"unknown game", "GET", "/api/v1/games/5f0c6c1e-5a8e-4a43-9a54-4c8f0e1f2a3b", "", 404, core.ErrGameNotFound},
		{"illegal move", "POST", base + "/moves", `{"move":"e7e4"}`, 400, core.ErrInvalidMove},
		{"short move", "POST", base + "/moves", `{"move":"e7"}`, 400, core.ErrInvalidRequest},
		{"bad seat", "POST", "/api/v1/games", `{"seat":"red"}`, 400, core.ErrInvalidRequest},
		{"bad fen", "POST", "/api/v1/games", `{"fen":"8/8 w - - 0 1"}`, 400, core.ErrInvalidFEN},
		{"bad from square", "GET", base + "/moves?from=e", "", 400, core.ErrInvalidRequest},
		{"seat without token", "POST", "/api/v1/games", `{"seat":"w"}`, 401, core.ErrUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var e core.ErrorResponse
			if code := s.do(t, tc.method, tc.path, tc.body, "", &e); code != tc.want {
				t.Errorf("%s %s = %d, want %d", tc.method, tc.path, code, tc.want)
			}
			if e.Code != tc.code {
				t.Errorf("code = %q, want %q", e.Code, tc.code)
			}
		})
	}

	var legal core.LegalMovesResponse
	if code := s.do(t, "GET", base+"/moves?from=e7", "", "", &legal); code != nethttp.StatusOK {
		t.Fatalf("GET /moves = %d, want 200", code)
	}
	if len(legal.Moves) != 2 {
		t.Errorf("moves from e7 = %+v, want 2", legal.Moves)
	}

	var board core.BoardResponse
	if code := s.do(t, "GET", base+"/board", "", "", &board); code != nethttp.StatusOK || board.FEN != moved.FEN {
		t.Errorf("GET /board = %d, FEN %q, want 200 and %q", code, board.FEN, moved.FEN)
	}

	var list core.GameListResponse
	if code := s.do(t, "GET", "/api/v1/games", "", "", &list); code != nethttp.StatusOK || len(list.Games) != 1 {
		t.Errorf("GET /games = %d, %+v", code, list)
	}

	// an empty undo body undoes one move
	var undone core.GameResponse
	if code := s.do(t, "POST", base+"/undo", "", "", &undone); code != nethttp.StatusOK || len(undone.Moves) != 0 {
		t.Errorf("POST /undo = %d, moves %v", code, undone.Moves)
	}

	if code := s.do(t, "DELETE", base, "", "", nil); code != nethttp.StatusNoContent {
		t.Errorf("DELETE = %d, want 204", code)
	}
}

func TestContentType(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/v1/games", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != nethttp.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", resp.StatusCode)
	}
}

func TestExportPGN(t *testing.T) {
	s := newTestServer(t)
	g := s.createGame(t, `{}`, "")
	base := "/api/v1/games/" + g.GameID

	for _, m := range []string{"e2e4", "e7e5"} {
		if code := s.do(t, "POST", base+"/moves", `{"move":"`+m+`"}`, "", nil); code != nethttp.StatusOK {
			t.Fatalf("move %s = %d", m, code)
		}
	}

	var out core.PGNResponse
	if code := s.do(t, "GET", base+"/pgn", "", "", &out); code != nethttp.StatusOK {
		t.Fatalf("GET /pgn = %d", code)
	}
	if !strings.Contains(out.PGN, "e4") || !strings.Contains(out.PGN, "e5") {
		t.Errorf("PGN = %q, want e4 and e5", out.PGN)
	}

	resp, err := s.app.Test(httptest.NewRequest("GET", base+"/pgn?format=text", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	text, _ := io.ReadAll(resp.Body)
	if string(text) != out.PGN {
		t.Errorf("text PGN = %q", text)
	}
}

func TestLongPoll(t *testing.T) {
	s := newTestServer(t)
	g := s.createGame(t, `{}`, "")

	go func() {
		time.Sleep(50 * time.Millisecond)
		s.proc.Execute(processor.NewMakeMoveCommand(g.GameID, "", core.MoveRequest{Move: "d2d4"}))
	}()

	start := time.Now()
	var got core.GameResponse
	if code := s.do(t, "GET", "/api/v1/games/"+g.GameID+"?wait=true&moveCount=0", "", "", &got); code != nethttp.StatusOK {
		t.Fatalf("long poll = %d", code)
	}
	if len(got.Moves) != 1 || got.Moves[0] != "d2d4" {
		t.Errorf("moves = %v, want [d2d4]", got.Moves)
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("long poll took %v", time.Since(start))
	}
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	var reg AuthResponse
	code := s.do(t, "POST", "/api/v1/auth/register", `{"username":"Alice","password":"secret123"}`, "", &reg)
	if code != nethttp.StatusCreated || reg.Token == "" || reg.Username != "alice" {
		t.Fatalf("register = %d, %+v", code, reg)
	}

	if code := s.do(t, "POST", "/api/v1/auth/register", `{"username":"alice","password":"secret123"}`, "", nil); code != nethttp.StatusConflict {
		t.Errorf("duplicate register = %d, want 409", code)
	}
	if code := s.do(t, "POST", "/api/v1/auth/register", `{"username":"bob","password":"onlyletters"}`, "", nil); code != nethttp.StatusBadRequest {
		t.Errorf("weak password = %d, want 400", code)
	}

	var login AuthResponse
	if code := s.do(t, "POST", "/api/v1/auth/login", `{"identifier":"ALICE","password":"secret123"}`, "", &login); code != nethttp.StatusOK {
		t.Fatalf("login = %d", code)
	}
	if code := s.do(t, "POST", "/api/v1/auth/login", `{"identifier":"alice","password":"wrong1234"}`, "", nil); code != nethttp.StatusUnauthorized {
		t.Errorf("bad login = %d, want 401", code)
	}

	var me UserResponse
	if code := s.do(t, "GET", "/api/v1/auth/me", "", login.Token, &me); code != nethttp.StatusOK || me.UserID != reg.UserID {
		t.Errorf("me = %d, %+v", code, me)
	}
	if code := s.do(t, "GET", "/api/v1/auth/me", "", "", nil); code != nethttp.StatusUnauthorized {
		t.Errorf("me without token = %d, want 401", code)
	}
	if code := s.do(t, "POST", "/api/v1/games", `{}`, "not-a-token", nil); code != nethttp.StatusUnauthorized {
		t.Errorf("create with bad token = %d, want 401", code)
	}

	g := s.createGame(t, `{"seat":"w"}`, login.Token)
	if g.Players.White == nil || g.Players.White.UserID != reg.UserID {
		t.Fatalf("white seat = %+v, want %s", g.Players.White, reg.UserID)
	}

	path := "/api/v1/games/" + g.GameID + "/moves"
	if code := s.do(t, "POST", path, `{"move":"e2e4"}`, "", nil); code != nethttp.StatusForbidden {
		t.Errorf("anonymous move on claimed seat = %d, want 403", code)
	}
	if code := s.do(t, "POST", path, `{"move":"e2e4"}`, login.Token, nil); code != nethttp.StatusOK {
		t.Errorf("owner move = %d, want 200", code)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		token   string
		present bool
	}{
		{"", "", false},
		{"Basic abc", "", false},
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"Bearer ", "", true},
	}

	for _, tc := range tests {
		token, present := extractBearerToken(tc.header)
		if token != tc.token || present != tc.present {
			t.Errorf("extractBearerToken(%q) = %q, %v, want %q, %v", tc.header, token, present, tc.token, tc.present)
		}
	}
}

func TestDomainValidationTags(t *testing.T) {
	tests := []struct {
		name  string
		value any
		ok    bool
	}{
		{"valid register", RegisterRequest{Username: "carol_1", Password: "abcdefg1"}, true},
		{"username with dash", RegisterRequest{Username: "carol-1", Password: "abcdefg1"}, false},
		{"password without digit", RegisterRequest{Username: "carol", Password: "abcdefgh"}, false},
		{"square", core.LegalMovesRequest{From: "h8"}, true},
		{"off-board square", core.LegalMovesRequest{From: "i9"}, false},
		{"whole side", core.LegalMovesRequest{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validate.Struct(tc.value)
			if (err == nil) != tc.ok {
				t.Errorf("validate(%+v) error = %v, want ok %v", tc.value, err, tc.ok)
			}
		})
	}
}

func TestRateLimitIgnoresUntrustedForwardedFor(t *testing.T) {
	s := newTestServerWith(t, func(cfg *config.Config) { cfg.Limits.Rate = 2 })

	var codes []int
	for _, xff := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		req := httptest.NewRequest("GET", "/api/v1/games", nil)
		req.Header.Set("X-Forwarded-For", xff)
		resp, err := s.app.Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
		codes = append(codes, resp.StatusCode)
	}

	if codes[0] != nethttp.StatusOK || codes[1] != nethttp.StatusOK || codes[2] != nethttp.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [200 200 429]", codes)
	}
}
