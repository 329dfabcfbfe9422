package main

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"quotle/internal/config"
	"quotle/internal/game"
	"quotle/internal/library"
	"quotle/internal/round"
	"quotle/internal/store"
	"quotle/internal/types"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type guessResponse struct {
	Outcome round.Outcome `json:"outcome"`
	State   stateView     `json:"state"`
}

// TestMain silences the server logger for all tests
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		BooksPath:      "data/books.json",
		QuotesPath:     "data/quotes.json",
		StoreBackend:   store.BackendMemory,
		SessionTimeout: 2 * time.Hour,
		CookieMaxAge:   time.Hour,
		RateLimitRPS:   100,
		RateLimitBurst: 100,
	}
}

func testLibrary() *library.Library {
	return library.New(
		[]types.Book{
			{ID: "1", Title: "Dune", Author: "Frank Herbert", DateRead: time.Date(2021, 2, 25, 0, 0, 0, 0, time.UTC)},
			{ID: "2", Title: "Emma", Author: "Jane Austen", DateRead: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)},
			{ID: "3", Title: "Persuasion", Author: "Jane Austen", DateRead: time.Date(2018, 6, 1, 0, 0, 0, 0, time.UTC)},
		},
		[]types.Quote{{ID: "q1", Text: "Fear is the mind-killer.", BookID: "1"}},
	)
}

// newTestApp returns an app whose library is still loading
func newTestApp() *App {
	app := newApp(testConfig(), store.NewMemory())
	app.Now = func() time.Time { return testNow }
	return app
}

func newReadyApp() *App {
	app := newTestApp()
	app.engine.Store(game.New(testLibrary(), app.Logger))
	return app
}

type client struct {
	t      *testing.T
	router http.Handler
	cookie *http.Cookie
}

func newClient(t *testing.T, app *App) *client {
	return &client{t: t, router: app.setupRouter()}
}

func (cl *client) do(req *http.Request) *httptest.ResponseRecorder {
	if cl.cookie != nil {
		req.AddCookie(cl.cookie)
	}
	w := httptest.NewRecorder()
	cl.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == PlayerCookieName {
			cl.cookie = c
		}
	}
	return w
}

func (cl *client) get(path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	return cl.do(req)
}

func (cl *client) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return cl.do(req)
}

func (cl *client) postJSON(path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return cl.do(req)
}

func (cl *client) guess(title, author string) guessResponse {
	cl.t.Helper()
	w := cl.postForm(RouteGuess, url.Values{"title": {title}, "author": {author}})
	if w.Code != http.StatusOK {
		cl.t.Fatalf("POST /guess returned status %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp guessResponse
	decode(cl.t, w, &resp)
	return resp
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to unmarshal response %q: %v", w.Body.String(), err)
	}
}

// TestLoadingPhase checks game routes answer 503 until the library loads
func TestLoadingPhase(t *testing.T) {
	cl := newClient(t, newTestApp())

	for _, path := range []string{RouteHome, RouteGameState, RouteSuggest + "?field=title&q=du"} {
		w := cl.get(path)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s while loading returned status %d, want 503", path, w.Code)
		}
	}
	w := cl.postForm(RouteGuess, url.Values{"title": {"Dune"}, "author": {"Frank Herbert"}})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("POST /guess while loading returned status %d, want 503", w.Code)
	}
	var resp map[string]string
	decode(t, w, &resp)
	if resp["phase"] != string(game.PhaseLoading) {
		t.Errorf("phase = %q, want loading", resp["phase"])
	}
}

// TestHomeHandler checks the first visit creates a player and a round
func TestHomeHandler(t *testing.T) {
	cl := newClient(t, newReadyApp())
	w := cl.get(RouteHome)
	if w.Code != http.StatusOK {
		t.Fatalf("GET / returned status %d, want 200", w.Code)
	}
	if cl.cookie == nil {
		t.Fatal("Expected a player cookie on first visit")
	}
	if got := w.Header().Get("Cache-Control"); !strings.Contains(got, "no-store") {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}

	var view stateView
	decode(t, w, &view)
	if view.Quote != "Fear is the mind-killer." {
		t.Errorf("quote = %q", view.Quote)
	}
	if view.Status != round.InProgress || view.Remaining != round.MaxAttempts {
		t.Errorf("unexpected fresh state: %+v", view)
	}
	if view.Message != "Guess the book and its author!" {
		t.Errorf("message = %q", view.Message)
	}
	if view.Answer != nil {
		t.Error("answer must not be revealed while the round is in progress")
	}
	if strings.Contains(w.Body.String(), "date_read") {
		t.Error("state leaked the read date")
	}
}

// TestInvalidCookieReplaced checks a malformed player id gets a fresh one
func TestInvalidCookieReplaced(t *testing.T) {
	cl := newClient(t, newReadyApp())
	cl.cookie = &http.Cookie{Name: PlayerCookieName, Value: "../../etc/passwd"}
	cl.get(RouteHome)
	if cl.cookie.Value == "../../etc/passwd" {
		t.Error("Expected malformed player id to be replaced")
	}
}

// TestGuessFlow plays a round through to a win
func TestGuessFlow(t *testing.T) {
	cl := newClient(t, newReadyApp())
	cl.get(RouteHome)

	resp := cl.guess("Emma", "Jane Austen")
	if resp.Outcome.Kind != round.KindIncorrect {
		t.Fatalf("kind = %q, want incorrect", resp.Outcome.Kind)
	}
	if resp.Outcome.Message != "Nope! Try again (4 attempts remaining)" {
		t.Errorf("message = %q", resp.Outcome.Message)
	}

	resp = cl.guess("Emma", "Frank Herbert")
	if resp.Outcome.Kind != round.KindNotInLibrary || resp.State.Attempts != 1 {
		t.Errorf("unknown pair: kind %q attempts %d, want not_in_library and 1", resp.Outcome.Kind, resp.State.Attempts)
	}

	resp = cl.guess("emma", "JANE AUSTEN")
	if resp.Outcome.Kind != round.KindDuplicate || resp.State.Attempts != 1 {
		t.Errorf("duplicate: kind %q attempts %d, want duplicate and 1", resp.Outcome.Kind, resp.State.Attempts)
	}

	w := cl.postJSON(RouteGuess, `{"title": "dune", "author": "frank herbert"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("JSON guess returned status %d", w.Code)
	}
	decode(t, w, &resp)
	if resp.Outcome.Kind != round.KindCorrect || resp.State.Status != round.Won {
		t.Fatalf("winning guess: %+v", resp.Outcome)
	}
	if resp.Outcome.Message != "Correct! You got it in 2 attempts!" {
		t.Errorf("message = %q", resp.Outcome.Message)
	}
	if resp.State.Answer == nil || resp.State.Answer.Title != "Dune" {
		t.Errorf("answer = %+v, want Dune", resp.State.Answer)
	}

	resp = cl.guess("Emma", "Jane Austen")
	if resp.Outcome.Kind != round.KindRoundOver {
		t.Errorf("guess after win: kind %q, want round_over", resp.Outcome.Kind)
	}

	var view stateView
	decode(t, cl.get(RouteHome), &view)
	if !strings.Contains(view.Message, "already won") {
		t.Errorf("revisit message = %q", view.Message)
	}
}

// TestGuessHandler_MissingFields checks incomplete guesses are rejected
func TestGuessHandler_MissingFields(t *testing.T) {
	cl := newClient(t, newReadyApp())
	w := cl.postForm(RouteGuess, url.Values{"title": {"Dune"}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("POST /guess without author returned status %d, want 400", w.Code)
	}
}

// TestGuessHandler_InvalidMethod checks GET /guess is not routed
func TestGuessHandler_InvalidMethod(t *testing.T) {
	cl := newClient(t, newReadyApp())
	w := cl.get(RouteGuess)
	if w.Code != http.StatusMethodNotAllowed && w.Code != http.StatusNotFound {
		t.Errorf("GET /guess returned status %d, want 405 or 404", w.Code)
	}
}

// TestSessionSurvivesEviction checks evicted sessions reload from the store
func TestSessionSurvivesEviction(t *testing.T) {
	app := newReadyApp()
	cl := newClient(t, app)
	cl.get(RouteHome)
	cl.guess("Emma", "Jane Austen")

	app.Now = func() time.Time { return testNow.Add(3 * time.Hour) }
	if n := app.evictIdleSessions(app.Config.SessionTimeout); n != 1 {
		t.Fatalf("evicted %d sessions, want 1", n)
	}

	var view stateView
	decode(t, cl.get(RouteGameState), &view)
	if view.Attempts != 1 || len(view.Guesses) != 1 {
		t.Errorf("reloaded state has %d attempts and %d guesses, want 1 and 1", view.Attempts, len(view.Guesses))
	}
	if view.Quote != "" {
		t.Error("game-state should not repeat the quote text")
	}
}

// TestNewDayStartsNewRound checks a cached session from yesterday is replaced
func TestNewDayStartsNewRound(t *testing.T) {
	app := newReadyApp()
	cl := newClient(t, app)
	cl.get(RouteHome)
	cl.guess("Emma", "Jane Austen")

	app.Now = func() time.Time { return testNow.Add(24 * time.Hour) }
	var view stateView
	decode(t, cl.get(RouteHome), &view)
	if view.Day != 19784 || view.Attempts != 0 {
		t.Errorf("next day: day %d attempts %d, want 19784 and 0", view.Day, view.Attempts)
	}
}

// TestSuggestHandler checks ranking, validation and that dates stay hidden
func TestSuggestHandler(t *testing.T) {
	cl := newClient(t, newReadyApp())

	w := cl.get(RouteSuggest + "?field=author&q=jane")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /suggest returned status %d, want 200", w.Code)
	}
	var resp struct {
		Suggestions []candidateView `json:"suggestions"`
	}
	decode(t, w, &resp)
	if len(resp.Suggestions) != 2 || resp.Suggestions[0].Title != "Emma" {
		t.Errorf("suggestions = %+v, want Emma and Persuasion", resp.Suggestions)
	}
	if strings.Contains(w.Body.String(), "date_read") {
		t.Error("suggestions leaked the read date")
	}

	w = cl.get(RouteSuggest + "?field=title&q=")
	decode(t, w, &resp)
	if len(resp.Suggestions) != 0 {
		t.Errorf("empty query returned %d suggestions", len(resp.Suggestions))
	}

	w = cl.get(RouteSuggest + "?field=isbn&q=du")
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown field returned status %d, want 400", w.Code)
	}
}

// TestAuthorHandler checks title auto-fill on author commit
func TestAuthorHandler(t *testing.T) {
	cl := newClient(t, newReadyApp())

	var resp struct {
		Guess  types.Guess     `json:"guess"`
		Titles []candidateView `json:"titles"`
	}
	decode(t, cl.postForm(RouteAuthor, url.Values{"author": {"frank herbert"}}), &resp)
	if resp.Guess.Title != "Dune" || resp.Guess.Author != "Frank Herbert" {
		t.Errorf("single-book author: guess = %+v", resp.Guess)
	}

	decode(t, cl.postJSON(RouteAuthor, `{"author": "Jane Austen"}`), &resp)
	if resp.Guess.Title != "" || len(resp.Titles) != 2 {
		t.Errorf("two-book author: guess = %+v titles = %d", resp.Guess, len(resp.Titles))
	}

	w := cl.postForm(RouteAuthor, url.Values{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("POST /author without author returned status %d, want 400", w.Code)
	}
}

// TestTimeHintHandler checks the hint is revealed once and then shown in state
func TestTimeHintHandler(t *testing.T) {
	cl := newClient(t, newReadyApp())
	cl.get(RouteHome)

	w := cl.postForm(RouteTimeHint, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /hint/time returned status %d, want 200", w.Code)
	}
	var hint map[string]any
	decode(t, w, &hint)
	if hint["hint"] != "You read this book between 2020 and 2022" {
		t.Errorf("hint = %v", hint["hint"])
	}

	w = cl.postForm(RouteTimeHint, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("second hint returned status %d, want 409", w.Code)
	}

	var view stateView
	decode(t, cl.get(RouteGameState), &view)
	if view.TimeHint == "" || view.Attempts != 0 {
		t.Errorf("state after hint: time_hint %q attempts %d", view.TimeHint, view.Attempts)
	}
}

// TestFallbackPhase checks a failed load serves the static quote without play
func TestFallbackPhase(t *testing.T) {
	app := newTestApp()
	app.engine.Store(game.NewFallback(app.Logger))
	cl := newClient(t, app)

	var view stateView
	decode(t, cl.get(RouteHome), &view)
	if view.Phase != game.PhaseFallback || view.Quote != "It is a truth universally acknowledged..." {
		t.Errorf("fallback state = %+v", view)
	}

	resp := cl.guess("Pride and Prejudice", "Jane Austen")
	if resp.Outcome.Kind != round.KindUnavailable {
		t.Errorf("fallback guess kind = %q, want unavailable", resp.Outcome.Kind)
	}

	w := cl.postForm(RouteTimeHint, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("fallback hint returned status %d, want 503", w.Code)
	}
}

// TestLoadLibrary checks both outcomes of the background load
func TestLoadLibrary(t *testing.T) {
	dir := t.TempDir()
	books := filepath.Join(dir, "books.json")
	quotes := filepath.Join(dir, "quotes.json")
	_ = os.WriteFile(books, []byte(`[{"book_id":"1","title":"Dune","author":"Herbert, Frank","dates_read":["Feb 25, 2021"]}]`), 0644)
	_ = os.WriteFile(quotes, []byte(`[[{"quote_id":"q1","text":"Fear is the mind-killer.","book_id":"1"}]]`), 0644)

	app := newTestApp()
	app.Config.BooksPath = books
	app.Config.QuotesPath = quotes
	app.loadLibrary()
	if e := app.engine.Load(); e == nil || e.Phase() != game.PhaseReady {
		t.Fatalf("expected ready engine after load")
	}

	app = newTestApp()
	app.Config.BooksPath = filepath.Join(dir, "missing.json")
	app.loadLibrary()
	if e := app.engine.Load(); e == nil || e.Phase() != game.PhaseFallback {
		t.Fatalf("expected fallback engine after failed load")
	}
}

// TestHealthHandlerFields checks /healthz reports phase and counts
func TestHealthHandlerFields(t *testing.T) {
	app := newTestApp()
	cl := newClient(t, app)

	var resp map[string]any
	decode(t, cl.get(RouteHealth), &resp)
	if resp["phase"] != string(game.PhaseLoading) {
		t.Errorf("phase = %v, want loading", resp["phase"])
	}
	if _, ok := resp["books_loaded"]; ok {
		t.Error("books_loaded should be absent while loading")
	}

	app.engine.Store(game.New(testLibrary(), app.Logger))
	decode(t, cl.get(RouteHealth), &resp)
	if resp["phase"] != string(game.PhaseReady) {
		t.Errorf("phase = %v, want ready", resp["phase"])
	}
	if resp["books_loaded"] != float64(3) || resp["quotes_loaded"] != float64(1) {
		t.Errorf("counts = %v / %v, want 3 / 1", resp["books_loaded"], resp["quotes_loaded"])
	}
	for _, key := range []string{"status", "env", "uptime", "timestamp", "active_players"} {
		if _, ok := resp[key]; !ok {
			t.Errorf("Expected %q field in /healthz response", key)
		}
	}
}

// TestRateLimitMiddleware checks rate limiting blocks excessive requests
func TestRateLimitMiddleware(t *testing.T) {
	app := newTestApp()
	app.Config.RateLimitRPS = 5
	app.Config.RateLimitBurst = 10
	router := gin.New()
	router.Use(app.rateLimitMiddleware())
	router.GET("/limited", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req, _ := http.NewRequest("GET", "/limited", nil)
	req.RemoteAddr = "127.0.0.1:12345"

	// First 10 requests should succeed
	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("Request %d: expected 200, got %d", i+1, w.Code)
		}
	}

	// 11th request should be rate limited
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("11th request: expected 429 Too Many Requests, got %d", w.Code)
	}
}

// TestRequestIDMiddleware checks ids are echoed or generated
func TestRequestIDMiddleware(t *testing.T) {
	cl := newClient(t, newReadyApp())

	req, _ := http.NewRequest("GET", RouteHealth, nil)
	req.Header.Set("X-Request-Id", "abc-123")
	if got := cl.do(req).Header().Get("X-Request-Id"); got != "abc-123" {
		t.Errorf("X-Request-Id = %q, want echoed abc-123", got)
	}
	if got := cl.get(RouteHealth).Header().Get("X-Request-Id"); got == "" {
		t.Error("Expected a generated X-Request-Id")
	}
}

// TestGzipResponses checks responses are compressed when accepted
func TestGzipResponses(t *testing.T) {
	cl := newClient(t, newReadyApp())
	req, _ := http.NewRequest("GET", RouteHome, nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := cl.do(req)

	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", w.Header().Get("Content-Encoding"))
	}
	gr, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatalf("Failed to create gzip reader: %v", err)
	}
	body, _ := io.ReadAll(gr)
	if !strings.Contains(string(body), "mind-killer") {
		t.Errorf("decompressed body missing quote: %s", body)
	}
}
