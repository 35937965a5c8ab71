package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrisense/internal/assistant"
	"nutrisense/internal/config"
	"nutrisense/internal/database"
)

// scriptedGen is a canned assistant.Generator for handler tests.
type scriptedGen struct {
	available bool
	reply     string
	err       error
}

func (g *scriptedGen) Generate(ctx context.Context, req assistant.GenerateRequest) (string, error) {
	return g.reply, g.err
}

func (g *scriptedGen) Available() bool { return g.available }

type noSearch struct{}

func (noSearch) Search(ctx context.Context, query string, numResults int) ([]assistant.SearchResult, error) {
	return nil, nil
}

func (noSearch) Available() bool { return false }

func newTestServer(t *testing.T, cfg config.Config, gen assistant.Generator) (*Server, http.Handler) {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv := &Server{
		cfg:       cfg,
		db:        db,
		assistant: assistant.New(db, gen, noSearch{}, zerolog.Nop()),
		sessions:  sessions.NewCookieStore([]byte("test-secret")),
		startTime: time.Now(),
	}
	return srv, srv.RegisterRoutes()
}

func doJSON(t *testing.T, handler http.Handler, method, target, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	_, handler := newTestServer(t, config.Config{}, &scriptedGen{})

	rec := doJSON(t, handler, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "up", body["status"])
}

func TestStatusEndpoint(t *testing.T) {
	cfg := config.Config{ExaAPIKey: "exa-key"}
	_, handler := newTestServer(t, cfg, &scriptedGen{})

	rec := doJSON(t, handler, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "connected", body.RestaurantSearch)
	assert.Equal(t, "not configured", body.SmartQueries)
	assert.Equal(t, "up", body.Database)
}

func TestPreferencesRoundTrip(t *testing.T) {
	_, handler := newTestServer(t, config.Config{}, &scriptedGen{})

	payload := `{
		"dietary_restrictions": ["Vegetarian"],
		"health_goals": {"weight_loss": true},
		"daily_calorie_target": 1800
	}`
	rec := doJSON(t, handler, http.MethodPut, "/preferences/u1", payload)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/preferences/u1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var prefs database.Preferences
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prefs))
	assert.Equal(t, "u1", prefs.UserID)
	assert.Equal(t, []string{"Vegetarian"}, prefs.DietaryRestrictions)
	assert.True(t, prefs.HealthGoals["weight_loss"])
	require.NotNil(t, prefs.DailyCalorieTarget)
	assert.Equal(t, 1800, *prefs.DailyCalorieTarget)
}

func TestGetPreferencesUnknownUser(t *testing.T) {
	_, handler := newTestServer(t, config.Config{}, &scriptedGen{})

	rec := doJSON(t, handler, http.MethodGet, "/preferences/ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogFoodEndpoint(t *testing.T) {
	_, handler := newTestServer(t, config.Config{}, &scriptedGen{})

	rec := doJSON(t, handler, http.MethodPut, "/preferences/u1", `{"daily_calorie_target": 2000}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/food/log", `{"user_id": "u1", "food_item": "dal rice", "calories": 400}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp FoodLogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.GreaterOrEqual(t, resp.ID, int64(1))
	assert.Equal(t, "Logged: dal rice", resp.Message)
	assert.Equal(t, "🎯 Goal Progress: 20.0% of 2000 calorie target", resp.Progress)
}

func TestLogFoodEndpointValidation(t *testing.T) {
	_, handler := newTestServer(t, config.Config{}, &scriptedGen{})

	tests := []struct {
		name string
		body string
	}{
		{"missing user", `{"food_item": "rice", "calories": 100}`},
		{"missing food item", `{"user_id": "u1", "calories": 100}`},
		{"negative calories", `{"user_id": "u1", "food_item": "rice", "calories": -5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, handler, http.MethodPost, "/food/log", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestDailySummaryEndpoint(t *testing.T) {
	_, handler := newTestServer(t, config.Config{}, &scriptedGen{})

	for _, body := range []string{
		`{"user_id": "u1", "food_item": "idli", "calories": 120}`,
		`{"user_id": "u1", "food_item": "idli", "calories": 120}`,
		`{"user_id": "u1", "food_item": "coffee", "calories": 40}`,
	} {
		rec := doJSON(t, handler, http.MethodPost, "/food/log", body)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, handler, http.MethodGet, "/food/log/u1/today", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DailySummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 280.0, resp.TotalCalories)
	assert.Equal(t, 3, resp.EntryCount)
	require.NotEmpty(t, resp.TopFoods)
	assert.Equal(t, "idli", resp.TopFoods[0].FoodItem)
	assert.Equal(t, 2, resp.TopFoods[0].Count)
}

func TestChatEndpoint(t *testing.T) {
	gen := &scriptedGen{available: true, reply: "Lentils are a great protein source."}
	_, handler := newTestServer(t, config.Config{}, gen)

	rec := doJSON(t, handler, http.MethodPost, "/chat", `{"message": "tell me about protein sources"}`,
		withClientIP("10.1.0.1"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Lentils are a great protein source.", resp.Reply)
	assert.NotEmpty(t, resp.SessionID)
	assert.NotEmpty(t, rec.Header().Get("Set-Cookie"))
}

func TestChatWorkoutWithoutKeyIsServiceUnavailable(t *testing.T) {
	_, handler := newTestServer(t, config.Config{}, &scriptedGen{available: false})

	rec := doJSON(t, handler, http.MethodPost, "/chat", `{"message": "build me a workout plan"}`,
		withClientIP("10.1.0.2"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestChatRemembersUserIDInCookie(t *testing.T) {
	gen := &scriptedGen{available: true, reply: `{"food_item": "apple", "calories": 95}`}
	_, handler := newTestServer(t, config.Config{}, gen)

	rec := doJSON(t, handler, http.MethodPost, "/chat", `{"message": "I ate an apple", "user_id": "u7"}`,
		withClientIP("10.1.0.3"))
	require.Equal(t, http.StatusOK, rec.Code)
	var first ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Contains(t, first.Reply, "✅ Logged: apple")

	cookie := rec.Header().Get("Set-Cookie")
	require.NotEmpty(t, cookie)

	// Second turn omits user_id; the cookie supplies it, so the log
	// succeeds instead of asking the user to configure an id.
	rec = doJSON(t, handler, http.MethodPost, "/chat", `{"message": "I ate an apple"}`,
		withClientIP("10.1.0.3"),
		func(r *http.Request) { r.Header.Set("Cookie", cookie) })
	require.Equal(t, http.StatusOK, rec.Code)
	var second ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Contains(t, second.Reply, "✅ Logged: apple")
	assert.Equal(t, first.SessionID, second.SessionID)
}

func TestChatRateLimit(t *testing.T) {
	gen := &scriptedGen{available: true, reply: "ok"}
	_, handler := newTestServer(t, config.Config{}, gen)

	var lastCode int
	for i := 0; i < 31; i++ {
		rec := doJSON(t, handler, http.MethodPost, "/chat", `{"message": "is oatmeal healthy?"}`,
			withClientIP("10.9.9.9"))
		lastCode = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}

func TestRequestIDHeader(t *testing.T) {
	_, handler := newTestServer(t, config.Config{}, &scriptedGen{})

	rec := doJSON(t, handler, http.MethodGet, "/health", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = doJSON(t, handler, http.MethodGet, "/health", "",
		func(r *http.Request) { r.Header.Set("X-Request-ID", "fixed-id") })
	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))
}

// withClientIP isolates each test from the shared per-IP rate limiter.
func withClientIP(ip string) func(*http.Request) {
	return func(r *http.Request) {
		r.Header.Set("X-Forwarded-For", fmt.Sprintf("%s, 10.0.0.254", ip))
	}
}
