package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aura_oracle/internal/clock"
	"aura_oracle/internal/db/dbtest"
	"aura_oracle/internal/limiter"
	"aura_oracle/internal/middleware"
	"aura_oracle/internal/oracle"
	"aura_oracle/internal/service"
	"aura_oracle/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type harness struct {
	t      *testing.T
	router *gin.Engine
	clock  *clock.Mock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb := dbtest.Open(t)
	clk := clock.NewMock(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	log, _ := test.NewNullLogger()
	svc := service.NewReadings(service.Deps{
		Store:   store.New(gdb, store.WithClock(clk), store.WithLogger(log)),
		Gateway: oracle.NewGateway(nil, oracle.Options{Logger: log}),
		Limiter: limiter.New(limiter.Config{DB: gdb, Clock: clk, Logger: log}),
		Clock:   clk,
		Logger:  log,
	})
	r, err := NewRouter(RouterConfig{Readings: svc, SessionSecret: secret})
	require.NoError(t, err)
	return &harness{t: t, router: r, clock: clk}
}

// do sends a JSON request, authenticated when token is set, and decodes the body.
func (h *harness) do(method, path, body, token string) (*httptest.ResponseRecorder, map[string]any) {
	h.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func (h *harness) signup(email string) string {
	h.t.Helper()
	w, out := h.do(http.MethodPost, "/signup", `{"email":"`+email+`"}`, "")
	require.Equal(h.t, http.StatusOK, w.Code, w.Body.String())
	return out["token"].(string)
}

func TestSignupSetsSessionCookie(t *testing.T) {
	h := newHarness(t)

	w, out := h.do(http.MethodPost, "/signup", `{"email":"  Seeker@Example.com "}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["ok"])
	assert.NotEmpty(t, out["user_id"])

	var cookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == middleware.SessionCookie {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, out["token"], cookie.Value)

	req := httptest.NewRequest(http.MethodGet, "/daily", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, out = h.do(http.MethodGet, "/", "", "")
	assert.Equal(t, float64(1), out["signup_count"])
}

func TestSignupRejectsInvalidEmail(t *testing.T) {
	h := newHarness(t)
	w, out := h.do(http.MethodPost, "/signup", `{"email":"nobody"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_email", out["error"])

	w, out = h.do(http.MethodPost, "/signup", `{"email":`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", out["error"])
}

func TestSessionRoutesRequireToken(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{"/daily", "/daily/tarot", "/questions", "/moon", "/tracker"} {
		w, _ := h.do(http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestAuraViewAndGenerate(t *testing.T) {
	h := newHarness(t)
	tok := h.signup("a@example.com")

	w, first := h.do(http.MethodGet, "/daily", "", tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, first["generated"])
	assert.Equal(t, true, first["offline"])
	today := first["today"].(map[string]any)
	assert.Equal(t, "lavender", today["aura_color"])

	_, again := h.do(http.MethodGet, "/daily", "", tok)
	assert.Equal(t, false, again["generated"])
	assert.Equal(t, today["id"], again["today"].(map[string]any)["id"])

	h.clock.Advance(time.Hour)
	w, regen := h.do(http.MethodPost, "/daily/generate", "", tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, today["id"], regen["today"].(map[string]any)["id"])
	assert.NotEqual(t, today["created_at"], regen["today"].(map[string]any)["created_at"])
	assert.Len(t, regen["history"], 1)
}

func TestDrawRoutes(t *testing.T) {
	h := newHarness(t)
	tok := h.signup("a@example.com")

	w, out := h.do(http.MethodGet, "/daily/runes", "", tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rune", out["kind"])
	assert.Equal(t, "Fehu", out["today"].(map[string]any)["name"])
	assert.Equal(t, "cards/runes/fehu.svg", out["image"])

	w, out = h.do(http.MethodPost, "/daily/tarot/generate", `{"name":"the star"}`, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "The Star", out["today"].(map[string]any)["name"])

	w, out = h.do(http.MethodGet, "/daily/moon", "", tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unknown_kind", out["error"])
}

func TestPublicCatalogRoutes(t *testing.T) {
	h := newHarness(t)

	w, out := h.do(http.MethodGet, "/daily/tarot/card", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, out["card"])
	assert.Equal(t, "2024-05-01", out["day"])
	_, again := h.do(http.MethodGet, "/daily/tarot/card", "", "")
	assert.Equal(t, out["card"], again["card"])

	w, out = h.do(http.MethodGet, "/api/draw/runes", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rune", out["kind"])
	assert.NotNil(t, out["image"])

	w, _ = h.do(http.MethodGet, "/api/draw/dice", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAskFlow(t *testing.T) {
	h := newHarness(t)
	tok := h.signup("a@example.com")

	w, out := h.do(http.MethodPost, "/ask", `{"question":"   "}`, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "empty_question", out["error"])

	w, out = h.do(http.MethodPost, "/ask", `{"question":"Will I find clarity?"}`, tok)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "reflection, guidance, calm", out["tags"])
	assert.True(t, strings.HasPrefix(out["affirmation"].(string), "I am"))

	h.clock.Advance(23*time.Hour + 59*time.Minute)
	w, out = h.do(http.MethodPost, "/ask", `{"question":"Again?"}`, tok)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limited", out["error"])
	assert.Equal(t, float64(60), out["retry_after_seconds"])
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	w, out = h.do(http.MethodGet, "/questions", "", tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, out["items"], 1)
	assert.NotNil(t, out["next_allowed_at"])

	h.clock.Advance(2 * time.Minute)
	w, _ = h.do(http.MethodPost, "/ask", `{"question":"Again?"}`, tok)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTrackerAndMoon(t *testing.T) {
	h := newHarness(t)
	tok := h.signup("a@example.com")

	w, out := h.do(http.MethodPost, "/tracker", `{"card_name":""}`, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "empty_card_name", out["error"])

	w, out = h.do(http.MethodPost, "/tracker", `{"card_name":"`+strings.Repeat("x", 129)+`"}`, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "card_name_too_long", out["error"])

	w, _ = h.do(http.MethodPost, "/tracker", `{"card_name":"the fool","notes":"morning"}`, tok)
	require.Equal(t, http.StatusCreated, w.Code)
	w, out = h.do(http.MethodGet, "/tracker", "", tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, out["recent"], 1)
	top := out["top"].([]any)
	require.Len(t, top, 1)
	assert.Equal(t, "The Fool", top[0].(map[string]any)["card_name"])

	w, out = h.do(http.MethodGet, "/moon", "", tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-05-01", out["today"])
	assert.NotEmpty(t, out["ritual"])
}

func TestDeleteMeEndsSession(t *testing.T) {
	h := newHarness(t)
	tok := h.signup("a@example.com")
	_, _ = h.do(http.MethodGet, "/daily", "", tok)

	w, _ := h.do(http.MethodDelete, "/me", "", tok)
	require.Equal(t, http.StatusOK, w.Code)

	w, out := h.do(http.MethodGet, "/daily", "", tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", out["error"])

	_, out = h.do(http.MethodGet, "/", "", "")
	assert.Equal(t, float64(0), out["signup_count"])
}
