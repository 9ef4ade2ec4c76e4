package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LovationAdmin/tripchalo-api/services"
	"github.com/LovationAdmin/tripchalo-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const itineraryReply = "```json\n" + `{
  "analysis_summary": "Two coastal options.",
  "options": [
    {"id": 1, "title": "Konkan Coast", "location": "Alibaug, Maharashtra", "total_estimated_cost": "INR 8,000",
     "vibe_match": "Beach", "why_its_perfect": "Close and cheap.",
     "itinerary": [{"day": 1, "activity": "Kashid beach"}, {"day": 2, "activity": "Kolaba fort; Seafood thali"}]},
    {"id": 2, "title": "Backwaters", "location": "Kumarakom, Kerala", "total_estimated_cost": "INR 14,000",
     "vibe_match": "Slow travel", "why_its_perfect": "Houseboats.",
     "itinerary": [{"day": 1, "activity": "Houseboat"}]}
  ]
}` + "\n```"

type cannedModel struct{ reply string }

func (m cannedModel) Generate(context.Context, string) (string, error) { return m.reply, nil }

type apiClient struct {
	t      *testing.T
	router *gin.Engine
}

func newAPI(t *testing.T) *apiClient {
	gin.SetMode(gin.TestMode)
	store := services.NewMemoryStore()
	tokens := utils.NewTokenIssuer("test-secret", time.Hour)
	gen := services.NewItineraryGenerator(cannedModel{reply: itineraryReply}, time.Second, nil)

	router := NewRouter(Deps{
		Users:  services.NewUserService(store, store, tokens, nil),
		Trips:  services.NewTripService(store, gen, nil),
		Tokens: tokens,
		Logger: zap.NewNop(),
	})
	return &apiClient{t: t, router: router}
}

func (a *apiClient) do(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func (a *apiClient) signup(first, email string) string {
	a.t.Helper()
	code, body := a.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]any{
		"first_name":        first,
		"last_name":         "Tester",
		"gender":            "Other",
		"age":               25,
		"email":             email,
		"password":          "travel123",
		"security_question": "What city were you born in?",
		"security_answer":   "Nagpur",
	})
	require.Equal(a.t, http.StatusCreated, code, body)
	return body["access_token"].(string)
}

func preferences() map[string]any {
	return map[string]any{
		"home_town":       "Mumbai",
		"budget_range":    "Low",
		"start_date":      "2025-11-01",
		"end_date":        "2025-11-03",
		"preference_tags": []string{"beach", "food"},
	}
}

func with(m map[string]any, kv ...any) map[string]any {
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}
	return m
}

func TestHealth(t *testing.T) {
	api := newAPI(t)
	code, body := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	api := newAPI(t)
	code, _ := api.do(http.MethodPost, "/api/v1/trips", "", preferences())
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAuthErrors(t *testing.T) {
	api := newAPI(t)
	api.signup("Asha", "asha@example.com")

	code, body := api.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]any{
		"first_name": "Asha", "last_name": "T", "gender": "Other", "age": 25,
		"email": "asha@example.com", "password": "travel123",
		"security_question": "What city were you born in?", "security_answer": "x",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Email already registered", body["error"])

	code, _ = api.do(http.MethodPost, "/api/v1/auth/signup", "", map[string]any{
		"first_name": "Kid", "last_name": "T", "gender": "Other", "age": 15,
		"email": "kid@example.com", "password": "travel123",
		"security_question": "What city were you born in?", "security_answer": "x",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email": "asha@example.com", "password": "wrong123",
	})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email": "asha@example.com", "password": "travel123",
	})
	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["access_token"])
}

func TestTripFlowOverHTTP(t *testing.T) {
	api := newAPI(t)
	leader := api.signup("Asha", "asha@example.com")
	friend := api.signup("Ravi", "ravi@example.com")

	code, body := api.do(http.MethodPost, "/api/v1/trips", leader, with(preferences(), "trip_name", "Monsoon", "voting_days", 2))
	require.Equal(t, http.StatusCreated, code, body)
	tripID := body["trip_id"].(string)
	tripCode := body["trip_code"].(string)
	base := "/api/v1/trips/" + tripID

	code, body = api.do(http.MethodPost, "/api/v1/trips/join", friend, with(preferences(), "trip_code", "XXXXXX"))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Invalid Trip Code", body["error"])

	code, _ = api.do(http.MethodPost, "/api/v1/trips/join", friend, with(preferences(), "trip_code", tripCode))
	require.Equal(t, http.StatusOK, code)

	code, body = api.do(http.MethodGet, base, friend, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"Asha", "Ravi"}, body["participants"])

	code, _ = api.do(http.MethodPost, base+"/generate", friend, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.do(http.MethodPost, base+"/generate", leader, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = api.do(http.MethodPost, base+"/vote", leader, map[string]any{"option_id": 1})
	require.Equal(t, http.StatusOK, code)
	code, body = api.do(http.MethodPost, base+"/vote", friend, map[string]any{"option_id": 2})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"1": float64(1), "2": float64(1)}, body["votes"])

	code, _ = api.do(http.MethodPost, base+"/vote", friend, map[string]any{"option_id": 3})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = api.do(http.MethodGet, base+"/itinerary", friend, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["has_generated"])
	assert.Equal(t, float64(2), body["user_vote"])

	code, _ = api.do(http.MethodPost, base+"/finalize", leader, map[string]any{"option_id": 1})
	require.Equal(t, http.StatusOK, code)

	code, body = api.do(http.MethodGet, base+"/confirmed-details", friend, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Alibaug, Maharashtra", body["location"])

	code, body = api.do(http.MethodPost, base+"/chat", friend, map[string]any{"message": "What's on day 2?"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Day 2: \n- Kolaba fort\n- Seafood thali", body["response"])

	code, body = api.do(http.MethodGet, "/api/v1/users/me/profile", friend, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["joined_trips"], 1)

	code, _ = api.do(http.MethodDelete, base+"/leave", leader, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = api.do(http.MethodDelete, base, friend, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.do(http.MethodDelete, base, leader, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = api.do(http.MethodGet, base, leader, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestLockedTripRejectsJoinOverHTTP(t *testing.T) {
	api := newAPI(t)
	leader := api.signup("Asha", "asha@example.com")
	friend := api.signup("Ravi", "ravi@example.com")

	_, body := api.do(http.MethodPost, "/api/v1/trips", leader, with(preferences(), "trip_name", "Lock me", "voting_days", 1))
	tripID := body["trip_id"].(string)

	code, _ := api.do(http.MethodPost, "/api/v1/trips/"+tripID+"/lock", friend, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.do(http.MethodPost, "/api/v1/trips/"+tripID+"/lock", leader, nil)
	require.Equal(t, http.StatusOK, code)

	code, body = api.do(http.MethodPost, "/api/v1/trips/join", friend, with(preferences(), "trip_code", body["trip_code"]))
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Voting is completed! You cannot join this trip anymore.", body["error"])
}
