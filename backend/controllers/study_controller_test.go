package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyjourney/backend/config"
	"studyjourney/backend/routes"
	"studyjourney/backend/services"
	"studyjourney/backend/store"
	"studyjourney/backend/utils"
)

// newTestApp wires the API against the in-memory gateway. The identity
// database is not needed by the study and stats routes under test. The
// registry is returned so tests can drain the asynchronous study
// writes before reading through the gateway.
func newTestApp(t *testing.T) (*fiber.App, string, *services.Registry) {
	t.Helper()

	cfg := &config.Config{JWTSecret: "testsecret", ServerPort: "8080"}
	gateway := store.NewMemoryGateway()
	logger := log.New(io.Discard, "", 0)

	registry := services.NewRegistry(gateway, logger)
	aggregator := services.NewAggregator(gateway, logger)
	streaks := services.NewStreakCalculator(gateway)

	app := fiber.New()
	routes.SetupRoutes(app, nil, cfg, gateway, registry, aggregator, streaks)

	token, err := utils.GenerateJWTToken(42, cfg)
	require.NoError(t, err)
	return app, token, registry
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload))
	}
	return resp.StatusCode, payload
}

func data(payload map[string]interface{}) map[string]interface{} {
	d, _ := payload["data"].(map[string]interface{})
	return d
}

func TestStudyRoutesRequireAuth(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, _ := doJSON(t, app, http.MethodGet, "/api/study/today", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/stats/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAddStudyTimeAndGetToday(t *testing.T) {
	app, token, _ := newTestApp(t)

	status, payload := doJSON(t, app, http.MethodPost, "/api/study/time", token, fiber.Map{"minutes": 35})
	require.Equal(t, http.StatusOK, status)

	d := data(payload)
	newly, _ := d["newlyUnlocked"].([]interface{})
	assert.Equal(t, []interface{}{"study_30min"}, newly)

	status, payload = doJSON(t, app, http.MethodGet, "/api/study/today", token, nil)
	require.Equal(t, http.StatusOK, status)

	d = data(payload)
	rec, _ := d["record"].(map[string]interface{})
	assert.Equal(t, float64(35), rec["activeStudyTime"])
	assert.Equal(t, true, rec["newMedalUnlocked"])
}

func TestAddStudyTimeIgnoresNonPositive(t *testing.T) {
	app, token, _ := newTestApp(t)

	status, payload := doJSON(t, app, http.MethodPost, "/api/study/time", token, fiber.Map{"minutes": -5})
	require.Equal(t, http.StatusOK, status)

	rec, _ := data(payload)["record"].(map[string]interface{})
	assert.Equal(t, float64(0), rec["activeStudyTime"])
}

func TestUpdateGoalsClamps(t *testing.T) {
	app, token, _ := newTestApp(t)

	status, payload := doJSON(t, app, http.MethodPut, "/api/study/goals", token,
		fiber.Map{"studyGoalMinutes": 10, "breakGoalMinutes": 1000})
	require.Equal(t, http.StatusOK, status)

	rec, _ := data(payload)["record"].(map[string]interface{})
	assert.Equal(t, float64(15), rec["studyGoalMinutes"])
	assert.Equal(t, float64(240), rec["breakGoalMinutes"])
	assert.Equal(t, float64(480), rec["totalGoalMinutes"])
}

func TestSimulateAndMedalAcknowledge(t *testing.T) {
	app, token, _ := newTestApp(t)

	status, _ := doJSON(t, app, http.MethodPost, "/api/study/simulate/progress", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, payload := doJSON(t, app, http.MethodGet, "/api/study/medals", token, nil)
	require.Equal(t, http.StatusOK, status)

	d := data(payload)
	assert.Equal(t, true, d["newMedalUnlocked"])
	assert.Equal(t, float64(2), d["unlockedCount"]) // first_study, focus_master

	medals, _ := d["medals"].([]interface{})
	assert.Len(t, medals, 11)

	status, payload = doJSON(t, app, http.MethodPost, "/api/study/medals/ack", token, nil)
	require.Equal(t, http.StatusOK, status)
	rec, _ := data(payload)["record"].(map[string]interface{})
	assert.Equal(t, false, rec["newMedalUnlocked"])
}

func TestSimulateUnknownKind(t *testing.T) {
	app, token, _ := newTestApp(t)

	status, _ := doJSON(t, app, http.MethodPost, "/api/study/simulate/nap", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestStatsEndpointReflectsTrackedTime(t *testing.T) {
	app, token, registry := newTestApp(t)

	status, _ := doJSON(t, app, http.MethodPost, "/api/study/time", token, fiber.Map{"minutes": 60})
	require.Equal(t, http.StatusOK, status)
	registry.Flush()

	status, payload := doJSON(t, app, http.MethodGet, "/api/stats/?period=daily&filter=study", token, nil)
	require.Equal(t, http.StatusOK, status)

	d := data(payload)
	assert.Equal(t, float64(60), d["totalStudyTime"])
	assert.Equal(t, false, d["isEmpty"])
	assert.Equal(t, float64(1), d["currentStreak"])
}

func TestStatsRejectsUnknownPeriod(t *testing.T) {
	app, token, _ := newTestApp(t)

	status, _ := doJSON(t, app, http.MethodGet, "/api/stats/?period=yearly", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestStreakEndpoint(t *testing.T) {
	app, token, registry := newTestApp(t)

	status, _ := doJSON(t, app, http.MethodPost, "/api/study/session", token, nil)
	require.Equal(t, http.StatusOK, status)
	registry.Flush()

	status, payload := doJSON(t, app, http.MethodGet, "/api/stats/streak?filter=sessions", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), data(payload)["currentStreak"])
}
