package game

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/masteringmarket/server/internal/modules/auth"
)

type fakeMarket struct {
	prices map[string]float64
}

func (f *fakeMarket) Symbols() []string {
	symbols := make([]string, 0, len(f.prices))
	for s := range f.prices {
		symbols = append(symbols, s)
	}
	return symbols
}

func (f *fakeMarket) Prices(_ context.Context) map[string]float64 {
	return f.prices
}

type fakeAdvisor struct {
	scenario Scenario
}

func (f *fakeAdvisor) GenerateScenario(_ context.Context, _ []string) Scenario {
	return f.scenario
}

func (f *fakeAdvisor) Recommendation(_ context.Context, _ Scenario) string {
	return "hold steady"
}

func (f *fakeAdvisor) Feedback(_ context.Context, _ Scenario, _ []Trade, _, _ float64) string {
	return "well played"
}

func setupHandler(t *testing.T) *Handler {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := zerolog.New(nil).Level(zerolog.Disabled)
	leaderboard := NewLeaderboardRepository(db, log)
	require.NoError(t, leaderboard.Init())

	advisor := &fakeAdvisor{scenario: Scenario{
		Text:    "Market shock! AAPL drops 20%",
		Impacts: map[string]float64{"AAPL": -0.20},
	}}

	return NewHandler(
		NewManager(10000, log),
		&fakeMarket{prices: map[string]float64{"AAPL": 100, "MSFT": 200}},
		advisor,
		advisor,
		leaderboard,
		log,
	)
}

func doRequest(h http.HandlerFunc, method, path, user string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req = req.WithContext(auth.WithUserID(req.Context(), user))
	}

	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestHandleState(t *testing.T) {
	h := setupHandler(t)

	rec := doRequest(h.HandleState, http.MethodGet, "/api/game/state", "u@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 10000.0, snap.Cash)
	assert.Len(t, snap.Challenges, 4)
}

func TestHandleState_Unauthorized(t *testing.T) {
	h := setupHandler(t)

	rec := doRequest(h.HandleState, http.MethodGet, "/api/game/state", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleTrade_Buy(t *testing.T) {
	h := setupHandler(t)

	rec := doRequest(h.HandleTrade, http.MethodPost, "/api/game/trade", "u@example.com",
		TradeRequest{Symbol: "AAPL", Side: SideBuy, Shares: 10})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Trade Trade    `json:"trade"`
		State Snapshot `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 10, resp.Trade.Shares)
	assert.InDelta(t, 8995.0, resp.State.Cash, 1e-9)
}

func TestHandleTrade_Rejections(t *testing.T) {
	h := setupHandler(t)

	tests := []struct {
		name   string
		req    TradeRequest
		status int
	}{
		{"unknown symbol", TradeRequest{Symbol: "ZZZZ", Side: SideBuy, Shares: 1}, http.StatusBadRequest},
		{"invalid side", TradeRequest{Symbol: "AAPL", Side: "Short", Shares: 1}, http.StatusBadRequest},
		{"zero shares", TradeRequest{Symbol: "AAPL", Side: SideBuy, Shares: 0}, http.StatusBadRequest},
		{"insufficient funds", TradeRequest{Symbol: "MSFT", Side: SideBuy, Shares: 1000}, http.StatusBadRequest},
		{"insufficient shares", TradeRequest{Symbol: "AAPL", Side: SideSell, Shares: 5}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(h.HandleTrade, http.MethodPost, "/api/game/trade", "u@example.com", tt.req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestHandleScenario_Lifecycle(t *testing.T) {
	h := setupHandler(t)
	user := "u@example.com"

	// Advice before any scenario is a conflict
	rec := doRequest(h.HandleAdvice, http.MethodGet, "/api/game/scenario/advice", user, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(h.HandleTriggerScenario, http.MethodPost, "/api/game/scenario/trigger", user, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Second trigger conflicts while the first is running
	rec = doRequest(h.HandleTriggerScenario, http.MethodPost, "/api/game/scenario/trigger", user, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(h.HandleAdvice, http.MethodGet, "/api/game/scenario/advice", user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var advice map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &advice))
	assert.Equal(t, "hold steady", advice["recommendation"])

	rec = doRequest(h.HandleEndScenario, http.MethodPost, "/api/game/scenario/end", user, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Feedback   string   `json:"feedback"`
		StartValue float64  `json:"start_value"`
		EndValue   float64  `json:"end_value"`
		Survived   bool     `json:"survived"`
		State      Snapshot `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "well played", resp.Feedback)
	assert.Equal(t, 10000.0, resp.StartValue)
	// All cash, crash scenario, value never dipped: survived
	assert.True(t, resp.Survived)
	assert.False(t, resp.State.ScenarioActive)

	// Ending again conflicts
	rec = doRequest(h.HandleEndScenario, http.MethodPost, "/api/game/scenario/end", user, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleRecordScore_AndLeaderboard(t *testing.T) {
	h := setupHandler(t)

	rec := doRequest(h.HandleRecordScore, http.MethodPost, "/api/game/score", "a@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var scored map[string]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scored))
	assert.Equal(t, 10000.0, scored["score"])

	rec = doRequest(h.HandleLeaderboard, http.MethodGet, "/api/game/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []LeaderboardEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "a@example.com", entries[0].UserID)
}

func TestHandleLeaderboard_EmptyIsArray(t *testing.T) {
	h := setupHandler(t)

	rec := doRequest(h.HandleLeaderboard, http.MethodGet, "/api/game/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestSessionsAreIsolatedPerUser(t *testing.T) {
	h := setupHandler(t)

	rec := doRequest(h.HandleTrade, http.MethodPost, "/api/game/trade", "a@example.com",
		TradeRequest{Symbol: "AAPL", Side: SideBuy, Shares: 10})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(h.HandleState, http.MethodGet, "/api/game/state", "b@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 10000.0, snap.Cash)
	assert.Empty(t, snap.Holdings)
}
