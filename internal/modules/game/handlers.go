package game

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/masteringmarket/server/internal/modules/auth"
)

// MarketData supplies base prices for the game's symbol universe.
// Implementations must always return a usable price (cached or default),
// never block indefinitely.
type MarketData interface {
	Symbols() []string
	Prices(ctx context.Context) map[string]float64
}

// ScenarioSource produces market-event scenarios. Implementations must
// always return a valid scenario (falling back to a deterministic generator
// when the AI path fails).
type ScenarioSource interface {
	GenerateScenario(ctx context.Context, symbols []string) Scenario
}

// AdvisorSource produces advisory text. Failures degrade to canned strings,
// never to errors.
type AdvisorSource interface {
	Recommendation(ctx context.Context, scenario Scenario) string
	Feedback(ctx context.Context, scenario Scenario, trades []Trade, startValue, endValue float64) string
}

// Handler provides the HTTP endpoints for the trading game.
type Handler struct {
	sessions    *Manager
	market      MarketData
	scenarios   ScenarioSource
	advisor     AdvisorSource
	leaderboard *LeaderboardRepository
	log         zerolog.Logger
}

// NewHandler creates a game handler.
func NewHandler(
	sessions *Manager,
	market MarketData,
	scenarios ScenarioSource,
	advisor AdvisorSource,
	leaderboard *LeaderboardRepository,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		sessions:    sessions,
		market:      market,
		scenarios:   scenarios,
		advisor:     advisor,
		leaderboard: leaderboard,
		log:         log.With().Str("handler", "game").Logger(),
	}
}

// session resolves the caller's game session from the request context.
func (h *Handler) session(r *http.Request) (*Session, bool) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		return nil, false
	}
	return h.sessions.Get(userID), true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// rejectionStatus maps game errors to HTTP status codes. Every rejection
// leaves session state unchanged.
func rejectionStatus(err error) int {
	switch {
	case errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrInsufficientShares),
		errors.Is(err, ErrInvalidShares):
		return http.StatusBadRequest
	case errors.Is(err, ErrScenarioActive),
		errors.Is(err, ErrNoScenario):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HandleState handles GET /api/game/state
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	prices := h.market.Prices(r.Context())
	writeJSON(w, session.Snapshot(prices))
}

// TradeRequest is the body of POST /api/game/trade.
type TradeRequest struct {
	Symbol string `json:"symbol"`
	Side   Side   `json:"side"`
	Shares int    `json:"shares"`
}

// HandleTrade handles POST /api/game/trade
func (h *Handler) HandleTrade(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Side != SideBuy && req.Side != SideSell {
		http.Error(w, "Side must be Buy or Sell", http.StatusBadRequest)
		return
	}

	prices := h.market.Prices(r.Context())
	if _, known := prices[req.Symbol]; !known {
		http.Error(w, "Unknown symbol", http.StatusBadRequest)
		return
	}

	trade, err := session.ExecuteTrade(req.Symbol, req.Side, req.Shares, prices)
	if err != nil {
		http.Error(w, err.Error(), rejectionStatus(err))
		return
	}

	h.log.Info().
		Str("user", session.UserID()).
		Str("symbol", trade.Symbol).
		Str("side", string(trade.Side)).
		Int("shares", trade.Shares).
		Float64("price", trade.Price).
		Msg("Trade executed")

	writeJSON(w, map[string]any{
		"trade": trade,
		"state": session.Snapshot(prices),
	})
}

// HandleTriggerScenario handles POST /api/game/scenario/trigger
func (h *Handler) HandleTriggerScenario(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Reject before generating a scenario so a conflict costs nothing.
	if _, active := session.ActiveScenario(); active {
		http.Error(w, ErrScenarioActive.Error(), http.StatusConflict)
		return
	}

	scenario := h.scenarios.GenerateScenario(r.Context(), h.market.Symbols())
	prices := h.market.Prices(r.Context())

	if err := session.TriggerScenario(scenario, prices); err != nil {
		http.Error(w, err.Error(), rejectionStatus(err))
		return
	}

	h.log.Info().Str("user", session.UserID()).Str("scenario", scenario.Text).Msg("Scenario triggered")

	writeJSON(w, map[string]any{
		"scenario": scenario.Text,
		"state":    session.Snapshot(prices),
	})
}

// HandleEndScenario handles POST /api/game/scenario/end
func (h *Handler) HandleEndScenario(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	prices := h.market.Prices(r.Context())

	outcome, err := session.EndScenario(prices)
	if err != nil {
		http.Error(w, err.Error(), rejectionStatus(err))
		return
	}

	feedback := h.advisor.Feedback(r.Context(), outcome.Scenario, outcome.Trades, outcome.StartValue, outcome.EndValue)

	writeJSON(w, map[string]any{
		"feedback":    feedback,
		"start_value": outcome.StartValue,
		"end_value":   outcome.EndValue,
		"survived":    outcome.Survived,
		"state":       session.Snapshot(prices),
	})
}

// HandleAdvice handles GET /api/game/scenario/advice
func (h *Handler) HandleAdvice(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	scenario, active := session.ActiveScenario()
	if !active {
		http.Error(w, ErrNoScenario.Error(), http.StatusConflict)
		return
	}

	writeJSON(w, map[string]string{
		"recommendation": h.advisor.Recommendation(r.Context(), scenario),
	})
}

// HandleRecordScore handles POST /api/game/score
func (h *Handler) HandleRecordScore(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	prices := h.market.Prices(r.Context())
	score := session.TotalValue(prices)

	if err := h.leaderboard.RecordScore(session.UserID(), score); err != nil {
		h.log.Error().Err(err).Str("user", session.UserID()).Msg("Failed to record score")
		http.Error(w, "Failed to record score", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]float64{"score": score})
}

// HandleLeaderboard handles GET /api/game/leaderboard
func (h *Handler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboard.TopN(10)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load leaderboard")
		http.Error(w, "Failed to load leaderboard", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []LeaderboardEntry{}
	}

	writeJSON(w, entries)
}
