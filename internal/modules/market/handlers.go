package market

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// streamInterval is how often the ticker stream pushes a quote snapshot.
const streamInterval = 5 * time.Second

// Handler provides the HTTP endpoints for market data.
type Handler struct {
	service *Service
	origins []string
	log     zerolog.Logger
}

// NewHandler creates a market handler. origins lists the origins allowed to
// open the WebSocket stream; empty means any origin.
func NewHandler(service *Service, origins []string, log zerolog.Logger) *Handler {
	patterns := make([]string, 0, len(origins))
	for _, origin := range origins {
		// Origin patterns match on host only, without the scheme.
		origin = strings.TrimPrefix(origin, "https://")
		origin = strings.TrimPrefix(origin, "http://")
		patterns = append(patterns, origin)
	}
	if len(patterns) == 0 {
		patterns = []string{"*"}
	}
	return &Handler{
		service: service,
		origins: patterns,
		log:     log.With().Str("handler", "market").Logger(),
	}
}

// HandleQuotes handles GET /api/market/quotes
// Returns base prices for the game universe (no scenario overlay).
func (h *Handler) HandleQuotes(w http.ResponseWriter, r *http.Request) {
	prices := h.service.Prices(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(prices); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// tickerFrame is one message of the quote stream.
type tickerFrame struct {
	Quotes map[string]float64 `json:"quotes"`
	Time   string             `json:"time"`
}

// HandleStream handles GET /api/market/stream
// Upgrades to a WebSocket and pushes quote snapshots for the scrolling
// ticker until the client disconnects.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	// CORS does not cover WebSocket handshakes; the origin check happens here.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	ctx := r.Context()
	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	// Send an initial frame immediately so the ticker renders without delay.
	for {
		frame := tickerFrame{
			Quotes: h.service.Prices(ctx),
			Time:   time.Now().Format(time.RFC3339),
		}
		if err := wsjson.Write(ctx, conn, frame); err != nil {
			// Normal client disconnects land here as well.
			h.log.Debug().Err(err).Msg("Ticker stream ended")
			return
		}

		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-ticker.C:
		}
	}
}
