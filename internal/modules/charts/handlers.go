package charts

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler provides the chart HTTP endpoint.
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a charts handler.
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "charts").Logger(),
	}
}

// HandleChart handles GET /api/charts/{symbol}?range=1y
func (h *Handler) HandleChart(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	if symbol == "" {
		http.Error(w, "Symbol is required", http.StatusBadRequest)
		return
	}

	series, err := h.service.GetChart(r.Context(), symbol, r.URL.Query().Get("range"))
	if err != nil {
		if strings.HasPrefix(err.Error(), "invalid range") {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to build chart")
		http.Error(w, "Failed to fetch chart data", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(series); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
