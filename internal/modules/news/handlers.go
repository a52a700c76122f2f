package news

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Handler provides the news HTTP endpoint.
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a news handler.
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "news").Logger(),
	}
}

// HandleHeadlines handles GET /api/news
func (h *Handler) HandleHeadlines(w http.ResponseWriter, r *http.Request) {
	headlines := h.service.Headlines(r.Context())
	if headlines == nil {
		headlines = []Headline{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(headlines); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
