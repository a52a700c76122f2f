package chat

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Handler provides the chat HTTP endpoint.
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a chat handler.
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "chat").Logger(),
	}
}

type askRequest struct {
	Question string   `json:"question"`
	Compare  []string `json:"compare,omitempty"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// HandleAsk handles POST /api/chat
func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	answer := h.service.Ask(r.Context(), req.Question, req.Compare)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(askResponse{Answer: answer})
}
