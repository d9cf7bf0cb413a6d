package handler

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

var errNoCompleter = errors.New("no completion client configured")

type aiRequest struct {
	Prompt string `json:"prompt"`
}

type aiResponse struct {
	Reply string `json:"reply"`
}

// AIReply handles POST /api/chat/ai
func (h *Handler) AIReply(w http.ResponseWriter, r *http.Request) {
	var req aiRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	if h.Completer == nil {
		h.log(r).Error("AI chat error", zap.Error(errNoCompleter))
		writeError(w, http.StatusInternalServerError, "AI service error")
		return
	}

	reply, err := h.Completer.Complete(r.Context(), req.Prompt)
	if err != nil {
		h.log(r).Error("AI chat error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "AI service error")
		return
	}
	writeJSON(w, http.StatusOK, aiResponse{Reply: reply})
}
