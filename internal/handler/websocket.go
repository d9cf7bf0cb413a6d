package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"trellolite/internal/auth"
)

// createUpgrader creates a WebSocket upgrader with the given allowed origins.
// Requests without an Origin header come from non-browser clients and are allowed.
func createUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowedMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		allowedMap[origin] = true
	}

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowedMap[origin]
		},
	}
}

// HandleWebSocket handles GET /ws. The token comes from ?token= or the
// same headers the REST API accepts, and is checked before the upgrade.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = auth.ExtractToken(r)
	}
	if token == "" {
		writeError(w, http.StatusUnauthorized, "No token, authorization denied")
		return
	}

	claims, err := h.Tokens.Parse(token)
	if err != nil {
		h.log(r).Debug("[WebSocket] rejecting handshake", zap.Error(err))
		writeError(w, http.StatusUnauthorized, "Token is not valid")
		return
	}

	upgrader := createUpgrader(h.Config.AllowedOrigins)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied
		h.log(r).Warn("[WebSocket] upgrade error", zap.Error(err))
		return
	}

	h.Gateway.Serve(r.Context(), conn, claims.ID)
}
