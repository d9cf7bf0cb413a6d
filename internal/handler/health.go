package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// brokerStatus is implemented by notifiers backed by a broker connection
type brokerStatus interface {
	IsConnected() bool
}

// Healthz reports that the process is up
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports whether the store, the message broker and the realtime
// backplane are usable
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.Store.Ping(ctx); err != nil {
		h.log(r).Warn("readiness check failed", zap.String("check", "db"), zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "db_not_ready"})
		return
	}

	if b, ok := h.Notifier.(brokerStatus); ok && !b.IsConnected() {
		h.log(r).Warn("readiness check failed", zap.String("check", "mq"))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "mq_not_ready"})
		return
	}

	if h.Gateway != nil {
		if err := h.Gateway.Err(); err != nil {
			h.log(r).Warn("readiness check failed", zap.String("check", "realtime"), zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "realtime_not_ready"})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
