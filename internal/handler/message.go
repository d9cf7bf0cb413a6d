package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"trellolite/internal/database"
	"trellolite/internal/model"
)

type messageRequest struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Content  string `json:"content"`
}

type messageUpdateRequest struct {
	Content string `json:"content"`
}

// CreateMessage handles POST /api/chat
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Sender = strings.TrimSpace(req.Sender)
	req.Receiver = strings.TrimSpace(req.Receiver)
	if req.Sender == "" || req.Receiver == "" {
		writeError(w, http.StatusBadRequest, "Sender and receiver are required")
		return
	}

	now := h.timestamp()
	msg := &model.Message{
		Sender:    req.Sender,
		Receiver:  req.Receiver,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Store.Messages().Create(r.Context(), msg); err != nil {
		h.serverError(w, r, "failed to create message", err)
		return
	}

	h.log(r).Debug("[POST /api/chat] created message", zap.String("message_id", msg.ID))
	writeJSON(w, http.StatusCreated, msg)
}

// GetConversation handles GET /api/chat/{userId}/{otherUserId}
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	msgList, err := h.Store.Messages().Conversation(r.Context(), vars["userId"], vars["otherUserId"])
	if err != nil {
		h.serverError(w, r, "failed to load conversation", err)
		return
	}
	if msgList == nil {
		msgList = []model.Message{}
	}
	writeJSON(w, http.StatusOK, msgList)
}

// UpdateMessage handles PUT /api/chat/{id}. Only the content changes.
func (h *Handler) UpdateMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req messageUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	msg, err := h.Store.Messages().UpdateContent(r.Context(), id, req.Content)
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Message not found")
		return
	}
	if err != nil {
		h.serverError(w, r, "failed to update message", err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// DeleteMessage handles DELETE /api/chat/{id}
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.Store.Messages().Delete(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Message not found")
			return
		}
		h.serverError(w, r, "failed to delete message", err)
		return
	}
	writeMessage(w, "Message deleted")
}
