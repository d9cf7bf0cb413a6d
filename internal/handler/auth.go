package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"trellolite/internal/auth"
	"trellolite/internal/database"
	"trellolite/internal/model"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string        `json:"token"`
	User  model.Profile `json:"user"`
}

type publicUser struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Register handles POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}

	ctx := r.Context()
	if _, err := h.Store.Users().FindByEmail(ctx, req.Email); err == nil {
		writeError(w, http.StatusBadRequest, "User already exists")
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		h.serverError(w, r, "failed to look up user", err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.serverError(w, r, "failed to hash password", err)
		return
	}

	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = model.DefaultRole
	}

	now := h.timestamp()
	u := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.Store.Users().Create(ctx, u); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, database.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "User already exists")
			return
		}
		h.serverError(w, r, "failed to create user", err)
		return
	}

	token, err := h.Tokens.Issue(u.ID, u.Role)
	if err != nil {
		h.serverError(w, r, "failed to issue token", err)
		return
	}

	h.sendWelcome(u)

	h.log(r).Info("[POST /api/auth/register] user registered", zap.String("user_id", u.ID))
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: u.Profile()})
}

// sendWelcome notifies in the background; failures never affect registration
func (h *Handler) sendWelcome(u *model.User) {
	if h.Notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), welcomeTimeout)
		defer cancel()
		if err := h.Notifier.Welcome(ctx, u); err != nil {
			h.Logger.Warn("welcome notification failed", zap.String("user_id", u.ID), zap.Error(err))
		}
	}()
}

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.Store.Users().FindByEmail(r.Context(), strings.TrimSpace(req.Email))
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}
	if err != nil {
		h.serverError(w, r, "failed to look up user", err)
		return
	}

	if !auth.CheckPassword(req.Password, u.PasswordHash) {
		writeError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, err := h.Tokens.Issue(u.ID, u.Role)
	if err != nil {
		h.serverError(w, r, "failed to issue token", err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: u.Profile()})
}

// Logout handles POST /api/auth/logout. Tokens are stateless and stay valid until they expire.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, "Logged out successfully")
}

// ListUsers handles GET /api/auth/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.Users().List(r.Context())
	if err != nil {
		h.serverError(w, r, "failed to list users", err)
		return
	}

	out := make([]publicUser, 0, len(users))
	for _, u := range users {
		out = append(out, publicUser{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.log(r).Error(msg,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "Server error")
}

// timestamp is the creation/update time stored with documents
func (h *Handler) timestamp() time.Time {
	return h.now().UTC().Truncate(time.Millisecond)
}
