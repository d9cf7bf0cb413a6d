package handler

import (
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"trellolite/internal/auth"
	"trellolite/internal/completion"
	"trellolite/internal/config"
	"trellolite/internal/database"
	"trellolite/internal/envelope"
	"trellolite/internal/notify"
	"trellolite/internal/realtime"
)

// welcomeTimeout bounds the asynchronous welcome notification
const welcomeTimeout = 5 * time.Second

// Handler holds application dependencies
type Handler struct {
	Store     database.Store
	Config    config.Config
	Tokens    *auth.Tokens
	Gateway   *realtime.Gateway
	Notifier  notify.Notifier
	Completer completion.Completer
	Logger    *zap.Logger

	now func() time.Time
}

// New creates a new Handler with the given dependencies
func New(
	cfg config.Config,
	store database.Store,
	gateway *realtime.Gateway,
	notifier notify.Notifier,
	completer completion.Completer,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Store:     store,
		Config:    cfg,
		Tokens:    auth.NewTokens(cfg.JWTSecret, cfg.JWTExpiresIn),
		Gateway:   gateway,
		Notifier:  notifier,
		Completer: completer,
		Logger:    logger,
		now:       time.Now,
	}
}

// SetupRouter configures and returns the HTTP router
func (h *Handler) SetupRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.requestLogger)

	// Operations
	r.HandleFunc("/healthz", h.Healthz).Methods("GET")
	r.HandleFunc("/readyz", h.Readyz).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// WebSocket
	r.HandleFunc("/ws", h.HandleWebSocket).Methods("GET")

	// REST API
	api := r.PathPrefix("/api").Subrouter()
	if h.Config.EncryptionEnabled() {
		api.Use(envelope.NewMiddleware(h.Config.CryptoSecret, h.Logger).Wrap)
	}

	api.HandleFunc("/auth/register", h.Register).Methods("POST")
	api.HandleFunc("/auth/login", h.Login).Methods("POST")

	protected := api.NewRoute().Subrouter()
	protected.Use(h.requireAuth)

	protected.HandleFunc("/auth/logout", h.Logout).Methods("POST")
	protected.HandleFunc("/auth/users", h.ListUsers).Methods("GET")

	protected.HandleFunc("/tasks", h.CreateTask).Methods("POST")
	protected.HandleFunc("/tasks", h.ListTasks).Methods("GET")
	protected.HandleFunc("/tasks/{id}", h.UpdateTask).Methods("PUT")
	protected.HandleFunc("/tasks/{id}", h.DeleteTask).Methods("DELETE")

	protected.HandleFunc("/chat/ai", h.AIReply).Methods("POST")
	protected.HandleFunc("/chat", h.CreateMessage).Methods("POST")
	protected.HandleFunc("/chat/{userId}/{otherUserId}", h.GetConversation).Methods("GET")
	protected.HandleFunc("/chat/{id}", h.UpdateMessage).Methods("PUT")
	protected.HandleFunc("/chat/{id}", h.DeleteMessage).Methods("DELETE")

	return r
}
