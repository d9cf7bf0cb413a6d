// Package notify delivers the welcome notification sent after registration.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"trellolite/internal/model"
)

const (
	// ExchangeName is the topic exchange domain events are published to
	ExchangeName = "trellolite.events"
	// RoutingKeyUserRegistered is published once per successful registration
	RoutingKeyUserRegistered = "user.registered"
	// WelcomeQueue is consumed by the notifier worker
	WelcomeQueue = "trellolite.welcome"

	welcomeSubject = "Welcome to Trello Lite"
)

// Welcome is the user.registered payload
type Welcome struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
}

// NewWelcome builds the welcome message for u
func NewWelcome(u *model.User) Welcome {
	return Welcome{
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
		Subject:  welcomeSubject,
		Body:     fmt.Sprintf("Hi %s, welcome to our platform!", u.Username),
	}
}

// Notifier announces new registrations
type Notifier interface {
	Welcome(ctx context.Context, u *model.User) error
}

// LogNotifier only logs the welcome message
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Welcome(_ context.Context, u *model.User) error {
	msg := NewWelcome(u)
	n.logger.Info("welcome notification",
		zap.String("user_id", msg.UserID),
		zap.String("email", msg.Email),
		zap.String("subject", msg.Subject),
	)
	return nil
}
