// Package database defines the persistence contracts shared by the storage drivers.
package database

import (
	"context"
	"errors"

	"trellolite/internal/model"
)

var (
	// ErrNotFound is returned when a document does not exist or its id is malformed
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique key (user email) is already taken
	ErrDuplicate = errors.New("duplicate")
)

// Store groups the repositories of one storage driver
type Store interface {
	Users() UserRepository
	Tasks() TaskRepository
	Messages() MessageRepository
	Ping(ctx context.Context) error
	Close() error
}

// UserRepository persists accounts
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

// TaskRepository persists board tasks
type TaskRepository interface {
	Create(ctx context.Context, t *model.Task) error
	Get(ctx context.Context, id string) (*model.Task, error)
	List(ctx context.Context) ([]model.Task, error)
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, id string) error
}

// MessageRepository persists chat history
type MessageRepository interface {
	Create(ctx context.Context, m *model.Message) error
	// Conversation returns messages exchanged between a and b in either
	// direction, oldest first.
	Conversation(ctx context.Context, a, b string) ([]model.Message, error)
	UpdateContent(ctx context.Context, id, content string) (*model.Message, error)
	Delete(ctx context.Context, id string) error
}
