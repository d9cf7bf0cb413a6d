package handler

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"trellolite/internal/database"
	"trellolite/internal/model"
)

// memStore is an in-memory database.Store for handler tests
type memStore struct {
	mu       sync.Mutex
	seq      int
	users    []model.User
	tasks    map[string]model.Task
	messages map[string]model.Message
	pingErr  error
}

func newMemStore() *memStore {
	return &memStore{
		tasks:    make(map[string]model.Task),
		messages: make(map[string]model.Message),
	}
}

func (s *memStore) nextID() string {
	s.seq++
	return strconv.Itoa(s.seq)
}

func (s *memStore) Users() database.UserRepository { return memUsers{s} }
func (s *memStore) Tasks() database.TaskRepository { return memTasks{s} }
func (s *memStore) Messages() database.MessageRepository { return memMessages{s} }
func (s *memStore) Ping(context.Context) error { return s.pingErr }
func (s *memStore) Close() error { return nil }

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return database.ErrDuplicate
		}
	}
	u.ID = r.s.nextID()
	r.s.users = append(r.s.users, *u)
	return nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, database.ErrNotFound
}

func (r memUsers) List(context.Context) ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]model.User{}, r.s.users...), nil
}

type memTasks struct{ s *memStore }

func (r memTasks) Create(_ context.Context, t *model.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = r.s.nextID()
	r.s.tasks[t.ID] = *t
	return nil
}

func (r memTasks) Get(_ context.Context, id string) (*model.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &t, nil
}

func (r memTasks) List(context.Context) ([]model.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Task, 0, len(r.s.tasks))
	for _, t := range r.s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memTasks) Update(_ context.Context, t *model.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[t.ID]; !ok {
		return database.ErrNotFound
	}
	r.s.tasks[t.ID] = *t
	return nil
}

func (r memTasks) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[id]; !ok {
		return database.ErrNotFound
	}
	delete(r.s.tasks, id)
	return nil
}

type memMessages struct{ s *memStore }

func (r memMessages) Create(_ context.Context, m *model.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ID = r.s.nextID()
	r.s.messages[m.ID] = *m
	return nil
}

func (r memMessages) Conversation(_ context.Context, a, b string) ([]model.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Message
	for _, m := range r.s.messages {
		if (m.Sender == a && m.Receiver == b) || (m.Sender == b && m.Receiver == a) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memMessages) UpdateContent(_ context.Context, id, content string) (*model.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.messages[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	m.Content = content
	m.UpdatedAt = time.Now().UTC()
	r.s.messages[id] = m
	return &m, nil
}

func (r memMessages) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.messages[id]; !ok {
		return database.ErrNotFound
	}
	delete(r.s.messages, id)
	return nil
}

// failingStore fails every repository call
type failingStore struct{ *memStore }

var errStoreDown = errors.New("store down")

func (failingStore) Tasks() database.TaskRepository { return failingTasks{} }

type failingTasks struct{}

func (failingTasks) Create(context.Context, *model.Task) error { return errStoreDown }
func (failingTasks) Get(context.Context, string) (*model.Task, error) { return nil, errStoreDown }
func (failingTasks) List(context.Context) ([]model.Task, error) { return nil, errStoreDown }
func (failingTasks) Update(context.Context, *model.Task) error { return errStoreDown }
func (failingTasks) Delete(context.Context, string) error { return errStoreDown }
