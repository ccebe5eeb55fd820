package repository

import (
	"context"
	"sync"
	"time"
	"wikiforum/internal/user/model"
)

type UserMemoryRepository struct {
	mu     sync.RWMutex
	users  map[int64]*model.User
	byName map[string]int64
	nextID int64
}

func NewUserMemoryRepository() *UserMemoryRepository {
	return &UserMemoryRepository{
		users:  make(map[int64]*model.User),
		byName: make(map[string]int64),
		nextID: 1,
	}
}

func (r *UserMemoryRepository) Create(_ context.Context, name, passwordHash, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		return nil, ErrDuplicate
	}
	u := &model.User{
		ID:           r.nextID,
		Name:         name,
		PasswordHash: passwordHash,
		Email:        email,
		CreatedAt:    time.Now(),
	}
	r.users[u.ID] = u
	r.byName[name] = u.ID
	r.nextID++

	out := *u
	return &out, nil
}

func (r *UserMemoryRepository) GetByName(_ context.Context, name string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[name]
	if !ok {
		return nil, ErrNotFound
	}
	out := *r.users[id]
	return &out, nil
}

func (r *UserMemoryRepository) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}
