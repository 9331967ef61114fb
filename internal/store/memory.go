package store

import (
	"context"
	"sync"
)

// Memory is an in-process UserStore.
type Memory struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]User),
	}
}

func (s *Memory) Create(_ context.Context, user *User) error {
	email := NormalizeEmail(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[email]; exists {
		return ErrDuplicateEmail
	}
	stored := *user
	stored.Email = email
	s.users[email] = stored
	return nil
}

func (s *Memory) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, exists := s.users[NormalizeEmail(email)]
	if !exists {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *Memory) Close(context.Context) error { return nil }
