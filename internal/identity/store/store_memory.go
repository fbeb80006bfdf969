package store

import (
	"context"
	"maps"
	"sync"

	"coursehub/internal/identity/models"
	id "coursehub/pkg/domain"
	"coursehub/pkg/platform/sentinel"
)

// InMemoryStore keeps users and their role sets in process memory.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[id.UserID]models.User
	roles map[id.UserID]map[models.Role]struct{}
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		users: make(map[id.UserID]models.User),
		roles: make(map[id.UserID]map[models.Role]struct{}),
	}
}

// CreateUser stores a user and grants the given roles.
func (s *InMemoryStore) CreateUser(_ context.Context, user *models.User, roles ...models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.users[user.ID] = *user
	set := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	s.roles[user.ID] = set
	return nil
}

func (s *InMemoryStore) FindUser(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &u, nil
}

func (s *InMemoryStore) HasRole(_ context.Context, userID id.UserID, role models.Role) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.roles[userID][role]
	return ok, nil
}

// AddRole is idempotent. Unknown users are rejected with ErrNotFound.
func (s *InMemoryStore) AddRole(_ context.Context, userID id.UserID, role models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return sentinel.ErrNotFound
	}
	if s.roles[userID] == nil {
		s.roles[userID] = make(map[models.Role]struct{})
	}
	s.roles[userID][role] = struct{}{}
	return nil
}

// Snapshot captures the current state; calling restore rolls back to it.
func (s *InMemoryStore) Snapshot() (restore func()) {
	s.mu.RLock()
	users := maps.Clone(s.users)
	roles := make(map[id.UserID]map[models.Role]struct{}, len(s.roles))
	for k, v := range s.roles {
		roles[k] = maps.Clone(v)
	}
	s.mu.RUnlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.users = users
		s.roles = roles
	}
}
