package application

import (
	"context"
	"maps"
	"slices"
	"sync"

	"coursehub/internal/teacherapp/models"
	id "coursehub/pkg/domain"
	"coursehub/pkg/platform/sentinel"
)

// InMemoryStore keeps applications keyed by id with a unique owner index.
type InMemoryStore struct {
	mu     sync.RWMutex
	byID   map[id.ApplicationID]*models.Application
	byUser map[id.UserID]id.ApplicationID
	nextID id.ApplicationID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:   make(map[id.ApplicationID]*models.Application),
		byUser: make(map[id.UserID]id.ApplicationID),
	}
}

// Create assigns the surrogate id. A second application for the same user
// fails with ErrAlreadyUsed.
func (s *InMemoryStore) Create(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byUser[app.UserID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.nextID++
	app.ID = s.nextID
	s.byID[app.ID] = app.Clone()
	s.byUser[app.UserID] = app.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, appID id.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.byID[appID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return app.Clone(), nil
}

func (s *InMemoryStore) FindByUserID(_ context.Context, userID id.UserID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	appID, ok := s.byUser[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.byID[appID].Clone(), nil
}

func (s *InMemoryStore) Update(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[app.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.byID[app.ID] = app.Clone()
	return nil
}

// ListPage returns up to limit applications with id > after, ascending.
func (s *InMemoryStore) ListPage(_ context.Context, after id.ApplicationID, limit int) ([]*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]id.ApplicationID, 0, len(s.byID))
	for appID := range s.byID {
		if appID > after {
			ids = append(ids, appID)
		}
	}
	slices.Sort(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]*models.Application, len(ids))
	for i, appID := range ids {
		out[i] = s.byID[appID].Clone()
	}
	return out, nil
}

// Snapshot captures the current state; calling restore rolls back to it.
func (s *InMemoryStore) Snapshot() (restore func()) {
	s.mu.RLock()
	byID := make(map[id.ApplicationID]*models.Application, len(s.byID))
	for k, v := range s.byID {
		byID[k] = v.Clone()
	}
	byUser := maps.Clone(s.byUser)
	nextID := s.nextID
	s.mu.RUnlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.byID, s.byUser, s.nextID = byID, byUser, nextID
	}
}
