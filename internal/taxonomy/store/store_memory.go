package store

import (
	"context"
	"sync"

	"coursehub/internal/taxonomy/models"
	id "coursehub/pkg/domain"
	"coursehub/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu         sync.RWMutex
	categories map[id.CategoryID]models.Category
	nextID     id.CategoryID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{categories: make(map[id.CategoryID]models.Category)}
}

// Create assigns an id when the category has none.
func (s *InMemoryStore) Create(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		s.nextID++
		for s.categories[s.nextID].ID != 0 {
			s.nextID++
		}
		c.ID = s.nextID
	}
	if _, exists := s.categories[c.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.categories[c.ID] = *c
	return nil
}

func (s *InMemoryStore) FindActivePrimary(_ context.Context, categoryID id.CategoryID) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[categoryID]
	if !ok || !c.Active || !c.IsPrimary() {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

// FindActiveSecondaries returns the subset of ids that are active children
// of parent, in the order requested.
func (s *InMemoryStore) FindActiveSecondaries(_ context.Context, ids []id.CategoryID, parent id.CategoryID) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Category, 0, len(ids))
	for _, cid := range ids {
		c, ok := s.categories[cid]
		if ok && c.Active && c.IsChildOf(parent) {
			out = append(out, c)
		}
	}
	return out, nil
}
