// Package credential stores the three credential collections behind one
// generic implementation per backend.
package credential

import (
	"context"
	"maps"
	"sync"

	"coursehub/internal/teacherapp/models"
	id "coursehub/pkg/domain"
	"coursehub/pkg/platform/sentinel"
)

// InMemoryStore holds records by value so callers never alias stored state.
type InMemoryStore[T any, P models.RecordPtr[T]] struct {
	mu      sync.RWMutex
	records map[id.CredentialID]T
	nextID  id.CredentialID
}

func NewInMemory[T any, P models.RecordPtr[T]]() *InMemoryStore[T, P] {
	return &InMemoryStore[T, P]{records: make(map[id.CredentialID]T)}
}

func (s *InMemoryStore[T, P]) FindByID(_ context.Context, recordID id.CredentialID) (P, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[recordID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return P(&v), nil
}

func (s *InMemoryStore[T, P]) ListByApplication(_ context.Context, appID id.ApplicationID) ([]P, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []P
	for _, v := range s.records {
		p := P(&v)
		if p.Base().ApplicationID == appID {
			out = append(out, p)
		}
	}
	models.SortNewestFirst(out)
	return out, nil
}

// InsertMany assigns ids in slice order.
func (s *InMemoryStore[T, P]) InsertMany(_ context.Context, records []P) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.nextID++
		r.Base().ID = s.nextID
		s.records[s.nextID] = *r
	}
	return nil
}

func (s *InMemoryStore[T, P]) Save(_ context.Context, record P) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.Base().ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.records[record.Base().ID] = *record
	return nil
}

func (s *InMemoryStore[T, P]) Delete(_ context.Context, recordID id.CredentialID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[recordID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.records, recordID)
	return nil
}

func (s *InMemoryStore[T, P]) CountByApplication(_ context.Context, appID id.ApplicationID, withDocument bool) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, v := range s.records {
		b := P(&v).Base()
		if b.ApplicationID == appID && (!withDocument || b.HasDocument()) {
			n++
		}
	}
	return n, nil
}

// Snapshot captures the current state; calling restore rolls back to it.
func (s *InMemoryStore[T, P]) Snapshot() (restore func()) {
	s.mu.RLock()
	records := maps.Clone(s.records)
	nextID := s.nextID
	s.mu.RUnlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.records, s.nextID = records, nextID
	}
}
