package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded in-memory Store used by the memory backend
// and by tests.
type MemoryStore struct {
	mu       sync.Mutex
	byID     map[string]Session
	byClass  map[string][]string // class id -> session ids in creation order
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]Session),
		byClass: make(map[string][]string),
	}
}

// CreateOpen inserts the session unless the class already has an open one.
func (s *MemoryStore) CreateOpen(_ context.Context, candidate Session) (Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.byClass[candidate.ClassID] {
		if existing := s.byID[id]; existing.Status == StatusOpen {
			return existing, false, nil
		}
	}
	s.byID[candidate.ID] = candidate
	s.byClass[candidate.ClassID] = append(s.byClass[candidate.ClassID], candidate.ID)
	return candidate, true, nil
}

// Get returns the session by id or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

// ActiveForClass returns the open session for a class, if any.
func (s *MemoryStore) ActiveForClass(_ context.Context, classID string) (Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.byClass[classID] {
		if sess := s.byID[id]; sess.Status == StatusOpen {
			return sess, true, nil
		}
	}
	return Session{}, false, nil
}

// ListForClass returns the class's sessions in creation order.
func (s *MemoryStore) ListForClass(_ context.Context, classID string) ([]Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.byClass[classID]
	out := make([]Session, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.byID[id])
	}
	return out, nil
}

// Close marks the session closed if still open.
func (s *MemoryStore) Close(_ context.Context, id string, closedAt time.Time) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	if sess.Status == StatusOpen {
		sess.Status = StatusClosed
		at := closedAt
		sess.ClosedAt = &at
		s.byID[id] = sess
	}
	return sess, nil
}
