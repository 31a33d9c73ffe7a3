package registry

import (
	"context"
	"sync"
)

// MemoryStore is a mutex-guarded in-memory Store used by the memory backend
// and by tests.
type MemoryStore struct {
	mu        sync.Mutex
	users     map[string]User
	userOrder []string
	classes   []Class
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]User)}
}

// CreateUser persists a new user or fails with ErrDuplicateID.
func (s *MemoryStore) CreateUser(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return ErrDuplicateID
	}
	s.users[u.ID] = u
	s.userOrder = append(s.userOrder, u.ID)
	return nil
}

// GetUser returns a user by id or ErrNotFound.
func (s *MemoryStore) GetUser(_ context.Context, id string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

// ListStudentsByClass returns the class roster in creation order.
func (s *MemoryStore) ListStudentsByClass(_ context.Context, classID string) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []User
	for _, id := range s.userOrder {
		u := s.users[id]
		if u.Role == RoleStudent && u.ClassID == classID {
			out = append(out, u)
		}
	}
	return out, nil
}

// CreateClass persists a class, idempotent by name.
func (s *MemoryStore) CreateClass(_ context.Context, c Class) (Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.classes {
		if existing.Name == c.Name {
			return existing, nil
		}
	}
	s.classes = append(s.classes, c)
	return c, nil
}

// ListClasses returns every class in creation order.
func (s *MemoryStore) ListClasses(_ context.Context) ([]Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Class, len(s.classes))
	copy(out, s.classes)
	return out, nil
}
