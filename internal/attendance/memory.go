package attendance

import (
	"context"
	"sync"
)

// MemoryStore is a mutex-guarded in-memory Store used by the memory backend
// and by tests.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
	byPair  map[string]int // sessionID|studentID -> index into records
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byPair: make(map[string]int)}
}

func pairKey(sessionID, studentID string) string {
	return sessionID + "|" + studentID
}

// Create inserts the record unless the (session, student) pair already has
// one.
func (s *MemoryStore) Create(_ context.Context, candidate Record) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(candidate.SessionID, candidate.StudentID)
	if i, ok := s.byPair[key]; ok {
		return s.records[i], false, nil
	}
	s.byPair[key] = len(s.records)
	s.records = append(s.records, candidate)
	return candidate, true, nil
}

// Find returns the record for a (session, student) pair, if any.
func (s *MemoryStore) Find(_ context.Context, sessionID, studentID string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.byPair[pairKey(sessionID, studentID)]; ok {
		return s.records[i], true, nil
	}
	return Record{}, false, nil
}

// ListBySession returns the session's records in creation order.
func (s *MemoryStore) ListBySession(_ context.Context, sessionID string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, r := range s.records {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ListByStudent returns the student's records in creation order.
func (s *MemoryStore) ListByStudent(_ context.Context, studentID string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, r := range s.records {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}
