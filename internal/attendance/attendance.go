package attendance

import (
	"context"
	"errors"
	"time"
)

// Record is one student's presence mark against one session. Records are
// append-only: never mutated, never deleted.
type Record struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	StudentID string    `json:"studentId"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrInvalidSession rejects marks against a session that does not exist or
// is not open. Distinct from a plain not-found: the caller targeted a
// session that cannot accept marks.
var ErrInvalidSession = errors.New("no open session to mark against")

// Store is the persistence boundary for attendance records. Create must be
// atomic on (session_id, student_id): of two concurrent inserts exactly one
// wins and both callers see the same stored record.
type Store interface {
	// Create persists the record unless one already exists for the
	// (session, student) pair, in which case the existing record is
	// returned and created is false.
	Create(ctx context.Context, r Record) (stored Record, created bool, err error)
	// Find returns the record for a (session, student) pair, if any.
	Find(ctx context.Context, sessionID, studentID string) (Record, bool, error)
	// ListBySession returns every record of a session in creation order.
	ListBySession(ctx context.Context, sessionID string) ([]Record, error)
	// ListByStudent returns every record of a student across sessions.
	ListByStudent(ctx context.Context, studentID string) ([]Record, error)
}
