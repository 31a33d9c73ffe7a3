package session

import (
	"context"
	"errors"
	"sort"
	"time"
)

// Status is the lifecycle state of a session. A session opens once, closes
// once, and is never deleted.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Session is a teacher-opened attendance window for one class.
type Session struct {
	ID        string     `json:"id"`
	ClassID   string     `json:"classId"`
	Subject   string     `json:"subject"`
	Timing    string     `json:"timing"`
	Date      string     `json:"date"` // calendar date of creation, YYYY-MM-DD
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	ClosedAt  *time.Time `json:"closedAt,omitempty"`
}

// ErrNotFound is returned when a session id does not resolve.
var ErrNotFound = errors.New("session not found")

// Store is the persistence boundary for sessions. Implementations must make
// CreateOpen and Close atomic: under concurrent callers at most one open
// session may exist per class.
type Store interface {
	// CreateOpen persists a new open session unless the class already has
	// one, in which case the existing session is returned and created is
	// false.
	CreateOpen(ctx context.Context, s Session) (stored Session, created bool, err error)
	// Get returns the session by id or ErrNotFound.
	Get(ctx context.Context, id string) (Session, error)
	// ActiveForClass returns the open session for a class, if any.
	ActiveForClass(ctx context.Context, classID string) (Session, bool, error)
	// ListForClass returns every session of a class in creation order.
	ListForClass(ctx context.Context, classID string) ([]Session, error)
	// Close marks the session closed if it is still open and returns the
	// stored record either way. ErrNotFound when the id does not resolve.
	Close(ctx context.Context, id string, closedAt time.Time) (Session, error)
}

// SortForDisplay orders sessions by date descending, then creation time
// descending, the order history views render in.
func SortForDisplay(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].Date != sessions[j].Date {
			return sessions[i].Date > sessions[j].Date
		}
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
}
