package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rollcall/internal/locking"
	"rollcall/internal/metrics"
	"rollcall/internal/queue"
	"rollcall/internal/session"
)

// SessionGetter is the slice of the session store the ledger needs to
// validate a mark's target.
type SessionGetter interface {
	Get(ctx context.Context, id string) (session.Session, error)
}

// Ledger records presence marks, at most one per (session, student). Like
// the session manager it holds no cache; every mark re-reads authoritative
// state.
type Ledger struct {
	store    Store
	sessions SessionGetter
	events   queue.Queue // optional; audit events, fire-and-forget
	locks    *locking.KeyedMutex
	now      func() time.Time
	logger   *zap.Logger
}

// NewLedger creates a ledger over the given stores.
func NewLedger(store Store, sessions SessionGetter, logger *zap.Logger) *Ledger {
	return &Ledger{
		store:    store,
		sessions: sessions,
		locks:    locking.NewKeyedMutex(),
		now:      time.Now,
		logger:   logger,
	}
}

// WithEvents attaches an audit queue. New marks publish to it; publish
// failures are logged and never surface to callers.
func (l *Ledger) WithEvents(events queue.Queue) *Ledger {
	l.events = events
	return l
}

// Mark records the student as present for the session. Marking twice is a
// no-op returning the existing record. Marks against unknown or closed
// sessions fail with ErrInvalidSession and never create a record.
func (l *Ledger) Mark(ctx context.Context, sessionID, studentID string) (Record, error) {
	sess, err := l.sessions.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return Record{}, ErrInvalidSession
	}
	if err != nil {
		return Record{}, fmt.Errorf("mark attendance: %w", err)
	}
	if sess.Status != session.StatusOpen {
		return Record{}, ErrInvalidSession
	}

	unlock := l.locks.Lock(sessionID + "|" + studentID)
	defer unlock()

	candidate := Record{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		StudentID: studentID,
		Timestamp: l.now(),
	}
	stored, created, err := l.store.Create(ctx, candidate)
	if err != nil {
		return Record{}, fmt.Errorf("mark attendance: %w", err)
	}
	if created {
		metrics.MarksRecorded.Inc()
		l.logger.Info("attendance marked",
			zap.String("session_id", sessionID),
			zap.String("student_id", studentID))
		if l.events != nil {
			evt := queue.Event{
				Type:      queue.EventMarkRecorded,
				SessionID: sessionID,
				ClassID:   sess.ClassID,
				StudentID: studentID,
				Subject:   sess.Subject,
				At:        stored.Timestamp,
			}
			if err := l.events.Publish(ctx, evt); err != nil {
				l.logger.Warn("event publish failed", zap.Error(err))
			}
		}
	} else {
		metrics.MarkRepeats.Inc()
	}
	return stored, nil
}

// RecordsForSession returns the session's marks for present-count display.
func (l *Ledger) RecordsForSession(ctx context.Context, sessionID string) ([]Record, error) {
	return l.store.ListBySession(ctx, sessionID)
}

// RecordsForStudent returns the student's marks across all sessions.
func (l *Ledger) RecordsForStudent(ctx context.Context, studentID string) ([]Record, error) {
	return l.store.ListByStudent(ctx, studentID)
}
