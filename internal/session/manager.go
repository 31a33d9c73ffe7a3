package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rollcall/internal/locking"
	"rollcall/internal/metrics"
	"rollcall/internal/queue"
)

// Manager owns the session lifecycle and the single-open-session-per-class
// invariant. It keeps no cache: every decision re-reads the store.
type Manager struct {
	store  Store
	events queue.Queue // optional; audit events, fire-and-forget
	locks  *locking.KeyedMutex
	now    func() time.Time
	logger *zap.Logger
}

// NewManager creates a manager over the given store.
func NewManager(store Store, logger *zap.Logger) *Manager {
	return &Manager{
		store:  store,
		locks:  locking.NewKeyedMutex(),
		now:    time.Now,
		logger: logger,
	}
}

// WithEvents attaches an audit queue. Lifecycle transitions publish to it;
// publish failures are logged and never surface to callers.
func (m *Manager) WithEvents(events queue.Queue) *Manager {
	m.events = events
	return m
}

// Open returns the class's open session, creating one when none exists.
// Opening twice for the same class is idempotent: the existing session comes
// back untouched and the new subject and timing are ignored. The
// check-then-create runs under a per-class lock, and the store enforces the
// invariant again for writers outside this process.
func (m *Manager) Open(ctx context.Context, classID, subject, timing string) (Session, error) {
	unlock := m.locks.Lock("class:" + classID)
	defer unlock()

	now := m.now()
	candidate := Session{
		ID:        uuid.NewString(),
		ClassID:   classID,
		Subject:   subject,
		Timing:    timing,
		Date:      now.Format("2006-01-02"),
		Status:    StatusOpen,
		CreatedAt: now,
	}
	stored, created, err := m.store.CreateOpen(ctx, candidate)
	if err != nil {
		return Session{}, fmt.Errorf("open session: %w", err)
	}
	if created {
		metrics.SessionsOpened.Inc()
		m.logger.Info("session opened",
			zap.String("session_id", stored.ID),
			zap.String("class_id", classID),
			zap.String("subject", subject))
		m.publish(ctx, queue.Event{
			Type:      queue.EventSessionOpened,
			SessionID: stored.ID,
			ClassID:   stored.ClassID,
			Subject:   stored.Subject,
			At:        now,
		})
	}
	return stored, nil
}

// Close transitions a session to closed. Closing an already-closed session
// is a no-op that returns the stored record.
func (m *Manager) Close(ctx context.Context, sessionID string) (Session, error) {
	before, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if before.Status == StatusClosed {
		return before, nil
	}
	closed, err := m.store.Close(ctx, sessionID, m.now())
	if err != nil {
		return Session{}, fmt.Errorf("close session: %w", err)
	}
	metrics.SessionsClosed.Inc()
	m.logger.Info("session closed",
		zap.String("session_id", closed.ID),
		zap.String("class_id", closed.ClassID))
	m.publish(ctx, queue.Event{
		Type:      queue.EventSessionClosed,
		SessionID: closed.ID,
		ClassID:   closed.ClassID,
		Subject:   closed.Subject,
		At:        m.now(),
	})
	return closed, nil
}

func (m *Manager) publish(ctx context.Context, evt queue.Event) {
	if m.events == nil {
		return
	}
	if err := m.events.Publish(ctx, evt); err != nil {
		m.logger.Warn("event publish failed", zap.String("type", evt.Type), zap.Error(err))
	}
}

// ActiveSession returns the open session for a class, if any.
func (m *Manager) ActiveSession(ctx context.Context, classID string) (Session, bool, error) {
	return m.store.ActiveForClass(ctx, classID)
}

// SessionsForClass returns the class's full session history, any status.
func (m *Manager) SessionsForClass(ctx context.Context, classID string) ([]Session, error) {
	return m.store.ListForClass(ctx, classID)
}

// Get looks a session up by id.
func (m *Manager) Get(ctx context.Context, sessionID string) (Session, error) {
	return m.store.Get(ctx, sessionID)
}
