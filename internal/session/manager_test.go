package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestManager() *Manager {
	m := NewManager(NewMemoryStore(), zap.NewNop())
	base := time.Date(2024, 6, 3, 9, 0, 0, 0, time.Local)
	var calls int
	m.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}
	return m
}

func TestOpenIsIdempotentPerClass(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	first, err := m.Open(ctx, "class-x", "DBMS", "09:00 - 10:00")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	second, err := m.Open(ctx, "class-x", "OS", "10:00 - 11:00")
	if err != nil {
		t.Fatalf("open again: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second open created a new session: %s vs %s", second.ID, first.ID)
	}
	if second.Subject != "DBMS" || second.Timing != "09:00 - 10:00" {
		t.Errorf("second open must keep first call's fields, got %+v", second)
	}

	sessions, err := m.SessionsForClass(ctx, "class-x")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("expected 1 session, got %d", len(sessions))
	}
}

func TestOpenIsAtomicUnderConcurrency(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	const callers = 32
	ids := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess, err := m.Open(ctx, "class-x", "DBMS", "09:00 - 10:00")
			if err != nil {
				t.Errorf("open: %v", err)
				return
			}
			ids[i] = sess.ID
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("concurrent opens produced different sessions: %s vs %s", ids[i], ids[0])
		}
	}
	sessions, _ := m.SessionsForClass(ctx, "class-x")
	if len(sessions) != 1 {
		t.Errorf("expected 1 session, got %d", len(sessions))
	}
}

func TestOpenSeparateClasses(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	a, _ := m.Open(ctx, "class-a", "DBMS", "09:00 - 10:00")
	b, _ := m.Open(ctx, "class-b", "OS", "09:00 - 10:00")
	if a.ID == b.ID {
		t.Error("different classes must get different sessions")
	}
}

func TestCloseTransitionsOnce(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	sess, _ := m.Open(ctx, "class-x", "DBMS", "09:00 - 10:00")

	closed, err := m.Close(ctx, sess.ID)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != StatusClosed || closed.ClosedAt == nil {
		t.Errorf("close result: %+v", closed)
	}
	firstClosedAt := *closed.ClosedAt

	again, err := m.Close(ctx, sess.ID)
	if err != nil {
		t.Fatalf("close again: %v", err)
	}
	if !again.ClosedAt.Equal(firstClosedAt) {
		t.Error("closing twice must not move closedAt")
	}

	if _, ok, _ := m.ActiveSession(ctx, "class-x"); ok {
		t.Error("closed session still reported active")
	}

	// class can open a fresh session after closing
	next, _ := m.Open(ctx, "class-x", "OS", "10:00 - 11:00")
	if next.ID == sess.ID {
		t.Error("reopen returned the closed session")
	}
}

func TestCloseUnknownSession(t *testing.T) {
	m := newTestManager()
	if _, err := m.Close(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestActiveSessionEmpty(t *testing.T) {
	m := newTestManager()
	if _, ok, err := m.ActiveSession(context.Background(), "class-x"); err != nil || ok {
		t.Errorf("want no active session, got ok=%v err=%v", ok, err)
	}
}

func TestSortForDisplay(t *testing.T) {
	base := time.Date(2024, 6, 3, 9, 0, 0, 0, time.Local)
	sessions := []Session{
		{ID: "a", Date: "2024-06-03", CreatedAt: base},
		{ID: "b", Date: "2024-06-04", CreatedAt: base},
		{ID: "c", Date: "2024-06-04", CreatedAt: base.Add(time.Hour)},
	}
	SortForDisplay(sessions)
	got := sessions[0].ID + sessions[1].ID + sessions[2].ID
	if got != "cba" {
		t.Errorf("order = %q, want cba", got)
	}
}
