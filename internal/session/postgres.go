package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository persists sessions in Postgres. The schema carries a partial
// unique index on (class_id) WHERE status = 'open', so the single-open-
// session invariant holds even across processes.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a Postgres-backed session store.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const sessionColumns = `id, class_id, subject, timing, date, status, created_at, closed_at`

// CreateOpen inserts the candidate; when the partial unique index rejects it
// the class's current open session is returned instead.
func (r *Repository) CreateOpen(ctx context.Context, candidate Session) (Session, bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, class_id, subject, timing, date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (class_id) WHERE status = 'open' DO NOTHING
	`, candidate.ID, candidate.ClassID, candidate.Subject, candidate.Timing,
		candidate.Date, candidate.Status, candidate.CreatedAt)
	if err != nil {
		return Session{}, false, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 1 {
		return candidate, true, nil
	}
	existing, ok, err := r.ActiveForClass(ctx, candidate.ClassID)
	if err != nil {
		return Session{}, false, err
	}
	if !ok {
		// lost the race and the winner already closed; surface as a store
		// error so the caller retries
		return Session{}, false, fmt.Errorf("open session for class %s vanished", candidate.ClassID)
	}
	return existing, false, nil
}

// Get returns the session by id.
func (r *Repository) Get(ctx context.Context, id string) (Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	return scanSession(row)
}

// ActiveForClass returns the open session for a class, if any.
func (r *Repository) ActiveForClass(ctx context.Context, classID string) (Session, bool, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE class_id = $1 AND status = 'open'`, classID)
	sess, err := scanSession(row)
	if errors.Is(err, ErrNotFound) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, err
	}
	return sess, true, nil
}

// ListForClass returns the class's sessions in creation order.
func (r *Repository) ListForClass(ctx context.Context, classID string) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE class_id = $1 ORDER BY created_at`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// Close marks the session closed if still open and returns the stored row.
func (r *Repository) Close(ctx context.Context, id string, closedAt time.Time) (Session, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET status = 'closed', closed_at = $2
		WHERE id = $1 AND status = 'open'
	`, id, closedAt)
	if err != nil {
		return Session{}, err
	}
	if _, err := res.RowsAffected(); err != nil {
		return Session{}, err
	}
	return r.Get(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (Session, error) {
	var sess Session
	var closedAt sql.NullTime
	err := row.Scan(&sess.ID, &sess.ClassID, &sess.Subject, &sess.Timing,
		&sess.Date, &sess.Status, &sess.CreatedAt, &closedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	if closedAt.Valid {
		t := closedAt.Time
		sess.ClosedAt = &t
	}
	return sess, nil
}
