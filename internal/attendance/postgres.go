package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Repository persists attendance records in Postgres. A unique index on
// (session_id, student_id) enforces one mark per student per session across
// processes.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a Postgres-backed attendance store.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the candidate; when the unique index rejects it the
// existing record for the pair is returned instead.
func (r *Repository) Create(ctx context.Context, candidate Record) (Record, bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_records (id, session_id, student_id, marked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, student_id) DO NOTHING
	`, candidate.ID, candidate.SessionID, candidate.StudentID, candidate.Timestamp)
	if err != nil {
		return Record{}, false, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 1 {
		return candidate, true, nil
	}
	existing, ok, err := r.Find(ctx, candidate.SessionID, candidate.StudentID)
	if err != nil {
		return Record{}, false, err
	}
	if !ok {
		return Record{}, false, fmt.Errorf("record for (%s, %s) vanished after conflict",
			candidate.SessionID, candidate.StudentID)
	}
	return existing, false, nil
}

// Find returns the record for a (session, student) pair, if any.
func (r *Repository) Find(ctx context.Context, sessionID, studentID string) (Record, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, session_id, student_id, marked_at
		FROM attendance_records
		WHERE session_id = $1 AND student_id = $2
	`, sessionID, studentID)
	var rec Record
	err := row.Scan(&rec.ID, &rec.SessionID, &rec.StudentID, &rec.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

// ListBySession returns the session's records in creation order.
func (r *Repository) ListBySession(ctx context.Context, sessionID string) ([]Record, error) {
	return r.list(ctx,
		`SELECT id, session_id, student_id, marked_at
		 FROM attendance_records WHERE session_id = $1 ORDER BY marked_at`, sessionID)
}

// ListByStudent returns the student's records in creation order.
func (r *Repository) ListByStudent(ctx context.Context, studentID string) ([]Record, error) {
	return r.list(ctx,
		`SELECT id, session_id, student_id, marked_at
		 FROM attendance_records WHERE student_id = $1 ORDER BY marked_at`, studentID)
}

func (r *Repository) list(ctx context.Context, query, arg string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.StudentID, &rec.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
