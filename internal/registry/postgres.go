package registry

import (
	"context"
	"database/sql"
	"errors"
)

// Repository persists users and classes in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a Postgres-backed registry store.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser persists a new user or fails with ErrDuplicateID.
func (r *Repository) CreateUser(ctx context.Context, u User) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, role, name, roll, class_id, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`, u.ID, u.Role, u.Name, u.Roll, u.ClassID, u.PasswordHash)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDuplicateID
	}
	return nil
}

// GetUser returns a user by id or ErrNotFound.
func (r *Repository) GetUser(ctx context.Context, id string) (User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, role, name, roll, class_id, password_hash
		FROM users WHERE id = $1
	`, id)
	var u User
	err := row.Scan(&u.ID, &u.Role, &u.Name, &u.Roll, &u.ClassID, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// ListStudentsByClass returns the class roster in creation order.
func (r *Repository) ListStudentsByClass(ctx context.Context, classID string) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, role, name, roll, class_id, password_hash
		FROM users
		WHERE role = 'student' AND class_id = $1
		ORDER BY created_at
	`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Role, &u.Name, &u.Roll, &u.ClassID, &u.PasswordHash); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// CreateClass persists a class, idempotent by name.
func (r *Repository) CreateClass(ctx context.Context, c Class) (Class, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO classes (id, name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
	`, c.ID, c.Name)
	if err != nil {
		return Class{}, err
	}
	row := r.db.QueryRowContext(ctx, `SELECT id, name FROM classes WHERE name = $1`, c.Name)
	var stored Class
	if err := row.Scan(&stored.ID, &stored.Name); err != nil {
		return Class{}, err
	}
	return stored, nil
}

// ListClasses returns every class in creation order.
func (r *Repository) ListClasses(ctx context.Context) ([]Class, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM classes ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Class
	for rows.Next() {
		var c Class
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
