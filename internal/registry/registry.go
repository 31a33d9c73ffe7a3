package registry

import (
	"context"
	"errors"
)

// Role partitions users into the two views of the system.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// User is a teacher or student account. PasswordHash is a bcrypt hash and
// never leaves the registry package.
type User struct {
	ID           string `json:"id"`
	Role         Role   `json:"role"`
	Name         string `json:"name"`
	Roll         string `json:"roll,omitempty"`
	ClassID      string `json:"classId,omitempty"`
	PasswordHash string `json:"-"`
}

// Class is a named group of students sessions are opened for.
type Class struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var (
	// ErrNotFound is returned when a user or class id does not resolve.
	ErrNotFound = errors.New("registry: not found")
	// ErrDuplicateID rejects creating a user whose id is taken.
	ErrDuplicateID = errors.New("registry: id already exists")
	// ErrInvalidCredentials covers every login failure so callers cannot
	// probe which part was wrong.
	ErrInvalidCredentials = errors.New("registry: invalid credentials")
)

// Store is the persistence boundary for users and classes.
type Store interface {
	// CreateUser persists a new user or fails with ErrDuplicateID.
	CreateUser(ctx context.Context, u User) error
	// GetUser returns a user by id or ErrNotFound.
	GetUser(ctx context.Context, id string) (User, error)
	// ListStudentsByClass returns the class roster in creation order.
	ListStudentsByClass(ctx context.Context, classID string) ([]User, error)
	// CreateClass persists a class unless one with the same name exists,
	// in which case the existing class is returned.
	CreateClass(ctx context.Context, c Class) (Class, error)
	// ListClasses returns every class in creation order.
	ListClasses(ctx context.Context) ([]Class, error)
}
