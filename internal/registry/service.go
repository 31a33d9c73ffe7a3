package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service wraps the store with password hashing and the seed-teacher
// bootstrap.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a registry service.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// SeedTeacher ensures the configured teacher account exists. Called once at
// startup; an existing account is left alone.
func (s *Service) SeedTeacher(ctx context.Context, id, password string) error {
	_, err := s.store.GetUser(ctx, id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("seed teacher: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed teacher: %w", err)
	}
	err = s.store.CreateUser(ctx, User{
		ID:           id,
		Role:         RoleTeacher,
		Name:         "Teacher",
		PasswordHash: string(hash),
	})
	if err != nil && !errors.Is(err, ErrDuplicateID) {
		return fmt.Errorf("seed teacher: %w", err)
	}
	s.logger.Info("seed teacher ready", zap.String("user_id", id))
	return nil
}

// Authenticate checks role, id and password and returns the user.
func (s *Service) Authenticate(ctx context.Context, role Role, id, password string) (User, error) {
	user, err := s.store.GetUser(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, fmt.Errorf("authenticate: %w", err)
	}
	if user.Role != role {
		return User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// CreateStudent registers a student account. The id doubles as the login
// and must be unused.
func (s *Service) CreateStudent(ctx context.Context, id, password, name, roll, classID string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("create student: %w", err)
	}
	user := User{
		ID:           id,
		Role:         RoleStudent,
		Name:         name,
		Roll:         roll,
		ClassID:      classID,
		PasswordHash: string(hash),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return User{}, err
	}
	s.logger.Info("student created",
		zap.String("user_id", id),
		zap.String("class_id", classID))
	return user, nil
}

// CreateClass creates a class, idempotent by name.
func (s *Service) CreateClass(ctx context.Context, name string) (Class, error) {
	return s.store.CreateClass(ctx, Class{ID: uuid.NewString(), Name: name})
}

// Classes lists every class.
func (s *Service) Classes(ctx context.Context) ([]Class, error) {
	return s.store.ListClasses(ctx)
}

// StudentsByClass returns the class roster.
func (s *Service) StudentsByClass(ctx context.Context, classID string) ([]User, error) {
	return s.store.ListStudentsByClass(ctx, classID)
}

// User returns any user by id.
func (s *Service) User(ctx context.Context, id string) (User, error) {
	return s.store.GetUser(ctx, id)
}

// Student returns the user only when it is a student account.
func (s *Service) Student(ctx context.Context, id string) (User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	if user.Role != RoleStudent {
		return User{}, ErrNotFound
	}
	return user, nil
}
