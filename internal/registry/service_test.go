package registry

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func newTestService() *Service {
	return NewService(NewMemoryStore(), zap.NewNop())
}

func TestSeedTeacherIsIdempotent(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	if err := s.SeedTeacher(ctx, "admin", "admin123"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := s.SeedTeacher(ctx, "admin", "different"); err != nil {
		t.Fatalf("seed again: %v", err)
	}
	// the original password still works
	if _, err := s.Authenticate(ctx, RoleTeacher, "admin", "admin123"); err != nil {
		t.Errorf("authenticate: %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	if err := s.SeedTeacher(ctx, "admin", "admin123"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := s.CreateStudent(ctx, "stu1", "pass1", "Asha", "17", "class-x"); err != nil {
		t.Fatalf("create student: %v", err)
	}

	cases := []struct {
		role     Role
		id, pass string
		wantErr  bool
	}{
		{RoleTeacher, "admin", "admin123", false},
		{RoleStudent, "stu1", "pass1", false},
		{RoleTeacher, "admin", "wrong", true},
		{RoleStudent, "admin", "admin123", true}, // role mismatch
		{RoleStudent, "ghost", "pass1", true},
	}
	for _, c := range cases {
		_, err := s.Authenticate(ctx, c.role, c.id, c.pass)
		if c.wantErr && !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("%s/%s: want ErrInvalidCredentials, got %v", c.role, c.id, err)
		}
		if !c.wantErr && err != nil {
			t.Errorf("%s/%s: %v", c.role, c.id, err)
		}
	}
}

func TestCreateStudentRejectsDuplicateID(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	if _, err := s.CreateStudent(ctx, "stu1", "pass1", "Asha", "17", "class-x"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateStudent(ctx, "stu1", "pass2", "Other", "18", "class-y"); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("want ErrDuplicateID, got %v", err)
	}
}

func TestCreateClassIdempotentByName(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	first, err := s.CreateClass(ctx, "SE-A")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := s.CreateClass(ctx, "SE-A")
	if err != nil {
		t.Fatalf("create again: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("same name must return the same class: %s vs %s", second.ID, first.ID)
	}
	classes, _ := s.Classes(ctx)
	if len(classes) != 1 {
		t.Errorf("expected 1 class, got %d", len(classes))
	}
}

func TestStudentLookupExcludesTeachers(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	s.SeedTeacher(ctx, "admin", "admin123")
	if _, err := s.Student(ctx, "admin"); !errors.Is(err, ErrNotFound) {
		t.Errorf("teacher id must not resolve as student, got %v", err)
	}
	if _, err := s.Student(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id: want ErrNotFound, got %v", err)
	}
}
