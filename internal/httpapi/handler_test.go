package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rollcall/internal/attendance"
	"rollcall/internal/auth"
	"rollcall/internal/registry"
	"rollcall/internal/report"
	"rollcall/internal/session"
	"rollcall/internal/timetable"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router   *gin.Engine
	registry *registry.Service
	sessions *session.Manager
	opts     Options
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()

	sessionStore := session.NewMemoryStore()
	recordStore := attendance.NewMemoryStore()
	userStore := registry.NewMemoryStore()

	reg := registry.NewService(userStore, logger)
	sessions := session.NewManager(sessionStore, logger)
	ledger := attendance.NewLedger(recordStore, sessionStore, logger)
	agg := report.NewAggregator(sessionStore, recordStore)

	index := timetable.NewIndex([]timetable.Entry{
		{Day: time.Monday, Start: 9 * 60, End: 10 * 60, Subject: "DBMS", Kind: timetable.Lecture, ClassName: "SE-A"},
		{Day: time.Monday, Start: 11*60 + 15, End: 12*60 + 15, Subject: "OS", Batch: "A2", Kind: timetable.Practical, ClassName: "SE-A"},
	})
	resolver := timetable.NewResolver(index, timetable.Lunch{Start: 13*60 + 15, End: 13*60 + 45})

	opts := Options{
		JWTIssuer:     "rollcall-test",
		JWTSigningKey: "test-secret",
		AccessTTL:     time.Hour,
	}
	h := New(opts, reg, sessions, ledger, agg, resolver, index,
		auth.NewMemoryRevocationList(), nil, logger)

	ctx := context.Background()
	if err := reg.SeedTeacher(ctx, "admin", "admin123"); err != nil {
		t.Fatalf("seed teacher: %v", err)
	}
	for _, s := range []struct{ id, name, roll string }{
		{"stu1", "Asha", "17"},
		{"stu2", "Vikram", "18"},
		{"stu3", "Meera", "19"},
	} {
		if _, err := reg.CreateStudent(ctx, s.id, "pass", s.name, s.roll, "class-x"); err != nil {
			t.Fatalf("create student %s: %v", s.id, err)
		}
	}

	return &testServer{router: h.Router(), registry: reg, sessions: sessions, opts: opts}
}

func (s *testServer) token(t *testing.T, userID, role string) string {
	t.Helper()
	token, _, err := auth.Issue(userID, role, s.opts.JWTIssuer, s.opts.JWTSigningKey, s.opts.AccessTTL)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestLoginAndMe(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, "POST", "/api/auth/login", "", gin.H{"role": "teacher", "id": "admin", "password": "admin123"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var login struct {
		Token string `json:"token"`
		Role  string `json:"role"`
		ID    string `json:"id"`
	}
	decode(t, w, &login)
	if login.Token == "" || login.Role != "teacher" || login.ID != "admin" {
		t.Fatalf("login body: %+v", login)
	}

	w = s.do(t, "GET", "/api/me", login.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: %d", w.Code)
	}
	var me struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	}
	decode(t, w, &me)
	if me.ID != "admin" || me.Role != "teacher" {
		t.Errorf("me body: %+v", me)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, "POST", "/api/auth/login", "", gin.H{"role": "teacher", "id": "admin", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad password: %d", w.Code)
	}
	w = s.do(t, "POST", "/api/auth/login", "", gin.H{"role": "teacher", "id": "admin"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing field: %d", w.Code)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, "admin", "teacher")

	if w := s.do(t, "GET", "/api/me", token, nil); w.Code != http.StatusOK {
		t.Fatalf("me before logout: %d", w.Code)
	}
	if w := s.do(t, "POST", "/api/auth/logout", token, nil); w.Code != http.StatusOK {
		t.Fatalf("logout: %d", w.Code)
	}
	if w := s.do(t, "GET", "/api/me", token, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("me after logout: %d", w.Code)
	}
}

func TestAuthGates(t *testing.T) {
	s := newTestServer(t)

	if w := s.do(t, "GET", "/api/me", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: %d", w.Code)
	}
	student := s.token(t, "stu1", "student")
	if w := s.do(t, "POST", "/api/sessions/open", student, gin.H{"classId": "x", "subject": "s", "timing": "t"}); w.Code != http.StatusForbidden {
		t.Errorf("student on teacher route: %d", w.Code)
	}
	teacher := s.token(t, "admin", "teacher")
	if w := s.do(t, "POST", "/api/student/attendance", teacher, nil); w.Code != http.StatusForbidden {
		t.Errorf("teacher on student route: %d", w.Code)
	}
}

func TestOpenSessionValidation(t *testing.T) {
	s := newTestServer(t)
	teacher := s.token(t, "admin", "teacher")

	w := s.do(t, "POST", "/api/sessions/open", teacher, gin.H{"classId": "class-x"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing fields: %d", w.Code)
	}
}

func TestCloseUnknownSession(t *testing.T) {
	s := newTestServer(t)
	teacher := s.token(t, "admin", "teacher")

	w := s.do(t, "POST", "/api/sessions/close", teacher, gin.H{"sessionId": "nope"})
	if w.Code != http.StatusNotFound {
		t.Errorf("close unknown: %d", w.Code)
	}
}

func TestMarkWithoutActiveSession(t *testing.T) {
	s := newTestServer(t)
	student := s.token(t, "stu1", "student")

	w := s.do(t, "POST", "/api/student/attendance", student, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("mark without session: %d %s", w.Code, w.Body.String())
	}
}

// TestSessionLifecycle drives the full flow over HTTP: open, idempotent
// re-open, two marks (one repeated), present count, close, rejected mark.
func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t)
	teacher := s.token(t, "admin", "teacher")
	stu1 := s.token(t, "stu1", "student")
	stu2 := s.token(t, "stu2", "student")
	stu3 := s.token(t, "stu3", "student")

	w := s.do(t, "POST", "/api/sessions/open", teacher, gin.H{
		"classId": "class-x", "subject": "DBMS", "timing": "09:00 - 10:00",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("open: %d %s", w.Code, w.Body.String())
	}
	var opened session.Session
	decode(t, w, &opened)
	if opened.Status != session.StatusOpen || opened.Subject != "DBMS" {
		t.Fatalf("opened: %+v", opened)
	}

	// idempotent re-open keeps the first session and its fields
	w = s.do(t, "POST", "/api/sessions/open", teacher, gin.H{
		"classId": "class-x", "subject": "OS", "timing": "10:00 - 11:00",
	})
	var reopened session.Session
	decode(t, w, &reopened)
	if reopened.ID != opened.ID || reopened.Subject != "DBMS" {
		t.Fatalf("re-open: %+v", reopened)
	}

	// students see the active session
	w = s.do(t, "GET", "/api/student/session", stu1, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("student session: %d", w.Code)
	}
	var active session.Session
	decode(t, w, &active)
	if active.ID != opened.ID {
		t.Fatalf("active: %+v", active)
	}

	// two students mark; one of them twice
	for _, token := range []string{stu1, stu2, stu2} {
		if w := s.do(t, "POST", "/api/student/attendance", token, nil); w.Code != http.StatusOK {
			t.Fatalf("mark: %d %s", w.Code, w.Body.String())
		}
	}

	w = s.do(t, "GET", "/api/sessions/class/class-x", teacher, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list sessions: %d", w.Code)
	}
	var history []struct {
		ID           string `json:"id"`
		PresentCount int    `json:"presentCount"`
	}
	decode(t, w, &history)
	if len(history) != 1 || history[0].PresentCount != 2 {
		t.Fatalf("history: %+v", history)
	}

	// detail view joins student identity
	w = s.do(t, "GET", "/api/attendance/session/"+opened.ID+"/details", teacher, nil)
	var details []struct {
		StudentID string `json:"studentId"`
		Student   struct {
			Name string `json:"name"`
		} `json:"student"`
	}
	decode(t, w, &details)
	if len(details) != 2 || details[0].Student.Name != "Asha" {
		t.Fatalf("details: %+v", details)
	}

	// close, then a further mark is rejected and records stay at 2
	w = s.do(t, "POST", "/api/sessions/close", teacher, gin.H{"sessionId": opened.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("close: %d", w.Code)
	}
	var closed session.Session
	decode(t, w, &closed)
	if closed.Status != session.StatusClosed || closed.ClosedAt == nil {
		t.Fatalf("closed: %+v", closed)
	}

	if w := s.do(t, "POST", "/api/student/attendance", stu3, nil); w.Code != http.StatusForbidden {
		t.Errorf("mark after close: %d", w.Code)
	}
	w = s.do(t, "GET", "/api/attendance/session/"+opened.ID, teacher, nil)
	var records []attendance.Record
	decode(t, w, &records)
	if len(records) != 2 {
		t.Errorf("records after close: %d", len(records))
	}
}

func TestStudentsWithAttendance(t *testing.T) {
	s := newTestServer(t)
	teacher := s.token(t, "admin", "teacher")
	stu1 := s.token(t, "stu1", "student")

	// one session, stu1 present
	w := s.do(t, "POST", "/api/sessions/open", teacher, gin.H{
		"classId": "class-x", "subject": "DBMS", "timing": "09:00 - 10:00",
	})
	var opened session.Session
	decode(t, w, &opened)
	s.do(t, "POST", "/api/student/attendance", stu1, nil)
	s.do(t, "POST", "/api/sessions/close", teacher, gin.H{"sessionId": opened.ID})

	w = s.do(t, "GET", "/api/classes/class-x/students/attendance", teacher, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("roster: %d", w.Code)
	}
	var roster []struct {
		ID         string       `json:"id"`
		Attendance report.Stats `json:"attendance"`
	}
	decode(t, w, &roster)
	if len(roster) != 3 {
		t.Fatalf("roster size: %d", len(roster))
	}
	byID := map[string]report.Stats{}
	for _, row := range roster {
		byID[row.ID] = row.Attendance
	}
	if byID["stu1"] != (report.Stats{Present: 1, Total: 1, Percentage: 100}) {
		t.Errorf("stu1 = %+v", byID["stu1"])
	}
	if byID["stu2"] != (report.Stats{Present: 0, Total: 1, Percentage: 0}) {
		t.Errorf("stu2 = %+v", byID["stu2"])
	}
}

func TestTeacherViewOfStudent(t *testing.T) {
	s := newTestServer(t)
	teacher := s.token(t, "admin", "teacher")

	w := s.do(t, "GET", "/api/teachers/students/ghost/attendance", teacher, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown student: %d", w.Code)
	}
	// a teacher id is not a student
	w = s.do(t, "GET", "/api/teachers/students/admin/attendance", teacher, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("teacher as student: %d", w.Code)
	}

	w = s.do(t, "GET", "/api/teachers/students/stu1/attendance", teacher, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("student view: %d", w.Code)
	}
	var view struct {
		Student struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"student"`
		Records []report.SessionPresence `json:"records"`
	}
	decode(t, w, &view)
	if view.Student.ID != "stu1" || view.Student.Name != "Asha" {
		t.Errorf("student: %+v", view.Student)
	}
	if view.Records == nil {
		t.Error("records must be an empty array, not null")
	}
}

func TestTimetableEndpoints(t *testing.T) {
	s := newTestServer(t)
	student := s.token(t, "stu1", "student")

	w := s.do(t, "GET", "/api/timetable/day/Monday", student, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("day: %d", w.Code)
	}
	var slots []slotDTO
	decode(t, w, &slots)
	if len(slots) != 2 || slots[0].Timing != "09:00 - 10:00" {
		t.Fatalf("slots: %+v", slots)
	}

	if w := s.do(t, "GET", "/api/timetable/day/Funday", student, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad day: %d", w.Code)
	}

	w = s.do(t, "GET", "/api/timetable/now", student, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("now: %d", w.Code)
	}
	var now struct {
		Lunch *bool `json:"lunch"`
	}
	decode(t, w, &now)
	if now.Lunch == nil {
		t.Error("lunch flag missing")
	}
}

func TestClassCRUD(t *testing.T) {
	s := newTestServer(t)
	teacher := s.token(t, "admin", "teacher")

	w := s.do(t, "POST", "/api/classes", teacher, gin.H{"name": "SE-A"})
	if w.Code != http.StatusOK {
		t.Fatalf("create class: %d", w.Code)
	}
	var created registry.Class
	decode(t, w, &created)

	// same name returns the same class
	w = s.do(t, "POST", "/api/classes", teacher, gin.H{"name": "SE-A"})
	var again registry.Class
	decode(t, w, &again)
	if again.ID != created.ID {
		t.Errorf("class not idempotent: %s vs %s", again.ID, created.ID)
	}

	w = s.do(t, "GET", "/api/classes", teacher, nil)
	var classes []registry.Class
	decode(t, w, &classes)
	if len(classes) != 1 {
		t.Errorf("classes: %+v", classes)
	}

	// duplicate student id is a caller error
	w = s.do(t, "POST", "/api/students", teacher, gin.H{
		"id": "stu1", "password": "p", "name": "Dup", "roll": "1", "classId": "class-x",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate student: %d", w.Code)
	}
}
