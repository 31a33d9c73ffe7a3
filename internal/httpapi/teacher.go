package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rollcall/internal/attendance"
	"rollcall/internal/registry"
	"rollcall/internal/report"
	"rollcall/internal/session"
)

func (h *Handler) listClasses(c *gin.Context) {
	classes, err := h.registry.Classes(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if classes == nil {
		classes = []registry.Class{}
	}
	c.JSON(http.StatusOK, classes)
}

func (h *Handler) createClass(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "class name required")
		return
	}
	class, err := h.registry.CreateClass(c.Request.Context(), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

func (h *Handler) listStudents(c *gin.Context) {
	students, err := h.registry.StudentsByClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if students == nil {
		students = []registry.User{}
	}
	c.JSON(http.StatusOK, students)
}

// studentWithStats joins roster identity with the class summary numbers.
type studentWithStats struct {
	registry.User
	Attendance report.Stats `json:"attendance"`
}

func (h *Handler) listStudentsWithAttendance(c *gin.Context) {
	ctx := c.Request.Context()
	classID := c.Param("id")

	students, err := h.registry.StudentsByClass(ctx, classID)
	if err != nil {
		h.fail(c, err)
		return
	}
	summary, err := h.agg.ForClass(ctx, classID)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]studentWithStats, 0, len(students))
	for _, student := range students {
		out = append(out, studentWithStats{
			User:       student,
			Attendance: summary.StudentStats(student.ID),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) createStudent(c *gin.Context) {
	var req struct {
		ID       string `json:"id" binding:"required"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name" binding:"required"`
		Roll     string `json:"roll" binding:"required"`
		ClassID  string `json:"classId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "missing student fields")
		return
	}
	student, err := h.registry.CreateStudent(c.Request.Context(), req.ID, req.Password, req.Name, req.Roll, req.ClassID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, student)
}

func (h *Handler) openSession(c *gin.Context) {
	var req struct {
		ClassID string `json:"classId" binding:"required"`
		Subject string `json:"subject" binding:"required"`
		Timing  string `json:"timing" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "class, subject, and timing required")
		return
	}
	sess, err := h.sessions.Open(c.Request.Context(), req.ClassID, req.Subject, req.Timing)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) closeSession(c *gin.Context) {
	var req struct {
		SessionID string `json:"sessionId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "session id required")
		return
	}
	sess, err := h.sessions.Close(c.Request.Context(), req.SessionID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) activeSession(c *gin.Context) {
	sess, ok, err := h.sessions.ActiveSession(c.Request.Context(), c.Param("classId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// sessionWithCount is a history row: the session plus how many students
// marked it.
type sessionWithCount struct {
	session.Session
	PresentCount int `json:"presentCount"`
}

func (h *Handler) listSessions(c *gin.Context) {
	ctx := c.Request.Context()
	sessions, err := h.sessions.SessionsForClass(ctx, c.Param("classId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	session.SortForDisplay(sessions)

	out := make([]sessionWithCount, 0, len(sessions))
	for _, sess := range sessions {
		count, err := h.agg.SessionPresentCount(ctx, sess.ID)
		if err != nil {
			h.fail(c, err)
			return
		}
		out = append(out, sessionWithCount{Session: sess, PresentCount: count})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) sessionRecords(c *gin.Context) {
	records, err := h.ledger.RecordsForSession(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if records == nil {
		records = []attendance.Record{}
	}
	c.JSON(http.StatusOK, records)
}

// recordWithStudent joins a mark with the student's identity for the
// detail view.
type recordWithStudent struct {
	attendance.Record
	Student gin.H `json:"student"`
}

func (h *Handler) sessionDetails(c *gin.Context) {
	ctx := c.Request.Context()
	records, err := h.ledger.RecordsForSession(ctx, c.Param("sessionId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]recordWithStudent, 0, len(records))
	for _, rec := range records {
		student := gin.H{"id": rec.StudentID, "name": "Unknown", "roll": ""}
		if user, err := h.registry.Student(ctx, rec.StudentID); err == nil {
			student = gin.H{"id": user.ID, "name": user.Name, "roll": user.Roll}
		}
		out = append(out, recordWithStudent{Record: rec, Student: student})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) studentAttendance(c *gin.Context) {
	ctx := c.Request.Context()
	student, err := h.registry.Student(ctx, c.Param("studentId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	history, err := h.agg.StudentHistory(ctx, student.ClassID, student.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if history == nil {
		history = []report.SessionPresence{}
	}
	c.JSON(http.StatusOK, gin.H{
		"student": gin.H{"id": student.ID, "name": student.Name, "roll": student.Roll},
		"records": history,
	})
}
