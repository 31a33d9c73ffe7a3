package report

import (
	"context"
	"math"

	"rollcall/internal/attendance"
	"rollcall/internal/session"
)

// Stats is a present/total pair with its rounded percentage.
type Stats struct {
	Present    int `json:"present"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// ClassSummary is per-student attendance over a class's whole session
// history.
type ClassSummary struct {
	TotalSessions int
	ByStudent     map[string]Stats
}

// SubjectStats is one row of a student's per-subject breakdown. Rows are
// keyed by the exact (subject, timing) pair: the same subject under a
// different timing string is a separate row.
type SubjectStats struct {
	Subject    string `json:"subject"`
	Timing     string `json:"timing"`
	Total      int    `json:"total"`
	Present    int    `json:"present"`
	Percentage int    `json:"percentage"`
}

// SessionPresence is one row of a student's per-session history.
type SessionPresence struct {
	ID      string         `json:"id"`
	Subject string         `json:"subject"`
	Timing  string         `json:"timing"`
	Date    string         `json:"date"`
	Status  session.Status `json:"status"`
	Present bool           `json:"present"`
}

// Aggregator derives attendance statistics from session history and ledger
// records. Pure read side: it owns no state and never writes.
type Aggregator struct {
	sessions session.Store
	records  attendance.Store
}

// NewAggregator creates an aggregator over the two stores.
func NewAggregator(sessions session.Store, records attendance.Store) *Aggregator {
	return &Aggregator{sessions: sessions, records: records}
}

// ForClass computes per-student present counts across every session of the
// class, any status. Students with no marks are absent from ByStudent;
// callers reading a missing student should treat it as zero present out of
// TotalSessions.
func (a *Aggregator) ForClass(ctx context.Context, classID string) (ClassSummary, error) {
	sessions, err := a.sessions.ListForClass(ctx, classID)
	if err != nil {
		return ClassSummary{}, err
	}
	present := map[string]int{}
	for _, sess := range sessions {
		records, err := a.records.ListBySession(ctx, sess.ID)
		if err != nil {
			return ClassSummary{}, err
		}
		for _, rec := range records {
			present[rec.StudentID]++
		}
	}
	total := len(sessions)
	byStudent := make(map[string]Stats, len(present))
	for studentID, n := range present {
		byStudent[studentID] = Stats{Present: n, Total: total, Percentage: percent(n, total)}
	}
	return ClassSummary{TotalSessions: total, ByStudent: byStudent}, nil
}

// StudentStats reads a single student's numbers out of a class summary,
// zero-valued when the student never marked.
func (s ClassSummary) StudentStats(studentID string) Stats {
	if st, ok := s.ByStudent[studentID]; ok {
		return st
	}
	return Stats{Present: 0, Total: s.TotalSessions, Percentage: percent(0, s.TotalSessions)}
}

// SubjectSummary groups a student's sessions by (subject, timing) and
// counts the ones the records mark present. Row order is first-encountered
// order scanning sessions as supplied.
func SubjectSummary(sessions []session.Session, records []attendance.Record) []SubjectStats {
	marked := make(map[string]bool, len(records))
	for _, rec := range records {
		marked[rec.SessionID] = true
	}

	type key struct{ subject, timing string }
	index := map[key]int{}
	var rows []SubjectStats
	for _, sess := range sessions {
		k := key{sess.Subject, sess.Timing}
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, SubjectStats{Subject: sess.Subject, Timing: sess.Timing})
		}
		rows[i].Total++
		if marked[sess.ID] {
			rows[i].Present++
		}
	}
	for i := range rows {
		rows[i].Percentage = percent(rows[i].Present, rows[i].Total)
	}
	return rows
}

// StudentHistory lists every session of the student's class with a present
// flag, in the class's session order.
func (a *Aggregator) StudentHistory(ctx context.Context, classID, studentID string) ([]SessionPresence, error) {
	sessions, err := a.sessions.ListForClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	records, err := a.records.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	marked := make(map[string]bool, len(records))
	for _, rec := range records {
		marked[rec.SessionID] = true
	}
	out := make([]SessionPresence, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, SessionPresence{
			ID:      sess.ID,
			Subject: sess.Subject,
			Timing:  sess.Timing,
			Date:    sess.Date,
			Status:  sess.Status,
			Present: marked[sess.ID],
		})
	}
	return out, nil
}

// SessionPresentCount returns how many students marked the session, for
// per-session display without loading the roster.
func (a *Aggregator) SessionPresentCount(ctx context.Context, sessionID string) (int, error) {
	records, err := a.records.ListBySession(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// percent rounds half up, and a zero total is simply zero.
func percent(present, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Floor(float64(present)/float64(total)*100 + 0.5))
}
