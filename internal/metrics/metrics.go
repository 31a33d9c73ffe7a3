package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain counters exposed on /metrics alongside the default process and Go
// collectors.
var (
	SessionsOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rollcall_sessions_opened_total",
		Help: "Attendance sessions opened.",
	})
	SessionsClosed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rollcall_sessions_closed_total",
		Help: "Attendance sessions closed.",
	})
	MarksRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rollcall_marks_recorded_total",
		Help: "Attendance records created.",
	})
	MarkRepeats = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rollcall_mark_repeats_total",
		Help: "Idempotent mark calls that matched an existing record.",
	})
)
