// Package services – Prometheus collectors for the scheduled jobs.
//
// Kept separate from the HTTP middleware metrics: these count job-level
// outcomes, which matter even when a run is triggered by the in-process
// scheduler rather than over HTTP.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// cronRuns counts completed job invocations by job name and run status.
	cronRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cron_runs_total",
			Help: "Total scheduled job runs by function name and run status.",
		},
		[]string{"job", "status"},
	)

	// notificationsCreated counts proactive notifications inserted by the notifier.
	notificationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coach_notifications_created_total",
			Help: "Total proactive coach notifications created.",
		},
	)

	// notesCreated counts weekly digest notes inserted by the digest job.
	notesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coach_notes_created_total",
			Help: "Total weekly summary notes created.",
		},
	)
)

func init() {
	prometheus.MustRegister(cronRuns, notificationsCreated, notesCreated)
}
