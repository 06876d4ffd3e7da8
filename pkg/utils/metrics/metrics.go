// Package metrics exposes runtime counters via expvar.
package metrics

import "expvar"

var (
	EventsReceived   = expvar.NewInt("events_received")
	RunsStarted      = expvar.NewInt("runs_started")
	RunsSkipped      = expvar.NewInt("runs_skipped")
	RunsPublished    = expvar.NewInt("runs_published")
	RunsFailed       = expvar.NewInt("runs_failed")
	UploadsAttempted = expvar.NewInt("uploads_attempted")
	NotifyFailures   = expvar.NewInt("notify_failures")
)
