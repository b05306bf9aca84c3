// Package metrics records generation metrics.
//
// Components receive a Recorder and default to NoopRecorder, so metrics can be
// enabled without touching call sites. The Prometheus implementation can be
// exported to a node_exporter textfile after a run.
package metrics

import "time"

// Outcome enumerates document results for counters.
type Outcome string

const (
	OutcomeWritten Outcome = "written"
	OutcomeFailed  Outcome = "failed"
)

// Recorder defines observability hooks for generation runs.
type Recorder interface {
	ObservePassDuration(d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncDocument(generator string, outcome Outcome)
	IncFailure(category string)
	AddResolved(n int)
	SetUnresolved(n int)
	IncBrokenLink(generator string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePassDuration(time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)  {}
func (NoopRecorder) IncDocument(string, Outcome)       {}
func (NoopRecorder) IncFailure(string)                 {}
func (NoopRecorder) AddResolved(int)                   {}
func (NoopRecorder) SetUnresolved(int)                 {}
func (NoopRecorder) IncBrokenLink(string)              {}
