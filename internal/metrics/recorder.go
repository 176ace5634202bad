// Package metrics provides observability hooks for the daemon's bootstrap
// layer. Components receive a Recorder through dependency injection; the
// NoopRecorder default keeps metrics zero-overhead until a Prometheus
// registry is wired in (see PrometheusRecorder).
package metrics

import "time"

// ResultLabel enumerates outcome categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
	ResultTimeout  ResultLabel = "timeout"
)

// Recorder defines observability hooks for command execution, state
// persistence and task supervision. All methods must be safe for nil
// receivers when using the NoopRecorder (allowing optional injection).
type Recorder interface {
	ObserveCommandDuration(command string, d time.Duration)
	IncCommandRun(command string, result ResultLabel)
	IncStateWrite(result ResultLabel)
	IncSupervisionRound(result ResultLabel)
	IncTaskFailure(task string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveCommandDuration(string, time.Duration) {}
func (NoopRecorder) IncCommandRun(string, ResultLabel)            {}
func (NoopRecorder) IncStateWrite(ResultLabel)                    {}
func (NoopRecorder) IncSupervisionRound(ResultLabel)              {}
func (NoopRecorder) IncTaskFailure(string)                        {}
