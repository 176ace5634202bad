package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once              sync.Once
	commandDuration   *prom.HistogramVec
	commandRuns       *prom.CounterVec
	stateWrites       *prom.CounterVec
	supervisionRounds *prom.CounterVec
	taskFailures      *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.commandDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "bctld",
			Name:      "command_duration_seconds",
			Help:      "Duration of external control command invocations",
			Buckets:   prom.DefBuckets,
		}, []string{"command"})
		pr.commandRuns = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "bctld",
			Name:      "command_runs_total",
			Help:      "External command invocations by outcome",
		}, []string{"command", "result"})
		pr.stateWrites = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "bctld",
			Name:      "state_writes_total",
			Help:      "Persisted state flushes by outcome",
		}, []string{"result"})
		pr.supervisionRounds = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "bctld",
			Name:      "supervision_rounds_total",
			Help:      "Task supervision rounds by outcome",
		}, []string{"result"})
		pr.taskFailures = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "bctld",
			Name:      "task_failures_total",
			Help:      "Supervised task failures by task name",
		}, []string{"task"})
		reg.MustRegister(pr.commandDuration, pr.commandRuns, pr.stateWrites, pr.supervisionRounds, pr.taskFailures)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveCommandDuration(command string, d time.Duration) {
	if p == nil || p.commandDuration == nil {
		return
	}
	p.commandDuration.WithLabelValues(command).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCommandRun(command string, result ResultLabel) {
	if p == nil || p.commandRuns == nil {
		return
	}
	p.commandRuns.WithLabelValues(command, string(result)).Inc()
}

func (p *PrometheusRecorder) IncStateWrite(result ResultLabel) {
	if p == nil || p.stateWrites == nil {
		return
	}
	p.stateWrites.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncSupervisionRound(result ResultLabel) {
	if p == nil || p.supervisionRounds == nil {
		return
	}
	p.supervisionRounds.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncTaskFailure(task string) {
	if p == nil || p.taskFailures == nil {
		return
	}
	p.taskFailures.WithLabelValues(task).Inc()
}
