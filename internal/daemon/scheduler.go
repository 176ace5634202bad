package daemon

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// reinitScheduler wraps gocron for the periodic re-init feature
// (periodic_init_sec). Disabled entirely when the interval is zero.
type reinitScheduler struct {
	scheduler gocron.Scheduler
}

// newReinitScheduler returns nil when intervalSec is zero or negative.
func newReinitScheduler(intervalSec int, trigger func()) (*reinitScheduler, error) {
	if intervalSec <= 0 {
		return nil, nil
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(time.Duration(intervalSec)*time.Second),
		gocron.NewTask(func() {
			slog.Debug("Periodic re-init timer fired")
			trigger()
		}),
		gocron.WithName("periodic-reinit"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create periodic re-init job: %w", err)
	}

	return &reinitScheduler{scheduler: s}, nil
}

// Start begins the scheduler.
func (s *reinitScheduler) Start() {
	slog.Info("Starting periodic re-init scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts down the scheduler.
func (s *reinitScheduler) Stop() error {
	return s.scheduler.Shutdown()
}
