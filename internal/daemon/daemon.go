// Package daemon runs the supervision loop the rest of bctld is built on.
// Domain collaborators (the udev monitor, the IPC command socket, the
// brightness controllers) register long-lived watcher functions; the daemon
// re-submits them each supervision round so a failure in any one of them
// stops the whole process loudly instead of leaving a dead watcher behind.
package daemon

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/bctl/internal/config"
	"git.home.luguber.info/inful/bctl/internal/errors"
	"git.home.luguber.info/inful/bctl/internal/logfields"
	"git.home.luguber.info/inful/bctl/internal/metrics"
	"git.home.luguber.info/inful/bctl/internal/runner"
	"git.home.luguber.info/inful/bctl/internal/state"
	"git.home.luguber.info/inful/bctl/internal/supervisor"
)

// WatcherFunc is a long-lived task body. It must watch ctx and return when
// cancelled; returning an error fails the current supervision round.
type WatcherFunc func(ctx context.Context) error

type watcher struct {
	name string
	fn   WatcherFunc
}

// Daemon owns the effective configuration, the persisted state store, and
// the supervision loop.
type Daemon struct {
	cfg        *config.Config
	configPath string
	store      *state.Store
	sup        *supervisor.Supervisor
	runner     *runner.Runner
	recorder   metrics.Recorder
	watchers   []watcher
	reinit     chan struct{}
	onReinit   func(ctx context.Context) error
}

// New creates a daemon around an already-loaded configuration. configPath is
// the override file location, watched for edits. A nil recorder disables
// metrics.
func New(cfg *config.Config, configPath string, recorder metrics.Recorder) *Daemon {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Daemon{
		cfg:        cfg,
		configPath: configPath,
		store:      state.NewStore(cfg.StateFilePath, recorder),
		sup:        supervisor.New(recorder),
		runner:     runner.New(runner.WithLogger(slog.Default()), runner.WithRecorder(recorder)),
		recorder:   recorder,
		reinit:     make(chan struct{}, 1),
	}
}

// Config returns the effective configuration.
func (d *Daemon) Config() *config.Config { return d.cfg }

// Runner returns the shared command runner for domain collaborators.
func (d *Daemon) Runner() *runner.Runner { return d.runner }

// RegisterWatcher adds a long-lived task re-submitted every supervision
// round. Register before calling Run.
func (d *Daemon) RegisterWatcher(name string, fn WatcherFunc) {
	d.watchers = append(d.watchers, watcher{name: name, fn: fn})
}

// OnReinit sets the hook invoked when a re-init is due (periodic timer or
// config file edit). Domain logic re-detects displays here.
func (d *Daemon) OnReinit(fn func(ctx context.Context) error) {
	d.onReinit = fn
}

// TriggerReinit requests a re-init; it never blocks. Coalesces with any
// already-pending request.
func (d *Daemon) TriggerReinit() {
	select {
	case d.reinit <- struct{}{}:
	default:
	}
}

// CheckExternalCommands asserts every external binary the configuration
// depends on exists on PATH. The returned errors are fatal: the host
// supervisor must not restart on them.
func (d *Daemon) CheckExternalCommands() error {
	for _, bin := range d.cfg.RequiredBinaries() {
		if err := runner.AssertExists(bin); err != nil {
			return err
		}
	}
	return nil
}

// Run drives supervision rounds until ctx is cancelled or a watcher fails.
// Each round schedules the config watcher, the re-init consumer, and every
// registered watcher, then joins them with the fail-fast supervisor. The
// supervisor's wait cap cancels long-lived watchers each round; they are
// re-submitted at the top of the next one. The persisted state is flushed on
// the way out regardless of the exit reason.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.CheckExternalCommands(); err != nil {
		return err
	}

	sched, err := newReinitScheduler(d.cfg.PeriodicInitSec, d.TriggerReinit)
	if err != nil {
		return err
	}
	if sched != nil {
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				slog.Warn("Failed to stop re-init scheduler", logfields.Error(err))
			}
		}()
	}

	defer d.flushState()

	slog.Info("Daemon supervision loop starting",
		slog.Int("watchers", len(d.watchers)),
		logfields.Path(d.configPath))

	for {
		if err := ctx.Err(); err != nil {
			slog.Info("Shutdown requested, leaving supervision loop")
			return nil
		}

		tasks := d.spawnRound(ctx)
		if err := d.sup.WaitAndReraise(ctx, tasks); err != nil {
			if ctx.Err() != nil {
				slog.Info("Shutdown requested, leaving supervision loop")
				return nil
			}
			return errors.Wrap(err, errors.CategoryDaemon, errors.SeverityError, "supervised task failed")
		}
	}
}

// spawnRound schedules one round's task set.
func (d *Daemon) spawnRound(ctx context.Context) []*supervisor.Task {
	tasks := []*supervisor.Task{
		supervisor.Go(ctx, "config-watch", d.watchConfigFile),
		supervisor.Go(ctx, "reinit", d.consumeReinit),
	}
	for _, w := range d.watchers {
		tasks = append(tasks, supervisor.Go(ctx, w.name, w.fn))
	}
	return tasks
}

// consumeReinit waits for one re-init request, runs the hook, and returns.
// Ending the round this way makes the supervisor cancel and re-submit every
// watcher, which is exactly what a re-init needs.
func (d *Daemon) consumeReinit(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case <-d.reinit:
	}

	slog.Info("Re-init requested")
	if d.onReinit == nil {
		return nil
	}
	return d.onReinit(ctx)
}

// flushState persists the in-memory state record.
func (d *Daemon) flushState() {
	if err := d.store.Write(d.cfg.State.LastSetBrightness); err != nil {
		slog.Error("Failed to store state", logfields.Error(err))
		return
	}
	slog.Debug("State stored", logfields.Path(d.store.Path()))
}
