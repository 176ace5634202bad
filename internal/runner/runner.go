// Package runner invokes the external control binaries (ddcutil,
// brightnessctl, notify-send, ...) the daemon depends on. No shell is
// involved; commands are argument vectors and callers cannot rely on shell
// features like pipes or globbing.
package runner

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/bctl/internal/errors"
	"git.home.luguber.info/inful/bctl/internal/logfields"
	"git.home.luguber.info/inful/bctl/internal/metrics"
)

// Result is the captured outcome of one command invocation. Both streams are
// read to completion before Run returns; there is no streaming interface.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int // -1 when the process did not exit normally
}

// Runner executes external commands with shared logging and metrics wiring.
// The zero value is not usable; construct with New.
type Runner struct {
	logger   *slog.Logger
	recorder metrics.Recorder
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the log sink for non-zero exit reports. Without one,
// failures are only visible through the returned Result.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder metrics.Recorder) Option {
	return func(r *Runner) { r.recorder = recorder }
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run spawns argv[0] with the remaining arguments, waits for completion, and
// returns the captured output and exit status. A non-zero exit is logged on
// the configured logger (if any) and returned as an error only when failFast
// is set; otherwise the caller interprets the status itself.
func (r *Runner) Run(ctx context.Context, argv []string, failFast bool) (Result, error) {
	if len(argv) == 0 {
		return Result{ExitCode: -1}, errors.New(errors.CategoryExec, errors.SeverityError, "empty command")
	}

	runID := uuid.NewString()
	cmdline := strings.Join(argv, " ")
	r.debugf(ctx, "Running external command", logfields.Command(cmdline), logfields.TaskID(runID))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	r.recorder.ObserveCommandDuration(argv[0], time.Since(start))

	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode(cmd),
	}

	if runErr != nil && res.ExitCode < 0 {
		// The process never ran (not found, permissions) or was killed.
		r.recorder.IncCommandRun(argv[0], metrics.ResultFailed)
		if r.logger != nil {
			r.logger.ErrorContext(ctx, "Command failed to run",
				logfields.Command(cmdline), logfields.TaskID(runID), logfields.Error(runErr))
		}
		return res, errors.Wrap(runErr, errors.CategoryExec, errors.SeverityError, "failed to run command").
			WithContext("command", cmdline)
	}

	if res.ExitCode != 0 {
		r.recorder.IncCommandRun(argv[0], metrics.ResultFailed)
		if r.logger != nil {
			r.logger.ErrorContext(ctx, "Command returned non-zero exit status",
				logfields.Command(cmdline), logfields.TaskID(runID), logfields.ExitCode(res.ExitCode))
		}
		if failFast {
			return res, errors.New(errors.CategoryExec, errors.SeverityError, "command returned non-zero exit status").
				WithContext("command", cmdline).
				WithContext("exit_code", res.ExitCode)
		}
		return res, nil
	}

	r.recorder.IncCommandRun(argv[0], metrics.ResultSuccess)
	return res, nil
}

// RunString splits line on whitespace and runs it. There is no shell quoting
// support; arguments containing spaces need the argv form of Run.
func (r *Runner) RunString(ctx context.Context, line string, failFast bool) (Result, error) {
	return r.Run(ctx, strings.Fields(line), failFast)
}

// AssertExists fails with a fatal, non-retryable error when name cannot be
// located on PATH. Call once at startup for each external tool the daemon
// depends on, so missing dependencies are reported immediately rather than
// at first use.
func AssertExists(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return errors.Fatal(errors.CategoryExec, "external command ["+name+"] does not exist on our PATH").
			WithContext("command", name)
	}
	return nil
}

func (r *Runner) debugf(ctx context.Context, msg string, attrs ...slog.Attr) {
	if r.logger == nil {
		return
	}
	r.logger.LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
}

// exitCode extracts the process exit status: the real code after a normal
// exit, -1 when the process never ran or was killed.
func exitCode(cmd *exec.Cmd) int {
	if cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}
