// Package supervisor is the concurrency backbone of the daemon: it joins a
// set of already-running tasks with fail-fast semantics, so a dead background
// watcher is reported loudly instead of being silently swallowed.
//
// Cancellation is cooperative. A cancelled task observes its context at its
// next suspension point; nothing is force-killed, and the supervisor does not
// wait for a cancellation to be acknowledged.
package supervisor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/bctl/internal/metrics"
)

// WaitCap bounds one supervision round. On expiry, still-pending tasks are
// cancelled exactly as if the round had completed, so long-lived watchers
// supervised this way must be re-submitted each round.
const WaitCap = 5 * time.Second

// Task is a handle to one already-scheduled operation. Create with Go.
type Task struct {
	id     string
	name   string
	cancel context.CancelFunc
	done   chan struct{}
	err    error // written once, before done is closed
}

// Go schedules fn and returns its handle. The function receives a context
// cancelled by Cancel (or by cancelling the parent ctx) and must return its
// failure rather than log-and-continue: the supervisor's contract depends on
// errors surfacing.
func Go(ctx context.Context, name string, fn func(ctx context.Context) error) *Task {
	taskCtx, cancel := context.WithCancel(ctx)
	t := &Task{
		id:     uuid.NewString(),
		name:   name,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		t.err = fn(taskCtx)
	}()
	return t
}

// ID returns the task's unique identity, used for log correlation.
func (t *Task) ID() string { return t.id }

// Name returns the task's human-readable name.
func (t *Task) Name() string { return t.name }

// Cancel requests cooperative cancellation. It never blocks.
func (t *Task) Cancel() { t.cancel() }

// Done is closed when the task function has returned.
func (t *Task) Done() <-chan struct{} { return t.done }

// Finished reports whether the task function has returned.
func (t *Task) Finished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Err returns the task's failure. It is nil while the task is still running
// and nil after a successful return.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Supervisor joins task groups. The zero value works without metrics;
// construct with New to wire a recorder.
type Supervisor struct {
	recorder metrics.Recorder
	waitCap  time.Duration
}

// New creates a Supervisor. A nil recorder disables metrics.
func New(recorder metrics.Recorder) *Supervisor {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Supervisor{recorder: recorder, waitCap: WaitCap}
}

// WaitAndReraise joins tasks with the default supervisor.
func WaitAndReraise(ctx context.Context, tasks []*Task) error {
	return New(nil).WaitAndReraise(ctx, tasks)
}

// WaitAndReraise waits, bounded by WaitCap, until one task fails, all tasks
// succeed, or the cap elapses, whichever comes first. It then cancels every
// task that has not finished and returns the failure that ended the round,
// if any. When several tasks fail simultaneously, which failure is returned
// is unspecified; callers must not depend on one task's failure taking
// precedence over another's.
//
// If ctx is cancelled while waiting, ALL input tasks are cancelled (not just
// the pending subset) and the context's error is returned: cancellation
// outranks ordinary failure reporting. A timeout with no finished failure is
// not an error; the round proceeds to the cancel step as if every task had
// finished. A task that failed before the cap expired is re-raised even when
// the expiry is what ended the wait.
//
// Every path either returns nil (all succeeded or cap elapsed) or an error
// (a task failure or the supervisor's own cancellation). Failures are never
// swallowed.
func (s *Supervisor) WaitAndReraise(ctx context.Context, tasks []*Task) error {
	if s.recorder == nil {
		s.recorder = metrics.NoopRecorder{}
	}
	if s.waitCap == 0 {
		s.waitCap = WaitCap
	}
	if len(tasks) == 0 {
		s.recorder.IncSupervisionRound(metrics.ResultSuccess)
		return nil
	}

	finished := make(chan *Task)
	watchDone := make(chan struct{})
	defer close(watchDone)
	for _, t := range tasks {
		go func(t *Task) {
			select {
			case <-t.done:
				select {
				case finished <- t:
				case <-watchDone:
				}
			case <-watchDone:
			}
		}(t)
	}

	timer := time.NewTimer(s.waitCap)
	defer timer.Stop()

	var failure error
	var failedTask *Task
	timedOut := false
	remaining := len(tasks)

	for remaining > 0 && failure == nil && !timedOut {
		// Give our own cancellation priority over a simultaneously ready
		// task result.
		if err := ctx.Err(); err != nil {
			return s.cancelledWhileWaiting(tasks, err)
		}
		select {
		case <-ctx.Done():
			return s.cancelledWhileWaiting(tasks, ctx.Err())
		case t := <-finished:
			remaining--
			if t.err != nil {
				failure = t.err
				failedTask = t
			}
		case <-timer.C:
			timedOut = true
		}
	}

	// The cap can expire with a task's failure already on the record but not
	// yet drained from the channel. Finished failures are re-raised even
	// then; sweep before cancelling so a cancellation outcome is never
	// mistaken for one.
	if failure == nil && timedOut {
		for _, t := range tasks {
			if t.Finished() && t.err != nil {
				failure = t.err
				failedTask = t
				break
			}
		}
	}

	// Cancel stragglers best-effort; their acknowledgement is not awaited.
	for _, t := range tasks {
		if !t.Finished() {
			t.Cancel()
		}
	}

	if failure != nil {
		s.recorder.IncTaskFailure(failedTask.name)
		s.recorder.IncSupervisionRound(metrics.ResultFailed)
		return failure
	}
	if timedOut {
		s.recorder.IncSupervisionRound(metrics.ResultTimeout)
		return nil
	}
	s.recorder.IncSupervisionRound(metrics.ResultSuccess)
	return nil
}

// cancelledWhileWaiting cancels every input task and propagates the
// supervisor's own cancellation.
func (s *Supervisor) cancelledWhileWaiting(tasks []*Task, err error) error {
	for _, t := range tasks {
		t.Cancel()
	}
	s.recorder.IncSupervisionRound(metrics.ResultCanceled)
	return err
}
