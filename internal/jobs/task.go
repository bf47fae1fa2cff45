package jobs

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Task wraps one unit of cancellable background work with lifecycle flags.
// A Task never retries itself; retry policy belongs to the Scheduler.
type Task struct {
	name     string
	logger   *zap.SugaredLogger
	shutdown func() bool
	run      Work

	mu        sync.Mutex
	running   bool
	completed bool
	faulted   bool
}

// NewTask wraps run with lifecycle tracking. shutdown is polled by long-running
// work at safe points via ShutdownRequested; a nil check means never.
func NewTask(name string, logger *zap.SugaredLogger, shutdown func() bool, run Work) *Task {
	return &Task{
		name:     name,
		logger:   logger,
		shutdown: shutdown,
		run:      run,
	}
}

// Execute runs the wrapped work once. On failure it marks the task faulted,
// logs, and returns the error. Executing again resets the lifecycle flags.
func (t *Task) Execute(ctx context.Context) error {
	t.mu.Lock()
	t.running = true
	t.completed = false
	t.faulted = false
	t.mu.Unlock()

	err := t.run(ctx)

	t.mu.Lock()
	t.running = false
	if err != nil {
		t.faulted = true
	} else {
		t.completed = true
	}
	t.mu.Unlock()

	if err != nil {
		t.logger.Errorw("task faulted", "task", t.name, "error", err)
		return err
	}
	return nil
}

// ShutdownRequested reports whether the owning scheduler wants the task to
// wind down. Loops inside the work must poll this at safe points.
func (t *Task) ShutdownRequested() bool {
	if t.shutdown == nil {
		return false
	}
	return t.shutdown()
}

// Running reports whether Execute is in flight.
func (t *Task) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Completed reports whether the last Execute succeeded.
func (t *Task) Completed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed
}

// Faulted reports whether the last Execute failed.
func (t *Task) Faulted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.faulted
}
