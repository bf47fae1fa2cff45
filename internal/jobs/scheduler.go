package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"meeting-recorder/internal/domain"
)

const (
	// maxTotalAttempts is the hard ceiling on attempts per job, regardless of
	// any per-error cap carried by a retryable failure.
	maxTotalAttempts = 3
	// retryBackoffStep is multiplied by the attempt number between retries.
	retryBackoffStep = 30 * time.Second
	// completionPollInterval paces WaitForCompletion.
	completionPollInterval = time.Second
)

// Work is one detached unit of job execution.
type Work func(ctx context.Context) error

// Scheduler admits at most one job at a time. Admission is non-blocking: the
// busy flag is set before Submit returns, so two near-simultaneous calls can
// never both be accepted. Retries happen inside the detached execution and are
// never surfaced to the submitter.
type Scheduler struct {
	logger *zap.SugaredLogger
	events *EventBus
	sleep  func(time.Duration)

	mu                sync.Mutex
	busy              bool
	shutdownRequested bool
	current           domain.Job
}

// NewScheduler creates an idle scheduler.
func NewScheduler(logger *zap.SugaredLogger, events *EventBus) *Scheduler {
	return &Scheduler{
		logger: logger,
		events: events,
		sleep:  time.Sleep,
		current: domain.Job{
			Status: domain.JobStatusIdle,
		},
	}
}

// NewSchedulerForTests creates a scheduler with an injectable backoff sleep.
func NewSchedulerForTests(logger *zap.SugaredLogger, events *EventBus, sleep func(time.Duration)) *Scheduler {
	s := NewScheduler(logger, events)
	s.sleep = sleep
	return s
}

// Submit admits job and runs work asynchronously. It returns false immediately,
// with no side effect, when a job is already running or shutdown was requested.
func (s *Scheduler) Submit(job domain.Job, work Work) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy || s.shutdownRequested {
		return false
	}

	s.busy = true
	job.Status = domain.JobStatusRunning
	job.Attempts = 0
	s.current = job

	go s.run(job, work)
	return true
}

// run executes one admitted job and always releases the busy flag.
func (s *Scheduler) run(job domain.Job, work Work) {
	defer s.release()

	s.publishStatus(job.ID, domain.JobStatusRunning, "Job started")

	task := NewTask(job.ID, s.logger, s.ShutdownRequested, work)
	err := s.runWithRetry(job.ID, task)
	if err != nil {
		s.setStatus(domain.JobStatusFailed)
		s.publishEvent(Event{
			JobID:   job.ID,
			Type:    EventTypeError,
			Status:  domain.JobStatusFailed,
			Message: err.Error(),
		})
		s.logger.Errorw("job failed", "jobId", job.ID, "error", err)
		return
	}

	s.setStatus(domain.JobStatusDone)
	s.publishStatus(job.ID, domain.JobStatusDone, "Job completed")
}

// runWithRetry executes the task up to maxTotalAttempts times. Terminal errors
// stop immediately; retryable errors honor their own attempt cap when it is
// lower than the global ceiling. Backoff is linear: attempt * 30s.
func (s *Scheduler) runWithRetry(jobID string, task *Task) error {
	for attempt := 1; ; attempt++ {
		s.recordAttempt(attempt)

		err := task.Execute(context.Background())
		if err == nil {
			return nil
		}

		kind, maxAttempts := domain.Classify(err)
		if kind == domain.KindTerminal {
			s.logger.Errorw("terminal job error", "jobId", jobID, "attempt", attempt, "error", err)
			return err
		}
		if attempt >= maxTotalAttempts {
			s.logger.Errorw("job retries exhausted", "jobId", jobID, "attempts", attempt, "error", err)
			return err
		}
		if maxAttempts > 0 && attempt >= maxAttempts {
			s.logger.Errorw("job error attempt cap reached", "jobId", jobID, "attempts", attempt, "error", err)
			return err
		}

		backoff := time.Duration(attempt) * retryBackoffStep
		s.setStatus(domain.JobStatusRetrying)
		s.publishStatus(jobID, domain.JobStatusRetrying, "Retrying after backoff")
		s.logger.Warnw("job attempt failed, retrying",
			"jobId", jobID, "attempt", attempt, "backoff", backoff, "error", err)
		s.sleep(backoff)
		s.setStatus(domain.JobStatusRunning)
	}
}

// release resets the busy flag unconditionally after a job finishes.
func (s *Scheduler) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
}

// RequestShutdown rejects future submissions without interrupting an in-flight job.
func (s *Scheduler) RequestShutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdownRequested = true
}

// WaitForCompletion blocks until the current job (if any) has fully finished,
// polling the busy flag. It returns early when ctx is done.
func (s *Scheduler) WaitForCompletion(ctx context.Context) error {
	for {
		if !s.Busy() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		s.sleep(completionPollInterval)
	}
}

// Busy reports whether a job currently holds the scheduler.
func (s *Scheduler) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// ShutdownRequested reports whether shutdown has been requested.
func (s *Scheduler) ShutdownRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdownRequested
}

// Current returns a snapshot of the most recent job.
func (s *Scheduler) Current() domain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// setStatus updates the current job status snapshot.
func (s *Scheduler) setStatus(status domain.JobStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Status = status
}

// recordAttempt updates the attempt counter on the job snapshot.
func (s *Scheduler) recordAttempt(attempt int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Attempts = attempt
}

// publishStatus sends a normalized status event.
func (s *Scheduler) publishStatus(jobID string, status domain.JobStatus, message string) {
	s.publishEvent(Event{
		JobID:   jobID,
		Type:    EventTypeStatus,
		Status:  status,
		Message: message,
	})
}

// publishEvent stores the event when an event bus is configured.
func (s *Scheduler) publishEvent(event Event) {
	if s.events != nil {
		s.events.Publish(event)
	}
}
