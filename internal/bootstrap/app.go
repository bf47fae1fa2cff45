// Package bootstrap wires settings, logging, the scheduler, and the HTTP
// surface into a runnable service.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"meeting-recorder/internal/capture"
	"meeting-recorder/internal/config"
	"meeting-recorder/internal/diagnostics"
	"meeting-recorder/internal/domain"
	"meeting-recorder/internal/httpapi"
	"meeting-recorder/internal/jobs"
	"meeting-recorder/internal/record"
	"meeting-recorder/internal/stream"
)

// drainTimeout bounds how long shutdown waits for an in-flight recording.
const drainTimeout = 30 * time.Second

// App wires configuration, scheduling, recording, and the HTTP API.
type App struct {
	Settings  domain.Settings
	Store     config.Store
	Scheduler *jobs.Scheduler
	Events    *jobs.EventBus

	collaborator capture.Collaborator
	sink         record.Sink
	server       *httpapi.Server
	checker      *diagnostics.Checker
	logger       *zap.SugaredLogger
}

// New builds the application with persisted settings from the user's home.
func New(collaborator capture.Collaborator, sink record.Sink) (*App, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve user home: %w", err)
	}

	store := config.NewJSONStore(filepath.Join(homeDir, ".meeting-recorder", "settings.json"))
	return NewWithStore(store, collaborator, sink)
}

// NewWithStore builds the application against an explicit settings store.
func NewWithStore(store config.Store, collaborator capture.Collaborator, sink record.Sink) (*App, error) {
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	base, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	logger := base.Sugar()

	checker := diagnostics.NewChecker()
	report := checker.Run(settings)
	for _, item := range report.Items {
		if item.Status == domain.DiagnosticStatusFail {
			logger.Warnw("diagnostic check failed", "check", item.ID, "message", item.Message)
		}
	}

	events := jobs.NewEventBus(1000)
	app := &App{
		Settings:     settings,
		Store:        store,
		Scheduler:    jobs.NewScheduler(logger, events),
		Events:       events,
		collaborator: collaborator,
		sink:         sink,
		checker:      checker,
		logger:       logger,
	}
	app.server = httpapi.NewServer(app.Scheduler, events, app, app.Diagnostics, logger)
	return app, nil
}

// NewWork builds the detached execution for one admitted job: a full
// recording run against the capture collaborator, with audio streaming when
// configured. Implements httpapi.WorkFactory.
func (a *App) NewWork(job domain.Job) jobs.Work {
	settings := a.Settings
	return func(ctx context.Context) error {
		var streamer record.Streamer
		if settings.Streaming.Enabled {
			streamer = stream.NewSession(settings.Streaming, job.UserID, a.logger)
		}

		orchestrator := record.NewOrchestrator(a.collaborator, a.sink, streamer, a.logger, record.Options{
			Job:                job,
			MaxDuration:        settings.Recording.MaxDuration(),
			InactivityLimit:    settings.Recording.InactivityLimit(),
			AudioChunkInterval: settings.Streaming.ChunkDuration(),
		})

		result, err := orchestrator.Run(ctx)
		if err != nil {
			return err
		}

		a.Events.Publish(jobs.Event{
			JobID:     job.ID,
			Type:      jobs.EventTypeResult,
			Status:    domain.JobStatusDone,
			Message:   "Recording finished",
			Trigger:   string(result.Trigger),
			SessionID: result.SessionID,
			Duration:  result.Duration.String(),
		})
		return nil
	}
}

// Diagnostics reruns the readiness checks against current settings.
func (a *App) Diagnostics() domain.DiagnosticReport {
	return a.checker.Run(a.Settings)
}

// Run serves the HTTP API until SIGINT/SIGTERM, then drains: no new jobs are
// admitted and shutdown waits for the in-flight recording's full teardown.
func (a *App) Run() error {
	defer func() { _ = a.logger.Sync() }()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.server.Start(a.Settings.ListenAddr)
	}()
	a.logger.Infow("meeting recorder started", "addr", a.Settings.ListenAddr)

	select {
	case sig := <-signals:
		a.logger.Infow("shutdown signal received", "signal", sig.String())
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	}

	a.Scheduler.RequestShutdown()

	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := a.Scheduler.WaitForCompletion(drainCtx); err != nil {
		a.logger.Warnw("shutdown drain timed out with a job still running", "error", err)
	}

	if err := a.server.Shutdown(drainCtx); err != nil {
		a.logger.Warnw("http shutdown", "error", err)
	}
	a.logger.Infow("meeting recorder stopped")
	return nil
}
