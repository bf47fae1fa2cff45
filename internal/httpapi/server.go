// Package httpapi exposes job submission and status over HTTP. It is a thin
// shell around the scheduler: admission control stays in jobs.Scheduler.
package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"meeting-recorder/internal/domain"
	"meeting-recorder/internal/jobs"
)

// WorkFactory builds the detached work for one admitted job.
type WorkFactory interface {
	NewWork(job domain.Job) jobs.Work
}

// WorkFactoryFunc adapts a function to the WorkFactory interface.
type WorkFactoryFunc func(job domain.Job) jobs.Work

// NewWork calls f.
func (f WorkFactoryFunc) NewWork(job domain.Job) jobs.Work {
	return f(job)
}

// SubmitRequest is the job submission payload.
type SubmitRequest struct {
	MeetingURL string `json:"meetingUrl"`
	UserID     string `json:"userId"`
	TeamID     string `json:"teamId"`
}

// SubmitResponse reports the admission decision.
type SubmitResponse struct {
	Accepted bool        `json:"accepted"`
	Job      *domain.Job `json:"job,omitempty"`
	Reason   string      `json:"reason,omitempty"`
}

// StatusResponse reports scheduler availability.
type StatusResponse struct {
	Busy              bool       `json:"busy"`
	ShutdownRequested bool       `json:"shutdownRequested"`
	Job               domain.Job `json:"job"`
}

// Server serves the recording API.
type Server struct {
	echo        *echo.Echo
	scheduler   *jobs.Scheduler
	events      *jobs.EventBus
	factory     WorkFactory
	diagnostics func() domain.DiagnosticReport
	logger      *zap.SugaredLogger
}

// NewServer wires routes onto a fresh echo instance.
func NewServer(scheduler *jobs.Scheduler, events *jobs.EventBus, factory WorkFactory, diagnostics func() domain.DiagnosticReport, logger *zap.SugaredLogger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:        e,
		scheduler:   scheduler,
		events:      events,
		factory:     factory,
		diagnostics: diagnostics,
		logger:      logger,
	}

	e.POST("/api/recordings", s.submitRecording)
	e.GET("/api/status", s.status)
	e.GET("/api/events", s.eventsSince)
	e.GET("/api/diagnostics", s.diagnosticsReport)
	return s
}

// Start serves until Shutdown or a listener error.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops the HTTP listener gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// submitRecording admits one recording job. Admission is first-come: a busy
// scheduler yields 409, a draining one 503; neither has side effects.
func (s *Server) submitRecording(c echo.Context) error {
	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if strings.TrimSpace(req.MeetingURL) == "" || strings.TrimSpace(req.UserID) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "meetingUrl and userId are required")
	}

	if s.scheduler.ShutdownRequested() {
		return c.JSON(http.StatusServiceUnavailable, SubmitResponse{
			Accepted: false,
			Reason:   "shutting down",
		})
	}

	job := domain.Job{
		ID:     uuid.NewString(),
		UserID: req.UserID,
		TeamID: req.TeamID,
	}
	if !s.scheduler.Submit(job, s.factory.NewWork(job)) {
		return c.JSON(http.StatusConflict, SubmitResponse{
			Accepted: false,
			Reason:   "a recording is already running",
		})
	}

	s.logger.Infow("recording job admitted",
		"jobId", job.ID, "userId", job.UserID, "meetingUrl", req.MeetingURL)
	admitted := s.scheduler.Current()
	return c.JSON(http.StatusAccepted, SubmitResponse{
		Accepted: true,
		Job:      &admitted,
	})
}

// status reports scheduler availability and the latest job snapshot.
func (s *Server) status(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{
		Busy:              s.scheduler.Busy(),
		ShutdownRequested: s.scheduler.ShutdownRequested(),
		Job:               s.scheduler.Current(),
	})
}

// eventsSince returns events with sequence greater than the since parameter.
func (s *Server) eventsSince(c echo.Context) error {
	since := int64(0)
	if raw := c.QueryParam("since"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "since must be a non-negative integer")
		}
		since = parsed
	}

	events := s.events.Since(since)
	if events == nil {
		events = []jobs.Event{}
	}
	return c.JSON(http.StatusOK, events)
}

// diagnosticsReport returns the current settings readiness report.
func (s *Server) diagnosticsReport(c echo.Context) error {
	return c.JSON(http.StatusOK, s.diagnostics())
}
