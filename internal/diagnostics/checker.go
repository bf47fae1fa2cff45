package diagnostics

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"meeting-recorder/internal/domain"
)

// Checker validates the configured streaming and recording surface.
type Checker struct {
	now func() time.Time
}

// NewChecker builds a checker using the real clock.
func NewChecker() *Checker {
	return &Checker{now: time.Now}
}

// Run executes all readiness checks and returns a combined report.
func (c *Checker) Run(settings domain.Settings) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkListenAddr(settings.ListenAddr),
		c.checkStreamEndpoint(settings.Streaming),
		c.checkAudioFormat(settings.Streaming),
		c.checkRecordingBounds(settings.Recording),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: c.now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkListenAddr validates the HTTP listen address.
func (c *Checker) checkListenAddr(addr string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "listen_addr",
		Name: "Listen address",
	}

	if strings.TrimSpace(addr) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Listen address is empty."
		item.Hint = "Set listenAddr to host:port, e.g. :8080."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Serving on %s", addr)
	return item
}

// checkStreamEndpoint validates the streaming endpoint URL when streaming is on.
func (c *Checker) checkStreamEndpoint(streaming domain.StreamingSettings) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "stream_endpoint",
		Name: "Streaming endpoint",
	}

	if !streaming.Enabled {
		item.Status = domain.DiagnosticStatusPass
		item.Message = "Audio streaming is disabled."
		return item
	}

	parsed, err := url.Parse(strings.TrimSpace(streaming.Endpoint))
	if err != nil || parsed.Host == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Endpoint is not a valid URL: %s", streaming.Endpoint)
		item.Hint = "Set a ws:// or wss:// endpoint for the transcription consumer."
		return item
	}
	if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Endpoint scheme must be ws or wss, got %q", parsed.Scheme)
		item.Hint = "Use a WebSocket endpoint URL."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Endpoint configured: %s", streaming.Endpoint)
	return item
}

// checkAudioFormat validates audio stream parameters.
func (c *Checker) checkAudioFormat(streaming domain.StreamingSettings) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "audio_format",
		Name: "Audio format",
	}

	if streaming.SampleRate <= 0 {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Sample rate must be positive, got %d", streaming.SampleRate)
		item.Hint = "Typical transcription input is 16000 Hz mono."
		return item
	}
	if streaming.Channels <= 0 {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Channel count must be positive, got %d", streaming.Channels)
		return item
	}
	if strings.TrimSpace(streaming.Format) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Audio format is empty."
		item.Hint = "Set the codec identifier expected by the consumer, e.g. pcm_s16le."
		return item
	}
	if streaming.ChunkDurationMs <= 0 {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Chunk duration must be positive, got %d ms", streaming.ChunkDurationMs)
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("%d Hz, %d channel(s), %s, %d ms chunks",
		streaming.SampleRate, streaming.Channels, streaming.Format, streaming.ChunkDurationMs)
	return item
}

// checkRecordingBounds validates duration and inactivity limits.
func (c *Checker) checkRecordingBounds(recording domain.RecordingSettings) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "recording_bounds",
		Name: "Recording bounds",
	}

	if recording.MaxDurationMs <= 0 {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Max duration must be positive, got %d ms", recording.MaxDurationMs)
		return item
	}
	if recording.InactivityLimitMs <= 0 {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Inactivity limit must be positive, got %d ms", recording.InactivityLimitMs)
		return item
	}
	if recording.InactivityLimitMs > recording.MaxDurationMs {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Inactivity limit exceeds max duration."
		item.Hint = "The silence cutoff must fit inside the recording cap."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Max %s, inactivity cutoff %s",
		recording.MaxDuration(), recording.InactivityLimit())
	return item
}

// NewCheckerForTests creates a checker with an injectable clock.
func NewCheckerForTests(now func() time.Time) *Checker {
	return &Checker{now: now}
}
