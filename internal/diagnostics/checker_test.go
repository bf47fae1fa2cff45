package diagnostics

import (
	"testing"
	"time"

	"meeting-recorder/internal/config"
	"meeting-recorder/internal/domain"
)

// TestCheckerPassesOnDefaults verifies default settings are self-consistent.
func TestCheckerPassesOnDefaults(t *testing.T) {
	report := NewChecker().Run(config.DefaultSettings())
	if report.HasFailures {
		t.Fatalf("default settings should pass, got %+v", report.Items)
	}
	if len(report.Items) != 4 {
		t.Fatalf("items = %d, want 4", len(report.Items))
	}
}

// TestCheckerRejectsBadEndpoint flags non-websocket endpoints when streaming is on.
func TestCheckerRejectsBadEndpoint(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Streaming.Enabled = true
	settings.Streaming.Endpoint = "https://not-a-socket.example.com"

	report := NewChecker().Run(settings)
	if !report.HasFailures {
		t.Fatal("expected failure for https endpoint")
	}
	for _, item := range report.Items {
		if item.ID == "stream_endpoint" && item.Status != domain.DiagnosticStatusFail {
			t.Fatalf("stream_endpoint status = %s, want fail", item.Status)
		}
	}
}

// TestCheckerIgnoresEndpointWhenDisabled skips endpoint validation for disabled streaming.
func TestCheckerIgnoresEndpointWhenDisabled(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Streaming.Enabled = false
	settings.Streaming.Endpoint = "::bad::"

	report := NewChecker().Run(settings)
	if report.HasFailures {
		t.Fatalf("disabled streaming should skip endpoint check, got %+v", report.Items)
	}
}

// TestCheckerRejectsInvertedBounds flags inactivity limits above the duration cap.
func TestCheckerRejectsInvertedBounds(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Recording.MaxDurationMs = 1000
	settings.Recording.InactivityLimitMs = 5000

	report := NewChecker().Run(settings)
	if !report.HasFailures {
		t.Fatal("expected failure when inactivity limit exceeds max duration")
	}
}

// TestCheckerRejectsZeroSampleRate flags unusable audio parameters.
func TestCheckerRejectsZeroSampleRate(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Streaming.SampleRate = 0

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	report := NewCheckerForTests(func() time.Time { return fixed }).Run(settings)
	if !report.HasFailures {
		t.Fatal("expected failure for zero sample rate")
	}
	if !report.GeneratedAt.Equal(fixed) {
		t.Fatalf("generatedAt = %v, want %v", report.GeneratedAt, fixed)
	}
}
