package config

import (
	"path/filepath"
	"testing"

	"meeting-recorder/internal/domain"
)

// TestDefaultSettings verifies baseline defaults are present.
func TestDefaultSettings(t *testing.T) {
	cfg := DefaultSettings()
	if cfg.ListenAddr == "" {
		t.Fatal("expected non-empty listen address")
	}
	if cfg.Streaming.SampleRate != 16000 {
		t.Fatalf("sample rate = %d, want 16000", cfg.Streaming.SampleRate)
	}
	if cfg.Streaming.ChunkDurationMs != 1000 {
		t.Fatalf("chunk duration = %d, want 1000", cfg.Streaming.ChunkDurationMs)
	}
	if cfg.Recording.MaxDurationMs <= 0 || cfg.Recording.InactivityLimitMs <= 0 {
		t.Fatal("expected positive recording bounds")
	}
}

// TestJSONStoreLoadMissingReturnsDefaults checks first-run behavior.
func TestJSONStoreLoadMissingReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "settings.json")
	store := NewJSONStore(path)

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Streaming.Format != "pcm_s16le" {
		t.Fatalf("format = %q, want pcm_s16le", got.Streaming.Format)
	}
}

// TestJSONStoreSaveAndLoadRoundTrip checks persisted settings fidelity.
func TestJSONStoreSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.json")
	store := NewJSONStore(path)
	want := domain.Settings{
		ListenAddr: ":9000",
		Streaming: domain.StreamingSettings{
			Enabled:         true,
			Endpoint:        "wss://transcribe.example.com/stream",
			SampleRate:      48000,
			Channels:        2,
			Format:          "opus",
			ChunkDurationMs: 500,
		},
		Recording: domain.RecordingSettings{
			MaxDurationMs:     60_000,
			InactivityLimitMs: 10_000,
		},
	}

	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("round trip = %+v, want %+v", got, want)
	}
}

// TestEnvOverrides verifies environment variables layer over file settings.
func TestEnvOverrides(t *testing.T) {
	t.Setenv("RECORDER_STREAM_ENABLED", "true")
	t.Setenv("RECORDER_STREAM_ENDPOINT", "ws://env.example.com/stream")
	t.Setenv("RECORDER_INACTIVITY_LIMIT_MS", "1234")

	path := filepath.Join(t.TempDir(), "missing", "settings.json")
	got, err := NewJSONStore(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !got.Streaming.Enabled {
		t.Fatal("expected streaming enabled from env")
	}
	if got.Streaming.Endpoint != "ws://env.example.com/stream" {
		t.Fatalf("endpoint = %q", got.Streaming.Endpoint)
	}
	if got.Recording.InactivityLimitMs != 1234 {
		t.Fatalf("inactivity limit = %d, want 1234", got.Recording.InactivityLimitMs)
	}
}

// TestEnvOverridesIgnoreInvalid keeps file values on malformed env input.
func TestEnvOverridesIgnoreInvalid(t *testing.T) {
	t.Setenv("RECORDER_INACTIVITY_LIMIT_MS", "not-a-number")
	t.Setenv("RECORDER_STREAM_ENABLED", "maybe")

	path := filepath.Join(t.TempDir(), "missing", "settings.json")
	got, err := NewJSONStore(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := DefaultSettings()
	if got.Recording.InactivityLimitMs != want.Recording.InactivityLimitMs {
		t.Fatalf("inactivity limit = %d, want default %d",
			got.Recording.InactivityLimitMs, want.Recording.InactivityLimitMs)
	}
	if got.Streaming.Enabled != want.Streaming.Enabled {
		t.Fatal("expected default streaming enabled flag")
	}
}
