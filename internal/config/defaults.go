package config

import (
	"os"
	"strconv"

	"meeting-recorder/internal/domain"
)

// DefaultSettings returns baseline configuration for first launch.
func DefaultSettings() domain.Settings {
	return domain.Settings{
		ListenAddr: ":8080",
		Streaming: domain.StreamingSettings{
			Enabled:         false,
			Endpoint:        "ws://localhost:9090/stream",
			SampleRate:      16000,
			Channels:        1,
			Format:          "pcm_s16le",
			ChunkDurationMs: 1000,
		},
		Recording: domain.RecordingSettings{
			MaxDurationMs:     2 * 60 * 60 * 1000,
			InactivityLimitMs: 5 * 60 * 1000,
		},
	}
}

// applyEnvOverrides layers RECORDER_* environment variables over cfg.
func applyEnvOverrides(cfg domain.Settings) domain.Settings {
	if addr := os.Getenv("RECORDER_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if endpoint := os.Getenv("RECORDER_STREAM_ENDPOINT"); endpoint != "" {
		cfg.Streaming.Endpoint = endpoint
	}
	if enabled, ok := envBool("RECORDER_STREAM_ENABLED"); ok {
		cfg.Streaming.Enabled = enabled
	}
	if v, ok := envInt("RECORDER_CHUNK_DURATION_MS"); ok {
		cfg.Streaming.ChunkDurationMs = v
	}
	if v, ok := envInt("RECORDER_MAX_DURATION_MS"); ok {
		cfg.Recording.MaxDurationMs = v
	}
	if v, ok := envInt("RECORDER_INACTIVITY_LIMIT_MS"); ok {
		cfg.Recording.InactivityLimitMs = v
	}
	return cfg
}

// envBool parses a boolean environment variable.
func envBool(key string) (bool, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return false, false
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return parsed, true
}

// envInt parses a positive integer environment variable.
func envInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
