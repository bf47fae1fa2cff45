package domain

import "time"

// JobStatus tracks the lifecycle of a single recording job.
type JobStatus string

const (
	JobStatusIdle      JobStatus = "idle"
	JobStatusRunning   JobStatus = "running"
	JobStatusRetrying  JobStatus = "retrying"
	JobStatusDone      JobStatus = "done"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Job stores job identity, ownership, and lifecycle status.
type Job struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	TeamID   string    `json:"teamId"`
	Status   JobStatus `json:"status"`
	Attempts int       `json:"attempts"`
}

// SinkKind tags a chunk with its destination.
type SinkKind string

const (
	SinkVideo SinkKind = "video-sink"
	SinkAudio SinkKind = "audio-sink"
)

// Chunk is one fixed-interval slice of captured media bytes.
// Chunks are ephemeral: produced, forwarded to one sink, discarded.
type Chunk struct {
	Kind       SinkKind
	Data       []byte
	CapturedAt time.Time
}

// StreamingSettings configures the audio streaming sink.
type StreamingSettings struct {
	Enabled         bool   `json:"enabled"`
	Endpoint        string `json:"endpoint"`
	SampleRate      int    `json:"sampleRate"`
	Channels        int    `json:"channels"`
	Format          string `json:"format"`
	ChunkDurationMs int    `json:"chunkDurationMs"`
}

// ChunkDuration returns the audio chunk emission interval.
func (s StreamingSettings) ChunkDuration() time.Duration {
	return time.Duration(s.ChunkDurationMs) * time.Millisecond
}

// RecordingSettings bounds a single recording run.
type RecordingSettings struct {
	MaxDurationMs     int `json:"maxDurationMs"`
	InactivityLimitMs int `json:"inactivityLimitMs"`
}

// MaxDuration returns the recording duration cap.
func (s RecordingSettings) MaxDuration() time.Duration {
	return time.Duration(s.MaxDurationMs) * time.Millisecond
}

// InactivityLimit returns the cumulative silence / absence cutoff.
func (s RecordingSettings) InactivityLimit() time.Duration {
	return time.Duration(s.InactivityLimitMs) * time.Millisecond
}

// Settings contains the runtime configuration surface.
type Settings struct {
	ListenAddr string            `json:"listenAddr"`
	Streaming  StreamingSettings `json:"streaming"`
	Recording  RecordingSettings `json:"recording"`
}
