// Package capture defines the contract between the recording core and the
// browser-automation collaborator that produces media. The core only consumes
// chunk channels and control samplers; it never reaches into automation internals.
package capture

import (
	"context"
	"time"

	"meeting-recorder/internal/domain"
)

// Config selects per-sink chunk emission intervals for one capture run.
type Config struct {
	VideoInterval time.Duration
	AudioInterval time.Duration
}

// Stream is a live handle to the audio and video tracks of one meeting.
//
// Chunk channels are closed after StopAllTracks. Chunks arrive in capture
// order per sink; no cross-sink ordering is guaranteed.
type Stream interface {
	// Chunks returns the ordered chunk channel for one sink.
	Chunks(kind domain.SinkKind) <-chan domain.Chunk

	// ParticipantCount samples the current participant count.
	// ok is false when the count is unknown this tick.
	ParticipantCount() (count int, ok bool)

	// AudioEnergy samples the current audio energy level.
	AudioEnergy() float64

	// Ended is closed when the meeting ends out-of-band (host ended the call).
	Ended() <-chan struct{}

	// StopAllTracks releases the underlying tracks. Idempotent.
	StopAllTracks()
}

// Collaborator starts media capture for one meeting.
type Collaborator interface {
	StartCapture(ctx context.Context, cfg Config) (Stream, error)
}

// CollaboratorFunc adapts a function to the Collaborator interface.
type CollaboratorFunc func(ctx context.Context, cfg Config) (Stream, error)

// StartCapture calls f.
func (f CollaboratorFunc) StartCapture(ctx context.Context, cfg Config) (Stream, error) {
	return f(ctx, cfg)
}
