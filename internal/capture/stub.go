package capture

import (
	"context"
	"sync"
	"time"

	"meeting-recorder/internal/domain"
)

// StubCollaborator produces synthetic media chunks on real timers. It stands in
// for the browser-automation bridge during local runs and in tests.
type StubCollaborator struct {
	// ChunkSize is the payload size of every emitted chunk.
	ChunkSize int
	// Participants is the fixed participant count reported to detectors.
	Participants int
	// Energy is the fixed audio energy level reported to detectors.
	Energy float64
}

// NewStubCollaborator returns a stub resembling a small active meeting.
func NewStubCollaborator() *StubCollaborator {
	return &StubCollaborator{
		ChunkSize:    4096,
		Participants: 2,
		Energy:       42.0,
	}
}

// StartCapture begins emitting synthetic chunks at the configured intervals.
func (c *StubCollaborator) StartCapture(ctx context.Context, cfg Config) (Stream, error) {
	s := &stubStream{
		participants: c.Participants,
		energy:       c.Energy,
		video:        make(chan domain.Chunk, 1),
		audio:        make(chan domain.Chunk, 1),
		ended:        make(chan struct{}),
		done:         make(chan struct{}),
	}

	go s.emit(ctx, s.video, domain.SinkVideo, cfg.VideoInterval, c.ChunkSize)
	go s.emit(ctx, s.audio, domain.SinkAudio, cfg.AudioInterval, c.ChunkSize)
	return s, nil
}

// stubStream emits fixed-size chunks until stopped.
type stubStream struct {
	participants int
	energy       float64
	video        chan domain.Chunk
	audio        chan domain.Chunk
	ended        chan struct{}

	stopOnce sync.Once
	done     chan struct{}
}

// emit produces one chunk per interval tick until the stream stops.
func (s *stubStream) emit(ctx context.Context, out chan domain.Chunk, kind domain.SinkKind, interval time.Duration, size int) {
	defer close(out)

	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case now := <-ticker.C:
			chunk := domain.Chunk{
				Kind:       kind,
				Data:       make([]byte, size),
				CapturedAt: now,
			}
			select {
			case out <- chunk:
			case <-s.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}
}

// Chunks returns the chunk channel for one sink.
func (s *stubStream) Chunks(kind domain.SinkKind) <-chan domain.Chunk {
	if kind == domain.SinkAudio {
		return s.audio
	}
	return s.video
}

// ParticipantCount reports the fixed participant count.
func (s *stubStream) ParticipantCount() (int, bool) {
	return s.participants, true
}

// AudioEnergy reports the fixed energy level.
func (s *stubStream) AudioEnergy() float64 {
	return s.energy
}

// Ended returns the external end-signal channel; the stub never fires it.
func (s *stubStream) Ended() <-chan struct{} {
	return s.ended
}

// StopAllTracks stops chunk emission. Idempotent.
func (s *stubStream) StopAllTracks() {
	s.stopOnce.Do(func() { close(s.done) })
}
