package capture

import (
	"context"
	"testing"
	"time"

	"meeting-recorder/internal/domain"
)

// TestStubEmitsTaggedChunks verifies both sinks receive correctly tagged chunks.
func TestStubEmitsTaggedChunks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := NewStubCollaborator().StartCapture(ctx, Config{
		VideoInterval: 5 * time.Millisecond,
		AudioInterval: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("StartCapture() error = %v", err)
	}
	defer stream.StopAllTracks()

	select {
	case chunk := <-stream.Chunks(domain.SinkVideo):
		if chunk.Kind != domain.SinkVideo {
			t.Fatalf("video chunk kind = %s", chunk.Kind)
		}
		if len(chunk.Data) == 0 {
			t.Fatal("expected non-empty video chunk")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for video chunk")
	}

	select {
	case chunk := <-stream.Chunks(domain.SinkAudio):
		if chunk.Kind != domain.SinkAudio {
			t.Fatalf("audio chunk kind = %s", chunk.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for audio chunk")
	}
}

// TestStubStopClosesChannels verifies StopAllTracks ends emission and is idempotent.
func TestStubStopClosesChannels(t *testing.T) {
	ctx := context.Background()
	stream, err := NewStubCollaborator().StartCapture(ctx, Config{
		VideoInterval: 5 * time.Millisecond,
		AudioInterval: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("StartCapture() error = %v", err)
	}

	stream.StopAllTracks()
	stream.StopAllTracks()

	deadline := time.After(time.Second)
	for {
		select {
		case _, open := <-stream.Chunks(domain.SinkVideo):
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("video channel never closed after stop")
		}
	}
}

// TestStubSamplers verifies detector-facing samplers report configured values.
func TestStubSamplers(t *testing.T) {
	collab := NewStubCollaborator()
	collab.Participants = 3
	collab.Energy = 7.5

	stream, err := collab.StartCapture(context.Background(), Config{})
	if err != nil {
		t.Fatalf("StartCapture() error = %v", err)
	}
	defer stream.StopAllTracks()

	count, ok := stream.ParticipantCount()
	if !ok || count != 3 {
		t.Fatalf("participants = (%d, %v), want (3, true)", count, ok)
	}
	if got := stream.AudioEnergy(); got != 7.5 {
		t.Fatalf("energy = %v, want 7.5", got)
	}
}
