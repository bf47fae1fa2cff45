// Package record runs one recording end-to-end: it starts capture, fans chunks
// out to the video sink and the audio streaming session, arms the termination
// detectors, and performs the single ordered shutdown.
package record

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"meeting-recorder/internal/capture"
	"meeting-recorder/internal/domain"
)

const (
	// videoChunkInterval is the fixed video chunk emission cadence.
	videoChunkInterval = 2 * time.Second
	// defaultAudioChunkInterval applies when configuration gives none.
	defaultAudioChunkInterval = time.Second
)

// StopTrigger names the termination source that ended a recording.
type StopTrigger string

const (
	TriggerMaxDuration StopTrigger = "max-duration"
	TriggerPresence    StopTrigger = "presence"
	TriggerSilence     StopTrigger = "silence"
	TriggerExternalEnd StopTrigger = "external-end"
	TriggerCancelled   StopTrigger = "cancelled"
)

// Sink receives video chunks. Write failures are absorbed per chunk.
type Sink interface {
	Write(ctx context.Context, chunk domain.Chunk) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, chunk domain.Chunk) error

// Write calls f.
func (f SinkFunc) Write(ctx context.Context, chunk domain.Chunk) error {
	return f(ctx, chunk)
}

// Streamer is the audio streaming session consumed by the orchestrator.
// Implemented by stream.Session.
type Streamer interface {
	Connect(ctx context.Context, resumeID string) error
	SendChunk(data []byte) bool
	Close()
	SessionID() string
}

// Options configure one recording run.
type Options struct {
	Job                domain.Job
	MaxDuration        time.Duration
	InactivityLimit    time.Duration
	AudioChunkInterval time.Duration
	// ResumeSessionID reconnects an existing remote streaming session.
	ResumeSessionID string
}

// Result summarizes one finished recording.
type Result struct {
	Trigger       StopTrigger   `json:"trigger"`
	Duration      time.Duration `json:"duration"`
	VideoChunks   int           `json:"videoChunks"`
	AudioChunks   int           `json:"audioChunks"`
	AudioDropped  int           `json:"audioDropped"`
	AudioStreamed bool          `json:"audioStreamed"`
	SessionID     string        `json:"sessionId,omitempty"`
}

// Orchestrator owns one recording run. The streamer is optional: a nil
// streamer, or one whose connect fails, disables the audio sink without ever
// affecting the video pipeline.
type Orchestrator struct {
	collaborator capture.Collaborator
	sink         Sink
	streamer     Streamer
	clock        clock.Clock
	logger       *zap.SugaredLogger
	opts         Options

	dropWarn rate.Sometimes

	mu           sync.Mutex
	trigger      StopTrigger
	videoChunks  int
	audioChunks  int
	audioDropped int

	stopOnce sync.Once
	stopped  chan struct{}
	done     chan struct{}
	stream   capture.Stream
	audioOn  bool
}

// NewOrchestrator builds an orchestrator on the real clock.
func NewOrchestrator(collaborator capture.Collaborator, sink Sink, streamer Streamer, logger *zap.SugaredLogger, opts Options) *Orchestrator {
	return NewOrchestratorWithClock(collaborator, sink, streamer, clock.New(), logger, opts)
}

// NewOrchestratorWithClock builds an orchestrator with an injectable clock.
func NewOrchestratorWithClock(collaborator capture.Collaborator, sink Sink, streamer Streamer, clk clock.Clock, logger *zap.SugaredLogger, opts Options) *Orchestrator {
	if opts.AudioChunkInterval <= 0 {
		opts.AudioChunkInterval = defaultAudioChunkInterval
	}
	return &Orchestrator{
		collaborator: collaborator,
		sink:         sink,
		streamer:     streamer,
		clock:        clk,
		logger:       logger,
		opts:         opts,
		dropWarn:     rate.Sometimes{First: 1, Interval: 5 * time.Second},
		stopped:      make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Run records until a termination source fires. Only a capture start failure
// is returned as an error; streaming and sink failures degrade locally.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	// Open the streaming session before capture so the audio loop has a sink
	// from its first chunk. A failed connect downgrades to video-only.
	if o.streamer != nil {
		if err := o.streamer.Connect(ctx, o.opts.ResumeSessionID); err != nil {
			o.logger.Warnw("audio streaming unavailable, continuing video-only",
				"jobId", o.opts.Job.ID, "error", err)
		} else {
			o.audioOn = true
		}
	}

	stream, err := o.collaborator.StartCapture(ctx, capture.Config{
		VideoInterval: videoChunkInterval,
		AudioInterval: o.opts.AudioChunkInterval,
	})
	if err != nil {
		if o.audioOn {
			o.streamer.Close()
		}
		return Result{}, domain.Retryable("start capture", err, 0)
	}
	o.stream = stream

	startedAt := o.clock.Now()
	o.logger.Infow("recording started",
		"jobId", o.opts.Job.ID,
		"maxDuration", o.opts.MaxDuration,
		"inactivityLimit", o.opts.InactivityLimit,
		"audioStreaming", o.audioOn)

	// Timers are created before the watcher goroutines start so a mock clock
	// advanced immediately after Run begins still reaches them.
	maxTimer := o.clock.Timer(o.opts.MaxDuration)
	presenceGrace := o.clock.Timer(o.opts.InactivityLimit)
	silenceGrace := o.clock.Timer(o.opts.InactivityLimit)

	var wg sync.WaitGroup
	wg.Add(5)
	go o.videoLoop(ctx, &wg)
	go o.audioLoop(&wg)
	go o.watchMaxDuration(&wg, maxTimer)
	go o.watchPresence(&wg, presenceGrace)
	go o.watchSilence(&wg, silenceGrace)

	select {
	case <-ctx.Done():
		o.stop(TriggerCancelled)
	case <-stream.Ended():
		o.stop(TriggerExternalEnd)
	case <-o.done:
	}
	<-o.done
	wg.Wait()

	o.mu.Lock()
	result := Result{
		Trigger:       o.trigger,
		Duration:      o.clock.Since(startedAt),
		VideoChunks:   o.videoChunks,
		AudioChunks:   o.audioChunks,
		AudioDropped:  o.audioDropped,
		AudioStreamed: o.audioOn,
	}
	o.mu.Unlock()
	if o.streamer != nil {
		result.SessionID = o.streamer.SessionID()
	}

	o.logger.Infow("recording finished",
		"jobId", o.opts.Job.ID,
		"trigger", result.Trigger,
		"duration", result.Duration,
		"videoChunks", result.VideoChunks,
		"audioChunks", result.AudioChunks,
		"audioDropped", result.AudioDropped)
	return result, nil
}

// videoLoop forwards video chunks to the sink. Per-chunk failures are logged
// and never abort the loop; the video pipeline outlives any sink hiccup.
func (o *Orchestrator) videoLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	chunks := o.stream.Chunks(domain.SinkVideo)
	for {
		select {
		case <-o.stopped:
			return
		case chunk, ok := <-chunks:
			if !ok {
				return
			}
			if len(chunk.Data) == 0 {
				o.logger.Debugw("skipping empty video chunk", "jobId", o.opts.Job.ID)
				continue
			}
			if err := o.sink.Write(ctx, chunk); err != nil {
				o.logger.Warnw("video sink write failed",
					"jobId", o.opts.Job.ID, "bytes", len(chunk.Data), "error", err)
				continue
			}
			o.mu.Lock()
			o.videoChunks++
			o.mu.Unlock()
		}
	}
}

// audioLoop forwards audio chunks to the streaming session. Chunks are dropped
// when the session is absent or not open; drops only warn at a throttled rate.
func (o *Orchestrator) audioLoop(wg *sync.WaitGroup) {
	defer wg.Done()

	chunks := o.stream.Chunks(domain.SinkAudio)
	for {
		select {
		case <-o.stopped:
			return
		case chunk, ok := <-chunks:
			if !ok {
				return
			}
			if len(chunk.Data) == 0 {
				o.logger.Debugw("skipping empty audio chunk", "jobId", o.opts.Job.ID)
				continue
			}
			if o.audioOn && o.streamer.SendChunk(chunk.Data) {
				o.mu.Lock()
				o.audioChunks++
				o.mu.Unlock()
				continue
			}
			o.mu.Lock()
			o.audioDropped++
			o.mu.Unlock()
			o.dropWarn.Do(func() {
				o.logger.Warnw("dropping audio chunks, streaming sink unavailable",
					"jobId", o.opts.Job.ID)
			})
		}
	}
}

// watchMaxDuration stops the recording when the duration cap elapses.
func (o *Orchestrator) watchMaxDuration(wg *sync.WaitGroup, timer *clock.Timer) {
	defer wg.Done()
	defer timer.Stop()

	select {
	case <-o.stopped:
	case <-timer.C:
		o.stop(TriggerMaxDuration)
	}
}

// watchPresence polls the participant count after an initial grace period and
// stops the recording once a known sample falls below quorum.
func (o *Orchestrator) watchPresence(wg *sync.WaitGroup, grace *clock.Timer) {
	defer wg.Done()
	defer grace.Stop()

	select {
	case <-o.stopped:
		return
	case <-grace.C:
	}

	ticker := o.clock.Ticker(presencePollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-o.stopped:
			return
		case <-ticker.C:
			count, known := o.stream.ParticipantCount()
			if belowQuorum(count, known) {
				o.logger.Infow("participants below quorum",
					"jobId", o.opts.Job.ID, "participants", count)
				o.stop(TriggerPresence)
				return
			}
		}
	}
}

// watchSilence samples audio energy after the grace period and stops the
// recording once consecutive silence reaches the inactivity limit.
func (o *Orchestrator) watchSilence(wg *sync.WaitGroup, grace *clock.Timer) {
	defer wg.Done()
	defer grace.Stop()

	select {
	case <-o.stopped:
		return
	case <-grace.C:
	}

	tracker := newSilenceTracker(silenceEnergyThreshold, o.opts.InactivityLimit)
	ticker := o.clock.Ticker(silenceSampleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-o.stopped:
			return
		case <-ticker.C:
			if tracker.Observe(o.stream.AudioEnergy(), silenceSampleInterval) {
				o.logger.Infow("silence limit reached",
					"jobId", o.opts.Job.ID, "accumulated", tracker.Accumulated())
				o.stop(TriggerSilence)
				return
			}
		}
	}
}

// stop performs the ordered teardown exactly once: end the chunk loops, stop
// the tracks, close the streaming session, then signal completion. Every
// termination source funnels here, so whichever fires first wins and the rest
// become no-ops.
func (o *Orchestrator) stop(trigger StopTrigger) {
	o.stopOnce.Do(func() {
		o.mu.Lock()
		o.trigger = trigger
		o.mu.Unlock()

		close(o.stopped)
		o.stream.StopAllTracks()
		if o.audioOn {
			o.streamer.Close()
		}
		close(o.done)
	})
}
