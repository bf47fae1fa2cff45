package record

import "time"

const (
	// presencePollInterval paces participant count sampling.
	presencePollInterval = 2 * time.Second
	// silenceSampleInterval paces audio energy sampling.
	silenceSampleInterval = 100 * time.Millisecond
	// silenceEnergyThreshold separates silence from activity.
	silenceEnergyThreshold = 10.0
	// minParticipants is the quorum below which a meeting counts as abandoned.
	minParticipants = 2
)

// silenceTracker accumulates consecutive below-threshold audio samples.
// Any sample at or above the threshold resets the accumulator to zero.
type silenceTracker struct {
	threshold   float64
	limit       time.Duration
	accumulated time.Duration
}

// newSilenceTracker builds a tracker that trips at the given cumulative limit.
func newSilenceTracker(threshold float64, limit time.Duration) *silenceTracker {
	return &silenceTracker{threshold: threshold, limit: limit}
}

// Observe records one energy sample covering elapsed capture time and reports
// whether accumulated silence has reached the limit.
func (t *silenceTracker) Observe(energy float64, elapsed time.Duration) bool {
	if energy >= t.threshold {
		t.accumulated = 0
		return false
	}
	t.accumulated += elapsed
	return t.accumulated >= t.limit
}

// Accumulated returns the current consecutive silence total.
func (t *silenceTracker) Accumulated() time.Duration {
	return t.accumulated
}

// belowQuorum reports whether a known participant count is under the quorum.
// Unknown samples never trigger.
func belowQuorum(count int, known bool) bool {
	return known && count < minParticipants
}
