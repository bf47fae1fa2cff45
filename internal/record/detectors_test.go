package record

import (
	"testing"
	"time"
)

// TestSilenceTrackerScenario walks the 500ms limit through five quiet samples.
func TestSilenceTrackerScenario(t *testing.T) {
	tracker := newSilenceTracker(10, 500*time.Millisecond)

	samples := []float64{5, 5, 5, 5, 5}
	for i, energy := range samples {
		tripped := tracker.Observe(energy, 100*time.Millisecond)
		if i < len(samples)-1 && tripped {
			t.Fatalf("tracker tripped early at sample %d", i+1)
		}
		if i == len(samples)-1 && !tripped {
			t.Fatal("tracker should trip at the 5th sample (500ms accumulated)")
		}
	}
}

// TestSilenceTrackerResetOnActivity clears the accumulator on any loud sample.
func TestSilenceTrackerResetOnActivity(t *testing.T) {
	tracker := newSilenceTracker(10, 300*time.Millisecond)

	tracker.Observe(1, 100*time.Millisecond)
	tracker.Observe(2, 100*time.Millisecond)
	if tracker.Observe(50, 100*time.Millisecond) {
		t.Fatal("loud sample must not trip the tracker")
	}
	if tracker.Accumulated() != 0 {
		t.Fatalf("accumulated = %v, want 0 after activity", tracker.Accumulated())
	}

	tracker.Observe(3, 100*time.Millisecond)
	tracker.Observe(3, 100*time.Millisecond)
	if !tracker.Observe(3, 100*time.Millisecond) {
		t.Fatal("tracker should trip after the limit accumulates again")
	}
}

// TestSilenceTrackerThresholdBoundary treats energy at the threshold as activity.
func TestSilenceTrackerThresholdBoundary(t *testing.T) {
	tracker := newSilenceTracker(10, 100*time.Millisecond)
	if tracker.Observe(10, 100*time.Millisecond) {
		t.Fatal("sample at the threshold must not accumulate silence")
	}
	if !tracker.Observe(9.99, 100*time.Millisecond) {
		t.Fatal("sample below the threshold should accumulate")
	}
}

// TestBelowQuorum covers known and unknown participant samples.
func TestBelowQuorum(t *testing.T) {
	cases := []struct {
		name  string
		count int
		known bool
		want  bool
	}{
		{"solo participant", 1, true, true},
		{"empty meeting", 0, true, true},
		{"quorum held", 2, true, false},
		{"full meeting", 7, true, false},
		{"unknown sample", 0, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := belowQuorum(tc.count, tc.known); got != tc.want {
				t.Fatalf("belowQuorum(%d, %v) = %v, want %v", tc.count, tc.known, got, tc.want)
			}
		})
	}
}
