package sim

import (
	"math/rand"
	"testing"
)

func TestJitterStaysWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const base = 16.0
	for i := 0; i < 1000; i++ {
		h := jitter(rng, base)
		if h < base*(1-jitterFraction) || h > base*(1+jitterFraction) {
			t.Fatalf("jittered duration %.3f outside [%.1f, %.1f]",
				h, base*(1-jitterFraction), base*(1+jitterFraction))
		}
	}
}

func TestTaskHoursUsesBaseTable(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(1))

	for points, ph := range DefaultBaseHours {
		h, err := cfg.taskHours(rng, points, TaskDev)
		if err != nil {
			t.Fatalf("taskHours(%d): %v", points, err)
		}
		if h < ph.Dev*0.8 || h > ph.Dev*1.2 {
			t.Errorf("%d-point dev task %.2fh outside jitter band of base %.1fh", points, h, ph.Dev)
		}
	}
}

func TestTaskHoursRejectsUnknownPoints(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(1))
	if _, err := cfg.taskHours(rng, 13, TaskDev); err == nil {
		t.Fatal("expected error for uncovered point size")
	}
}

func TestPhaseHoursForKind(t *testing.T) {
	ph := PhaseHours{Dev: 16, Review: 3, PO: 1.5, Validation: 3}
	cases := map[TaskKind]float64{
		TaskDev:        16,
		TaskReview:     3,
		TaskPOReview:   1.5,
		TaskValidation: 3,
		TaskMeeting:    0,
	}
	for kind, want := range cases {
		if got := ph.ForKind(kind); got != want {
			t.Errorf("ForKind(%s) = %.1f, want %.1f", kind, got, want)
		}
	}
}
