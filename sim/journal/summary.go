package journal

import (
	"sort"

	"github.com/google/uuid"
)

// PhaseStat aggregates time spent in one phase across completed stories.
type PhaseStat struct {
	Mean float64 `json:"mean_hours"`
	Min  float64 `json:"min_hours"`
	Max  float64 `json:"max_hours"`
}

// Summary condenses a run for scenario comparison. RunID is assigned fresh
// per summary so sweep results can be told apart; it is deliberately absent
// from the event log, which must stay byte-identical across seeded reruns.
type Summary struct {
	RunID            string               `json:"run_id"`
	Seed             int64                `json:"seed"`
	Completed        int                  `json:"completed"`
	Abandoned        int                  `json:"abandoned"`
	Incomplete       int                  `json:"incomplete"`
	CompletedPoints  int                  `json:"completed_points"`
	MeanCycleHours   float64              `json:"mean_cycle_hours"`
	PhaseStats       map[string]PhaseStat `json:"phase_stats"`
	Bottlenecks      map[string]int       `json:"bottlenecks"` // failed acquires per role kind
	MeanUtilization  float64              `json:"mean_utilization"`
	ContextSwitches  int                  `json:"context_switches"`
	SprintVelocities []int                `json:"sprint_velocities,omitempty"`
}

// Summarize computes the run summary from a snapshot. sprintTicks > 0 also
// buckets completed story points into per-sprint velocities.
func Summarize(snap *Snapshot, ticksPerHour int64, sprintTicks int64) Summary {
	s := Summary{
		RunID:       uuid.NewString(),
		Seed:        snap.Seed,
		PhaseStats:  make(map[string]PhaseStat),
		Bottlenecks: snap.FailedAcquires,
	}

	phaseHours := make(map[string][]float64)
	var cycleSum float64
	var velocities []int

	for _, story := range snap.Stories {
		switch {
		case story.Completed():
			s.Completed++
			s.CompletedPoints += story.Points
			cycleSum += float64(story.DoneTick-story.StartTick) / float64(ticksPerHour)
			for phase, hours := range story.PhaseHours {
				phaseHours[phase] = append(phaseHours[phase], hours)
			}
			if sprintTicks > 0 {
				sprint := int(story.DoneTick / sprintTicks)
				for len(velocities) <= sprint {
					velocities = append(velocities, 0)
				}
				velocities[sprint] += story.Points
			}
		case story.Abandoned:
			s.Abandoned++
		case story.StartTick >= 0 || story.Phase == "TO-DO":
			s.Incomplete++
		}
	}
	if s.Completed > 0 {
		s.MeanCycleHours = cycleSum / float64(s.Completed)
	}
	s.SprintVelocities = velocities

	for phase, hours := range phaseHours {
		sort.Float64s(hours)
		var sum float64
		for _, h := range hours {
			sum += h
		}
		s.PhaseStats[phase] = PhaseStat{
			Mean: sum / float64(len(hours)),
			Min:  hours[0],
			Max:  hours[len(hours)-1],
		}
	}

	var utilSum float64
	for _, m := range snap.Members {
		utilSum += m.Utilization
		s.ContextSwitches += m.ContextSwitches
	}
	if len(snap.Members) > 0 {
		s.MeanUtilization = utilSum / float64(len(snap.Members))
	}
	return s
}
