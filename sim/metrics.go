// Tracks simulation-wide counters for final reporting.

package sim

import "fmt"

// Metrics aggregates statistics about the run for end-of-run reporting.
// Per-story and per-member detail lives in the journal snapshot; these are
// the headline numbers.
type Metrics struct {
	CompletedStories int     // Stories that reached DONE
	CompletedPoints  int     // Story points delivered
	AbandonedStories int     // Stories terminated by attempt exhaustion
	Blocks           int     // Development sessions lost to blocking
	Reworks          int     // Failed reviews that sent work back
	ChargedHours     float64 // Total hours charged across the team
	EndTick          int64   // Clock value when the run stopped
}

// NewMetrics creates a zeroed Metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print(totalStories int, horizon int64) {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Completed Stories    : %d / %d\n", m.CompletedStories, totalStories)
	fmt.Printf("Completed Points     : %d\n", m.CompletedPoints)
	fmt.Printf("Abandoned Stories    : %d\n", m.AbandonedStories)
	fmt.Printf("Incomplete Stories   : %d\n", totalStories-m.CompletedStories-m.AbandonedStories)
	fmt.Printf("Blocking Incidents   : %d\n", m.Blocks)
	fmt.Printf("Rework Passes        : %d\n", m.Reworks)
	fmt.Printf("Hours Charged        : %.1f\n", m.ChargedHours)
	fmt.Printf("Simulated Days       : %.1f of %.1f\n",
		float64(m.EndTick)/float64(workdayTicks()), float64(horizon)/float64(workdayTicks()))
}
