// Base task-duration table keyed by story points, plus the ±20% jitter
// applied every time a task starts (including rework).

package sim

import (
	"fmt"
	"math/rand"
)

// PhaseHours holds the base task durations, in hours, for one story size.
type PhaseHours struct {
	Dev        float64 `yaml:"dev"`
	Review     float64 `yaml:"review"`
	PO         float64 `yaml:"po"`
	Validation float64 `yaml:"validation"`
}

// DefaultBaseHours is the standard duration table. Story points outside this
// table are a configuration error.
var DefaultBaseHours = map[int]PhaseHours{
	1: {Dev: 4, Review: 1, PO: 0.5, Validation: 1},
	2: {Dev: 8, Review: 2, PO: 1, Validation: 2},
	3: {Dev: 16, Review: 3, PO: 1.5, Validation: 3},
	5: {Dev: 24, Review: 5, PO: 2, Validation: 5},
	8: {Dev: 40, Review: 8, PO: 3, Validation: 8},
}

// ForKind returns the base hours for a task kind.
func (ph PhaseHours) ForKind(kind TaskKind) float64 {
	switch kind {
	case TaskDev:
		return ph.Dev
	case TaskReview:
		return ph.Review
	case TaskPOReview:
		return ph.PO
	case TaskValidation:
		return ph.Validation
	default:
		return 0
	}
}

// jitterFraction bounds the uniform multiplicative perturbation: every task
// duration is scaled by a factor drawn from [0.8, 1.2] when the task starts.
const jitterFraction = 0.2

// jitter applies the uniform ±20% multiplicative perturbation to base hours.
// Re-sampled on every task start, rework included.
func jitter(rng *rand.Rand, base float64) float64 {
	factor := 1 - jitterFraction + 2*jitterFraction*rng.Float64()
	return base * factor
}

// taskHours samples the duration for one task run of the given kind.
func (cfg *Config) taskHours(rng *rand.Rand, points int, kind TaskKind) (float64, error) {
	ph, ok := cfg.BaseHours[points]
	if !ok {
		return 0, fmt.Errorf("no base hours for %d story points", points)
	}
	return jitter(rng, ph.ForKind(kind)), nil
}
