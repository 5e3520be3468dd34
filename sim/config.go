package sim

import (
	"fmt"
	"sort"
)

// Time base: the logical clock counts ticks, 60 ticks per hour. A workday is
// a fixed 8 hours; a work week is 5 days.
const (
	TicksPerHour = 60
	DaysPerWeek  = 5
)

// Capacity defaults applied to every member unless the scenario overrides them.
const (
	DefaultMaxDailyHours       = 8.0
	DefaultMaxWeeklyHours      = 40.0
	DefaultContextSwitchFactor = 1.2
)

// ExhaustionPolicy selects what happens to a story whose attempt cap runs out.
type ExhaustionPolicy string

const (
	// ExhaustAbandon marks the story abandoned and frees its WIP slot.
	ExhaustAbandon ExhaustionPolicy = "abandon"
	// ExhaustForceDone forces the story to DONE despite the failed attempts.
	ExhaustForceDone ExhaustionPolicy = "force-done"
)

// MemberConfig describes one roster entry.
type MemberConfig struct {
	ID        string
	PORank    Rank
	AdminRank Rank
	Developer bool
}

// RatesConfig groups the rework/blocking probability table.
// All rates are per-sample probabilities in [0, 1]; fractions scale the
// story's realized development hours into rework hours.
type RatesConfig struct {
	PeerFail            float64 // peer review failure rate
	POReject            float64 // PO concurrence rejection rate
	ValidationFail      float64 // validation failure rate
	Blocking            float64 // per-dev-session blocking probability
	PeerReworkFraction  float64
	POReworkFraction    float64
	ValidReworkFraction float64
}

// DefaultRates is the probability table from the reference scenario.
func DefaultRates() RatesConfig {
	return RatesConfig{
		PeerFail:            0.20,
		POReject:            0.13,
		ValidationFail:      0.30,
		Blocking:            0.20,
		PeerReworkFraction:  0.20,
		POReworkFraction:    0.10,
		ValidReworkFraction: 0.15,
	}
}

// AttemptCaps bounds how many times each review stage may fail before the
// exhaustion policy applies.
type AttemptCaps struct {
	PeerReview int
	POReview   int
	Validation int
}

// DefaultAttemptCaps returns the standard 3/2/2 caps.
func DefaultAttemptCaps() AttemptCaps {
	return AttemptCaps{PeerReview: 3, POReview: 2, Validation: 2}
}

// CeremonyConfig describes recurring meetings charged against member capacity
// at day boundaries. Durations are hours; zero disables a ceremony.
type CeremonyConfig struct {
	Enabled       bool
	SprintDays    int     // sprint length in workdays
	PlanningHours float64 // first sprint day
	StandupHours  float64 // every other sprint day
	ReviewHours   float64 // last sprint day
	RetroHours    float64 // last sprint day
}

// DefaultCeremonies mirrors the reference scenario's meeting schedule.
func DefaultCeremonies() CeremonyConfig {
	return CeremonyConfig{
		Enabled:       true,
		SprintDays:    10,
		PlanningHours: 2.0,
		StandupHours:  0.5,
		ReviewHours:   1.0,
		RetroHours:    1.0,
	}
}

// Config is the full input contract for one simulation run.
type Config struct {
	Seed        int64
	HorizonDays int // simulation horizon in workdays

	Team []MemberConfig

	// StoryPoints lists the point size of each story, in arrival order.
	// When empty, TotalPoints drives random story generation instead.
	StoryPoints []int
	TotalPoints int

	// StaggerHours spreads story arrivals uniformly over [0, StaggerHours]
	// intervals to avoid a thundering herd at tick 0.
	StaggerHours float64

	// WIPLimit bounds concurrently active stories. Zero derives the limit
	// as WIPMultiplier × (number of developer-capable members).
	WIPLimit      int
	WIPMultiplier int

	Rates       RatesConfig
	Caps        AttemptCaps
	OnExhausted ExhaustionPolicy

	BaseHours map[int]PhaseHours

	// BlockDelayMinHours/MaxHours bound the random delay before a blocked
	// story resumes development.
	BlockDelayMinHours float64
	BlockDelayMaxHours float64

	Ceremonies CeremonyConfig
}

// DefaultConfig returns a runnable configuration with every table populated
// and an empty roster. Callers fill Team and story sizing.
func DefaultConfig() Config {
	return Config{
		Seed:               42,
		HorizonDays:        60,
		StaggerHours:       4.0,
		WIPMultiplier:      2,
		Rates:              DefaultRates(),
		Caps:               DefaultAttemptCaps(),
		OnExhausted:        ExhaustAbandon,
		BaseHours:          DefaultBaseHours,
		BlockDelayMinHours: 1.0,
		BlockDelayMaxHours: 8.0,
		Ceremonies:         DefaultCeremonies(),
	}
}

// HorizonTicks returns the simulation cutoff in ticks.
func (cfg *Config) HorizonTicks() int64 {
	return int64(cfg.HorizonDays) * workdayTicks()
}

func workdayTicks() int64 {
	return int64(DefaultMaxDailyHours * TicksPerHour)
}

// DeveloperCount returns the number of roster members with the Developer
// capability. The derived WIP limit is based on this count.
func (cfg *Config) DeveloperCount() int {
	n := 0
	for _, m := range cfg.Team {
		if m.Developer {
			n++
		}
	}
	return n
}

// EffectiveWIPLimit resolves the configured or derived WIP limit.
func (cfg *Config) EffectiveWIPLimit() int {
	if cfg.WIPLimit > 0 {
		return cfg.WIPLimit
	}
	return cfg.WIPMultiplier * cfg.DeveloperCount()
}

// Validate fails fast on configurations that cannot produce a meaningful
// run. This is the only hard-failure class in the design: everything after
// a successful Validate is a simulated outcome, not an error.
func (cfg *Config) Validate() error {
	if cfg.HorizonDays <= 0 {
		return fmt.Errorf("config: horizon must be positive, got %d days", cfg.HorizonDays)
	}
	if len(cfg.Team) == 0 {
		return fmt.Errorf("config: empty roster")
	}

	seen := make(map[string]bool)
	poRanks := make(map[Rank]string)
	adminRanks := make(map[Rank]string)
	for _, m := range cfg.Team {
		if m.ID == "" {
			return fmt.Errorf("config: roster entry with empty id")
		}
		if seen[m.ID] {
			return fmt.Errorf("config: duplicate member id %q", m.ID)
		}
		seen[m.ID] = true
		if m.PORank != RankNone {
			if prev, dup := poRanks[m.PORank]; dup {
				return fmt.Errorf("config: po rank %s held by both %q and %q", m.PORank, prev, m.ID)
			}
			poRanks[m.PORank] = m.ID
		}
		if m.AdminRank != RankNone {
			if prev, dup := adminRanks[m.AdminRank]; dup {
				return fmt.Errorf("config: admin rank %s held by both %q and %q", m.AdminRank, prev, m.ID)
			}
			adminRanks[m.AdminRank] = m.ID
		}
	}
	if _, ok := poRanks[RankPrimary]; !ok {
		return fmt.Errorf("config: no primary PO defined")
	}
	if _, ok := adminRanks[RankPrimary]; !ok {
		return fmt.Errorf("config: no primary admin defined")
	}
	if cfg.DeveloperCount() == 0 {
		return fmt.Errorf("config: no developer-capable members")
	}
	if cfg.EffectiveWIPLimit() <= 0 {
		return fmt.Errorf("config: wip limit must be positive, got %d", cfg.EffectiveWIPLimit())
	}

	if len(cfg.StoryPoints) == 0 && cfg.TotalPoints <= 0 {
		return fmt.Errorf("config: no stories: set story points or total points")
	}
	for i, p := range cfg.StoryPoints {
		if _, ok := cfg.BaseHours[p]; !ok {
			return fmt.Errorf("config: story %d has invalid point size %d", i, p)
		}
	}

	for name, rate := range map[string]float64{
		"peer-fail":       cfg.Rates.PeerFail,
		"po-reject":       cfg.Rates.POReject,
		"validation-fail": cfg.Rates.ValidationFail,
		"blocking":        cfg.Rates.Blocking,
	} {
		if rate < 0 || rate > 1 {
			return fmt.Errorf("config: %s rate %.3f outside [0, 1]", name, rate)
		}
	}
	if cfg.Caps.PeerReview <= 0 || cfg.Caps.POReview <= 0 || cfg.Caps.Validation <= 0 {
		return fmt.Errorf("config: attempt caps must be positive, got %d/%d/%d",
			cfg.Caps.PeerReview, cfg.Caps.POReview, cfg.Caps.Validation)
	}
	switch cfg.OnExhausted {
	case ExhaustAbandon, ExhaustForceDone:
	default:
		return fmt.Errorf("config: unknown exhaustion policy %q", cfg.OnExhausted)
	}
	if cfg.BlockDelayMinHours < 0 || cfg.BlockDelayMaxHours < cfg.BlockDelayMinHours {
		return fmt.Errorf("config: invalid blocking delay bounds [%.1f, %.1f]",
			cfg.BlockDelayMinHours, cfg.BlockDelayMaxHours)
	}
	if cfg.Ceremonies.Enabled && cfg.Ceremonies.SprintDays <= 0 {
		return fmt.Errorf("config: sprint length must be positive, got %d days", cfg.Ceremonies.SprintDays)
	}
	return nil
}

// buildTeam materializes Member structs from the roster.
func (cfg *Config) buildTeam() []*Member {
	team := make([]*Member, 0, len(cfg.Team))
	for _, mc := range cfg.Team {
		m := NewMember(mc.ID)
		m.PORank = mc.PORank
		m.AdminRank = mc.AdminRank
		m.Developer = mc.Developer
		team = append(team, m)
	}
	return team
}

// chainFor returns the escalation chain for a ranked role kind, ordered
// primary, secondary, tertiary.
func chainFor(team []*Member, kind RoleKind) []*Member {
	ranked := make([]*Member, 0, 3)
	for _, m := range team {
		var r Rank
		switch kind {
		case RolePO:
			r = m.PORank
		case RoleAdmin:
			r = m.AdminRank
		default:
			continue
		}
		if r != RankNone {
			ranked = append(ranked, m)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if kind == RolePO {
			return ranked[i].PORank < ranked[j].PORank
		}
		return ranked[i].AdminRank < ranked[j].AdminRank
	})
	return ranked
}
