package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	sim "github.com/sprint-sim/sprint-sim/sim"
)

// ScenarioMember is one roster entry in a scenario file.
type ScenarioMember struct {
	ID        string `yaml:"id"`
	PORank    string `yaml:"po_rank"`
	AdminRank string `yaml:"admin_rank"`
	Developer bool   `yaml:"developer"`
}

// ScenarioRates mirrors sim.RatesConfig in scenario files. Pointer fields
// distinguish "absent, use default" from an explicit zero.
type ScenarioRates struct {
	PeerFail            *float64 `yaml:"peer_fail"`
	POReject            *float64 `yaml:"po_reject"`
	ValidationFail      *float64 `yaml:"validation_fail"`
	Blocking            *float64 `yaml:"blocking"`
	PeerReworkFraction  *float64 `yaml:"peer_rework_fraction"`
	POReworkFraction    *float64 `yaml:"po_rework_fraction"`
	ValidReworkFraction *float64 `yaml:"validation_rework_fraction"`
}

// ScenarioCaps mirrors sim.AttemptCaps.
type ScenarioCaps struct {
	PeerReview int `yaml:"peer_review"`
	POReview   int `yaml:"po_review"`
	Validation int `yaml:"validation"`
}

// ScenarioCeremonies mirrors sim.CeremonyConfig.
type ScenarioCeremonies struct {
	Enabled       *bool   `yaml:"enabled"`
	SprintDays    int     `yaml:"sprint_days"`
	PlanningHours float64 `yaml:"planning_hours"`
	StandupHours  float64 `yaml:"standup_hours"`
	ReviewHours   float64 `yaml:"review_hours"`
	RetroHours    float64 `yaml:"retro_hours"`
}

// Scenario represents the full scenario-file structure.
type Scenario struct {
	Seed          int64                  `yaml:"seed"`
	HorizonDays   int                    `yaml:"horizon_days"`
	Team          []ScenarioMember       `yaml:"team"`
	StoryPoints   []int                  `yaml:"story_points"`
	TotalPoints   int                    `yaml:"total_points"`
	StaggerHours  *float64               `yaml:"stagger_hours"`
	WIPLimit      int                    `yaml:"wip_limit"`
	WIPMult       int                    `yaml:"wip_multiplier"`
	Rates         ScenarioRates          `yaml:"rates"`
	Caps          *ScenarioCaps          `yaml:"attempt_caps"`
	OnExhausted   string                 `yaml:"on_exhausted"`
	BaseHours     map[int]sim.PhaseHours `yaml:"base_hours"`
	BlockDelayMin *float64               `yaml:"block_delay_min_hours"`
	BlockDelayMax *float64               `yaml:"block_delay_max_hours"`
	Ceremonies    *ScenarioCeremonies    `yaml:"ceremonies"`
}

// LoadScenario parses a scenario file into a sim.Config, with strict field
// checking so typos fail loudly instead of silently using defaults.
func LoadScenario(path string) (sim.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sim.Config{}, fmt.Errorf("read scenario: %w", err)
	}
	return parseScenario(data)
}

func parseScenario(data []byte) (sim.Config, error) {
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return sim.Config{}, fmt.Errorf("parse scenario: %w", err)
	}

	cfg := sim.DefaultConfig()
	if sc.Seed != 0 {
		cfg.Seed = sc.Seed
	}
	if sc.HorizonDays != 0 {
		cfg.HorizonDays = sc.HorizonDays
	}
	for _, m := range sc.Team {
		po, ok := sim.ParseRank(m.PORank)
		if !ok {
			return sim.Config{}, fmt.Errorf("member %q: unknown po rank %q", m.ID, m.PORank)
		}
		admin, ok := sim.ParseRank(m.AdminRank)
		if !ok {
			return sim.Config{}, fmt.Errorf("member %q: unknown admin rank %q", m.ID, m.AdminRank)
		}
		cfg.Team = append(cfg.Team, sim.MemberConfig{
			ID:        m.ID,
			PORank:    po,
			AdminRank: admin,
			Developer: m.Developer,
		})
	}
	cfg.StoryPoints = sc.StoryPoints
	cfg.TotalPoints = sc.TotalPoints
	if sc.StaggerHours != nil {
		cfg.StaggerHours = *sc.StaggerHours
	}
	if sc.WIPLimit != 0 {
		cfg.WIPLimit = sc.WIPLimit
	}
	if sc.WIPMult != 0 {
		cfg.WIPMultiplier = sc.WIPMult
	}
	applyRates(&cfg.Rates, sc.Rates)
	if sc.Caps != nil {
		cfg.Caps = sim.AttemptCaps{
			PeerReview: sc.Caps.PeerReview,
			POReview:   sc.Caps.POReview,
			Validation: sc.Caps.Validation,
		}
	}
	if sc.OnExhausted != "" {
		cfg.OnExhausted = sim.ExhaustionPolicy(sc.OnExhausted)
	}
	if len(sc.BaseHours) > 0 {
		cfg.BaseHours = sc.BaseHours
	}
	if sc.BlockDelayMin != nil {
		cfg.BlockDelayMinHours = *sc.BlockDelayMin
	}
	if sc.BlockDelayMax != nil {
		cfg.BlockDelayMaxHours = *sc.BlockDelayMax
	}
	if sc.Ceremonies != nil {
		if sc.Ceremonies.Enabled != nil {
			cfg.Ceremonies.Enabled = *sc.Ceremonies.Enabled
		}
		if sc.Ceremonies.SprintDays != 0 {
			cfg.Ceremonies.SprintDays = sc.Ceremonies.SprintDays
		}
		if sc.Ceremonies.PlanningHours != 0 {
			cfg.Ceremonies.PlanningHours = sc.Ceremonies.PlanningHours
		}
		if sc.Ceremonies.StandupHours != 0 {
			cfg.Ceremonies.StandupHours = sc.Ceremonies.StandupHours
		}
		if sc.Ceremonies.ReviewHours != 0 {
			cfg.Ceremonies.ReviewHours = sc.Ceremonies.ReviewHours
		}
		if sc.Ceremonies.RetroHours != 0 {
			cfg.Ceremonies.RetroHours = sc.Ceremonies.RetroHours
		}
	}
	return cfg, nil
}

func applyRates(dst *sim.RatesConfig, src ScenarioRates) {
	if src.PeerFail != nil {
		dst.PeerFail = *src.PeerFail
	}
	if src.POReject != nil {
		dst.POReject = *src.POReject
	}
	if src.ValidationFail != nil {
		dst.ValidationFail = *src.ValidationFail
	}
	if src.Blocking != nil {
		dst.Blocking = *src.Blocking
	}
	if src.PeerReworkFraction != nil {
		dst.PeerReworkFraction = *src.PeerReworkFraction
	}
	if src.POReworkFraction != nil {
		dst.POReworkFraction = *src.POReworkFraction
	}
	if src.ValidReworkFraction != nil {
		dst.ValidReworkFraction = *src.ValidReworkFraction
	}
}

// DefaultRoster is the reference team of ten: a dedicated primary PO and
// primary Admin, secondary/tertiary chains who also develop, and four pure
// developers.
func DefaultRoster() []sim.MemberConfig {
	roster := []sim.MemberConfig{
		{ID: "PO1", PORank: sim.RankPrimary},
		{ID: "PO2", PORank: sim.RankSecondary, Developer: true},
		{ID: "PO3", PORank: sim.RankTertiary, Developer: true},
		{ID: "ADMIN1", AdminRank: sim.RankPrimary},
		{ID: "ADMIN2", AdminRank: sim.RankSecondary, Developer: true},
		{ID: "ADMIN3", AdminRank: sim.RankTertiary, Developer: true},
	}
	for i := 0; i < 4; i++ {
		roster = append(roster, sim.MemberConfig{ID: fmt.Sprintf("DEV%d", i), Developer: true})
	}
	return roster
}
